// Clear and re-initialize the pipes storage system
package main

import (
	"log"

	"github.com/hugoPeyronCode/pipes.go/config"
	"github.com/hugoPeyronCode/pipes.go/dbprep"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Configuration failure: %v", err)
	}
	log.Printf("Removing existing data storage and cache...")
	if err := dbprep.ReinitializeAll(dbprep.Params{
		CacheURL:      cfg.CacheURL,
		DatabaseURL:   cfg.DatabaseURL,
		MigrationsDir: cfg.MigrationsDir,
	}); err != nil {
		log.Fatalf("Couldn't clear storage: %v", err)
	}
	log.Printf("Database re-initialized.")
}

// Prepare the pipes storage system for serving
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
	log.Printf("Preparing data storage and cache...")
	if err := dbprep.EnsureData(dbprep.Params{
		CacheURL:      cfg.CacheURL,
		DatabaseURL:   cfg.DatabaseURL,
		MigrationsDir: cfg.MigrationsDir,
	}); err != nil {
		log.Fatalf("Couldn't prepare storage: %v", err)
	}
	log.Printf("Database schema and base data are in place.")
}

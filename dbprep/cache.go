package dbprep

/*

cache reset

*/

import (
	"github.com/gomodule/redigo/redis"
)

// ClearCache flushes everything out of the Redis cache.  Every
// cached value can be rebuilt from the database or regenerated
// from a session's recipe, so this is always safe.
func ClearCache(p Params) error {
	p = p.withDefaults()
	conn, err := redis.DialURL(p.CacheURL)
	if err != nil {
		return err
	}
	_, err = conn.Do("FLUSHALL")
	if err != nil {
		return err
	}
	conn.Close()
	return nil
}

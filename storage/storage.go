package storage

/*

Storage connections

A Store is an explicit handle on the two storage services: a
Redis cache for sessions, replay moves, and hot level entries,
and a Postgres database for durable level storage.  Callers
construct one Store per process and pass it to whatever needs
storage; there is no package-level connection state.

Execution against either service follows one convention: the
body runs inside the store's mutex (and, for Postgres, inside a
transaction), and failures panic back to the caller's recovery
point.  The web and CLI entry points recover at their outermost
handler and turn the panic into an error response.

*/

import (
	"context"
	"fmt"
	"sync"

	"github.com/gomodule/redigo/redis"
	"github.com/jackc/pgx/v5"
)

// A Store holds the open connections to the cache and the
// database.  The zero value is not usable; call Connect.
type Store struct {
	env   string // cache key prefix, separates deployments
	mutex sync.Mutex

	rdURL string
	rdc   redis.Conn

	pgURL  string
	pgConn *pgx.Conn
}

// Connect opens the cache and the database.  The env string
// prefixes every cache key, so multiple deployments (or test
// runs) can share one Redis instance without colliding.
func Connect(env, cacheURL, databaseURL string) (*Store, error) {
	s := &Store{env: env, rdURL: cacheURL, pgURL: databaseURL}
	if err := s.rdConnect(); err != nil {
		return nil, err
	}
	if err := s.pgConnect(); err != nil {
		s.rdClose()
		return nil, err
	}
	return s, nil
}

// CacheURL returns the URL of the connected cache.
func (s *Store) CacheURL() string {
	return s.rdURL
}

// DatabaseURL returns the URL of the connected database.
func (s *Store) DatabaseURL() string {
	return s.pgURL
}

// Close shuts both connections down.
func (s *Store) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.pgClose()
	s.rdClose()
}

/*

cache using Redis

*/

// rdConnect: connect to the store's Redis URL.
func (s *Store) rdConnect() error {
	conn, err := redis.DialURL(s.rdURL)
	if err != nil {
		return fmt.Errorf("Couldn't connect to cache at %q: %v", s.rdURL, err)
	}
	s.rdc = conn
	return nil
}

// rdClose: close the Redis connection, if open.
func (s *Store) rdClose() {
	if s.rdc != nil {
		s.rdc.Close()
		s.rdc = nil
	}
}

// rdExecute: execute the body against the cache, inside the
// store's mutex.  Meant to be used inside a handler, because
// errors in execution will panic back to the handler's recovery
// point.
func (s *Store) rdExecute(body func(conn redis.Conn) error) {
	// wrap the body against runtime and cache failures
	wrapper := func(conn redis.Conn) (err error) {
		defer func() {
			if r := recover(); r != nil {
				if e, ok := r.(error); ok {
					err = e
				} else {
					err = fmt.Errorf("Caught panic during rdExecute: %v", r)
				}
			}
		}()
		// Because Redis connections can go away without warning,
		// we ping to make sure the connection is alive, and try
		// to reconnect if not.
		if _, err := conn.Do("PING"); err != nil {
			s.rdClose()
			if err = s.rdConnect(); err != nil {
				return fmt.Errorf("Failed to reconnect to cache at %q", s.rdURL)
			}
			conn = s.rdc
		}
		// connection is good; run the body
		return body(conn)
	}
	// grab the mutex and execute the body
	s.mutex.Lock()
	defer func(err error) {
		s.mutex.Unlock()
		if err != nil {
			panic(err)
		}
	}(wrapper(s.rdc))
}

/*

persistence using Postgres

*/

// pgConnect: open the store's Postgres database.
func (s *Store) pgConnect() error {
	conn, err := pgx.Connect(context.Background(), s.pgURL)
	if err != nil {
		return fmt.Errorf("Couldn't connect to db at %q: %v", s.pgURL, err)
	}
	s.pgConn = conn
	return nil
}

// pgClose: close the Postgres connection, if open.
func (s *Store) pgClose() {
	if s.pgConn != nil {
		s.pgConn.Close(context.Background())
		s.pgConn = nil
	}
}

// txContext is the context storage operations run under.  The
// store has no cancellation or timeout semantics; operations are
// small and bounded.
func txContext() context.Context {
	return context.Background()
}

// pgExecute: execute the body inside a single transaction,
// inside the store's mutex.  Meant to be used inside a handler,
// because errors in execution will panic back to the handler's
// recovery point.  If the body errs out, the transaction is
// rolled back, otherwise it's committed.
func (s *Store) pgExecute(body func(tx pgx.Tx) error) {
	ctx := context.Background()

	// wrap the body against runtime and database failures
	wrapper := func(tx pgx.Tx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				if e, ok := r.(error); ok {
					err = e
				} else {
					err = fmt.Errorf("Caught panic during pgExecute: %v", r)
				}
			}
		}()
		return body(tx)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	// get the transaction
	tx, err := s.pgConn.Begin(ctx)
	if err != nil {
		panic(fmt.Errorf("Can't open a transaction against database: %v", err))
	}
	// execute the body in the transaction
	defer func(err error) {
		if err != nil {
			tx.Rollback(ctx)
			panic(err)
		}
		if err := tx.Commit(ctx); err != nil {
			panic(fmt.Errorf("Can't commit transaction: %v", err))
		}
	}(wrapper(tx))
}

package kv

import "fmt"

// Open returns the store for the named driver: "sqlite", "postgres" or "memory".
// target is the file path for sqlite and the connection string for postgres.
func Open(driver, target string) (Store, error) {
	switch driver {
	case "", "sqlite":
		return NewSQLiteStore(target)
	case "postgres":
		return NewPostgresStore(target)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q (valid: sqlite, postgres, memory)", driver)
	}
}

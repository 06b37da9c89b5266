package store

import (
	"errors"
	"fmt"

	"github.com/nhle/noc-desk/internal/model"
)

// split pairs a mark backend with a separate ticket cache.
type split struct {
	MarkStore
	TicketCache
	closeFn func() error
}

func (s split) Close() error { return s.closeFn() }

// Open builds the Store selected by cfg.Driver. Only SQLite keeps the
// ticket cache on disk; the other drivers cache tickets in memory.
func Open(cfg model.PersistenceConfig) (Store, error) {
	switch cfg.Driver {
	case model.DriverSQLite, "":
		return NewSQLiteStore(cfg.Path)

	case model.DriverFile:
		fs, err := NewFileStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return split{MarkStore: fs, TicketCache: NewMemoryStore(), closeFn: fs.Close}, nil

	case model.DriverRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("persistence.redis_url is required for the redis driver")
		}
		rs, err := NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return split{MarkStore: rs, TicketCache: NewMemoryStore(), closeFn: rs.Close}, nil

	case model.DriverMemory:
		return NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown persistence driver %q", cfg.Driver)
	}
}

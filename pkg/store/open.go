package store

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend string

	// Dir is the FileStore directory.
	Dir string

	// URL is the Redis or MongoDB connection string.
	URL string

	Database   string
	Collection string
}

// Open creates the store named by opts.Backend. An empty backend selects
// the file store.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.Dir)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		return NewRedisStore(ctx, opts.URL)
	case BackendMongo:
		return NewMongoStore(ctx, opts.URL, opts.Database, opts.Collection)
	}
	return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
}

// Package store persists graph documents under string keys.
//
// A host saves its editor state (graph plus signature stack) through a
// [Store] and restores it on the next start. Backends:
//   - [FileStore]: one JSON file per key, for the CLI
//   - [MemoryStore]: in-process, for tests and the development server
//   - [RedisStore]: shared state for multi-instance servers
//   - [MongoStore]: durable document storage
//
// Keys are validated with [errors.ValidateKey]; the editor's own state lives
// under [DefaultKey].
//
// # Usage
//
//	s, err := store.NewFileStore("")
//	if err != nil {
//	    return err
//	}
//	if err := store.SaveGraph(ctx, s, store.DefaultKey, g, sigs); err != nil {
//	    return err
//	}
//	g, sigs, err = store.LoadGraph(ctx, s, store.DefaultKey)
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/matzehuels/wzrd/pkg/core/dag"
	"github.com/matzehuels/wzrd/pkg/core/importer"
	wzerrors "github.com/matzehuels/wzrd/pkg/errors"
	"github.com/matzehuels/wzrd/pkg/graph"
)

// DefaultKey is the key the editor persists its graph under.
const DefaultKey = "wzrd_node_graph"

// ErrNotFound is returned when no document is stored under a key.
var ErrNotFound = errors.New("not found")

// Store holds serialized graph documents.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores data under key, replacing any previous value.
	Save(ctx context.Context, key string, data []byte) error

	// Load returns the data stored under key or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the stored keys in ascending order.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// SaveGraph serializes g and sigs and stores them under key.
func SaveGraph(ctx context.Context, s Store, key string, g *dag.Graph, sigs *importer.SignatureStack) error {
	if err := wzerrors.ValidateKey(key); err != nil {
		return err
	}
	data, err := graph.MarshalGraph(g, sigs)
	if err != nil {
		return wzerrors.Wrap(wzerrors.ErrCodeInternal, err, "encode graph")
	}
	if err := s.Save(ctx, key, data); err != nil {
		return wzerrors.Wrap(wzerrors.ErrCodeStore, err, "save %s", key)
	}
	return nil
}

// LoadGraph restores the graph and signature stack stored under key.
func LoadGraph(ctx context.Context, s Store, key string) (*dag.Graph, *importer.SignatureStack, error) {
	doc, err := LoadDocument(ctx, s, key)
	if err != nil {
		return nil, nil, err
	}
	g, sigs, err := graph.ToDAG(doc)
	if err != nil {
		return nil, nil, wzerrors.Wrap(wzerrors.ErrCodeInvalidGraph, err, "restore %s", key)
	}
	return g, sigs, nil
}

// LoadDocument returns the decoded document stored under key without
// rebuilding the graph.
func LoadDocument(ctx context.Context, s Store, key string) (graph.Document, error) {
	if err := wzerrors.ValidateKey(key); err != nil {
		return graph.Document{}, err
	}
	data, err := s.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return graph.Document{}, wzerrors.Wrap(wzerrors.ErrCodeNotFound, err, "graph %s", key)
	}
	if err != nil {
		return graph.Document{}, wzerrors.Wrap(wzerrors.ErrCodeStore, err, "load %s", key)
	}
	doc, err := graph.UnmarshalGraph(data)
	if err != nil {
		return graph.Document{}, wzerrors.Wrap(wzerrors.ErrCodeInvalidFormat, err, "decode %s", key)
	}
	if doc.Version > graph.Version {
		return graph.Document{}, wzerrors.Wrap(wzerrors.ErrCodeUnsupported, graph.ErrUnsupportedVersion,
			"%s has version %d", key, doc.Version)
	}
	return doc, nil
}

func notFound(key string) error {
	return fmt.Errorf("%s: %w", key, ErrNotFound)
}

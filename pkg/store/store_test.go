package store

import (
	"context"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/wzrd/pkg/core/dag"
	"github.com/matzehuels/wzrd/pkg/core/eval"
	"github.com/matzehuels/wzrd/pkg/core/importer"
	"github.com/matzehuels/wzrd/pkg/core/template"
	wzerrors "github.com/matzehuels/wzrd/pkg/errors"
	"github.com/matzehuels/wzrd/pkg/script"
)

// runContract verifies the behavior every backend shares.
func runContract(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("SaveAndLoad", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, "doc", []byte(`{"version":1}`)))
		data, err := s.Load(ctx, "doc")
		require.NoError(t, err)
		assert.JSONEq(t, `{"version":1}`, string(data))

		require.NoError(t, s.Save(ctx, "doc", []byte(`{"version":2}`)))
		data, err = s.Load(ctx, "doc")
		require.NoError(t, err)
		assert.JSONEq(t, `{"version":2}`, string(data), "Save should replace")
	})

	t.Run("LoadMissing", func(t *testing.T) {
		_, err := s.Load(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, "gone", []byte(`{}`)))
		require.NoError(t, s.Delete(ctx, "gone"))
		_, err := s.Load(ctx, "gone")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, s.Delete(ctx, "gone"), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, "b", []byte(`{}`)))
		require.NoError(t, s.Save(ctx, "a", []byte(`{}`)))
		defer func() {
			_ = s.Delete(ctx, "a")
			_ = s.Delete(ctx, "b")
		}()
		keys, err := s.List(ctx)
		require.NoError(t, err)
		assert.Subset(t, keys, []string{"a", "b"})
		assert.IsIncreasing(t, keys)
	})
}

func TestMemoryStore(t *testing.T) {
	runContract(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	runContract(t, s)

	// Stray files in the directory are not listed.
	require.NoError(t, os.WriteFile(s.Path()+"/notes.txt", nil, 0o600))
	keys, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, keys, "notes")
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	s := NewRedisStoreFromClient(client)
	defer s.Close()
	runContract(t, s)

	require.NoError(t, s.Save(context.Background(), DefaultKey, []byte(`{}`)))
	assert.True(t, mr.Exists(DefaultRedisPrefix+DefaultKey))
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("WZRD_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("WZRD_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, uri, "wzrd_test", t.Name())
	require.NoError(t, err)
	defer s.Close()
	defer s.coll.Drop(ctx)
	runContract(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Options{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = Open(ctx, Options{Backend: "etcd"})
	assert.Error(t, err)
}

func TestGraphRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	root, err := script.Parse("def main(a) (48*(11+a)) end")
	require.NoError(t, err)
	im := importer.New(template.NewCatalog(), nil)
	g := dag.New()
	importer.Materialize(g, im.Import(root), nil)

	require.NoError(t, SaveGraph(ctx, s, DefaultKey, g, im.Signatures()))

	restored, sigs, err := LoadGraph(ctx, s, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, g.NodeCount(), restored.NodeCount())
	assert.Equal(t, g.Connections(), restored.Connections())
	assert.Equal(t,
		eval.Evaluate(g, im.Signatures(), nil, nil),
		eval.Evaluate(restored, sigs, nil, nil))
}

func TestGraphErrors(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, _, err := LoadGraph(ctx, s, DefaultKey)
	assert.True(t, wzerrors.Is(err, wzerrors.ErrCodeNotFound))
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = LoadGraph(ctx, s, "../escape")
	assert.True(t, wzerrors.Is(err, wzerrors.ErrCodeInvalidKey))

	require.NoError(t, s.Save(ctx, "bad", []byte("not json")))
	_, _, err = LoadGraph(ctx, s, "bad")
	assert.True(t, wzerrors.Is(err, wzerrors.ErrCodeInvalidFormat))

	require.NoError(t, s.Save(ctx, "future", []byte(`{"version":99}`)))
	_, _, err = LoadGraph(ctx, s, "future")
	assert.True(t, wzerrors.Is(err, wzerrors.ErrCodeUnsupported))
}

package artifactstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyBackend struct {
	failures int
	err      error
	content  map[string]string
	calls    []string
}

func (b *flakyBackend) Open(_ context.Context, loc Location) (io.ReadCloser, error) {
	b.calls = append(b.calls, loc.String())
	if b.failures > 0 {
		b.failures--
		return nil, b.err
	}
	body, ok := b.content[loc.Key]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func newTestStore(t *testing.T, retries int) *Store {
	t.Helper()
	s, err := New(Config{Retries: retries, RetryBase: time.Millisecond}, nil)
	require.NoError(t, err)
	return s
}

func TestFetchRetriesTransientErrors(t *testing.T) {
	s := newTestStore(t, 3)
	backend := &flakyBackend{
		failures: 2,
		err:      errors.New("connection reset"),
		content:  map[string]string{"models/schema.json": `{"version":1}`},
	}
	s.Register(SchemeS3, backend)

	dst := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, s.Fetch(context.Background(), "s3://bucket/models/schema.json", dst))
	assert.Len(t, backend.calls, 3)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(data))
	_, err = os.Stat(dst + ".tmp")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFetchGivesUpAfterRetries(t *testing.T) {
	s := newTestStore(t, 1)
	backend := &flakyBackend{failures: 5, err: errors.New("timeout")}
	s.Register(SchemeS3, backend)

	err := s.Fetch(context.Background(), "s3://bucket/x", filepath.Join(t.TempDir(), "x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
	assert.Len(t, backend.calls, 2)
}

func TestFetchDoesNotRetryNotFound(t *testing.T) {
	s := newTestStore(t, 5)
	backend := &flakyBackend{content: map[string]string{}}
	s.Register(SchemeAzBlob, backend)

	err := s.Fetch(context.Background(), "azblob://c/missing.json", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, backend.calls, 1)
}

func TestFetchUnconfiguredAzure(t *testing.T) {
	s := newTestStore(t, 0)
	err := s.Fetch(context.Background(), "azblob://c/blob", filepath.Join(t.TempDir(), "blob"))
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestFetchFileBackend(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "scaler.json"), []byte("{}"), 0o644))
	s := newTestStore(t, 2)

	dst := filepath.Join(t.TempDir(), "nested", "scaler.json")
	require.NoError(t, s.Fetch(context.Background(), filepath.Join(src, "scaler.json"), dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	err = s.Fetch(context.Background(), filepath.Join(src, "nope.json"), dst)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchAll(t *testing.T) {
	s := newTestStore(t, 0)
	backend := &flakyBackend{content: map[string]string{
		"v3/schema.json":  "schema",
		"v3/product.onnx": "onnx",
	}}
	s.Register(SchemeS3, backend)

	dir := t.TempDir()
	require.NoError(t, s.FetchAll(context.Background(), "s3://bucket/v3", []string{"schema.json", "", "product.onnx"}, dir))
	assert.Equal(t, []string{"s3://bucket/v3/schema.json", "s3://bucket/v3/product.onnx"}, backend.calls)

	data, err := os.ReadFile(filepath.Join(dir, "product.onnx"))
	require.NoError(t, err)
	assert.Equal(t, "onnx", string(data))

	err = s.FetchAll(context.Background(), "s3://bucket/v3", []string{"scaler.json"}, dir)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchHonoursCancellation(t *testing.T) {
	s := newTestStore(t, 10)
	s.Register(SchemeS3, &flakyBackend{failures: 100, err: errors.New("slow down")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Fetch(ctx, "s3://bucket/x", filepath.Join(t.TempDir(), "x"))
	assert.Error(t, err)
}

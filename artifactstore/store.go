// Package artifactstore downloads trained model artifacts from local paths,
// Amazon S3 or Azure Blob Storage with retries on transient failures.
package artifactstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-retry"
)

// Config configures the remote backends and retry policy.
type Config struct {
	Region                string
	AzureConnectionString string
	Retries               int
	RetryBase             time.Duration
}

// Store fetches artifacts by URI.
type Store struct {
	backends  map[string]Backend
	retries   uint64
	retryBase time.Duration
	logger    *slog.Logger
}

// New creates a store with file and s3 backends, plus azblob when a
// connection string is configured.
func New(cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = time.Second
	}
	s := &Store{
		backends: map[string]Backend{
			SchemeFile: fileBackend{},
			SchemeS3:   &s3Backend{region: cfg.Region},
		},
		retries:   uint64(cfg.Retries),
		retryBase: cfg.RetryBase,
		logger:    logger.With("system", "artifactstore"),
	}
	if cfg.AzureConnectionString != "" {
		az, err := newAzureBackend(cfg.AzureConnectionString)
		if err != nil {
			return nil, err
		}
		s.backends[SchemeAzBlob] = az
	}
	return s, nil
}

// Register installs or replaces the backend for scheme.
func (s *Store) Register(scheme string, b Backend) {
	s.backends[scheme] = b
}

// Fetch downloads uri to dst, replacing dst atomically. Transient failures
// are retried with Fibonacci backoff; not-found and access errors are not.
func (s *Store) Fetch(ctx context.Context, uri, dst string) error {
	loc, err := ParseLocation(uri)
	if err != nil {
		return err
	}
	return s.FetchLocation(ctx, loc, dst)
}

// FetchLocation is Fetch for an already parsed location.
func (s *Store) FetchLocation(ctx context.Context, loc Location, dst string) error {
	backend, ok := s.backends[loc.Scheme]
	if !ok {
		return fmt.Errorf("%w: %q has no configured backend", ErrUnsupportedScheme, loc.Scheme)
	}
	attempt := 0
	b := retry.WithMaxRetries(s.retries, retry.NewFibonacci(s.retryBase))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		err := s.download(ctx, backend, loc, dst)
		if err == nil || permanent(err) {
			return err
		}
		s.logger.Warn("artifact download failed", "location", loc.String(), "attempt", attempt, "error", err)
		return retry.RetryableError(err)
	})
	if err != nil {
		return fmt.Errorf("fetch %s: %w", loc, err)
	}
	s.logger.Info("artifact fetched", "location", loc.String(), "dst", dst, "attempts", attempt)
	return nil
}

// FetchAll downloads each name under source into dir.
func (s *Store) FetchAll(ctx context.Context, source string, names []string, dir string) error {
	base, err := ParseLocation(source)
	if err != nil {
		return err
	}
	for _, name := range names {
		if name == "" {
			continue
		}
		if err := s.FetchLocation(ctx, base.Child(name), filepath.Join(dir, filepath.Base(name))); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) download(ctx context.Context, backend Backend, loc Location, dst string) error {
	rc, err := backend.Open(ctx, loc)
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	tmp := dst + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("copy %s: %w", loc, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp artifact: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename artifact: %w", err)
	}
	return nil
}

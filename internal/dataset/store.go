package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// Write stores recs at path as a gzip-compressed JSON array. The file is
// replaced atomically.
func Write(path string, recs []*Record) (err error) {
	if recs == nil {
		recs = []*Record{}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating dataset file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	zw := gzip.NewWriter(tmp)
	if err := json.NewEncoder(zw).Encode(recs); err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compressing dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}
	return nil
}

// Read loads a dataset written by Write.
func Read(path string) ([]*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer zr.Close()

	var recs []*Record
	if err := json.NewDecoder(zr).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return recs, nil
}

// LoadOrBuild returns the dataset at path if it exists; otherwise it calls
// build and stores the result there. The boolean reports whether the
// dataset was loaded rather than built.
func LoadOrBuild(ctx context.Context, path string, build func(context.Context) ([]*Record, error), logger *slog.Logger) ([]*Record, bool, error) {
	if logger == nil {
		logger = slog.Default()
	}

	recs, err := Read(path)
	if err == nil {
		logger.Info("Loaded existing dataset", "path", path, "records", len(recs))
		return recs, true, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, err
	}

	recs, err = build(ctx)
	if err != nil {
		return nil, false, err
	}
	if err := Write(path, recs); err != nil {
		return nil, false, err
	}
	logger.Info("Saved dataset", "path", path, "records", len(recs))
	return recs, false, nil
}

// Package export writes compiled scene components to a directory on disk.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/framecraft/framecraft/internal/codegen"
)

const (
	maxStemLen = 120
	// DefaultConcurrency bounds the compile and write workers.
	DefaultConcurrency = 4
)

// WriteSources compiles and writes every source into dir as
// <NN>_<Name>.tsx, numbered by slice position. Files are written
// concurrently; on the first failure the remaining work is abandoned and the
// error is returned. The result is in slice order.
func WriteSources(ctx context.Context, dir string, sources []Source, concurrency int) ([]WrittenFile, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	written := make([]WrittenFile, len(sources))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)

	for i, src := range sources {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}

			code := src.Code
			if code == "" {
				if src.Definition == nil {
					return fmt.Errorf("scene %s has no definition", src.SceneID)
				}
				var err error
				if code, err = codegen.Compile(src.Definition); err != nil {
					return fmt.Errorf("compile scene %s: %w", src.SceneID, err)
				}
			}

			path := filepath.Join(dir, FileName(i, src.Name))
			if err := writeFileAtomic(path, []byte(code)); err != nil {
				return fmt.Errorf("write scene %s: %w", src.SceneID, err)
			}
			written[i] = WrittenFile{SceneID: src.SceneID, Path: path, Bytes: len(code)}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return written, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.tsx")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

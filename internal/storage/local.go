package storage

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Local stores objects as files under a root directory.
type Local struct {
	root string
}

// NewLocal creates a store rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{root: dir}
}

func (l *Local) path(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

func (l *Local) Describe(key string) string { return l.path(key) }

func (l *Local) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(ErrNotFound, "read %s", key)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", key)
	}
	return data, nil
}

func (l *Local) Put(ctx context.Context, key string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := l.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return errors.Wrapf(err, "create folder for %s", key)
	}
	// Write next to the target and rename so readers never see a partial file.
	tmp, err := os.CreateTemp(filepath.Dir(p), ".wbops-*")
	if err != nil {
		return errors.Wrapf(err, "write %s", key)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write %s", key)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write %s", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "write %s", key)
	}
	return errors.Wrapf(os.Rename(tmp.Name(), p), "write %s", key)
}

func (l *Local) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	start := l.root
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		start = l.path(prefix[:i])
	}
	err := filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".wbops-") {
			return nil
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", prefix)
	}
	sort.Strings(keys)
	return keys, nil
}

func (l *Local) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(l.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(ErrNotFound, "delete %s", key)
	}
	return errors.Wrapf(err, "delete %s", key)
}

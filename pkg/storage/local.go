package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/JaimeStill/inquest/pkg/lifecycle"
)

type local struct {
	fs     afero.Fs
	root   string
	logger *slog.Logger
}

// NewLocal stores blobs as files under root on the OS filesystem.
func NewLocal(root string, logger *slog.Logger) System {
	return NewFs(afero.NewBasePathFs(afero.NewOsFs(), root), root, logger)
}

// NewFs stores blobs in an arbitrary afero filesystem. root is used for logging only.
func NewFs(fsys afero.Fs, root string, logger *slog.Logger) System {
	return &local{fs: fsys, root: root, logger: logger}
}

func (l *local) Backend() string { return BackendLocal }

func (l *local) Start(lc *lifecycle.Coordinator) error {
	l.logger.Info("starting storage system", "directory", l.root)

	lc.OnStartup(func() {
		if err := l.fs.MkdirAll("/", 0o755); err != nil {
			l.logger.Error("storage directory initialization failed", "error", err)
			return
		}
		l.logger.Info("storage directory ready", "directory", l.root)
	})

	return nil
}

func (l *local) Upload(ctx context.Context, key string, reader io.Reader, _ string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	name := filepath.FromSlash(key)
	if err := l.fs.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", key, err)
	}

	if err := afero.WriteReader(l.fs, name, reader); err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	return nil
}

func (l *local) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := l.fs.Open(filepath.FromSlash(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open blob %s: %w", key, err)
	}
	return f, nil
}

func (l *local) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := l.fs.Remove(filepath.FromSlash(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

func (l *local) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	ok, err := afero.Exists(l.fs, filepath.FromSlash(key))
	if err != nil {
		return false, fmt.Errorf("check blob existence %s: %w", key, err)
	}
	return ok, nil
}

package prompts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const templateExt = ".txt"

// Resolver loads user prompt templates from <dir>/<stage>.txt, falling
// back to the built-in template for a stage without a file. Loaded
// templates are cached until invalidated.
type Resolver struct {
	dir    string
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[Stage]string
}

// NewResolver creates a Resolver. An empty dir serves built-in templates only.
func NewResolver(dir string, logger *slog.Logger) *Resolver {
	return &Resolver{
		dir:    dir,
		logger: logger.With("system", "prompt-templates"),
		cache:  make(map[Stage]string),
	}
}

// Template returns the raw template for stage.
func (r *Resolver) Template(stage Stage) (string, error) {
	def, ok := templates[stage]
	if !ok {
		return "", ErrInvalidStage
	}

	r.mu.RLock()
	text, cached := r.cache[stage]
	r.mu.RUnlock()
	if cached {
		return text, nil
	}

	text = def
	if r.dir != "" {
		path := filepath.Join(r.dir, string(stage)+templateExt)
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			text = string(data)
		case errors.Is(err, fs.ErrNotExist):
			r.logger.Debug("template file not found, using built-in", "path", path)
		default:
			return "", fmt.Errorf("read template %s: %w", path, err)
		}
	}

	r.mu.Lock()
	r.cache[stage] = text
	r.mu.Unlock()
	return text, nil
}

// Render substitutes each {name} placeholder with vars[name]. Placeholders
// without a value are left in place.
func (r *Resolver) Render(stage Stage, vars map[string]string) (string, error) {
	text, err := r.Template(stage)
	if err != nil {
		return "", err
	}

	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(text), nil
}

// Invalidate drops the cached template for stage.
func (r *Resolver) Invalidate(stage Stage) {
	r.mu.Lock()
	delete(r.cache, stage)
	r.mu.Unlock()
}

// Watch invalidates cached templates as their files change until ctx is
// done.
func (r *Resolver) Watch(ctx context.Context) error {
	if r.dir == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create template watcher: %w", err)
	}
	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", r.dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				name := filepath.Base(ev.Name)
				if filepath.Ext(name) != templateExt {
					continue
				}
				stage := Stage(strings.TrimSuffix(name, templateExt))
				r.Invalidate(stage)
				r.logger.Info("template changed", "stage", stage, "op", ev.Op.String())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				r.logger.Warn("template watcher error", "error", err)
			}
		}
	}()

	r.logger.Info("watching templates", "dir", r.dir)
	return nil
}

// Version tags base with each override name, e.g. 1.0.0+terse-classify.
func Version(base string, overrides ...string) string {
	var b strings.Builder
	b.WriteString(base)
	for _, name := range overrides {
		if name == "" {
			continue
		}
		b.WriteString("+")
		b.WriteString(name)
	}
	return b.String()
}

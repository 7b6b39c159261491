// Package rulewatcher loads the pipeline rules file and hot-reloads it on
// change, publishing fresh rule sets through a usecases.RuleSource.
// Clean Architecture: Adapter around fsnotify; the domain only ever sees
// immutable Rules values.
package rulewatcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/asila/asila/internal/domain/usecases"
)

// LoadFile parses a rules file. Fields left empty in the file keep their
// built-in defaults so a partial file cannot disable the safety filter or
// the tenant fallback.
func LoadFile(path string) (*usecases.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	var loaded usecases.Rules
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}

	rules := usecases.DefaultRules()
	if len(loaded.Departments) > 0 {
		rules.Departments = loaded.Departments
	}
	if len(loaded.TenantByDepartment) > 0 {
		rules.TenantByDepartment = loaded.TenantByDepartment
	}
	if loaded.DefaultTenantID != "" {
		rules.DefaultTenantID = loaded.DefaultTenantID
	}
	if len(loaded.ForbiddenPhrases) > 0 {
		rules.ForbiddenPhrases = loaded.ForbiddenPhrases
	}
	if loaded.RefusalMessage != "" {
		rules.RefusalMessage = loaded.RefusalMessage
	}
	return rules, nil
}

// Watcher re-reads the rules file whenever it changes.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	source  *usecases.RuleSource
}

// New creates a watcher for the rules file at path, publishing reloads
// into source. The containing directory is watched so editors that
// replace the file (rename + create) are still picked up.
func New(path string, source *usecases.RuleSource) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	return &Watcher{watcher: w, path: path, source: source}, nil
}

// Watch blocks until ctx is done, reloading the rules file on every write
// or create event for it. A file that fails to parse leaves the previous
// rules in effect.
func (w *Watcher) Watch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			rules, err := LoadFile(w.path)
			if err != nil {
				log.Printf("[WARN] rules reload failed, keeping previous rules: %v", err)
				continue
			}
			w.source.Update(rules)
			log.Printf("[INFO] rules reloaded from %s", w.path)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[WARN] rules watcher error: %v", err)
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

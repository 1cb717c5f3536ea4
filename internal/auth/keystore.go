// Package auth provides API key storage and validation.
//
// Keys are loaded from a text file (one key per line) or from the
// comma-separated MWPRIORITY_API_KEYS environment variable. Lines starting
// with # are comments; blank lines are ignored. File-backed stores can be
// reloaded in place, either on demand or by watching the file.
package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// EnvKeys names the environment variable that overrides the keys file.
const EnvKeys = "MWPRIORITY_API_KEYS"

// ErrInvalidKey is returned when an API key is not recognized.
var ErrInvalidKey = errors.New("invalid api key")

// ErrNotReloadable is returned by Reload and Watch for stores built from
// the environment.
var ErrNotReloadable = errors.New("key store is not file-backed")

// KeyStore validates API keys against a set of known keys.
type KeyStore struct {
	mu   sync.RWMutex
	keys map[string]struct{}
	path string // empty when keys came from the environment
}

// NewKeyStore creates a KeyStore and loads keys from the given file path.
// MWPRIORITY_API_KEYS, when set, takes precedence over the file.
func NewKeyStore(path string) (*KeyStore, error) {
	if env := os.Getenv(EnvKeys); env != "" {
		keys := make(map[string]struct{})
		for _, k := range strings.Split(env, ",") {
			if key := strings.TrimSpace(k); key != "" {
				keys[key] = struct{}{}
			}
		}
		if len(keys) == 0 {
			return nil, fmt.Errorf("%s is set but contains no valid keys", EnvKeys)
		}
		return &KeyStore{keys: keys}, nil
	}

	if path == "" {
		return nil, fmt.Errorf("no keys file path provided and %s is not set", EnvKeys)
	}

	ks := &KeyStore{path: path}
	if err := ks.Reload(); err != nil {
		return nil, err
	}
	return ks, nil
}

// Validate checks whether the given key is authorized.
func (ks *KeyStore) Validate(key string) error {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	if _, ok := ks.keys[key]; !ok {
		return ErrInvalidKey
	}
	return nil
}

// Count returns the number of loaded keys.
func (ks *KeyStore) Count() int {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return len(ks.keys)
}

// Reload re-reads the keys file. On error the current keys stay in effect.
func (ks *KeyStore) Reload() error {
	if ks.path == "" {
		return ErrNotReloadable
	}

	keys, err := readKeysFile(ks.path)
	if err != nil {
		return fmt.Errorf("load keys file: %w", err)
	}
	if len(keys) == 0 {
		return fmt.Errorf("keys file %q contains no valid keys", ks.path)
	}

	ks.mu.Lock()
	ks.keys = keys
	ks.mu.Unlock()
	return nil
}

// Watch reloads the store whenever its keys file is written or replaced,
// until ctx is done. It watches the parent directory so editors that save
// via rename are picked up. Failed reloads are logged and the previous keys
// kept.
func (ks *KeyStore) Watch(ctx context.Context, logger *slog.Logger) error {
	if ks.path == "" {
		return ErrNotReloadable
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create keys watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(ks.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch keys file: %w", err)
	}

	go func() {
		defer func() { _ = watcher.Close() }()
		target := filepath.Clean(ks.path)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := ks.Reload(); err != nil {
					logger.Warn("api keys reload failed", "path", ks.path, "err", err)
					continue
				}
				logger.Info("api keys reloaded", "path", ks.path, "count", ks.Count())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("api keys watcher error", "err", err)
			}
		}
	}()
	return nil
}

// readKeysFile reads keys from a text file, one per line.
func readKeysFile(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	keys := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keys[line] = struct{}{}
	}
	return keys, scanner.Err()
}

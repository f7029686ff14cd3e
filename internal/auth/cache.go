package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// FileCache persists a [TokenSet] as a JSON file on local disk.
//
// Absence or corruption of the file is never fatal: Load degrades to "no cached token".
// Single local-process usage is assumed, so no file locking is performed.
type FileCache struct {
	path   string
	logger *log.Logger
}

// NewFileCache creates a FileCache writing to the given path.
func NewFileCache(path string, logger *log.Logger) *FileCache {
	return &FileCache{path: path, logger: logger}
}

// DefaultCachePath returns the default token cache location (~/.sptx/tokens.json).
func DefaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".sptx", "tokens.json")
	}
	return filepath.Join(home, ".sptx", "tokens.json")
}

// Path returns the cache file location.
func (c *FileCache) Path() string {
	return c.path
}

// Load reads the cached TokenSet from disk.
//
// Returns (nil, nil) when the file is absent or unreadable; corruption is logged at warn level and treated as absence.
func (c *FileCache) Load() (*TokenSet, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) && c.logger != nil {
			c.logger.Warnf("failed to read token cache: %v", err)
		}
		return nil, nil
	}

	var tokens TokenSet
	if err := json.Unmarshal(data, &tokens); err != nil {
		if c.logger != nil {
			c.logger.Warnf("corrupt token cache, ignoring: %v", err)
		}
		return nil, nil
	}

	return &tokens, nil
}

// Save writes the TokenSet to disk, creating the parent directory if needed.
//
// The directory is created 0700 and the file written 0600: tokens are secrets.
func (c *FileCache) Save(tokens *TokenSet) error {
	if tokens == nil || tokens.AccessToken == "" {
		return fmt.Errorf("refusing to cache empty token set")
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token cache directory: %w", err)
		}
	}

	data, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("failed to marshal token set: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}

	return nil
}

// Clear removes the cache file. Removing an absent file is not an error.
func (c *FileCache) Clear() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear token cache: %w", err)
	}
	return nil
}

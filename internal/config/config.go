// Package config holds the calculator's settings as a JSON document
// addressed by dotted paths such as "calculator.maxHistorySize".
package config

import (
	"bytes"
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
	"github.com/natefinch/atomic"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/zephyrtronium/calculator"
)

// DefaultMaxHistorySize is the history cap used when the configuration
// doesn't name a valid one.
const DefaultMaxHistorySize = 50

// DefaultJSON is the document written when no configuration file exists.
const DefaultJSON = `{
  "calculator": {
    "maxHistorySize": 50,
    "defaultTheme": "Light",
    "soundEnabled": true,
    "animationsEnabled": true,
    "historyBackend": "json",
    "logLevel": "info"
  },
  "shortcuts": {
    "clear": "C",
    "equals": "Enter",
    "backspace": "Backspace",
    "square_root": "R"
  },
  "errors": {
    "divisionByZero": "Cannot divide by zero",
    "invalidInput": "Invalid input",
    "expressionParseError": "Invalid expression",
    "invalidOperation": "Invalid operation"
  }
}
`

// Config is a JSON settings document, optionally backed by a file. It is
// safe for concurrent use.
type Config struct {
	mu   sync.RWMutex
	path string
	doc  string
	log  *slog.Logger
}

// Default returns the default configuration without a backing file.
func Default() *Config {
	return &Config{doc: DefaultJSON, log: slog.Default()}
}

// Load reads the configuration at path. If the file doesn't exist, the
// defaults are written there. If it can't be read or isn't valid JSON, the
// defaults are used in memory and the problem is logged; the file is left
// alone. A nil logger uses slog.Default.
func Load(path string, log *slog.Logger) (*Config, error) {
	if log == nil {
		log = slog.Default()
	}
	if path == "" {
		return nil, errors.New("config: empty path")
	}
	c := &Config{path: path, doc: DefaultJSON, log: log}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Info("writing default configuration", slog.String("path", path))
		if err := c.Save(); err != nil {
			log.Warn("couldn't save default configuration", slog.String("path", path), slog.Any("err", err))
		}
	case err != nil:
		log.Warn("couldn't read configuration, using defaults", slog.String("path", path), slog.Any("err", err))
	case !gjson.ValidBytes(b):
		log.Warn("configuration is not valid JSON, using defaults", slog.String("path", path))
	default:
		c.doc = string(b)
	}
	return c, nil
}

// DefaultPath returns the conventional location of the configuration file.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "calculator", "config.json")
}

// StateDir returns the directory for data the calculator accumulates, such
// as its history.
func StateDir() string {
	if dir := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); dir != "" {
		return filepath.Join(dir, "calculator")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "calculator")
	}
	return filepath.Join(home, ".local", "state", "calculator")
}

// Path returns the file backing c, or the empty string if there is none.
func (c *Config) Path() string {
	return c.path
}

// Get looks up a dotted path.
func (c *Config) Get(path string) gjson.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return gjson.Get(c.doc, path)
}

// JSON returns the whole document.
func (c *Config) JSON() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.doc
}

// Set sets a dotted path to a value, creating intermediate objects as
// needed, and saves the document if c has a backing file.
func (c *Config) Set(path string, value interface{}) error {
	return c.update(func(doc string) (string, error) {
		return sjson.Set(doc, path, value)
	})
}

// SetRaw is like Set, but value is raw JSON.
func (c *Config) SetRaw(path, value string) error {
	if !gjson.Valid(value) {
		return fmt.Errorf("config: value for %s is not valid JSON: %q", path, value)
	}
	return c.update(func(doc string) (string, error) {
		return sjson.SetRaw(doc, path, value)
	})
}

func (c *Config) update(f func(string) (string, error)) error {
	c.mu.Lock()
	doc, err := f(c.doc)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("config: %w", err)
	}
	c.doc = doc
	c.mu.Unlock()
	if c.path == "" {
		return nil
	}
	return c.Save()
}

// Save writes the document to the backing file atomically.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("config: no file to save to")
	}
	c.mu.RLock()
	b := pretty.Pretty([]byte(c.doc))
	c.mu.RUnlock()
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("config: couldn't create directory: %w", err)
	}
	if err := atomic.WriteFile(c.path, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("config: couldn't save %s: %w", c.path, err)
	}
	return nil
}

// Reload reads the backing file again. If the file is not valid JSON, the
// current document is kept and an error is returned.
func (c *Config) Reload() error {
	if c.path == "" {
		return errors.New("config: no file to reload from")
	}
	b, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("config: couldn't reload: %w", err)
	}
	if !gjson.ValidBytes(b) {
		return fmt.Errorf("config: %s is not valid JSON", c.path)
	}
	c.mu.Lock()
	c.doc = string(b)
	c.mu.Unlock()
	return nil
}

// MaxHistorySize returns calculator.maxHistorySize, or
// DefaultMaxHistorySize if it is missing or not a number.
func (c *Config) MaxHistorySize() int {
	r := c.Get("calculator.maxHistorySize")
	if r.Type != gjson.Number {
		return DefaultMaxHistorySize
	}
	return int(r.Int())
}

// HistoryBackend returns calculator.historyBackend, defaulting to "json".
func (c *Config) HistoryBackend() string {
	r := c.Get("calculator.historyBackend")
	if r.Type != gjson.String || r.Str == "" {
		return "json"
	}
	return r.Str
}

// LogLevel returns calculator.logLevel, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Get("calculator.logLevel").String())); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Message returns the configured text for an error kind, from
// errors.<key>. It implements calculator.Messages.
func (c *Config) Message(k calculator.Kind) string {
	key := k.Key()
	if key == "" {
		return ""
	}
	return c.Get("errors." + key).String()
}

var _ calculator.Messages = (*Config)(nil)

// Watch reloads the configuration whenever its file changes and calls
// onChange after each successful reload. It blocks until ctx is done.
func (c *Config) Watch(ctx context.Context, onChange func(*Config)) error {
	if c.path == "" {
		return errors.New("config: no file to watch")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: couldn't create watcher: %w", err)
	}
	defer w.Close()
	// Watch the directory; atomic saves replace the file itself.
	if err := w.Add(filepath.Dir(c.path)); err != nil {
		return fmt.Errorf("config: couldn't watch %s: %w", c.path, err)
	}
	want := filepath.Clean(c.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != want || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := c.Reload(); err != nil {
				c.log.Warn("couldn't reload configuration", slog.Any("err", err))
				continue
			}
			c.log.Debug("configuration reloaded", slog.String("path", c.path))
			if onChange != nil {
				onChange(c)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.log.Error("configuration watcher error", slog.Any("err", err))
		}
	}
}

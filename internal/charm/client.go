// ABOUTME: Charm KV client wrapper for BMI measurement history.
// ABOUTME: Provides thread-safe initialization and automatic cloud sync.
package charm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
)

const (
	DBName    = "bmi"
	charmHost = "charm.2389.dev"

	AdultPrefix = "adult:"
	MinorPrefix = "minor:"
)

// errReadOnly is returned for writes while another process holds the lock.
var errReadOnly = errors.New("cannot write: database is locked by another process (MCP server?)")

// Store is the subset of the Charm KV API the client relies on.
type Store interface {
	Set(key, value []byte) error
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	IsReadOnly() bool
	Close() error
}

var (
	globalClient *Client
	clientOnce   sync.Once
	clientErr    error
)

// Client is the Charm KV backed Repository.
type Client struct {
	kv       Store
	autoSync bool
	mu       sync.RWMutex
}

// InitClient initializes the global Charm client.
// Thread-safe; can be called multiple times.
func InitClient() (*Client, error) {
	clientOnce.Do(func() {
		if os.Getenv("CHARM_HOST") == "" {
			if err := os.Setenv("CHARM_HOST", charmHost); err != nil {
				clientErr = err
				return
			}
		}

		db, err := kv.OpenWithDefaultsFallback(DBName)
		if err != nil {
			clientErr = err
			return
		}

		globalClient = NewClient(db, true)

		// Pull remote data on startup (skip in read-only mode)
		if !db.IsReadOnly() {
			_ = db.Sync()
		}
	})

	return globalClient, clientErr
}

// NewClient wraps an open store. With autoSync set, every write is followed
// by a sync.
func NewClient(store Store, autoSync bool) *Client {
	return &Client{kv: store, autoSync: autoSync}
}

// Close closes the KV database connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

// IsReadOnly returns true if the database is open in read-only mode.
func (c *Client) IsReadOnly() bool {
	return c.kv.IsReadOnly()
}

// Sync synchronizes local state with Charm Cloud.
func (c *Client) Sync() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.kv.IsReadOnly() {
		return nil
	}
	return c.kv.Sync()
}

func (c *Client) syncIfEnabled() {
	if c.autoSync && !c.kv.IsReadOnly() {
		_ = c.kv.Sync()
	}
}

// SetAutoSync enables or disables automatic sync after writes.
func (c *Client) SetAutoSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoSync = enabled
}

// ID returns the Charm user ID for the current account.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

func (c *Client) set(key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return errReadOnly
	}

	if err := c.kv.Set([]byte(key), data); err != nil {
		return err
	}
	c.syncIfEnabled()
	return nil
}

// keysWithPrefix returns every key starting with prefix. Caller holds mu.
func (c *Client) keysWithPrefix(prefix string) ([][]byte, error) {
	keys, err := c.kv.Keys()
	if err != nil {
		return nil, err
	}

	var out [][]byte
	p := []byte(prefix)
	for _, key := range keys {
		if bytes.HasPrefix(key, p) {
			out = append(out, key)
		}
	}
	return out, nil
}

// listByPrefix returns all values with keys matching the given prefix.
func (c *Client) listByPrefix(prefix string) ([][]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys, err := c.keysWithPrefix(prefix)
	if err != nil {
		return nil, err
	}

	results := make([][]byte, 0, len(keys))
	for _, key := range keys {
		val, err := c.kv.Get(key)
		if err != nil {
			return nil, err
		}
		results = append(results, val)
	}
	return results, nil
}

// deletePrefixes removes every key under any of the given prefixes.
func (c *Client) deletePrefixes(prefixes ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return errReadOnly
	}

	for _, prefix := range prefixes {
		keys, err := c.keysWithPrefix(prefix)
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := c.kv.Delete(key); err != nil {
				return err
			}
		}
	}
	c.syncIfEnabled()
	return nil
}

// deleteKey removes a single key.
func (c *Client) deleteKey(key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return errReadOnly
	}

	if err := c.kv.Delete(key); err != nil {
		return err
	}
	c.syncIfEnabled()
	return nil
}

func unmarshalJSON[T any](data []byte) (*T, error) {
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

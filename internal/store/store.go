// Package store provides a small file-backed key-value database.
// The whole document is held in memory and written back on every change.
package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Driver loads and saves the whole document of a Database.
type Driver interface {
	// Load returns the stored document. A missing file yields an empty document.
	Load() (map[string]interface{}, error)
	// Save replaces the stored document.
	Save(data map[string]interface{}) error
}

// Database is a key-value store persisted through a Driver.
// It is safe for concurrent use.
type Database struct {
	mu     sync.RWMutex
	driver Driver
	data   map[string]interface{}
}

// Open loads the document behind driver.
func Open(driver Driver) (*Database, error) {
	data, err := driver.Load()
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]interface{}{}
	}

	return &Database{
		driver: driver,
		data:   data,
	}, nil
}

// Get returns the value stored under key.
func (db *Database) Get(key string) (interface{}, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	v, ok := db.data[key]
	return v, ok
}

// GetString returns the string stored under key.
func (db *Database) GetString(key string) (string, error) {
	v, ok := db.Get(key)
	if !ok {
		return "", fmt.Errorf("%s: %w", key, ErrNotFound)
	}

	switch s := v.(type) {
	case string:
		return s, nil
	case fmt.Stringer:
		return s.String(), nil
	default:
		return "", fmt.Errorf("%s is %T: %w", key, v, ErrType)
	}
}

// GetStrings returns the list of strings stored under key.
// Numbers in the list are formatted, which keeps unquoted snowflake IDs usable.
// A missing key yields an empty list.
func (db *Database) GetStrings(key string) ([]string, error) {
	v, ok := db.Get(key)
	if !ok {
		return nil, nil
	}

	list, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s is %T: %w", key, v, ErrType)
	}

	strs := make([]string, 0, len(list))
	for _, item := range list {
		switch s := item.(type) {
		case string:
			strs = append(strs, s)
		case json.Number:
			strs = append(strs, s.String())
		case int, int64, uint64:
			strs = append(strs, fmt.Sprintf("%d", s))
		case float64:
			strs = append(strs, fmt.Sprintf("%.0f", s))
		default:
			return nil, fmt.Errorf("%s contains %T: %w", key, item, ErrType)
		}
	}
	return strs, nil
}

// Has reports whether key is set.
func (db *Database) Has(key string) bool {
	_, ok := db.Get(key)
	return ok
}

// Set stores value under key and persists the document.
func (db *Database) Set(key string, value interface{}) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	prev, existed := db.data[key]
	db.data[key] = value
	if err := db.driver.Save(db.data); err != nil {
		if existed {
			db.data[key] = prev
		} else {
			delete(db.data, key)
		}
		return err
	}
	return nil
}

// Delete removes key and persists the document.
// Deleting a missing key is not an error.
func (db *Database) Delete(key string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	prev, existed := db.data[key]
	if !existed {
		return nil
	}
	delete(db.data, key)
	if err := db.driver.Save(db.data); err != nil {
		db.data[key] = prev
		return err
	}
	return nil
}

// Add increments the number stored under key by n and returns the new value.
// A missing key counts as zero.
func (db *Database) Add(key string, n float64) (float64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var current float64
	prev, existed := db.data[key]
	if existed {
		switch v := prev.(type) {
		case int:
			current = float64(v)
		case int64:
			current = float64(v)
		case float64:
			current = v
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return 0, fmt.Errorf("%s: %w", key, err)
			}
			current = f
		default:
			return 0, fmt.Errorf("%s is %T: %w", key, prev, ErrType)
		}
	}

	next := current + n
	db.data[key] = next
	if err := db.driver.Save(db.data); err != nil {
		if existed {
			db.data[key] = prev
		} else {
			delete(db.data, key)
		}
		return 0, err
	}
	return next, nil
}

// Entry is a key-value pair returned by All.
type Entry struct {
	Key   string
	Value interface{}
}

// All returns every entry sorted by key.
func (db *Database) All() []Entry {
	db.mu.RLock()
	defer db.mu.RUnlock()

	entries := make([]Entry, 0, len(db.data))
	for k, v := range db.data {
		entries = append(entries, Entry{Key: k, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return entries
}

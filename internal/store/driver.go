package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileDriver reads and writes a whole document with the given codec.
type fileDriver struct {
	path      string
	unmarshal func([]byte, *map[string]interface{}) error
	marshal   func(map[string]interface{}) ([]byte, error)
}

// NewYAMLDriver returns a Driver that keeps the document in a YAML file.
func NewYAMLDriver(path string) Driver {
	return &fileDriver{
		path: path,
		unmarshal: func(b []byte, data *map[string]interface{}) error {
			return yaml.Unmarshal(b, data)
		},
		marshal: func(data map[string]interface{}) ([]byte, error) {
			return yaml.Marshal(data)
		},
	}
}

// NewJSONDriver returns a Driver that keeps the document in a JSON file.
// Numbers are decoded as json.Number so that snowflake IDs keep their precision.
func NewJSONDriver(path string) Driver {
	return &fileDriver{
		path: path,
		unmarshal: func(b []byte, data *map[string]interface{}) error {
			dec := json.NewDecoder(bytes.NewReader(b))
			dec.UseNumber()
			return dec.Decode(data)
		},
		marshal: func(data map[string]interface{}) ([]byte, error) {
			return json.MarshalIndent(data, "", "  ")
		},
	}
}

func (d *fileDriver) Load() (map[string]interface{}, error) {
	b, err := os.ReadFile(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]interface{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", d.path, err)
	}

	data := map[string]interface{}{}
	if len(bytes.TrimSpace(b)) == 0 {
		return data, nil
	}
	if err := d.unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", d.path, err)
	}
	return data, nil
}

func (d *fileDriver) Save(data map[string]interface{}) error {
	b, err := d.marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", d.path, err)
	}

	if dir := filepath.Dir(d.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	// Write to a sibling file first so a crash never leaves a truncated document.
	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, d.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", d.path, err)
	}
	return nil
}

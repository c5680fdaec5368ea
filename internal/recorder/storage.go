package recorder

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MockRecord is the persisted outcome of one recorded provider run: the URL
// it was fed, the reviews it produced, and the HTTP traffic it generated.
type MockRecord struct {
	URL          string           `json:"url" yaml:"url"`
	Reviews      []map[string]any `json:"reviews" yaml:"reviews"`
	CapturedData []Exchange       `json:"captured_data" yaml:"captured_data"`
}

// MockStorage serializes mock records to disk. Paths are passed without an
// extension; the storage appends its own.
type MockStorage interface {
	Save(path string, record *MockRecord) error
	// Load returns nil without error when no record exists at path.
	Load(path string) (*MockRecord, error)
	Ext() string
}

// StorageFor maps a format name to a storage backend. The empty string
// selects YAML.
func StorageFor(format string) (MockStorage, error) {
	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		return YAMLStorage{}, nil
	case "json":
		return JSONStorage{}, nil
	default:
		return nil, fmt.Errorf("unknown mock format %q", format)
	}
}

// YAMLStorage persists mock records as YAML documents.
type YAMLStorage struct{}

func (YAMLStorage) Ext() string { return ".yaml" }

func (YAMLStorage) Save(path string, record *MockRecord) error {
	data, err := yaml.Marshal(record)
	if err != nil {
		return err
	}
	return os.WriteFile(path+".yaml", data, 0o644)
}

func (YAMLStorage) Load(path string) (*MockRecord, error) {
	data, err := os.ReadFile(path + ".yaml")
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var record MockRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parsing mock %s.yaml: %w", path, err)
	}
	return &record, nil
}

// JSONStorage persists mock records as indented JSON.
type JSONStorage struct{}

func (JSONStorage) Ext() string { return ".json" }

func (JSONStorage) Save(path string, record *MockRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path+".json", data, 0o644)
}

func (JSONStorage) Load(path string) (*MockRecord, error) {
	data, err := os.ReadFile(path + ".json")
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var record MockRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parsing mock %s.json: %w", path, err)
	}
	return &record, nil
}

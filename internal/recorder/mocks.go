package recorder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// MocksDirEnv overrides the default mock fixture directory.
	MocksDirEnv = "REVIEWS_MOCKS_DIR"

	// DefaultMocksDir is where mock records live relative to the working
	// directory.
	DefaultMocksDir = "mocks"
)

// URLType distinguishes fixtures recorded from a provider's test URLs from
// those recorded from its deliberately invalid URLs.
type URLType string

const (
	URLValid   URLType = "valid"
	URLInvalid URLType = "invalid"
)

// MockStore lays mock records out on disk as one directory per provider,
// with file names encoding the URL index and the mock index for that URL:
// valid fixtures as <provider>_<urlIdx>_<mockIdx> and invalid ones as
// <provider>_invalid_<urlIdx>_<mockIdx>.
type MockStore struct {
	dir     string
	storage MockStorage
}

// NewMockStore resolves the base directory from dir, then MocksDirEnv,
// then DefaultMocksDir. A nil storage selects YAML.
func NewMockStore(dir string, storage MockStorage) *MockStore {
	if dir == "" {
		dir = os.Getenv(MocksDirEnv)
	}
	if dir == "" {
		dir = DefaultMocksDir
	}
	if storage == nil {
		storage = YAMLStorage{}
	}
	return &MockStore{dir: dir, storage: storage}
}

// Dir returns the base mocks directory.
func (s *MockStore) Dir() string { return s.dir }

func (s *MockStore) path(providerName string, urlType URLType, urlIndex, mockIndex int) string {
	name := sanitizeName(providerName)
	file := fmt.Sprintf("%s_%d_%d", name, urlIndex, mockIndex)
	if urlType == URLInvalid {
		file = fmt.Sprintf("%s_invalid_%d_%d", name, urlIndex, mockIndex)
	}
	return filepath.Join(s.dir, name, file)
}

// Save writes a record and returns the path it was written under, without
// the storage extension.
func (s *MockStore) Save(providerName string, urlType URLType, urlIndex, mockIndex int, record *MockRecord) (string, error) {
	path := s.path(providerName, urlType, urlIndex, mockIndex)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := s.storage.Save(path, record); err != nil {
		return "", err
	}
	return path, nil
}

// Load reads a record back, returning nil without error when the fixture
// has not been recorded yet.
func (s *MockStore) Load(providerName string, urlType URLType, urlIndex, mockIndex int) (*MockRecord, error) {
	return s.storage.Load(s.path(providerName, urlType, urlIndex, mockIndex))
}

// ClearProvider removes every fixture recorded for a provider and reports
// how many files were deleted.
func (s *MockStore) ClearProvider(providerName string) (int, error) {
	name := sanitizeName(providerName)
	dir := filepath.Join(s.dir, name)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), name+"_") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// sanitizeName turns an arbitrary provider or test case name into a safe
// path component.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

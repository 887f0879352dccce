package riot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Credentials are the secrets needed to call the game services. All fields are
// opaque to this package.
type Credentials struct {
	ClientVersion     string `yaml:"client_version,omitempty"`
	Shard             string `yaml:"shard,omitempty"`
	SessionID         string `yaml:"session_id,omitempty"`
	AccessToken       string `yaml:"access_token,omitempty"`
	PlayerID          string `yaml:"player_id,omitempty"`
	EntitlementsToken string `yaml:"entitlements_token,omitempty"`
	ClientPlatform    string `yaml:"client_platform,omitempty"`
}

// CacheStore keeps one Credentials record in a YAML file.
type CacheStore struct {
	path string
}

func NewCacheStore(path string) *CacheStore {
	return &CacheStore{path: path}
}

func (s *CacheStore) Path() string {
	return s.path
}

// Load returns the cached record. A missing file is reported as not found
// rather than as an error; unknown keys are ignored.
func (s *CacheStore) Load() (Credentials, bool, error) {
	var creds Credentials

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return creds, false, nil
	}

	if err != nil {
		return creds, false, fmt.Errorf("read cache %s: %w", s.path, err)
	}

	if err := yaml.Unmarshal(data, &creds); err != nil {
		return Credentials{}, false, fmt.Errorf("decode cache %s: %w", s.path, err)
	}

	return creds, true, nil
}

func (s *CacheStore) Save(creds Credentials) error {
	data, err := yaml.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write cache %s: %w", s.path, err)
	}

	return nil
}

// Clear truncates the record to empty.
func (s *CacheStore) Clear() error {
	if err := os.WriteFile(s.path, nil, 0o600); err != nil {
		return fmt.Errorf("clear cache %s: %w", s.path, err)
	}

	return nil
}

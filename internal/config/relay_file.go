package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RelayFile is the YAML form of the relay settings.
type RelayFile struct {
	SMTPHost       string        `yaml:"smtp_host"`
	SMTPPort       int           `yaml:"smtp_port"`
	SMTPFrom       string        `yaml:"smtp_from"`
	SMTPUsername   string        `yaml:"smtp_username"`
	SMTPPassword   string        `yaml:"smtp_password"`
	SMTPEncryption string        `yaml:"smtp_encryption"`
	SMTPTimeout    time.Duration `yaml:"smtp_timeout"`
}

// LoadRelayFile reads the relay settings YAML at filePath. If the file does
// not exist, empty settings are returned (not an error).
func LoadRelayFile(filePath string) (*RelayFile, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // path is admin-configured
	if err != nil {
		if os.IsNotExist(err) {
			return &RelayFile{}, nil
		}
		return nil, fmt.Errorf("reading config file %q: %w", filePath, err)
	}

	var rf RelayFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing config file %q: %w", filePath, err)
	}
	return &rf, nil
}

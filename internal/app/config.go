package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"cryptocomm/internal/domain"
)

// ConfigFile is the name of the config file under the home directory.
const ConfigFile = "config.yaml"

// Config holds runtime wiring options for building the app.
type Config struct {
	Home           string           `yaml:"-"`                // config directory, e.g. $HOME/.cryptocomm
	NodeURL        string           `yaml:"node_url"`        // ledger node base URL
	NetworkID      domain.NetworkID `yaml:"network_id"`      // network the agent starts on
	DeploymentFile string           `yaml:"deployment_file"` // contract addresses; relative to Home
	Blob           BlobConfig       `yaml:"blob"`
	Log            LogConfig        `yaml:"log"`
	HTTP           HTTPConfig       `yaml:"http"`
}

// BlobConfig points at the attachment store.
type BlobConfig struct {
	UploadURL  string `yaml:"upload_url"`
	GatewayURL string `yaml:"gateway_url"`
	APIKey     string `yaml:"api_key"`
}

// LogConfig selects the zap level and encoding.
type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

// HTTPConfig tunes outbound requests.
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the configuration used when home has no config file.
func DefaultConfig(home string) Config {
	return Config{
		Home:           home,
		NodeURL:        "http://127.0.0.1:8545",
		NetworkID:      31337,
		DeploymentFile: "deployment.json",
		Blob: BlobConfig{
			UploadURL:  "https://node.lighthouse.storage/api/v0/add",
			GatewayURL: "https://gateway.lighthouse.storage",
		},
		Log:  LogConfig{Level: "warn", Encoding: "console"},
		HTTP: HTTPConfig{Timeout: 15 * time.Second},
	}
}

// LoadConfig reads <home>/config.yaml over the defaults. A missing file is
// not an error.
func LoadConfig(home string) (Config, error) {
	cfg := DefaultConfig(home)
	b, err := os.ReadFile(filepath.Join(home, ConfigFile))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", ConfigFile, err)
	}
	cfg.Home = home
	return cfg, nil
}

// SaveConfig writes cfg to <home>/config.yaml.
func SaveConfig(cfg Config) error {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cfg.Home, ConfigFile), b, 0o600)
}

// DeploymentPath resolves DeploymentFile against Home.
func (c Config) DeploymentPath() string {
	if filepath.IsAbs(c.DeploymentFile) {
		return c.DeploymentFile
	}
	return filepath.Join(c.Home, c.DeploymentFile)
}

package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file structure.
type FileConfig struct {
	ServerPort      string           `toml:"server_port"`
	LogLevel        string           `toml:"log_level"`
	EnableMetrics   *bool            `toml:"enable_metrics"`
	TrustProxy      *bool            `toml:"trust_proxy"`
	DBPath          string           `toml:"db_path"`
	ProviderTimeout string           `toml:"provider_timeout"`
	FallbackMode    string           `toml:"fallback_mode"`
	RateLimit       RateLimitFile    `toml:"rate_limit"`
	Redis           RedisFile        `toml:"redis"`
	Prompt          PromptFile       `toml:"prompt"`
	Providers       []ProviderConfig `toml:"providers"`
}

// RateLimitFile is the [rate_limit] table.
type RateLimitFile struct {
	Max     int    `toml:"max"`
	Window  string `toml:"window"`
	Backend string `toml:"backend"`
}

// RedisFile is the [redis] table.
type RedisFile struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// PromptFile is the [prompt] table.
type PromptFile struct {
	MinLength int `toml:"min_length"`
	MaxLength int `toml:"max_length"`
}

// ProviderConfig describes one entry of the generation chain.
// Entries are tried in the order they appear in the file.
type ProviderConfig struct {
	Name          string `toml:"name" validate:"required"`
	Kind          string `toml:"kind" validate:"required,oneof=huggingface openai fusionbrain"`
	URL           string `toml:"url" validate:"omitempty,url"`
	Model         string `toml:"model"`
	CredentialEnv string `toml:"credential_env" validate:"required"`
	SecretEnv     string `toml:"secret_env" validate:"required_if=Kind fusionbrain"`
	Timeout       string `toml:"timeout"`
}

// ConfigPath returns the path to the config file (~/.inkgate/config.toml).
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// LoadFile loads configuration from the TOML file.
// Returns an empty FileConfig if the file doesn't exist.
func LoadFile() (*FileConfig, error) {
	return loadFileAt(ConfigPath())
}

func loadFileAt(path string) (*FileConfig, error) {
	cfg := &FileConfig{}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EnsureConfigFile creates a default config file with commented examples if none exists.
func EnsureConfigFile() error {
	path := ConfigPath()

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := EnsureDataDir(); err != nil {
		return err
	}

	defaultConfig := `# Inkgate Configuration
# server_port = ":8080"
# log_level = "info"
# enable_metrics = true
# trust_proxy = false
# provider_timeout = "40s"
# fallback_mode = "icon"   # icon | random | sequence

# [rate_limit]
# max = 4
# window = "10m"
# backend = "memory"       # memory | redis

# [redis]
# addr = "localhost:6379"
# prefix = "inkgate:ratelimit:"

# [prompt]
# min_length = 5
# max_length = 300

# Generation chain, tried top to bottom. Credentials are read from the
# environment variable named in credential_env and never stored here.
# [[providers]]
# name = "SD v1-5"
# kind = "huggingface"
# url = "https://api-inference.huggingface.co/models/runwayml/stable-diffusion-v1-5"
# credential_env = "HUGGINGFACE_ACCESS_TOKEN"

# [[providers]]
# name = "DALL-E"
# kind = "openai"
# model = "dall-e-3"
# credential_env = "OPENAI_API_KEY"
# timeout = "60s"

# [[providers]]
# name = "Kandinsky"
# kind = "fusionbrain"
# credential_env = "FUSION_BRAIN_API_KEY"
# secret_env = "FUSION_BRAIN_SECRET_KEY"
`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}

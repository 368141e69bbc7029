package configloader

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"wallet_connector/internal/domain/entity"
)

// EnvironmentDevelopment enables console logs and ships every log level.
const EnvironmentDevelopment = "development"

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port               string   `yaml:"port"`
	CORSAllowedOrigins []string `yaml:"corsAllowedOrigins"`
}

// LogSinkConfig holds the remote log ingest configuration.
type LogSinkConfig struct {
	BaseURL              string `yaml:"baseURL"`
	APIKey               string `yaml:"apiKey"`
	Hostname             string `yaml:"hostname"`
	App                  string `yaml:"app"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level       string        `yaml:"level"`
	Environment string        `yaml:"environment"`
	Sink        LogSinkConfig `yaml:"sink"`
}

// WalletConnectConfig holds the sign client configuration.
type WalletConnectConfig struct {
	ProjectID     string             `yaml:"projectId"`
	RelayURL      string             `yaml:"relayURL"`
	BridgeURL     string             `yaml:"bridgeURL"`
	Origin        string             `yaml:"origin"`
	Metadata      entity.AppMetadata `yaml:"metadata"`
	DefaultChains []string           `yaml:"defaultChains"`
}

// RPCConfig holds the JSON-RPC balance client configuration.
type RPCConfig struct {
	BaseURL           string  `yaml:"baseURL"`
	TimeoutSeconds    int     `yaml:"timeoutSeconds"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
}

// KadenaConfig holds the chainweb API roots.
type KadenaConfig struct {
	MainnetAPIRoot string `yaml:"mainnetAPIRoot"`
	TestnetAPIRoot string `yaml:"testnetAPIRoot"`
}

// StorageConfig holds the local persisted state configuration.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Logging       LoggingConfig       `yaml:"logging"`
	WalletConnect WalletConnectConfig `yaml:"walletConnect"`
	RPC           RPCConfig           `yaml:"rpc"`
	Kadena        KadenaConfig        `yaml:"kadena"`
	Storage       StorageConfig       `yaml:"storage"`
}

// IsDevelopment reports whether the configured environment is development.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Logging.Environment, EnvironmentDevelopment)
}

// Load reads the YAML configuration file from the given path and unmarshals it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML configuration data and applies defaults and environment overrides.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if cfg.WalletConnect.ProjectID == "" {
		return nil, fmt.Errorf("walletConnect.projectId is required")
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Logging.Environment = v
	}
	if v := os.Getenv("LOGDNA_APIKEY"); v != "" {
		cfg.Logging.Sink.APIKey = v
	}
	if v := os.Getenv("WALLETCONNECT_PROJECT_ID"); v != "" {
		cfg.WalletConnect.ProjectID = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Environment == "" {
		cfg.Logging.Environment = "production"
	}
	if cfg.Logging.Sink.BaseURL == "" {
		cfg.Logging.Sink.BaseURL = "https://logs.logdna.com"
	}
	if cfg.Logging.Sink.App == "" {
		cfg.Logging.Sink.App = "crypto-ingress-iframe"
	}
	if cfg.Logging.Sink.Hostname == "" {
		if host, err := os.Hostname(); err == nil {
			cfg.Logging.Sink.Hostname = host
		}
	}
	if cfg.Logging.Sink.RequestTimeoutMillis <= 0 {
		cfg.Logging.Sink.RequestTimeoutMillis = 5000
	}

	if cfg.WalletConnect.RelayURL == "" {
		cfg.WalletConnect.RelayURL = "wss://relay.walletconnect.com"
	}
	if cfg.WalletConnect.BridgeURL == "" {
		cfg.WalletConnect.BridgeURL = "ws://127.0.0.1:8787/bridge"
	}
	if cfg.WalletConnect.Metadata.Name == "" {
		cfg.WalletConnect.Metadata = entity.AppMetadata{
			Name:        "Crypto Onramp",
			Description: "WalletConnect Onramp App",
			URL:         "https://walletconnect.com/",
			Icons:       []string{"https://avatars.githubusercontent.com/u/37784886"},
			VerifyURL:   "https://verify.walletconnect.com",
		}
	}
	if len(cfg.WalletConnect.DefaultChains) == 0 {
		cfg.WalletConnect.DefaultChains = []string{"eip155:1", "tron:0x2b6653dc"}
	}

	if cfg.RPC.BaseURL == "" {
		cfg.RPC.BaseURL = "https://rpc.walletconnect.com/v1"
	}
	if cfg.RPC.TimeoutSeconds <= 0 {
		cfg.RPC.TimeoutSeconds = 10
	}

	if cfg.Kadena.MainnetAPIRoot == "" {
		cfg.Kadena.MainnetAPIRoot = "https://api.chainweb.com"
	}
	if cfg.Kadena.TestnetAPIRoot == "" {
		cfg.Kadena.TestnetAPIRoot = "https://api.testnet.chainweb.com"
	}

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "data/state.db"
	}
}

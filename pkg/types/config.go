package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "portfolio-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// GatewayConfig holds settings for the hosted chat-completion service.
type GatewayConfig struct {
	HTTPConfig `yaml:",inline"`

	// Endpoint is the full chat-completions URL.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// APIKey is the bearer credential. Empty is a configuration error
	// reported on the first chat request, not at startup.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Model is the fixed model identifier (e.g. "google/gemini-2.5-flash").
	Model string `json:"model" yaml:"model"`

	// Temperature is the fixed sampling temperature. Nil takes the default;
	// 0 is a valid setting.
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
}

// ChatConfig holds settings for the chat proxy.
type ChatConfig struct {
	// MaxHistory is the number of most recent history messages forwarded
	// upstream (default 20).
	MaxHistory int `json:"max_history" yaml:"max_history"`

	// PublicationsCatalog names the catalog the general assistant describes.
	PublicationsCatalog string `json:"publications_catalog" yaml:"publications_catalog"`
}

// CatalogConfig holds settings for catalog loading.
type CatalogConfig struct {
	// Dir is a directory of *.yaml catalog files. Empty uses the embedded defaults.
	Dir string `json:"dir" yaml:"dir"`
}

// KnowledgeConfig holds settings for the knowledge source.
type KnowledgeConfig struct {
	// File is a YAML knowledge file. Empty uses the embedded defaults.
	File string `json:"file" yaml:"file"`

	// DBPath is an optional SQLite database. When set, lookups go to the store.
	DBPath string `json:"db_path" yaml:"db_path"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`

	// AllowedHeaders is the CORS Access-Control-Allow-Headers value.
	AllowedHeaders string `json:"allowed_headers" yaml:"allowed_headers"`
}

// AppConfig groups all component configurations.
type AppConfig struct {
	Server    ServerConfig    `json:"server" yaml:"server"`
	Gateway   GatewayConfig   `json:"gateway" yaml:"gateway"`
	Chat      ChatConfig      `json:"chat" yaml:"chat"`
	Catalog   CatalogConfig   `json:"catalog" yaml:"catalog"`
	Knowledge KnowledgeConfig `json:"knowledge" yaml:"knowledge"`
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/portfolio-engine/internal/catalog"
	"github.com/pdiddy/portfolio-engine/internal/chat"
	"github.com/pdiddy/portfolio-engine/internal/content"
	"github.com/pdiddy/portfolio-engine/internal/gateway"
	"github.com/pdiddy/portfolio-engine/internal/httputil"
	"github.com/pdiddy/portfolio-engine/internal/knowledge"
	"github.com/pdiddy/portfolio-engine/internal/prompt"
	"github.com/pdiddy/portfolio-engine/internal/secrets"
	"github.com/pdiddy/portfolio-engine/internal/server"
	"github.com/pdiddy/portfolio-engine/pkg/types"
)

// envKeyReplacer maps gateway.api_key to PORTFOLIO_GATEWAY_API_KEY.
var envKeyReplacer = strings.NewReplacer(".", "_")

func setDefaults() {
	viper.SetDefault("server.addr", server.DefaultAddr)
	viper.SetDefault("server.shutdown_timeout", server.DefaultShutdownTimeout)
	viper.SetDefault("server.allowed_headers", server.DefaultAllowedHeaders)

	viper.SetDefault("gateway.endpoint", gateway.DefaultEndpoint)
	viper.SetDefault("gateway.model", gateway.DefaultModel)
	viper.SetDefault("gateway.temperature", gateway.DefaultTemperature)
	viper.SetDefault("gateway.timeout", httputil.DefaultTimeout)
	viper.SetDefault("gateway.user_agent", "portfolio-engine/"+version)

	viper.SetDefault("chat.max_history", chat.DefaultMaxHistory)
	viper.SetDefault("chat.publications_catalog", "publications")

	viper.SetDefault("catalog.dir", "")
	viper.SetDefault("knowledge.file", "")
	viper.SetDefault("knowledge.db_path", "")
}

// loadAppConfig reads every component setting from viper. The gateway key
// comes from config or PORTFOLIO_GATEWAY_API_KEY first, then .secrets/.
func loadAppConfig() (types.AppConfig, error) {
	apiKey := secrets.Resolve(loadedSecrets, secrets.GatewayAPIKey, viper.GetString("gateway.api_key"))
	temperature := viper.GetFloat64("gateway.temperature")

	return types.AppConfig{
		Server: types.ServerConfig{
			Addr:            viper.GetString("server.addr"),
			ShutdownTimeout: viper.GetDuration("server.shutdown_timeout"),
			AllowedHeaders:  viper.GetString("server.allowed_headers"),
		},
		Gateway: types.GatewayConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("gateway.timeout"),
				UserAgent: viper.GetString("gateway.user_agent"),
			},
			Endpoint:    viper.GetString("gateway.endpoint"),
			APIKey:      apiKey,
			Model:       viper.GetString("gateway.model"),
			Temperature: &temperature,
		},
		Chat: types.ChatConfig{
			MaxHistory:          viper.GetInt("chat.max_history"),
			PublicationsCatalog: viper.GetString("chat.publications_catalog"),
		},
		Catalog: types.CatalogConfig{
			Dir: viper.GetString("catalog.dir"),
		},
		Knowledge: types.KnowledgeConfig{
			File:   viper.GetString("knowledge.file"),
			DBPath: viper.GetString("knowledge.db_path"),
		},
	}, nil
}

// loadLibrary reads catalogs from cfg.Dir, or the embedded set when empty.
func loadLibrary(cfg types.CatalogConfig) (*catalog.Library, error) {
	if cfg.Dir != "" {
		return catalog.LoadDir(cfg.Dir)
	}
	return catalog.LoadFS(content.Catalogs())
}

// openKnowledge returns the configured knowledge source and a close func.
// The SQLite store wins over a YAML file; neither falls back to the
// embedded blocks.
func openKnowledge(cfg types.KnowledgeConfig) (knowledge.Source, func() error, error) {
	noop := func() error { return nil }
	switch {
	case cfg.DBPath != "":
		store, err := knowledge.NewStore(cfg.DBPath)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case cfg.File != "":
		t, err := knowledge.LoadFile(cfg.File)
		if err != nil {
			return nil, noop, err
		}
		return t, noop, nil
	default:
		t, err := knowledge.Default()
		if err != nil {
			return nil, noop, err
		}
		return t, noop, nil
	}
}

// app is every runtime dependency built from configuration.
type app struct {
	cfg     types.AppConfig
	library *catalog.Library
	proxy   *chat.Proxy
	close   func() error
}

func buildApp() (*app, error) {
	cfg, err := loadAppConfig()
	if err != nil {
		return nil, err
	}
	library, err := loadLibrary(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	pubs, err := library.Get(cfg.Chat.PublicationsCatalog)
	if err != nil {
		return nil, fmt.Errorf("publications catalog: %w", err)
	}
	source, closeFn, err := openKnowledge(cfg.Knowledge)
	if err != nil {
		return nil, err
	}

	composer := prompt.NewComposer(source, pubs)
	completer := gateway.New(cfg.Gateway)
	proxy := chat.NewProxy(composer, completer, cfg.Chat, logger)
	return &app{cfg: cfg, library: library, proxy: proxy, close: closeFn}, nil
}

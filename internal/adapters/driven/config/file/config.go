// Package file loads application settings from a TOML config file.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/rackmesa/ragstack/internal/core/domain"
)

// DefaultFileName is the config file name inside the config directory.
const DefaultFileName = "config.toml"

// fileConfig mirrors the TOML layout. It is decoded into domain.Settings so
// the rest of the system never sees TOML tags.
type fileConfig struct {
	Storage struct {
		Backend string `toml:"backend"`
		DataDir string `toml:"data_dir"`
		Qdrant  struct {
			Host       string `toml:"host"`
			Port       int    `toml:"port"`
			Collection string `toml:"collection"`
		} `toml:"qdrant"`
	} `toml:"storage"`

	Embedding struct {
		Provider          string  `toml:"provider"`
		BaseURL           string  `toml:"base_url"`
		APIKey            string  `toml:"api_key"`
		Model             string  `toml:"model"`
		TimeoutSeconds    int     `toml:"timeout_seconds"`
		Dimensions        int     `toml:"dimensions"`
		RequestsPerSecond float64 `toml:"requests_per_second"`
	} `toml:"embedding"`

	Generation struct {
		Default   string                        `toml:"default"`
		Providers map[string]generationProvider `toml:"providers"`
	} `toml:"generation"`

	Query struct {
		TopK int `toml:"top_k"`
	} `toml:"query"`

	Splitter struct {
		MaxChunkSize int `toml:"max_chunk_size"`
	} `toml:"splitter"`
}

type generationProvider struct {
	Provider       string  `toml:"provider"`
	BaseURL        string  `toml:"base_url"`
	APIKey         string  `toml:"api_key"`
	Model          string  `toml:"model"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	MaxTokens      int     `toml:"max_tokens"`
	Temperature    float64 `toml:"temperature"`
}

// DefaultPath returns the default config file location,
// ~/.ragstack/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".ragstack", DefaultFileName), nil
}

// Load reads settings from the TOML file at path. If path is empty the
// default location is used. A missing file yields the default local-Ollama
// settings rather than an error, so a fresh install works with no config at
// all.
func Load(path string) (*domain.Settings, error) {
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	var cfg fileConfig
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fall through with zero-value config; defaults apply below.
	case err != nil:
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w: %w", path, domain.ErrInvalidInput, err)
		}
	}

	return settingsFromConfig(&cfg)
}

// settingsFromConfig converts the raw TOML layout into validated settings
// with defaults filled in.
func settingsFromConfig(cfg *fileConfig) (*domain.Settings, error) {
	settings := &domain.Settings{
		Storage: domain.StorageSettings{
			Backend:          domain.StorageBackend(cfg.Storage.Backend),
			DataDir:          cfg.Storage.DataDir,
			QdrantHost:       cfg.Storage.Qdrant.Host,
			QdrantPort:       cfg.Storage.Qdrant.Port,
			QdrantCollection: cfg.Storage.Qdrant.Collection,
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          domain.AIProvider(cfg.Embedding.Provider),
			BaseURL:           cfg.Embedding.BaseURL,
			APIKey:            cfg.Embedding.APIKey,
			Model:             cfg.Embedding.Model,
			TimeoutSeconds:    cfg.Embedding.TimeoutSeconds,
			Dimensions:        cfg.Embedding.Dimensions,
			RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		},
		DefaultGeneration: cfg.Generation.Default,
		Generation:        make(map[string]domain.GenerationSettings, len(cfg.Generation.Providers)),
		TopK:              cfg.Query.TopK,
		MaxChunkSize:      cfg.Splitter.MaxChunkSize,
	}

	if settings.Storage.Backend == "" {
		settings.Storage.Backend = domain.StorageSQLite
	}
	if !settings.Storage.Backend.IsValid() {
		return nil, fmt.Errorf("unknown storage backend %q: %w", settings.Storage.Backend, domain.ErrInvalidInput)
	}

	if settings.Embedding.Provider == "" {
		settings.Embedding.Provider = domain.AIProviderOllama
	}
	if !settings.Embedding.Provider.IsValid() {
		return nil, fmt.Errorf("unknown embedding provider %q: %w", settings.Embedding.Provider, domain.ErrInvalidInput)
	}

	for name, raw := range cfg.Generation.Providers {
		provider := raw.Provider
		if provider == "" {
			// A section named after a known provider doesn't need to repeat it.
			provider = name
		}
		if !domain.AIProvider(provider).IsValid() {
			return nil, fmt.Errorf("generation provider %q: unknown provider %q: %w",
				name, provider, domain.ErrInvalidInput)
		}
		settings.Generation[name] = domain.GenerationSettings{
			Provider:       domain.AIProvider(provider),
			BaseURL:        raw.BaseURL,
			APIKey:         raw.APIKey,
			Model:          raw.Model,
			TimeoutSeconds: raw.TimeoutSeconds,
			MaxTokens:      raw.MaxTokens,
			Temperature:    raw.Temperature,
		}
	}

	if settings.DefaultGeneration == "" {
		settings.DefaultGeneration = domain.AIProviderOllama.String()
	}
	if len(settings.Generation) == 0 {
		// No generation config at all: assume a local Ollama.
		settings.Generation[domain.AIProviderOllama.String()] = domain.GenerationSettings{
			Provider: domain.AIProviderOllama,
		}
	}

	if settings.TopK <= 0 {
		settings.TopK = domain.DefaultTopK
	}
	if settings.MaxChunkSize <= 0 {
		settings.MaxChunkSize = 0 // Splitter default applies.
	}

	return settings, nil
}

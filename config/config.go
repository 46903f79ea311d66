package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the newsradar service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Ranking   RankingConfig   `yaml:"ranking"`
	Cache     CacheConfig     `yaml:"cache"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host               string   `yaml:"host"`
	Port               int      `yaml:"port"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`
	AllowedOrigins     []string `yaml:"allowed_origins"`
}

// ProvidersConfig holds per-provider configuration. A provider missing
// its credentials is simply not constructed; the aggregator runs with
// whatever providers are available.
type ProvidersConfig struct {
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	ExcludeURLs    []string `yaml:"exclude_urls"` // doublestar globs matched against host+path

	SerpAPI SerpAPIConfig `yaml:"serpapi"`
	Naver   NaverConfig   `yaml:"naver"`
	RSS     RSSConfig     `yaml:"rss"`
}

// SerpAPIConfig configures the Google News provider (via SerpAPI).
type SerpAPIConfig struct {
	APIKeyEnv  string `yaml:"api_key_env"`
	BaseURL    string `yaml:"base_url"`
	Language   string `yaml:"language"`
	Country    string `yaml:"country"`
	MaxResults int    `yaml:"max_results"`
}

// NaverConfig configures the Naver news search provider.
type NaverConfig struct {
	ClientIDEnv     string `yaml:"client_id_env"`
	ClientSecretEnv string `yaml:"client_secret_env"`
	BaseURL         string `yaml:"base_url"`
	MaxResults      int    `yaml:"max_results"`
}

// RSSFeed names a single feed.
type RSSFeed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// RSSConfig configures the feed-based provider.
type RSSConfig struct {
	Feeds      []RSSFeed `yaml:"feeds"`
	MaxPerFeed int       `yaml:"max_per_feed"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"` // empty for api.openai.com
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
	DataDir   string `yaml:"data_dir"` // where the index snapshot lives
}

// RankingConfig holds semantic ranking defaults.
type RankingConfig struct {
	Strategy      string  `yaml:"strategy"` // "indexed" or "chunked"
	ChunkSize     int     `yaml:"chunk_size"`
	MinSimilarity float64 `yaml:"min_similarity"`
	MaxResults    int     `yaml:"max_results"`
}

// CacheConfig holds result-cache TTLs, in seconds.
type CacheConfig struct {
	KeywordTTL   int `yaml:"keyword_ttl"`
	SemanticTTL  int `yaml:"semantic_ttl"`
	AnalysisTTL  int `yaml:"analysis_ttl"`
	SweepSeconds int `yaml:"sweep_seconds"`
}

// AnalysisConfig holds LLM analysis configuration.
type AnalysisConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Model       string `yaml:"model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	BaseURL     string `yaml:"base_url"`
	MaxArticles int    `yaml:"max_articles"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8080,
			RateLimitPerMinute: 60,
			AllowedOrigins:     []string{"http://localhost:3000"},
		},
		Providers: ProvidersConfig{
			TimeoutSeconds: 30,
			SerpAPI: SerpAPIConfig{
				APIKeyEnv:  "SERPAPI_KEY",
				BaseURL:    "https://serpapi.com/search.json",
				Language:   "ko",
				Country:    "kr",
				MaxResults: 100,
			},
			Naver: NaverConfig{
				ClientIDEnv:     "NAVER_CLIENT_ID",
				ClientSecretEnv: "NAVER_CLIENT_SECRET",
				BaseURL:         "https://openapi.naver.com/v1/search/news.json",
				MaxResults:      1000,
			},
			RSS: RSSConfig{
				Feeds: []RSSFeed{
					{Name: "연합뉴스", URL: "https://www.yonhapnewstv.co.kr/category/news/headline/feed/"},
					{Name: "KBS", URL: "https://news.kbs.co.kr/rss/headline.xml"},
					{Name: "MBC", URL: "https://imnews.imbc.com/rss/news/news_00.xml"},
					{Name: "SBS", URL: "https://news.sbs.co.kr/news/SectionRssFeed.do?sectionId=01"},
					{Name: "JTBC", URL: "https://fs.jtbc.co.kr/RSS/newsflash.xml"},
				},
				MaxPerFeed: 50,
			},
		},
		Embedding: EmbeddingConfig{
			Enabled:   true,
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
			BatchSize: 100,
			DataDir:   ".newsradar",
		},
		Ranking: RankingConfig{
			Strategy:      "indexed",
			ChunkSize:     100,
			MinSimilarity: 0.0,
			MaxResults:    100,
		},
		Cache: CacheConfig{
			KeywordTTL:   300,
			SemanticTTL:  300,
			AnalysisTTL:  600,
			SweepSeconds: 60,
		},
		Analysis: AnalysisConfig{
			Enabled:     false,
			Model:       "llama3.1-8b",
			APIKeyEnv:   "CEREBRAS_API_KEY",
			BaseURL:     "https://api.cerebras.ai/v1",
			MaxArticles: 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for newsradar.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "newsradar.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".newsradar", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// IndexDir returns the directory holding the vector index snapshot.
func (c *Config) IndexDir() string {
	if c.Embedding.DataDir != "" {
		return c.Embedding.DataDir
	}
	return ".newsradar"
}

// EnsureDataDir ensures the snapshot directory exists.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.IndexDir(), 0755)
}

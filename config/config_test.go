package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected Port=8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.RateLimitPerMinute != 60 {
		t.Errorf("expected RateLimitPerMinute=60, got %d", cfg.Server.RateLimitPerMinute)
	}
	if cfg.Embedding.Dimension != 1536 {
		t.Errorf("expected Dimension=1536, got %d", cfg.Embedding.Dimension)
	}
	if cfg.Ranking.ChunkSize != 100 {
		t.Errorf("expected ChunkSize=100, got %d", cfg.Ranking.ChunkSize)
	}
	if cfg.Cache.KeywordTTL != 300 {
		t.Errorf("expected KeywordTTL=300, got %d", cfg.Cache.KeywordTTL)
	}
	if len(cfg.Providers.RSS.Feeds) != 5 {
		t.Errorf("expected 5 default feeds, got %d", len(cfg.Providers.RSS.Feeds))
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "newsradar.yaml")

	content := `
server:
  port: 9090
ranking:
  strategy: chunked
  chunk_size: 25
embedding:
  enabled: false
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected Port=9090, got %d", cfg.Server.Port)
	}
	if cfg.Ranking.Strategy != "chunked" {
		t.Errorf("expected Strategy=chunked, got %s", cfg.Ranking.Strategy)
	}
	if cfg.Ranking.ChunkSize != 25 {
		t.Errorf("expected ChunkSize=25, got %d", cfg.Ranking.ChunkSize)
	}
	if cfg.Embedding.Enabled {
		t.Error("expected Embedding.Enabled=false")
	}
	// Untouched sections keep their defaults.
	if cfg.Cache.AnalysisTTL != 600 {
		t.Errorf("expected AnalysisTTL=600, got %d", cfg.Cache.AnalysisTTL)
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "newsradar.yaml")

	content := `
cache:
  semantic_ttl: 120
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Cache.SemanticTTL != 120 {
		t.Errorf("expected SemanticTTL=120, got %d", cfg.Cache.SemanticTTL)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "newsradar.yaml")

	cfg := DefaultConfig()
	cfg.Server.Port = 8888

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Server.Port != 8888 {
		t.Errorf("expected Port=8888 after round trip, got %d", loaded.Server.Port)
	}
}

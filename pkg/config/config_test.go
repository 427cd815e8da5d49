package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Assembly.APIKey = "aai-key"
	cfg.OpenAI.APIKey = "oai-key"
	cfg.Pipeline.ChunkOverlapFraction = 0.15
	cfg.Pipeline.MaxIterations = 3
	cfg.VectorStore.Backend = "memory"
	return cfg
}

func TestValidateOK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateMissingKeys(t *testing.T) {
	cfg := validConfig()
	cfg.Assembly.APIKey = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "ASSEMBLYAI_API_KEY") {
		t.Errorf("missing AssemblyAI key: err = %v", err)
	}

	cfg = validConfig()
	cfg.OpenAI.APIKey = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("missing OpenAI key: err = %v", err)
	}
}

func TestValidateOverlapBounds(t *testing.T) {
	for _, overlap := range []float64{0.05, 0.25} {
		cfg := validConfig()
		cfg.Pipeline.ChunkOverlapFraction = overlap
		if err := cfg.Validate(); err == nil {
			t.Errorf("overlap %.2f accepted, want error", overlap)
		}
	}
	for _, overlap := range []float64{0.1, 0.2} {
		cfg := validConfig()
		cfg.Pipeline.ChunkOverlapFraction = overlap
		if err := cfg.Validate(); err != nil {
			t.Errorf("overlap %.2f rejected: %v", overlap, err)
		}
	}
}

func TestValidateVectorStoreBackends(t *testing.T) {
	cfg := validConfig()
	cfg.VectorStore.Backend = "pgvector"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "VECTOR_STORE_POSTGRES_URL") {
		t.Errorf("pgvector without URL: err = %v", err)
	}
	cfg.VectorStore.PostgresURL = "postgres://localhost:5432/podflow"
	if err := cfg.Validate(); err != nil {
		t.Errorf("pgvector with URL rejected: %v", err)
	}

	cfg = validConfig()
	cfg.VectorStore.Backend = "cassandra"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown backend accepted")
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Host = "db.internal"
	cfg.Database.Port = "5433"
	cfg.Database.User = "podflow"
	cfg.Database.Password = "secret"
	cfg.Database.Name = "podflow"
	cfg.Database.SSLMode = "require"

	dsn := cfg.GetDatabaseDSN()
	for _, part := range []string{"host=db.internal", "port=5433", "user=podflow", "dbname=podflow", "sslmode=require"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("DSN missing %q: %s", part, dsn)
		}
	}
}

func TestGetRedisAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Redis.Host = "redis.internal"
	cfg.Redis.Port = "6380"
	if addr := cfg.GetRedisAddr(); addr != "redis.internal:6380" {
		t.Errorf("GetRedisAddr = %q", addr)
	}
}

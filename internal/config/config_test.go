package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"stageline/internal/config"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Access.Secret != config.DefaultAccessSecret {
		t.Fatalf("unexpected default secret %q", cfg.Access.Secret)
	}
	if len(cfg.Types()) != 3 {
		t.Fatalf("expected default construction types, got %v", cfg.Types())
	}
}

func TestFromYAMLKeepsDefaults(t *testing.T) {
	cfg, err := config.FromYAML([]byte("construction_types: [Road, Bridge]\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := cfg.Types(); len(got) != 2 || got[0] != "Road" {
		t.Fatalf("unexpected types %v", got)
	}
	if cfg.Storage.Bucket != "project-files" || cfg.Database.Driver != config.DriverSQLite {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"duplicate type":  "construction_types: [Road, Road]\n",
		"empty type":      "construction_types: [\"\"]\n",
		"blank secret":    "access:\n  secret: \"\"\n",
		"unknown driver":  "database:\n  driver: mysql\n",
		"postgres no dsn": "database:\n  driver: postgres\n",
		"bad ttl":         "storage:\n  staged_ttl: soon\n",
		"negative ttl":    "storage:\n  staged_ttl: -1h\n",
		"blank bucket":    "storage:\n  bucket: \"\"\n",
		"malformed yaml":  "construction_types: [\n",
	}
	for name, doc := range cases {
		if _, err := config.FromYAML([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadOptional(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.LoadOptional(dir)
	if err != nil || cfg == nil {
		t.Fatalf("missing file should give defaults: %v", err)
	}
	if _, err := config.Load(dir); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("Load without file: %v", err)
	}
	if err := os.WriteFile(config.Path(dir), []byte("organization: Metro Works\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err = config.Load(dir)
	if err != nil || cfg.Organization != "Metro Works" {
		t.Fatalf("load: %+v %v", cfg, err)
	}
	if filepath.Base(config.Path(dir)) != "stageline.yml" {
		t.Fatalf("unexpected path %s", config.Path(dir))
	}
}

func TestEnvOverlay(t *testing.T) {
	t.Setenv("STAGELINE_ACCESS_SECRET", "s3cret")
	t.Setenv("STAGELINE_DB_DRIVER", "postgres")
	t.Setenv("STAGELINE_DB_DSN", "host=localhost dbname=stageline")
	e, err := config.ParseEnv()
	if err != nil {
		t.Fatalf("parse env: %v", err)
	}
	cfg := config.Default()
	if err := cfg.Apply(e); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.Access.Secret != "s3cret" || cfg.Database.Driver != config.DriverPostgres {
		t.Fatalf("env not applied: %+v", cfg)
	}

	t.Setenv("STAGELINE_DB_DSN", "")
	e, _ = config.ParseEnv()
	bare := config.Default()
	bare.Database.DSN = ""
	if err := bare.Apply(e); err == nil {
		t.Fatalf("postgres without dsn should fail validation")
	}
}

func TestStagedTTL(t *testing.T) {
	cfg := config.Default()
	d, err := cfg.StagedTTL()
	if err != nil || d != 24*time.Hour {
		t.Fatalf("default ttl: %s %v", d, err)
	}
}

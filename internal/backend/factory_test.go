package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"prospect/internal/config"
	"prospect/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("expected error for unsupported backend")
	}

	cfg, err := FromAppConfig(&config.Config{DataBackend: "memory"})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != MemoryBackend || cfg.DataDirectory != "data" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown", Config{Type: "postgres"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	dir := t.TempDir()
	seed := `[{"client":"Acme","amount":"100","recurrence":"monthly"}]`
	if err := os.WriteFile(filepath.Join(dir, "contracts.json"), []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: dir})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Cleanup()

	if res.AMQP != nil {
		t.Error("AMQP should be nil without a broker URL")
	}
	contracts, err := res.Store.ListContracts(context.Background())
	if err != nil || len(contracts) != 1 || contracts[0].Recurrence != core.Monthly {
		t.Fatalf("unexpected contracts %+v err=%v", contracts, err)
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prospect.db")
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}

	if _, ok := res.Store.(Pinger); !ok {
		t.Error("sqlite store should support Ping")
	}
	if err := res.Cleanup(); err != nil {
		t.Errorf("Cleanup: %v", err)
	}
}

package system

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/weekgrid/internal/cache"
	"github.com/julianstephens/weekgrid/internal/cache/sqlite"
	"github.com/julianstephens/weekgrid/internal/cli"
	"github.com/julianstephens/weekgrid/internal/config"
	"github.com/julianstephens/weekgrid/internal/constants"
)

var testNow = time.Date(2024, 1, 10, 8, 0, 0, 0, time.Local)

func testConfig() *config.Config {
	return &config.Config{
		StartHour:       constants.DefaultStartHour,
		EndHour:         constants.DefaultEndHour,
		SnapMinutes:     constants.DefaultSnapMinutes,
		DefaultDuration: constants.DefaultDurationMinutes,
		HTTPTimeout:     5 * time.Second,
		Cache:           config.CacheConfig{Backend: constants.CacheBackendSQLite},
	}
}

func newContext(t *testing.T, p cache.Provider) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	return &cli.Context{
		Ctx:        context.Background(),
		Config:     testConfig(),
		ConfigPath: filepath.Join(t.TempDir(), "config.yaml"),
		Provider:   p,
		Cache:      cache.New(p),
		Now:        func() time.Time { return testNow },
		In:         strings.NewReader(""),
		Out:        out,
	}, out
}

func setupTestInitDB(t *testing.T) (*cli.Context, *bytes.Buffer, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	store := sqlite.NewStore(dbPath)
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	ctx, out := newContext(t, store)
	return ctx, out, dbPath
}

func TestInitCmd_Success(t *testing.T) {
	ctx, out, dbPath := setupTestInitDB(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}
	if _, err := os.Stat(ctx.ConfigPath); err != nil {
		t.Errorf("config file was not written: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Wrote default config") || !strings.Contains(got, "running offline") {
		t.Errorf("output = %q", got)
	}

	cfg, err := config.Load(config.Options{File: ctx.ConfigPath})
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.StartHour != constants.DefaultStartHour || cfg.SnapMinutes != constants.DefaultSnapMinutes {
		t.Errorf("written config = %+v", cfg)
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, out, _ := setupTestInitDB(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := ctx.Cache.SetCurrentWeek("2024-01-08"); err != nil {
		t.Fatal(err)
	}
	out.Reset()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
	if strings.Contains(out.String(), "Wrote default config") {
		t.Error("existing config file was rewritten")
	}
	if week, _ := ctx.Cache.CurrentWeek(); week != "2024-01-08" {
		t.Errorf("cache contents lost on re-init, current week = %q", week)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, out, _ := setupTestInitDB(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}
	if err := ctx.Cache.SetCurrentWeek("2024-01-08"); err != nil {
		t.Fatal(err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("force init failed: %v", err)
	}
	if !strings.Contains(out.String(), "Deleted existing cache") {
		t.Errorf("output = %q", out.String())
	}
	if week, _ := ctx.Cache.CurrentWeek(); week != "" {
		t.Errorf("current week survived force init: %q", week)
	}
}

func TestInitCmd_ForceRequiresSQLite(t *testing.T) {
	ctx, _ := newContext(t, cache.NewMemory())

	if err := (&InitCmd{Force: true}).Run(ctx); err == nil {
		t.Error("expected error for --force on a non-sqlite cache")
	}
}

package sqlite

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/julianstephens/weekgrid/internal/cache"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "nested", "weekgrid.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInitCreatesDatabase(t *testing.T) {
	store := setupStore(t)
	if _, err := os.Stat(store.GetConfigPath()); err != nil {
		t.Fatalf("database file missing: %v", err)
	}
	if store.GetDB() == nil {
		t.Error("GetDB() = nil after Init")
	}
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Load() error = %v, want ErrNotInitialized", err)
	}
}

func TestGetPutDelete(t *testing.T) {
	store := setupStore(t)

	if _, err := store.Get("weekgrid_theme"); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
	if err := store.Put("weekgrid_theme", []byte(`"dark"`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Put("weekgrid_theme", []byte(`"light"`)); err != nil {
		t.Fatalf("Put() overwrite error = %v", err)
	}
	got, err := store.Get("weekgrid_theme")
	if err != nil || string(got) != `"light"` {
		t.Errorf("Get() = %q, %v", got, err)
	}
	if err := store.Delete("weekgrid_theme"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get("weekgrid_theme"); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("Get() after delete error = %v", err)
	}
}

func TestKeysEscapesWildcards(t *testing.T) {
	store := setupStore(t)
	for _, key := range []string{
		"weekgrid_schedule_2024-06-10",
		"weekgrid_schedule_2024-06-03",
		"weekgrid_scheduleX2024-06-17",
		"weekgrid_note_2024-06-10",
	} {
		if err := store.Put(key, []byte("[]")); err != nil {
			t.Fatalf("Put(%q) error = %v", key, err)
		}
	}

	keys, err := store.Keys("weekgrid_schedule_")
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	want := []string{"weekgrid_schedule_2024-06-03", "weekgrid_schedule_2024-06-10"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Keys() = %v, want %v", keys, want)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weekgrid.db")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	c := cache.New(store)
	if err := c.SetCurrentWeek("2024-06-10"); err != nil {
		t.Fatalf("SetCurrentWeek() error = %v", err)
	}
	store.Close()

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer reopened.Close()
	if week, _ := cache.New(reopened).CurrentWeek(); week != "2024-06-10" {
		t.Errorf("CurrentWeek() = %q after reopen", week)
	}
}

package disk

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/peterbourgon/diskv/v3"

	"github.com/julianstephens/weekgrid/internal/cache"
)

func TestStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	store := NewStore(dir)

	if err := store.Load(); err == nil {
		t.Fatal("Load() before Init should fail")
	}
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if _, err := store.Get("weekgrid_theme"); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
	for _, key := range []string{"weekgrid_schedule_2024-06-10", "weekgrid_schedule_2024-06-03", "weekgrid_theme"} {
		if err := store.Put(key, []byte(`"x"`)); err != nil {
			t.Fatalf("Put(%q) error = %v", key, err)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "weekgrid", "schedule_2024-06-10")); err != nil {
		t.Errorf("expected file per key: %v", err)
	}

	keys, err := store.Keys("weekgrid_schedule_")
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	want := []string{"weekgrid_schedule_2024-06-03", "weekgrid_schedule_2024-06-10"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Keys() = %v, want %v", keys, want)
	}

	if err := store.Delete("weekgrid_theme"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete("weekgrid_theme"); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
}

func TestCacheOverDisk(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	c := cache.New(store)

	if err := c.SaveRetro("2024-06-10", "Shipped it"); err != nil {
		t.Fatalf("SaveRetro() error = %v", err)
	}
	if got, _ := c.Retro("2024-06-10"); got != "Shipped it" {
		t.Errorf("Retro() = %q", got)
	}
}

func TestTransforms(t *testing.T) {
	tests := []struct {
		key  string
		want diskv.PathKey
	}{
		{key: "weekgrid_schedule_2024-06-10", want: diskv.PathKey{Path: []string{"weekgrid"}, FileName: "schedule_2024-06-10"}},
		{key: "plain", want: diskv.PathKey{FileName: "plain"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			pk := keyToPathTransform(tt.key)
			if !reflect.DeepEqual(*pk, tt.want) {
				t.Errorf("keyToPathTransform() = %+v, want %+v", *pk, tt.want)
			}
			if got := pathToKeyTransform(pk); got != tt.key {
				t.Errorf("pathToKeyTransform() = %q, want %q", got, tt.key)
			}
		})
	}
}

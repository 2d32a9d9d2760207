// Package disk is a cache backend that keeps one file per key under a
// directory.
package disk

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"github.com/julianstephens/weekgrid/internal/cache"
)

type Store struct {
	dir string
	d   *diskv.Diskv
}

var _ cache.Provider = (*Store)(nil)

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) open() {
	s.d = diskv.New(diskv.Options{
		BasePath:          s.dir,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	})
}

func (s *Store) Init() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	s.open()
	return nil
}

func (s *Store) Load() error {
	if s.d != nil {
		return nil
	}
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		return fmt.Errorf("cache not initialized, run 'weekgrid init' first")
	}
	s.open()
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) Get(key string) ([]byte, error) {
	if !s.d.Has(key) {
		return nil, cache.ErrNotFound
	}
	return s.d.Read(key)
}

func (s *Store) Put(key string, value []byte) error {
	return s.d.Write(key, value)
}

func (s *Store) Delete(key string) error {
	err := s.d.Erase(key)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *Store) Keys(prefix string) ([]string, error) {
	cancel := make(chan struct{})
	defer close(cancel)

	var keys []string
	for key := range s.d.Keys(cancel) {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) GetConfigPath() string {
	return s.dir
}

// keyToPathTransform stores "weekgrid_schedule_2024-06-10" as
// weekgrid/schedule_2024-06-10.
func keyToPathTransform(key string) *diskv.PathKey {
	dir, file, ok := strings.Cut(key, "_")
	if !ok {
		return &diskv.PathKey{FileName: key}
	}
	return &diskv.PathKey{Path: []string{dir}, FileName: file}
}

func pathToKeyTransform(pk *diskv.PathKey) string {
	if len(pk.Path) == 0 {
		return pk.FileName
	}
	return strings.Join(pk.Path, "_") + "_" + pk.FileName
}

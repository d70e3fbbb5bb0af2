// Package cache keeps Crazyflie TOCs on disk, keyed by their CRC, so a
// reconnect to the same firmware skips the TOC download.
package cache

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// Kind separates TOCs that may share a CRC.
type Kind string

const (
	KindParam Kind = "paramcache"
	KindLog   Kind = "logcache"
)

const defaultDir = "~/.crazyflie-cache"

type Store struct {
	dir string
}

// Open prepares the cache directory. An empty dir selects
// ~/.crazyflie-cache; a leading ~ is expanded.
func Open(dir string) (*Store, error) {
	if dir == "" {
		dir = defaultDir
	}
	dir, err := homedir.Expand(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0777); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(kind Kind, crc uint32) string {
	return filepath.Join(s.dir, fmt.Sprintf("%X.%s", crc, kind))
}

// Load decodes the cached TOC for crc into e.
func (s *Store) Load(kind Kind, crc uint32, e interface{}) error {
	file, err := os.Open(s.path(kind, crc))
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewDecoder(file).Decode(e)
}

func (s *Store) Save(kind Kind, crc uint32, e interface{}) error {
	file, err := os.OpenFile(s.path(kind, crc), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(e)
}

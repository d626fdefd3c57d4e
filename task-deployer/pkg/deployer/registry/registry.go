// Package registry records deployed contract addresses per network in a JSON file.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/afero"
)

const DefaultFileName = "deployed-contracts.json"

type Entry struct {
	Address  common.Address `json:"address"`
	Deployer common.Address `json:"deployer"`
}

// db is contract id -> network -> entry.
type db map[string]map[string]Entry

type Registry struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

func New(fs afero.Fs, path string) *Registry {
	return &Registry{fs: fs, path: path}
}

// NewOS returns a registry backed by the OS filesystem.
func NewOS(path string) *Registry {
	return New(afero.NewOsFs(), path)
}

func (r *Registry) Path() string {
	return r.path
}

func (r *Registry) load() (db, error) {
	data, err := afero.ReadFile(r.fs, r.path)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist) {
		return make(db), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry %s: %w", r.path, err)
	}
	out := make(db)
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode registry %s: %w", r.path, err)
	}
	return out, nil
}

// Register records the deployment of id on network, replacing any previous entry.
func (r *Registry) Register(id, network string, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return err
	}
	if entries[id] == nil {
		entries[id] = make(map[string]Entry)
	}
	entries[id][network] = e

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}
	if dir := filepath.Dir(r.path); dir != "." {
		if err := r.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create registry directory: %w", err)
		}
	}
	tmp := r.path + ".tmp"
	if err := afero.WriteFile(r.fs, tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := r.fs.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace registry: %w", err)
	}
	return nil
}

func (r *Registry) Lookup(id, network string) (Entry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return Entry{}, false, err
	}
	e, ok := entries[id][network]
	return e, ok, nil
}

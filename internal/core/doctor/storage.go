package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// KeyLister lists the keys of the shared store.
type KeyLister interface {
	ListKeys(ctx context.Context) ([]string, error)
}

// StorageCheck verifies the data directory and shared store are usable.
type StorageCheck struct {
	dataDir string
	dbFile  string
	store   KeyLister
}

// NewStorageCheck creates a new storage check.
func NewStorageCheck(dataDir, dbFile string, store KeyLister) *StorageCheck {
	return &StorageCheck{dataDir: dataDir, dbFile: dbFile, store: store}
}

func (c *StorageCheck) Name() string {
	return "Storage"
}

func (c *StorageCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	probe, err := os.CreateTemp(c.dataDir, ".doctor-*")
	if err != nil {
		result.add("data dir", StatusFail, fmt.Sprintf("%s is not writable: %v", c.dataDir, err))
		return result
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())
	result.add("data dir", StatusPass, c.dataDir)

	keys, err := c.store.ListKeys(ctx)
	if err != nil {
		result.add(c.dbFile, StatusFail, err.Error())
		return result
	}

	sessions, companions := 0, 0
	for _, k := range keys {
		switch {
		case strings.HasPrefix(k, "session:"):
			sessions++
		case strings.HasPrefix(k, "companion:"):
			companions++
		}
	}
	result.add(filepath.Base(c.dbFile), StatusPass,
		fmt.Sprintf("%d cached sessions, %d companion flags", sessions, companions))

	return result
}

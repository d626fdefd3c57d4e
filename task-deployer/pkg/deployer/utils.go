package deployer

import (
	"fmt"
	"log"
	"os"
	"path"
)

func DefaultCacheDir() string {
	var cacheDir string

	homeDir, err := os.UserHomeDir()
	if err != nil {
		cacheDir = ".task-deployer/cache"
		log.Printf("error getting user home directory: %v, using fallback directory: %s\n", err, cacheDir)
	} else {
		cacheDir = path.Join(homeDir, ".task-deployer/cache")
	}

	return cacheDir
}

func CreateCacheDir(cacheDir string) error {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", cacheDir, err)
	}
	return nil
}

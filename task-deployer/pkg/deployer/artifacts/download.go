package artifacts

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mantlenetworkio/deploy-tasks/op-service/httputil"
	"github.com/mantlenetworkio/deploy-tasks/op-service/ioutil"
)

const maxTarballSize = 512 << 20

type Downloader interface {
	Download(ctx context.Context, url string, progress ioutil.Progressor, targetDir string) (string, error)
}

// Download makes the artifacts behind loc available on disk. Remote tarballs are
// cached in cacheDir by URL and extracted into a fresh directory.
func Download(ctx context.Context, loc *Locator, progressor ioutil.Progressor, cacheDir string) (*ArtifactsFS, error) {
	if progressor == nil {
		progressor = ioutil.NoopProgressor()
	}

	switch loc.URL.Scheme {
	case "file":
		dir := filepath.FromSlash(loc.URL.Path)
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("artifacts directory %s: %w", dir, err)
		}
		return &ArtifactsFS{FS: os.DirFS(dir)}, nil
	case "http", "https":
		dir, err := downloadHTTP(ctx, loc.URL.String(), progressor, cacheDir)
		if err != nil {
			return nil, fmt.Errorf("failed to download artifacts: %w", err)
		}
		return &ArtifactsFS{FS: os.DirFS(dir)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedArtifactsScheme, loc.URL.Scheme)
	}
}

func downloadHTTP(ctx context.Context, u string, progressor ioutil.Progressor, cacheDir string) (string, error) {
	cacher := &CachingDownloader{
		d: new(HTTPDownloader),
	}
	tarballPath, err := cacher.Download(ctx, u, progressor, cacheDir)
	if err != nil {
		return "", err
	}

	tmpDir, err := os.MkdirTemp(cacheDir, "task-deployer-artifacts-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	f, err := os.Open(tarballPath)
	if err != nil {
		return "", fmt.Errorf("failed to open tarball: %w", err)
	}
	defer f.Close()
	if err := ioutil.UntarGzip(tmpDir, f); err != nil {
		return "", fmt.Errorf("failed to extract tarball: %w", err)
	}

	// tarballs built from a Hardhat project root nest everything under artifacts/
	nested := filepath.Join(tmpDir, "artifacts")
	if st, err := os.Stat(nested); err == nil && st.IsDir() {
		return nested, nil
	}
	return tmpDir, nil
}

type HTTPDownloader struct{}

func (d *HTTPDownloader) Download(ctx context.Context, url string, progress ioutil.Progressor, targetDir string) (string, error) {
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to ensure cache directory '%s': %w", targetDir, err)
	}
	tmpFile, err := os.CreateTemp(targetDir, "task-deployer-download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer tmpFile.Close()

	downloader := &httputil.Downloader{
		Progressor: progress,
		MaxSize:    maxTarballSize,
	}
	if err := downloader.Download(ctx, url, tmpFile); err != nil {
		_ = os.Remove(tmpFile.Name())
		return "", fmt.Errorf("failed to download: %w", err)
	}
	return tmpFile.Name(), nil
}

type CachingDownloader struct {
	d   Downloader
	mtx sync.Mutex
}

func (d *CachingDownloader) Download(ctx context.Context, url string, progress ioutil.Progressor, targetDir string) (string, error) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	cachePath := filepath.Join(targetDir, fmt.Sprintf("%x.tgz", sha256.Sum256([]byte(url))))
	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}
	tmpPath, err := d.d.Download(ctx, url, progress, targetDir)
	if err != nil {
		return "", fmt.Errorf("failed to download: %w", err)
	}
	if err := os.Rename(tmpPath, cachePath); err != nil {
		return "", fmt.Errorf("failed to move downloaded file to cache: %w", err)
	}
	return cachePath, nil
}

package ioutil

import (
	"archive/tar"
	"bufio"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// UntarGzip extracts a gzipped tarball read from r into outDir.
func UntarGzip(outDir string, r io.Reader) error {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzr.Close()
	return Untar(outDir, tar.NewReader(gzr))
}

func Untar(outDir string, tr *tar.Reader) error {
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar header: %w", err)
		}

		cleanedName := path.Clean(hdr.Name)
		if strings.Contains(cleanedName, "..") || path.IsAbs(cleanedName) {
			return fmt.Errorf("invalid file path: %s", hdr.Name)
		}
		dst := path.Join(outDir, cleanedName)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dst, 0o755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(path.Dir(dst), 0o755); err != nil {
				return fmt.Errorf("failed to create parent directory: %w", err)
			}
			if err := untarFile(dst, tr); err != nil {
				return fmt.Errorf("failed to untar file: %w", err)
			}
		default:
			// links and devices never appear in artifact bundles
			return fmt.Errorf("unsupported tar entry %s (type %c)", hdr.Name, hdr.Typeflag)
		}
	}
}

func untarFile(dst string, tr *tar.Reader) error {
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	if _, err := io.Copy(buf, tr); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}
	return nil
}

package artifacts

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

var ErrUnsupportedArtifactsScheme = errors.New("unsupported artifacts URL scheme")

// Locator points at a Hardhat artifacts directory (file://) or a gzipped
// tarball of one (http:// or https://).
type Locator struct {
	URL *url.URL
}

// DefaultLocator is the artifacts directory of a Hardhat project in the working directory.
var DefaultLocator = MustNewFileLocator("artifacts")

func NewLocatorFromURL(u string) (*Locator, error) {
	loc := new(Locator)
	if err := loc.UnmarshalText([]byte(u)); err != nil {
		return nil, err
	}
	return loc, nil
}

func NewFileLocator(path string) (*Locator, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	return &Locator{URL: &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}}, nil
}

func MustNewFileLocator(path string) *Locator {
	loc, err := NewFileLocator(path)
	if err != nil {
		panic(err)
	}
	return loc
}

// UnmarshalText accepts file, http and https URLs. Strings without a scheme are
// treated as local paths.
func (a *Locator) UnmarshalText(text []byte) error {
	str := strings.TrimSpace(string(text))
	if str == "" {
		return errors.New("empty artifacts locator")
	}

	if !strings.Contains(str, "://") {
		loc, err := NewFileLocator(str)
		if err != nil {
			return err
		}
		*a = *loc
		return nil
	}

	u, err := url.Parse(str)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	switch u.Scheme {
	case "file":
		if u.Path == "" {
			return fmt.Errorf("file locator %s has no path", str)
		}
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("locator %s has no host", str)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedArtifactsScheme, u.Scheme)
	}
	*a = Locator{URL: u}
	return nil
}

func (a *Locator) MarshalText() ([]byte, error) {
	return []byte(a.URL.String()), nil
}

func (a *Locator) String() string {
	if a == nil || a.URL == nil {
		return ""
	}
	return a.URL.String()
}

func (a *Locator) IsRemote() bool {
	return a.URL.Scheme == "http" || a.URL.Scheme == "https"
}

func (a *Locator) Equal(b *Locator) bool {
	return a.String() == b.String()
}

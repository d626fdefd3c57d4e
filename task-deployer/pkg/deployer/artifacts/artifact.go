package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	ErrArtifactNotFound   = errors.New("artifact not found")
	ErrLinkingUnsupported = errors.New("artifact requires library linking")
)

// Artifact is a Hardhat compilation artifact (hh-sol-artifact-1).
type Artifact struct {
	Format         string                     `json:"_format"`
	ContractName   string                     `json:"contractName"`
	SourceName     string                     `json:"sourceName"`
	ABI            abi.ABI                    `json:"abi"`
	Bytecode       string                     `json:"bytecode"`
	LinkReferences map[string]json.RawMessage `json:"linkReferences"`

	// Path is the location of the artifact inside its ArtifactsFS.
	Path string `json:"-"`
}

// FullyQualifiedName is the "<source>:<contract>" form used by verifiers.
func (a *Artifact) FullyQualifiedName() string {
	return a.SourceName + ":" + a.ContractName
}

// CreationCode returns the decoded deployment bytecode.
func (a *Artifact) CreationCode() ([]byte, error) {
	if len(a.LinkReferences) > 0 || strings.Contains(a.Bytecode, "__$") {
		return nil, fmt.Errorf("%w: %s", ErrLinkingUnsupported, a.ContractName)
	}
	code, err := hexutil.Decode(a.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode for %s: %w", a.ContractName, err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%s has no creation code, is it abstract?", a.ContractName)
	}
	return code, nil
}

type debugFile struct {
	BuildInfo string `json:"buildInfo"`
}

// BuildInfo is the subset of a Hardhat build-info file needed for source verification.
type BuildInfo struct {
	SolcVersion     string          `json:"solcVersion"`
	SolcLongVersion string          `json:"solcLongVersion"`
	Input           json.RawMessage `json:"input"`
}

// ArtifactsFS reads Hardhat artifacts from a directory laid out as
// contracts/<Source>.sol/<Name>.json with build-info/ alongside.
type ArtifactsFS struct {
	FS fs.FS
}

func (a *ArtifactsFS) ReadArtifact(p string) (*Artifact, error) {
	data, err := fs.ReadFile(a.FS, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", p, err)
	}
	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("failed to decode artifact %s: %w", p, err)
	}
	art.Path = p
	return &art, nil
}

// FindArtifact returns the artifact of the contract named name. Names must be
// unique across sources.
func (a *ArtifactsFS) FindArtifact(name string) (*Artifact, error) {
	want := name + ".json"
	var matches []string
	err := fs.WalkDir(a.FS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return fs.SkipDir
			}
			return nil
		}
		if d.Name() == want {
			matches = append(matches, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search artifacts: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
	case 1:
		return a.ReadArtifact(matches[0])
	default:
		return nil, fmt.Errorf("ambiguous artifact name %s: %s", name, strings.Join(matches, ", "))
	}
}

// ReadBuildInfo follows the artifact's .dbg.json pointer to its build-info file.
func (a *ArtifactsFS) ReadBuildInfo(art *Artifact) (*BuildInfo, error) {
	dir := path.Dir(art.Path)
	dbgPath := path.Join(dir, art.ContractName+".dbg.json")
	data, err := fs.ReadFile(a.FS, dbgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read debug file %s: %w", dbgPath, err)
	}
	var dbg debugFile
	if err := json.Unmarshal(data, &dbg); err != nil {
		return nil, fmt.Errorf("failed to decode debug file %s: %w", dbgPath, err)
	}
	if dbg.BuildInfo == "" {
		return nil, fmt.Errorf("debug file %s has no build info", dbgPath)
	}

	biPath := path.Join(dir, dbg.BuildInfo)
	if !fs.ValidPath(biPath) {
		return nil, fmt.Errorf("build info path %s escapes the artifacts directory", dbg.BuildInfo)
	}
	data, err = fs.ReadFile(a.FS, biPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read build info %s: %w", biPath, err)
	}
	var bi BuildInfo
	if err := json.Unmarshal(data, &bi); err != nil {
		return nil, fmt.Errorf("failed to decode build info %s: %w", biPath, err)
	}
	if len(bi.Input) == 0 {
		return nil, fmt.Errorf("build info %s has no compiler input", biPath)
	}
	return &bi, nil
}

package model

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// MetadataFileName is the sidecar file written into each forest root.
// Its presence marks a fully created forest; its absence means creation
// never completed (or predates this tool version).
const MetadataFileName = ".grove.yaml"

// metadataFile is the on-disk shape of the sidecar. It is a separate
// struct from Forest so the wire format can evolve independently of the
// in-memory type. yaml.v3 ignores unknown fields on decode, so forests
// written by newer versions with extra fields remain readable.
type metadataFile struct {
	Name      string      `yaml:"name"`
	Mode      Mode        `yaml:"mode"`
	CreatedAt time.Time   `yaml:"createdAt"`
	Repos     []RepoEntry `yaml:"repos"`
}

// WriteMetadata persists the forest's sidecar metadata into its root
// directory. It is called exactly once, at the end of successful
// creation, and the file is never updated afterwards.
func WriteMetadata(f *Forest) error {
	meta := metadataFile{
		Name:      f.Name,
		Mode:      f.Mode,
		CreatedAt: f.CreatedAt,
		Repos:     f.Entries,
	}

	data, err := yaml.Marshal(&meta)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(f.Root, MetadataFileName), data, 0o644)
}

// ReadMetadata attempts to load forest metadata from the given root
// directory. The boolean result reports whether usable metadata was
// found; absent or corrupt metadata returns (nil, false) rather than an
// error, because Discovery treats both the same way — it falls back to
// directory-scan inference.
func ReadMetadata(root string) (*Forest, bool) {
	data, err := os.ReadFile(filepath.Join(root, MetadataFileName))
	if err != nil {
		return nil, false
	}

	var meta metadataFile
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, false
	}
	if meta.Name == "" {
		return nil, false
	}

	return &Forest{
		Name:      meta.Name,
		Root:      root,
		Mode:      meta.Mode,
		Entries:   meta.Repos,
		CreatedAt: meta.CreatedAt,
	}, true
}

package persistence

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mantiskv/status"
)

// manifestFormatVersion is bumped whenever the on-disk layout of a pool
// or its manifest changes incompatibly.
const manifestFormatVersion = 1

// Manifest records the identity a persistent engine's on-disk pool was
// created with, written once at Create time and checked on every Open —
// a comparator name-binding rule generalized to the whole pool. Modeled
// in yaml rather than a binary header because the CLI in cmd/mantiskv
// already speaks yaml for process configuration, grounded in
// config.Config's own use of gopkg.in/yaml.v3.
type Manifest struct {
	FormatVersion int    `yaml:"format_version"`
	Engine        string `yaml:"engine"`
	Comparator    string `yaml:"comparator,omitempty"`
	Compression   string `yaml:"compression,omitempty"`
}

// WriteManifest creates path, failing if a manifest already exists there.
func WriteManifest(path string, m Manifest) error {
	m.FormatVersion = manifestFormatVersion
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("persistence: create manifest %s: %w", path, err)
	}
	defer f.Close()
	_, err = f.Write(data)
	return err
}

// ReadManifest loads and parses path.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("persistence: read manifest %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("persistence: parse manifest %s: %w", path, err)
	}
	return m, nil
}

// Verify checks an opened manifest against the engine/comparator a
// caller is opening the pool with, returning status.ComparatorMismatch
// or status.WrongEngineName when they disagree — the same family of
// checks pmemkv applies to a csmap pool's stored comparator name.
func (m Manifest) Verify(wantEngine, wantComparator string) error {
	if m.FormatVersion != manifestFormatVersion {
		return status.New(status.ConfigParsingError, "open", "pool manifest format %d unsupported (want %d)", m.FormatVersion, manifestFormatVersion)
	}
	if m.Engine != wantEngine {
		return status.New(status.WrongEngineName, "open", "pool was created by engine %q, not %q", m.Engine, wantEngine)
	}
	if wantComparator != "" && m.Comparator != wantComparator {
		return status.New(status.ComparatorMismatch, "open", "pool was created with comparator %q, not %q", m.Comparator, wantComparator)
	}
	return nil
}

// Package manifest records what a build wrote so the next build can skip
// rewriting unchanged output files.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// FileName is the manifest's name inside the output directory.
const FileName = "manifest.json"

// Manifest is the record of one build's outputs.
type Manifest struct {
	BuildID    string      `json:"build_id"`
	Generator  string      `json:"generator"`
	Timestamp  time.Time   `json:"timestamp"`
	SourceHash string      `json:"source_hash"`
	Pages      []PageEntry `json:"pages"`
}

// PageEntry describes one rendered page.
type PageEntry struct {
	Canonical string `json:"canonical"`
	Source    string `json:"source"`
	Output    string `json:"output"`
	// Fingerprint is the mdfp fingerprint of the source front matter and body.
	Fingerprint string `json:"fingerprint"`
	// OutputHash is the sha256 of the rendered file.
	OutputHash string `json:"output_hash"`
}

// HashOutput computes the OutputHash of rendered bytes.
func HashOutput(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Sort orders pages by canonical path.
func (m *Manifest) Sort() {
	sort.Slice(m.Pages, func(i, j int) bool { return m.Pages[i].Canonical < m.Pages[j].Canonical })
}

// Page returns the entry for canonical.
func (m *Manifest) Page(canonical string) (PageEntry, bool) {
	if m == nil {
		return PageEntry{}, false
	}
	i := sort.Search(len(m.Pages), func(i int) bool { return m.Pages[i].Canonical >= canonical })
	if i < len(m.Pages) && m.Pages[i].Canonical == canonical {
		return m.Pages[i], true
	}
	return PageEntry{}, false
}

// Hash computes a deterministic hash of the page set, independent of the
// build ID and timestamp.
func (m *Manifest) Hash() string {
	h := sha256.New()
	for _, p := range m.Pages {
		fmt.Fprintf(h, "%s\x00%s\x00%s\x00", p.Canonical, p.Fingerprint, p.OutputHash)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ToJSON serializes the manifest to JSON.
func (m *Manifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	m.Sort()
	return &m, nil
}

// Load reads a manifest file. A missing file yields (nil, nil).
func Load(path string) (*Manifest, error) {
	// #nosec G304 -- path is inside the configured output directory.
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return FromJSON(data)
}

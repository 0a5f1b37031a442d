package build

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/docs"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/manifest"
)

// rendered is one page ready to be written.
type rendered struct {
	Canonical   string
	Source      string
	Output      string // slash separated, relative to the output root
	Fingerprint string
	HTML        []byte
}

// pageWriter writes pages under root, skipping files whose content matches
// the previous manifest.
type pageWriter struct {
	root     string
	previous *manifest.Manifest
}

// write stores p and returns its manifest entry and whether the file changed.
func (w *pageWriter) write(p rendered) (manifest.PageEntry, bool, error) {
	entry := manifest.PageEntry{
		Canonical:   p.Canonical,
		Source:      p.Source,
		Output:      p.Output,
		Fingerprint: p.Fingerprint,
		OutputHash:  manifest.HashOutput(p.HTML),
	}
	full := filepath.Join(w.root, filepath.FromSlash(p.Output))
	if prev, ok := w.previous.Page(p.Canonical); ok && prev.Output == entry.Output && prev.OutputHash == entry.OutputHash {
		if _, err := os.Stat(full); err == nil {
			return entry, false, nil
		}
	}
	if err := writeAtomic(full, p.HTML); err != nil {
		return entry, false, err
	}
	return entry, true, nil
}

// assetOutput maps an asset to its path under the output root. Assets keep
// their position relative to the content root below the base path.
func assetOutput(basePath string, f docs.DocFile) string {
	return path.Join(strings.Trim(basePath, "/"), f.RelativePath)
}

// copyAsset copies f to root/rel unless an identical file already exists.
func copyAsset(root, rel string, f docs.DocFile) (bool, error) {
	// #nosec G304 -- path comes from discovery under the content root.
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return false, fmt.Errorf("read asset %s: %w", f.RelativePath, err)
	}
	dst := filepath.Join(root, filepath.FromSlash(rel))
	if same, err := sameContent(dst, data); err == nil && same {
		return false, nil
	}
	if err := writeAtomic(dst, data); err != nil {
		return false, err
	}
	return true, nil
}

func sameContent(path string, data []byte) (bool, error) {
	// #nosec G304 -- path is inside the output root.
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil || info.Size() != int64(len(data)) {
		return false, err
	}
	existing, err := io.ReadAll(f)
	if err != nil {
		return false, err
	}
	return bytes.Equal(existing, data), nil
}

// guardClean refuses to clean the working directory, one of its parents or
// the filesystem root.
func guardClean(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	if rel, err := filepath.Rel(abs, wd); err == nil && (rel == "." || !strings.HasPrefix(rel, "..")) {
		return errors.ValidationError("refusing to clean an output directory that contains the working directory").
			WithContext("output", root).
			Build()
	}
	return nil
}

// cleanOutput removes everything inside root, keeping root itself.
func cleanOutput(root string) error {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(root, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

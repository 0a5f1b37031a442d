package docs

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	derrors "git.home.luguber.info/inful/docsite/internal/docs/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// DefaultInclude matches every Markdown and MDX source.
var DefaultInclude = []string{"**/*.md", "**/*.mdx"}

// DocFile represents a discovered documentation source or static asset.
type DocFile struct {
	Path         string // Absolute path to the file
	RelativePath string // Slash separated path relative to the content root
	Section      string // Directory part of RelativePath, "" at the root
	Name         string // File name without extension
	Extension    string // File extension
	IsAsset      bool   // True for images and other non-source files
}

// Result is what a discovery walk found.
type Result struct {
	Docs   []DocFile
	Assets []DocFile
	// Unreadable lists paths, relative to the root, that the walk could not
	// enter or stat.
	Unreadable []string
}

// Discovery walks a content directory.
type Discovery struct {
	root    string
	include []string
	exclude []string
}

// NewDiscovery validates the glob patterns and returns a Discovery rooted at
// root. An empty include list means DefaultInclude.
func NewDiscovery(root string, include, exclude []string) (*Discovery, error) {
	if len(include) == 0 {
		include = DefaultInclude
	}
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %q", derrors.ErrInvalidPattern, p)
		}
	}
	return &Discovery{root: root, include: include, exclude: exclude}, nil
}

// Discover walks the content root. Hidden files and directories are skipped.
// Directories that cannot be read are recorded in Result.Unreadable and the
// walk continues past them.
func (d *Discovery) Discover(ctx context.Context) (*Result, error) {
	info, err := os.Stat(d.root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", derrors.ErrContentRootNotFound, d.root)
	}

	res := &Result{}
	err = filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, walkErr error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if walkErr != nil {
			if path == d.root {
				return walkErr
			}
			unreadable := path
			if rel, relErr := filepath.Rel(d.root, path); relErr == nil {
				unreadable = filepath.ToSlash(rel)
			}
			res.Unreadable = append(res.Unreadable, unreadable)
			slog.Warn("Unreadable path during discovery", logfields.Path(path), logfields.Error(walkErr))
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		name := entry.Name()
		if path != d.root && strings.HasPrefix(name, ".") {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return fmt.Errorf("%w: %w", derrors.ErrInvalidRelativePath, err)
		}
		rel = filepath.ToSlash(rel)
		if d.excluded(rel) {
			slog.Debug("Excluded file", logfields.File(rel))
			return nil
		}

		isSource := d.included(rel)
		isAssetFile := !isSource && isAsset(name)
		if !isSource && !isAssetFile {
			return nil
		}

		section := filepath.ToSlash(filepath.Dir(rel))
		if section == "." {
			section = ""
		}
		ext := filepath.Ext(name)
		file := DocFile{
			Path:         path,
			RelativePath: rel,
			Section:      section,
			Name:         strings.TrimSuffix(name, ext),
			Extension:    ext,
			IsAsset:      isAssetFile,
		}
		if isAssetFile {
			res.Assets = append(res.Assets, file)
		} else {
			res.Docs = append(res.Docs, file)
		}
		slog.Debug("Discovered file", logfields.File(rel), slog.Bool("asset", isAssetFile))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrDocsDirWalkFailed, d.root, err)
	}

	sortFiles(res.Docs)
	sortFiles(res.Assets)
	sort.Strings(res.Unreadable)

	slog.Info("Documentation discovered",
		logfields.Path(d.root),
		logfields.Count(len(res.Docs)),
		slog.Int("assets", len(res.Assets)),
		slog.Int("unreadable", len(res.Unreadable)))
	return res, nil
}

func (d *Discovery) included(rel string) bool {
	return matchAny(d.include, rel)
}

func (d *Discovery) excluded(rel string) bool {
	return matchAny(d.exclude, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func sortFiles(files []DocFile) {
	sort.Slice(files, func(i, j int) bool { return files[i].RelativePath < files[j].RelativePath })
}

// isAsset checks if a file is a static asset copied verbatim to the output.
func isAsset(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico",
		".pdf", ".mp4", ".webm", ".css", ".js":
		return true
	}
	return false
}

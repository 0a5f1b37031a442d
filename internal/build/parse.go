package build

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/docsite/internal/diagnostics"
	"git.home.luguber.info/inful/docsite/internal/docmodel"
	"git.home.luguber.info/inful/docsite/internal/docs"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/observability"
)

// parsed is the joined outcome of the parse stage.
type parsed struct {
	// Docs holds successfully parsed documents in discovery order.
	Docs        []*docmodel.Document
	Diagnostics []diagnostics.Diagnostic
	Unreadable  []string
}

// parseAll parses every file with at most workers concurrent tasks. It
// returns once every task has finished. Malformed front matter skips the
// document; read failures are collected so the caller can list them all.
func parseAll(ctx context.Context, root string, files []docs.DocFile, workers int, opts docmodel.Options) (*parsed, error) {
	out := &parsed{Docs: make([]*docmodel.Document, len(files))}
	var (
		mu        sync.Mutex
		collector diagnostics.Collector
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := docmodel.ParseFile(root, f.RelativePath, opts)
			switch {
			case err == nil:
				out.Docs[i] = doc
				collector.Add(doc.Diagnostics...)
				return nil
			case errors.HasCategory(err, errors.CategoryFileSystem):
				mu.Lock()
				out.Unreadable = append(out.Unreadable, f.RelativePath)
				mu.Unlock()
				return nil
			case errors.HasCategory(err, errors.CategoryFrontMatter):
				observability.WarnContext(observability.WithFile(gctx, f.RelativePath), "Skipping document with malformed front matter", logfields.Error(err))
				collector.Add(docmodel.MalformedFrontMatter(f.RelativePath, err))
				return nil
			default:
				return err
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept := out.Docs[:0]
	for _, d := range out.Docs {
		if d != nil {
			kept = append(kept, d)
		}
	}
	out.Docs = kept
	out.Diagnostics = collector.Items()
	sort.Strings(out.Unreadable)
	return out, nil
}

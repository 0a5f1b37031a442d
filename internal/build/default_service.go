package build

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/diagnostics"
	"git.home.luguber.info/inful/docsite/internal/docmodel"
	"git.home.luguber.info/inful/docsite/internal/docs"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/history"
	"git.home.luguber.info/inful/docsite/internal/linkverify"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/manifest"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/observability"
	"git.home.luguber.info/inful/docsite/internal/render"
	"git.home.luguber.info/inful/docsite/internal/route"
	"git.home.luguber.info/inful/docsite/internal/site"
	"git.home.luguber.info/inful/docsite/internal/version"
)

// Stage names used for logging, metrics and the report.
const (
	StageDiscover = "discover"
	StageParse    = "parse"
	StageAssemble = "assemble"
	StageRender   = "render"
	StageVerify   = "verify"
	StageWrite    = "write"
)

// DefaultBuildService is the standard implementation of BuildService.
type DefaultBuildService struct {
	recorder metrics.Recorder
	history  history.Store
}

// NewBuildService creates a DefaultBuildService without metrics or history.
func NewBuildService() *DefaultBuildService {
	return &DefaultBuildService{recorder: metrics.NoopRecorder{}}
}

// WithRecorder sets the metrics recorder.
func (s *DefaultBuildService) WithRecorder(r metrics.Recorder) *DefaultBuildService {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	s.recorder = r
	return s
}

// WithHistory records every non dry-run build in store.
func (s *DefaultBuildService) WithHistory(store history.Store) *DefaultBuildService {
	s.history = store
	return s
}

// buildRun carries the state of one Run.
type buildRun struct {
	svc    *DefaultBuildService
	req    BuildRequest
	cfg    *config.Config
	result *BuildResult
	report *Report
	log    *slog.Logger

	discovered *docs.Result
	parsed     *parsed
	site       *site.Site
	pages      []rendered
	issues     []diagnostics.Diagnostic
	sourceHash string
}

// Run executes the complete build pipeline.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	start := time.Now()
	buildID := uuid.NewString()
	result := &BuildResult{BuildID: buildID, StartTime: start}

	if req.Config == nil {
		result.Status = BuildStatusFailed
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(start)
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		return result, errors.ConfigError("config required").Build()
	}

	r := &buildRun{
		svc:    s,
		req:    req,
		cfg:    req.Config,
		result: result,
		report: newReport(buildID, version.String(), start),
		log:    slog.With(logfields.BuildID(buildID)),
	}
	result.OutputPath = r.cfg.Output.Dir
	result.Report = r.report

	r.log.Info("Build started",
		slog.String("content", r.cfg.Content.Dir),
		logfields.Output(r.cfg.Output.Dir),
		slog.Bool("dry_run", req.DryRun))

	ctx = observability.WithBuildID(ctx, buildID)
	err := r.execute(ctx)
	return r.finish(ctx, err)
}

func (r *buildRun) execute(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
		skip bool
	}{
		{StageDiscover, r.discover, false},
		{StageParse, r.parse, false},
		{StageAssemble, r.assemble, false},
		{StageRender, r.render, false},
		{StageVerify, r.verify, !r.cfg.Build.VerifyLinks},
		{StageWrite, r.write, r.req.DryRun},
	}
	for _, st := range steps {
		if st.skip {
			continue
		}
		if err := r.stage(ctx, st.name, st.fn); err != nil {
			return err
		}
	}
	return nil
}

func (r *buildRun) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		r.svc.recorder.IncStageResult(name, metrics.ResultCanceled)
		return err
	}
	ctx = observability.WithStage(ctx, name)
	start := time.Now()
	err := fn(ctx)
	d := time.Since(start)
	r.svc.recorder.ObserveStageDuration(name, d)
	r.report.stage(name, d)

	switch {
	case err == nil:
		r.svc.recorder.IncStageResult(name, metrics.ResultSuccess)
		observability.DebugContext(ctx, "Stage complete", logfields.DurationMS(float64(d.Microseconds())/1000))
	case ctx.Err() != nil:
		r.svc.recorder.IncStageResult(name, metrics.ResultCanceled)
		observability.WarnContext(ctx, "Stage canceled")
	default:
		r.svc.recorder.IncStageResult(name, metrics.ResultFatal)
		observability.ErrorContext(ctx, "Stage failed", logfields.Error(err))
	}
	return err
}

func (r *buildRun) discover(ctx context.Context) error {
	d, err := docs.NewDiscovery(r.cfg.Content.Dir, r.cfg.Content.Include, r.cfg.Content.Exclude)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid content globs").Build()
	}
	res, err := d.Discover(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to discover documentation").
			WithContext("content_dir", r.cfg.Content.Dir).
			Build()
	}
	r.discovered = res
	r.result.Documents = len(res.Docs)
	r.report.Documents = len(res.Docs)
	r.log.Info("Discovered sources", logfields.Count(len(res.Docs)), slog.Int("assets", len(res.Assets)))
	return nil
}

func (r *buildRun) parse(ctx context.Context) error {
	p, err := parseAll(ctx, r.cfg.Content.Dir, r.discovered.Docs, r.cfg.Build.Workers,
		docmodel.Options{BasePath: r.cfg.Site.BasePath})
	if err != nil {
		return err
	}
	r.parsed = p
	r.issues = append(r.issues, p.Diagnostics...)

	unreadable := append(append([]string(nil), r.discovered.Unreadable...), p.Unreadable...)
	if len(unreadable) == 0 {
		return nil
	}
	for _, u := range unreadable {
		r.issues = append(r.issues, diagnostics.Diagnostic{
			Code:     diagnostics.CodeUnreadableFile,
			Severity: diagnostics.SeverityError,
			Path:     u,
			Message:  "file could not be read",
		})
	}
	return errors.FileSystemError(fmt.Sprintf("%d source paths could not be read", len(unreadable))).
		WithCause(ErrUnreadableFiles).
		WithSeverity(errors.SeverityFatal).
		WithContext("paths", unreadable).
		Build()
}

func (r *buildRun) assemble(_ context.Context) error {
	s, err := site.Assemble(r.parsed.Docs, site.Options{BasePath: r.cfg.Site.BasePath})
	if err != nil {
		for _, c := range site.Collisions(err) {
			r.issues = append(r.issues, diagnostics.Diagnostic{
				Code:     diagnostics.CodeDuplicateCanonicalPath,
				Severity: diagnostics.SeverityError,
				Path:     c.Sources[0],
				Target:   c.Canonical,
				Message:  c.String(),
			})
		}
		return err
	}
	r.site = s
	r.issues = append(r.issues, s.Diagnostics...)
	r.result.Pages = len(s.Pages)
	r.report.Pages = len(s.Pages)
	r.svc.recorder.SetPages(len(s.Pages))
	return nil
}

func (r *buildRun) render(ctx context.Context) error {
	rd := render.New(render.Options{
		SiteTitle: r.cfg.Site.Title,
		BaseURL:   r.cfg.Site.BaseURL,
		Lang:      r.cfg.Site.Language,
		Version:   version.Version,
		BasePath:  r.cfg.Site.BasePath,
	})
	r.pages = make([]rendered, 0, len(r.site.Pages))
	for _, p := range r.site.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := rd.Page(r.site, p)
		if err != nil {
			return errors.WrapError(err, errors.CategoryRender, "failed to render page").
				WithContext("path", p.Doc.RelPath).
				WithContext("canonical", p.Canonical()).
				Build()
		}
		r.pages = append(r.pages, rendered{
			Canonical:   p.Canonical(),
			Source:      p.Doc.RelPath,
			Output:      route.OutputFile(p.Canonical()),
			Fingerprint: p.Doc.Fingerprint,
			HTML:        out,
		})
	}
	return nil
}

// verify checks every href and src in the rendered pages, which catches
// targets in raw markup and images that point at missing assets.
func (r *buildRun) verify(_ context.Context) error {
	known := r.site.Table.Paths()
	for _, a := range r.discovered.Assets {
		known = append(known, "/"+assetOutput(r.cfg.Site.BasePath, a))
	}
	v, err := linkverify.NewVerifier(r.cfg.Site.BaseURL, known)
	if err != nil {
		return err
	}
	for _, p := range r.pages {
		broken, err := v.Verify(p.Canonical, bytes.NewReader(p.HTML))
		if err != nil {
			return errors.WrapError(err, errors.CategoryLink, "failed to verify rendered page").
				WithContext("path", p.Source).
				Build()
		}
		for _, l := range broken {
			r.issues = append(r.issues, diagnostics.Diagnostic{
				Code:     diagnostics.CodeBrokenLink,
				Severity: diagnostics.SeverityWarning,
				Path:     p.Source,
				Target:   l.URL,
				Message:  fmt.Sprintf("rendered <%s %s> points to a missing page or asset", l.Tag, l.Attribute),
			})
		}
	}
	return nil
}

func (r *buildRun) write(ctx context.Context) error {
	root := r.cfg.Output.Dir
	manifestPath := filepath.Join(root, manifest.FileName)

	var previous *manifest.Manifest
	if r.cfg.Output.Clean {
		if err := guardClean(root); err != nil {
			return err
		}
		if err := cleanOutput(root); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to clean output directory").
				WithContext("output", root).
				Build()
		}
	} else {
		prev, err := manifest.Load(manifestPath)
		if err != nil {
			r.log.Warn("Ignoring unreadable manifest", logfields.Path(manifestPath), logfields.Error(err))
		}
		previous = prev
	}

	pw := &pageWriter{root: root, previous: previous}
	m := &manifest.Manifest{BuildID: r.result.BuildID, Generator: version.String(), Timestamp: r.result.StartTime}
	for _, p := range r.pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry, changed, err := pw.write(p)
		if err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to write page").
				WithContext("output", p.Output).
				Build()
		}
		m.Pages = append(m.Pages, entry)
		if changed {
			r.result.Written++
			r.log.Debug("Wrote page", logfields.Canonical(p.Canonical), logfields.File(p.Output))
		} else {
			r.result.Unchanged++
		}
	}
	r.svc.recorder.AddPagesWritten(r.result.Written)

	for _, a := range r.discovered.Assets {
		rel := assetOutput(r.cfg.Site.BasePath, a)
		if _, err := copyAsset(root, rel, a); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to copy asset").
				WithContext("path", a.RelativePath).
				Build()
		}
		r.result.Assets++
	}

	m.SourceHash = r.hashSources()
	m.Sort()
	data, err := m.ToJSON()
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to encode manifest").Build()
	}
	if err := writeAtomic(manifestPath, data); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write manifest").Build()
	}

	r.report.Written = r.result.Written
	r.report.Unchanged = r.result.Unchanged
	r.report.Assets = r.result.Assets
	return nil
}

func (r *buildRun) finish(ctx context.Context, err error) (*BuildResult, error) {
	diagnostics.Sort(r.issues)
	r.result.Diagnostics = r.issues
	for _, d := range r.issues {
		observability.DebugContext(ctx, "Content diagnostic",
			logfields.File(d.Path), logfields.Code(string(d.Code)), logfields.Error(d.Err()))
	}

	status := BuildStatusSuccess
	switch {
	case err != nil && (stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)):
		status = BuildStatusCancelled
	case err != nil:
		status = BuildStatusFailed
	case len(r.issues) > 0 && r.cfg.Build.FailOnWarnings:
		status = BuildStatusFailed
		err = errors.BuildError(fmt.Sprintf("build produced %d diagnostics", len(r.issues))).
			WithCause(ErrWarnings).
			WithContext("count", len(r.issues)).
			Build()
	case len(r.issues) > 0:
		status = BuildStatusWarning
	}

	r.result.Status = status
	r.result.EndTime = time.Now()
	r.result.Duration = r.result.EndTime.Sub(r.result.StartTime)
	r.report.finish(status, r.issues, err)

	rec := r.svc.recorder
	rec.IncBuildOutcome(outcomeLabel(status))
	rec.ObserveBuildDuration(r.result.Duration)
	for code, n := range diagnostics.CountByCode(r.issues) {
		rec.AddDiagnostics(string(code), n)
	}

	if !r.req.DryRun {
		if perr := r.report.Persist(r.cfg.Output.Dir); perr != nil {
			r.log.Warn("Failed to persist build report", logfields.Error(perr))
		}
		r.recordHistory(context.WithoutCancel(ctx))
	}

	r.log.Info("Build finished",
		slog.String("status", string(status)),
		logfields.Count(len(r.issues)),
		logfields.DurationMS(float64(r.result.Duration.Microseconds())/1000),
		slog.String("summary", r.report.Summary()))
	return r.result, err
}

func (r *buildRun) recordHistory(ctx context.Context) {
	if r.svc.history == nil {
		return
	}
	rec := history.Record{
		BuildID:     r.result.BuildID,
		StartedAt:   r.result.StartTime,
		Duration:    r.result.Duration,
		Outcome:     string(r.result.Status),
		Pages:       r.result.Pages,
		Written:     r.result.Written,
		Diagnostics: len(r.issues),
	}
	rec.SourceHash = r.hashSources()
	if data, err := r.report.JSON(); err == nil {
		rec.Report = data
	}
	if err := r.svc.history.Append(ctx, rec); err != nil {
		r.log.Warn("Failed to record build history", logfields.Error(err))
	}
}

// hashSources fingerprints the discovered source set once per run.
func (r *buildRun) hashSources() string {
	if r.sourceHash != "" || r.discovered == nil {
		return r.sourceHash
	}
	hash, err := docs.ComputeDocsHash(r.discovered.Docs)
	if err != nil {
		r.log.Debug("Failed to hash sources", logfields.Error(err))
		return ""
	}
	r.sourceHash = hash
	return hash
}

func outcomeLabel(s BuildStatus) metrics.BuildOutcomeLabel {
	switch s {
	case BuildStatusSuccess:
		return metrics.BuildOutcomeSuccess
	case BuildStatusWarning:
		return metrics.BuildOutcomeWarning
	case BuildStatusCancelled:
		return metrics.BuildOutcomeCanceled
	default:
		return metrics.BuildOutcomeFailed
	}
}

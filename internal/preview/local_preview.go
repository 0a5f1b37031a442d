// Package preview serves the built site locally and rebuilds it when the
// content directory changes.
package preview

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
)

// StatusPath serves the outcome of the most recent build as JSON.
const StatusPath = "/__docsite/status"

// Options configures a preview Server.
type Options struct {
	Config  *config.Config
	Service build.BuildService
	// Registry backs /metrics. Nil means a fresh registry.
	Registry *prom.Registry
	// OnBuild is called after every build.
	OnBuild func(*build.BuildResult, error)
}

// Server builds the site, serves the output directory and rebuilds on change.
type Server struct {
	cfg      *config.Config
	service  build.BuildService
	registry *prom.Registry
	onBuild  func(*build.BuildResult, error)
	absDocs  string
	absOut   string
	status   buildStatus

	ready chan struct{}
	addr  string
}

// buildStatus tracks the current build state for error display.
type buildStatus struct {
	mu           sync.RWMutex
	last         *build.BuildResult
	lastError    error
	hasGoodBuild bool
}

func (bs *buildStatus) set(res *build.BuildResult, err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.last = res
	bs.lastError = err
	if err == nil && res != nil && res.Status.IsSuccess() {
		bs.hasGoodBuild = true
	}
}

func (bs *buildStatus) get() (*build.BuildResult, error, bool) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.last, bs.lastError, bs.hasGoodBuild
}

// New validates the content directory and returns a Server.
func New(opts Options) (*Server, error) {
	if opts.Config == nil || opts.Service == nil {
		return nil, errors.ValidationError("preview requires a config and a build service").Build()
	}
	absDocs, err := filepath.Abs(opts.Config.Content.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve content dir: %w", err)
	}
	if st, statErr := os.Stat(absDocs); statErr != nil || !st.IsDir() {
		return nil, errors.ConfigError("content dir not found or not a directory").
			WithContext("content_dir", absDocs).
			Build()
	}
	absOut, err := filepath.Abs(opts.Config.Output.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve output dir: %w", err)
	}
	reg := opts.Registry
	if reg == nil {
		reg = prom.NewRegistry()
	}
	return &Server{
		cfg:      opts.Config,
		service:  opts.Service,
		registry: reg,
		onBuild:  opts.OnBuild,
		absDocs:  absDocs,
		absOut:   absOut,
		ready:    make(chan struct{}),
	}, nil
}

// Ready is closed once the server listens and the initial build finished.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr returns the listen address. Valid after Ready.
func (s *Server) Addr() string { return s.addr }

// Handler serves the output directory, /metrics and the status endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(s.registry))
	mux.HandleFunc(StatusPath, s.handleStatus)
	files := http.FileServer(http.Dir(s.absOut))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if _, err, good := s.status.get(); !good {
			msg := "no successful build yet"
			if err != nil {
				msg = err.Error()
			}
			http.Error(w, msg, http.StatusServiceUnavailable)
			return
		}
		files.ServeHTTP(w, r)
	})
	return mux
}

type statusResponse struct {
	BuildID     string `json:"build_id,omitempty"`
	Status      string `json:"status"`
	Pages       int    `json:"pages"`
	Diagnostics int    `json:"diagnostics"`
	Error       string `json:"error,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	res, err, _ := s.status.get()
	resp := statusResponse{Status: "pending"}
	if res != nil {
		resp.BuildID = res.BuildID
		resp.Status = string(res.Status)
		resp.Pages = res.Pages
		resp.Diagnostics = len(res.Diagnostics)
	}
	if err != nil {
		resp.Error = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Run performs the initial build, serves until ctx is done and rebuilds after
// every debounced burst of content changes.
func (s *Server) Run(ctx context.Context) error {
	s.rebuild(ctx)

	ln, err := net.Listen("tcp", s.cfg.Serve.Addr)
	if err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "failed to listen").
			WithContext("addr", s.cfg.Serve.Addr).
			Build()
	}
	s.addr = ln.Addr().String()
	httpServer := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}

	watcher, err := setupFileWatcher(s.absDocs)
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer func() { _ = watcher.Close() }()

	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	slog.Info("Preview server listening", logfields.Addr(s.addr), slog.String("url", "http://"+s.addr+"/"))

	deb := newDebouncer(s.cfg.Serve.DebounceDuration())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.rebuildWorker(ctx, deb.C())
	}()
	close(s.ready)

	loopErr := s.runLoop(ctx, watcher, deb, serveErr)

	deb.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	wg.Wait()
	slog.Info("Preview server stopped")
	return loopErr
}

func (s *Server) runLoop(ctx context.Context, watcher *fsnotify.Watcher, deb *debouncer, serveErr <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-serveErr:
			if ok && err != nil {
				return errors.WrapError(err, errors.CategoryRuntime, "preview server failed").Build()
			}
			serveErr = nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			s.handleFileEvent(watcher, ev, deb.Trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// rebuildWorker runs one build per signal. Signals arriving during a build
// coalesce into exactly one follow-up build.
func (s *Server) rebuildWorker(ctx context.Context, signals <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-signals:
			slog.Info("Change detected; rebuilding site")
			s.rebuild(ctx)
		}
	}
}

func (s *Server) rebuild(ctx context.Context) {
	res, err := s.service.Run(ctx, build.BuildRequest{Config: s.cfg})
	if err != nil {
		slog.Warn("Rebuild failed", logfields.Error(err))
	}
	s.status.set(res, err)
	if s.onBuild != nil {
		s.onBuild(res, err)
	}
}

// handleFileEvent triggers a rebuild for relevant events and watches new directories.
func (s *Server) handleFileEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if shouldIgnoreEvent(ev.Name) || s.insideOutput(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(watcher, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func (s *Server) insideOutput(p string) bool {
	rel, err := filepath.Rel(s.absOut, p)
	return err == nil && (rel == "." || !strings.HasPrefix(rel, ".."))
}

// setupFileWatcher creates a watcher covering every directory below root.
func setupFileWatcher(root string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	if err := addDirsRecursive(watcher, root); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	return watcher, nil
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if err := w.Add(path); err != nil {
				slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent returns true for filesystem events that should not trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}

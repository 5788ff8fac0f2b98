// Package scanner walks library roots and synchronizes every sidecar it finds.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mwantia/nfosync/pkg/db/models"
	"github.com/mwantia/nfosync/pkg/log"
	"github.com/mwantia/nfosync/pkg/metrics"
)

// DefaultSkipNames are sidecar stems that belong to templates, not items.
var DefaultSkipNames = []string{"movie", "template", "sample", "example", "test", "default", "blank"}

// Syncer synchronizes one sidecar into the catalog.
type Syncer interface {
	SyncItemFromDisk(ctx context.Context, code, sidecarPath string) (*models.MediaItem, error)
}

// Config configures the scanner
type Config struct {
	// Workers is the number of concurrent item syncs
	Workers int
	// SidecarExtensions are matched case-insensitively, with or without dot
	SidecarExtensions []string
	// SkipNames are sidecar stems ignored as templates, case-insensitive
	SkipNames []string
	// SkipHidden skips files and directories starting with "."
	SkipHidden bool
}

// DefaultConfig returns the defaults used by the CLI when nothing is configured
func DefaultConfig() Config {
	return Config{
		Workers:           4,
		SidecarExtensions: []string{".nfo"},
		SkipNames:         DefaultSkipNames,
		SkipHidden:        true,
	}
}

// Scanner runs library scans. Only one scan runs at a time per Scanner.
type Scanner struct {
	syncer     Syncer
	logger     log.LoggerService
	workers    int
	extensions map[string]struct{}
	skipNames  map[string]struct{}
	skipHidden bool
	running    atomic.Bool
}

func New(syncer Syncer, logger log.LoggerService, cfg Config) *Scanner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if len(cfg.SidecarExtensions) == 0 {
		cfg.SidecarExtensions = []string{".nfo"}
	}

	s := &Scanner{
		syncer:     syncer,
		logger:     logger,
		workers:    cfg.Workers,
		extensions: make(map[string]struct{}),
		skipNames:  make(map[string]struct{}),
		skipHidden: cfg.SkipHidden,
	}

	for _, ext := range cfg.SidecarExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s.extensions[ext] = struct{}{}
	}
	for _, name := range cfg.SkipNames {
		s.skipNames[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}

	return s
}

// syncJob is one sidecar handed to the worker pool
type syncJob struct {
	code string
	path string
}

// run holds the mutable state of a single scan
type run struct {
	report *Report
	mu     sync.Mutex
	// code to the first path claiming it
	seen map[string]string
	// resolved absolute sidecar paths already visited
	files map[string]struct{}
}

// visit marks file as handled. It returns false when the same sidecar was
// already reached through a nested or linked root.
func (r *run) visit(file string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.files[file]; ok {
		return false
	}
	r.files[file] = struct{}{}
	return true
}

func (r *run) claim(code, path string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if canonical, ok := r.seen[code]; ok {
		return canonical, false
	}
	r.seen[code] = path
	return path, true
}

func (r *run) record(fn func(report *Report)) {
	r.mu.Lock()
	fn(r.report)
	r.mu.Unlock()
}

// Scan walks every root in order and syncs each sidecar through the worker
// pool. Per-item failures end up in the report; the returned error is only
// set when no root could be walked. When ctx is cancelled no further items
// are started and in-flight syncs finish.
func (s *Scanner) Scan(ctx context.Context, roots []string) (*Report, error) {
	if len(roots) == 0 {
		return nil, ErrNoRoots
	}
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	defer s.running.Store(false)

	r := &run{
		report: &Report{
			ID:        uuid.NewString(),
			Roots:     append([]string(nil), roots...),
			StartedAt: time.Now().UTC(),
		},
		seen:  make(map[string]string),
		files: make(map[string]struct{}),
	}

	s.logger.Info("Starting scan %s over %d roots with %d workers", r.report.ID, len(roots), s.workers)
	metrics.ScanInProgress.Set(1)
	defer metrics.ScanInProgress.Set(0)

	jobs := make(chan syncJob)
	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go s.worker(ctx, r, jobs, &wg)
	}

	failedRoots := 0
	for _, root := range roots {
		if ctx.Err() != nil {
			break
		}
		if !s.walkRoot(ctx, r, root, jobs) {
			failedRoots++
		}
	}

	// Close jobs channel to signal workers to stop
	close(jobs)
	wg.Wait()

	report := r.report
	sort.Slice(report.Errors, func(i, j int) bool {
		return report.Errors[i].Path < report.Errors[j].Path
	})
	report.FinishedAt = time.Now().UTC()
	report.State = StateCompleted
	if ctx.Err() != nil {
		report.State = StateCancelled
	}

	var err error
	if failedRoots == len(roots) {
		err = fmt.Errorf("%w: %d of %d", ErrAllRootsFailed, failedRoots, len(roots))
	}

	s.observe(report, err)
	s.logger.Info("Scan %s %s in %v: %d processed, %d skipped, %d conflicts, %d errors",
		report.ID, report.State, report.Duration(), report.Processed, report.Skipped,
		len(report.Conflicts), len(report.Errors))

	return report, err
}

// walkRoot walks one root and enqueues its sidecars. It returns false when
// the root itself could not be walked. A linked root is walked at its target
// while reported paths stay below root.
func (s *Scanner) walkRoot(ctx context.Context, r *run, root string, jobs chan<- syncJob) bool {
	info, err := os.Stat(root)
	if err == nil && !info.IsDir() {
		err = errors.New("not a directory")
	}
	var resolved string
	if err == nil {
		resolved, err = resolveRoot(root)
	}
	if err != nil {
		s.logger.Error("Unable to walk root '%s': %v", root, err)
		r.record(func(report *Report) {
			report.WalkErrors = append(report.WalkErrors, &WalkError{Root: root, Path: root, Err: err})
		})
		return false
	}

	rootOK := true
	_ = filepath.WalkDir(resolved, func(file string, d fs.DirEntry, err error) error {
		// Check for cancellation
		if ctx.Err() != nil {
			return fs.SkipAll
		}

		path := displayPath(root, resolved, file)
		if err != nil {
			s.logger.Warn("Error accessing path '%s': %v", path, err)
			if file == resolved {
				rootOK = false
			}
			r.record(func(report *Report) {
				report.WalkErrors = append(report.WalkErrors, &WalkError{Root: root, Path: path, Err: err})
			})
			return nil
		}

		if file == resolved {
			return nil
		}

		name := d.Name()
		if s.skipHidden && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(name)
		if _, ok := s.extensions[strings.ToLower(ext)]; !ok {
			return nil
		}

		if !r.visit(file) {
			s.logger.Debug("Sidecar '%s' already visited through another root", path)
			return nil
		}

		code := strings.TrimSuffix(name, ext)
		if _, skip := s.skipNames[strings.ToLower(code)]; skip || code == "" {
			s.logger.Debug("Skipping template sidecar '%s'", path)
			r.record(func(report *Report) {
				report.Skipped++
				report.SkippedPaths = append(report.SkippedPaths, path)
			})
			metrics.ScanItemsTotal.WithLabelValues("skipped").Inc()
			return nil
		}

		if canonical, ok := r.claim(code, path); !ok {
			conflict := &ConflictError{Code: code, Path: path, CanonicalPath: canonical}
			s.logger.Warn("%v", conflict)
			r.record(func(report *Report) {
				report.Skipped++
				report.Conflicts = append(report.Conflicts, conflict)
			})
			metrics.ScanItemsTotal.WithLabelValues("conflict").Inc()
			return nil
		}

		select {
		case jobs <- syncJob{code: code, path: path}:
		case <-ctx.Done():
			return fs.SkipAll
		}
		return nil
	})

	return rootOK
}

// resolveRoot returns the absolute, link-free form of root.
func resolveRoot(root string) (string, error) {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}

// displayPath maps a walked file below resolved back below root.
func displayPath(root, resolved, file string) string {
	rel, err := filepath.Rel(resolved, file)
	if err != nil {
		return file
	}
	return filepath.Join(root, rel)
}

// worker syncs jobs until the channel closes. Syncs run on a context that
// ignores cancellation so a started item always completes.
func (s *Scanner) worker(ctx context.Context, r *run, jobs <-chan syncJob, wg *sync.WaitGroup) {
	defer wg.Done()

	syncCtx := context.WithoutCancel(ctx)
	for job := range jobs {
		if ctx.Err() != nil {
			continue
		}

		_, err := s.syncer.SyncItemFromDisk(syncCtx, job.code, job.path)
		if err != nil {
			s.logger.Warn("Failed to sync '%s': %v", job.path, err)
			r.record(func(report *Report) {
				report.Errors = append(report.Errors, ItemError{Code: job.code, Path: job.path, Err: err})
			})
			metrics.ScanItemsTotal.WithLabelValues("error").Inc()
			continue
		}

		r.record(func(report *Report) {
			report.Processed++
		})
		metrics.ScanItemsTotal.WithLabelValues("processed").Inc()
	}
}

func (s *Scanner) observe(report *Report, err error) {
	state := string(report.State)
	if err != nil {
		state = "failed"
	}
	metrics.ScanRunsTotal.WithLabelValues(state).Inc()
	metrics.ScanDuration.Observe(report.Duration().Seconds())
	metrics.ScanLastRunTimestamp.Set(float64(report.FinishedAt.Unix()))
}

package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/mealsync/core"
	"github.com/poiesic/mealsync/ingredients"
	"github.com/poiesic/mealsync/registry"
	"github.com/poiesic/mealsync/storage"
)

const (
	// DefaultMaxRetryPasses is the number of passes over failed documents
	// after the first pass.
	DefaultMaxRetryPasses = 10

	defaultPreloadAttempts = 3
	defaultPreloadDelay    = 500 * time.Millisecond
	defaultPassDelay       = time.Second
)

// Pipeline orchestrates the import of a batch of source documents.
type Pipeline struct {
	registry       *registry.Registry
	newClient      ClientFactory
	merger         *ingredients.Merger
	ledger         storage.LedgerRepository
	pool           *ants.Pool
	poolSize       int
	maxRetryPasses int
	portions       int
	imagesDir      string
	skipUnchanged  bool
	passDelay      time.Duration
	preloadDelay   time.Duration
	progress       io.Writer
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the number of concurrent workers.
// A size of 1 or less processes documents sequentially in input order.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.poolSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "ingestion")
		return nil
	}
}

// WithMaxRetryPasses sets how many times the failed subset is retried.
// Default is DefaultMaxRetryPasses.
func WithMaxRetryPasses(passes int) Option {
	return func(p *Pipeline) error {
		if passes < 0 {
			return fmt.Errorf("max retry passes must not be negative, got %d", passes)
		}
		p.maxRetryPasses = passes
		return nil
	}
}

// WithPortions selects the portion size whose SKUs drive ingredient
// quantities. Zero ignores SKUs.
func WithPortions(portions int) Option {
	return func(p *Pipeline) error {
		if portions < 0 {
			return fmt.Errorf("portions must not be negative, got %d", portions)
		}
		p.portions = portions
		return nil
	}
}

// WithMerger replaces the default ingredient merger.
func WithMerger(merger *ingredients.Merger) Option {
	return func(p *Pipeline) error {
		if merger != nil {
			p.merger = merger
		}
		return nil
	}
}

// WithLedger records every attempt in ledger.
func WithLedger(ledger storage.LedgerRepository) Option {
	return func(p *Pipeline) error {
		p.ledger = ledger
		return nil
	}
}

// WithSkipUnchanged skips documents whose content matches a previous
// successful import in the ledger.
func WithSkipUnchanged(skip bool) Option {
	return func(p *Pipeline) error {
		p.skipUnchanged = skip
		return nil
	}
}

// WithImagesDir sets the directory holding downloaded recipe images.
func WithImagesDir(dir string) Option {
	return func(p *Pipeline) error {
		p.imagesDir = dir
		return nil
	}
}

// WithProgress writes a progress line per pass to w.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// WithPassDelay sets the pause before each retry pass.
func WithPassDelay(d time.Duration) Option {
	return func(p *Pipeline) error {
		p.passDelay = d
		return nil
	}
}

// WithPreloadDelay sets the base backoff between registry preload attempts.
func WithPreloadDelay(d time.Duration) Option {
	return func(p *Pipeline) error {
		p.preloadDelay = d
		return nil
	}
}

// NewPipeline creates a new import pipeline.
func NewPipeline(reg *registry.Registry, newClient ClientFactory, opts ...Option) (*Pipeline, error) {
	if reg == nil {
		return nil, ErrRegistryRequired
	}
	if newClient == nil {
		return nil, ErrClientFactoryRequired
	}

	p := &Pipeline{
		registry:       reg,
		newClient:      newClient,
		poolSize:       1,
		maxRetryPasses: DefaultMaxRetryPasses,
		passDelay:      defaultPassDelay,
		preloadDelay:   defaultPreloadDelay,
		logger:         slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	if p.merger == nil {
		merger, err := ingredients.NewMerger(ingredients.WithLogger(p.logger))
		if err != nil {
			return nil, err
		}
		p.merger = merger
	}

	if p.poolSize > 1 {
		pool, err := ants.NewPool(p.poolSize)
		if err != nil {
			return nil, err
		}
		p.pool = pool
	}

	return p, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Run imports the documents at paths. It returns an error only when the run
// cannot start (client creation or registry preload failed) or ctx ends;
// document failures are reported in the Report.
func (p *Pipeline) Run(ctx context.Context, paths []string) (*Report, error) {
	if len(paths) == 0 {
		return &Report{}, nil
	}

	processors, err := p.processors()
	if err != nil {
		return nil, err
	}

	err = RetryWithBackoff(ctx, func() error {
		return p.registry.Preload(ctx, processors[0].client)
	}, defaultPreloadAttempts, p.preloadDelay)
	if err != nil {
		return nil, fmt.Errorf("preload catalog: %w", err)
	}

	latest := make([]documentResult, len(paths))
	pending := make([]int, len(paths))
	for i := range paths {
		pending[i] = i
	}

	passes := 0
	for pass := 0; pass <= p.maxRetryPasses && len(pending) > 0; pass++ {
		if pass > 0 {
			p.logger.Info("retrying failed documents", "pass", pass, "documents", len(pending))
			if err := sleep(ctx, p.passDelay); err != nil {
				return newReport(latest, passes), err
			}
		}

		results := p.runPass(ctx, processors, paths, pending, pass)
		passes++

		pending = pending[:0:0]
		for _, r := range results {
			latest[r.index] = r
			if !r.outcome.Success {
				pending = append(pending, r.index)
			}
		}

		if err := ctx.Err(); err != nil {
			return newReport(latest, passes), err
		}
	}

	return newReport(latest, passes), nil
}

// processors creates one processor per worker, each with its own client.
func (p *Pipeline) processors() ([]*processor, error) {
	procs := make([]*processor, p.poolSize)
	for i := range procs {
		client, err := p.newClient()
		if err != nil {
			return nil, fmt.Errorf("create catalog client: %w", err)
		}
		procs[i] = &processor{
			client:        client,
			resolver:      p.registry.Bind(client),
			merger:        p.merger,
			ledger:        p.ledger,
			portions:      p.portions,
			imagesDir:     p.imagesDir,
			skipUnchanged: p.skipUnchanged,
			logger:        p.logger,
		}
	}
	return procs, nil
}

// runPass processes the documents at the pending indices once and returns
// their results.
func (p *Pipeline) runPass(ctx context.Context, processors []*processor, paths []string, pending []int, pass int) []documentResult {
	var tracker *ProgressTracker
	if p.progress != nil {
		label := ""
		if pass > 0 {
			label = fmt.Sprintf("Retry %d", pass)
		}
		tracker = NewProgressTracker(p.progress, label, len(pending))
		tracker.Start()
		defer func() {
			p.logger.Debug("pass finished", "pass", pass, "elapsed", tracker.Finish())
		}()
	}

	completed := func(r documentResult) {
		p.logOutcome(r.outcome, pass)
		if tracker != nil {
			tracker.Record(r.outcome.Success)
		}
	}

	if p.pool == nil || len(pending) == 1 {
		return p.runSequential(ctx, processors[0], paths, pending, completed)
	}
	return p.runPooled(ctx, processors, paths, pending, completed)
}

func (p *Pipeline) runSequential(ctx context.Context, proc *processor, paths []string, pending []int, completed func(documentResult)) []documentResult {
	results := make([]documentResult, 0, len(pending))
	for _, idx := range pending {
		r := proc.process(ctx, idx, paths[idx])
		completed(r)
		results = append(results, r)
	}
	return results
}

func (p *Pipeline) runPooled(ctx context.Context, processors []*processor, paths []string, pending []int, completed func(documentResult)) []documentResult {
	jobs := make(chan int)
	out := make(chan documentResult)

	var wg sync.WaitGroup
	started := 0
	for _, proc := range processors {
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			for idx := range jobs {
				out <- proc.process(ctx, idx, paths[idx])
			}
		})
		if err != nil {
			wg.Done()
			p.logger.Error("failed to start worker", "err", err)
			continue
		}
		started++
	}
	if started == 0 {
		close(jobs)
		return p.runSequential(ctx, processors[0], paths, pending, completed)
	}

	go func() {
		defer close(jobs)
		for _, idx := range pending {
			jobs <- idx
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]documentResult, 0, len(pending))
	for r := range out {
		completed(r)
		results = append(results, r)
	}
	return results
}

func (p *Pipeline) logOutcome(outcome core.ImportOutcome, pass int) {
	switch {
	case outcome.Skipped:
		p.logger.Info("unchanged, skipped", "document", outcome.DocumentID)
	case outcome.Success:
		p.logger.Info("imported", "document", outcome.DocumentID, "pass", pass)
	default:
		p.logger.Warn("import failed", "document", outcome.DocumentID, "pass", pass, "stage", outcome.Stage, "err", outcome.ErrorMessage)
	}
}

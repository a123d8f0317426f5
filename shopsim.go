// Package shopsim evaluates e-commerce websites by simulating how specific
// customer personas shop on them. It plans a persona-customized task list for
// a job, drives a real browser through those tasks at the persona's pace, and
// scores the site on navigation, design, and findability.
//
// Usage:
//
//	sim, err := shopsim.New(nil, nil, logger)
//	defer sim.Close()
//
//	results, err := sim.Evaluate(ctx, "https://shop.example.com", profile, "product_discovery")
package shopsim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/shopsim/browser"
	"github.com/BaSui01/shopsim/catalog"
	"github.com/BaSui01/shopsim/config"
	"github.com/BaSui01/shopsim/executor"
	"github.com/BaSui01/shopsim/internal/metrics"
	"github.com/BaSui01/shopsim/persona"
	"github.com/BaSui01/shopsim/planner"
)

// Simulator is the top-level entry point wiring the job catalog, the task
// planner, the browser session pool, and the executor together.
type Simulator struct {
	cfg      *config.Config
	registry *catalog.Registry
	pool     *browser.SessionPool
	metrics  *metrics.Collector
	logger   *zap.Logger

	// Seeds per-evaluation RNGs; guarded because evaluations may run
	// concurrently.
	rng   *rand.Rand
	rngMu sync.Mutex
}

// New creates a Simulator. A nil cfg uses defaults, a nil collector disables
// metrics, and a nil logger discards logs.
func New(cfg *config.Config, collector *metrics.Collector, logger *zap.Logger) (*Simulator, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	} else if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	registry, err := catalog.NewRegistry(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build job catalog: %w", err)
	}

	seed := cfg.Evaluation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Simulator{
		cfg:      cfg,
		registry: registry,
		pool:     browser.NewSessionPool(cfg.BrowserPoolConfig(), collector, logger),
		metrics:  collector,
		logger:   logger.With(zap.String("component", "simulator")),
		rng:      rand.New(rand.NewSource(seed)),
	}, nil
}

// Jobs returns all job definitions in catalog order.
func (s *Simulator) Jobs() []catalog.JobDefinition {
	return s.registry.All()
}

// JobsForPersona returns the jobs applicable to the given persona tag.
func (s *Simulator) JobsForPersona(tag string) []catalog.JobDefinition {
	return s.registry.JobsForPersona(tag)
}

// Evaluate runs a single job for one persona against the target website and
// returns the full execution results including scores.
func (s *Simulator) Evaluate(ctx context.Context, websiteURL string, profile persona.Profile, jobID string) (*executor.JobExecutionResults, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	job, err := s.registry.Get(jobID)
	if err != nil {
		return nil, err
	}

	rng := s.childRNG()
	plan := planner.NewPlanner(rng, s.logger).Plan(profile, job)

	sub, sessionID, err := s.pool.AcquireContext()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire browser context: %w", err)
	}
	defer s.pool.ReleaseContext(sub, sessionID)

	pb, err := browser.NewPersonaBrowser(sub, profile, s.cfg.BrowserPoolConfig().Session, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create persona browser: %w", err)
	}

	start := time.Now()
	results := executor.NewExecutor(pb, plan, rng, s.logger).Execute(websiteURL)

	if s.metrics != nil {
		s.metrics.RecordEvaluation(jobID, results.Success, time.Since(start))
		for _, task := range results.TaskResults {
			s.metrics.RecordTaskResult(task.TaskID, task.Success)
		}
	}

	s.logger.Info("evaluation finished",
		zap.String("job_id", jobID),
		zap.String("website_url", websiteURL),
		zap.Bool("success", results.Success),
		zap.Float64("overall_score", results.OverallScore))
	return results, nil
}

// EvaluateJobs runs several jobs for one persona concurrently, bounded by
// evaluation.max_concurrent_jobs. Results keep the order of jobIDs. The first
// error cancels the remaining jobs.
func (s *Simulator) EvaluateJobs(ctx context.Context, websiteURL string, profile persona.Profile, jobIDs []string) ([]*executor.JobExecutionResults, error) {
	results := make([]*executor.JobExecutionResults, len(jobIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Evaluation.MaxConcurrentJobs)

	for i, jobID := range jobIDs {
		i, jobID := i, jobID
		g.Go(func() error {
			res, err := s.Evaluate(ctx, websiteURL, profile, jobID)
			if err != nil {
				return fmt.Errorf("job %s: %w", jobID, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close shuts down the browser session pool. Safe to call more than once.
func (s *Simulator) Close() {
	s.pool.Shutdown()
}

func (s *Simulator) childRNG() *rand.Rand {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return rand.New(rand.NewSource(s.rng.Int63()))
}

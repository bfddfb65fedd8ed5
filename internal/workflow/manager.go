package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"quaver/internal/config"
	"quaver/internal/library"
	"quaver/internal/logging"
	"quaver/internal/services"
	"quaver/internal/stage"
)

// Manager coordinates pipeline processing across worker lanes.
type Manager struct {
	cfg    *config.Config
	logger *slog.Logger
	stages []pipelineStage
}

type pipelineStage struct {
	name    string
	handler stage.Handler
}

// NewManager wires the four pipeline stages in execution order.
func NewManager(cfg *config.Config, logger *slog.Logger, assembler, indexer, resolver, planner stage.Handler) *Manager {
	return &Manager{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "workflow"),
		stages: []pipelineStage{
			{name: "assemble", handler: assembler},
			{name: "trackindex", handler: indexer},
			{name: "resolve", handler: resolver},
			{name: "pathplan", handler: planner},
		},
	}
}

// Process runs every group through the pipeline with at most the configured
// number of groups in flight at once. Results come back in input order, one
// per group, regardless of which groups failed along the way.
func (m *Manager) Process(ctx context.Context, groups []*library.Group) *Report {
	report := &Report{Started: time.Now(), Results: make([]GroupResult, len(groups))}
	if len(groups) == 0 {
		report.Finished = report.Started
		return report
	}

	workers := m.cfg.Workflow.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(groups) {
		workers = len(groups)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for lane := 0; lane < workers; lane++ {
		go func(lane int) {
			defer wg.Done()
			laneCtx := services.WithLane(ctx, fmt.Sprintf("lane-%d", lane))
			for idx := range jobs {
				report.Results[idx] = m.processGroup(laneCtx, groups[idx])
			}
		}(lane)
	}

	for idx := range groups {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	report.Finished = time.Now()
	return report
}

// processGroup runs one group through every stage in order. The first stage
// error ends the group's run and classifies its outcome; cancellation is
// always a plain failure, never a review item.
func (m *Manager) processGroup(ctx context.Context, group *library.Group) GroupResult {
	start := time.Now()

	run, err := library.NewGroupRun(group)
	if err != nil {
		return GroupResult{
			Run:      &library.GroupRun{Group: group},
			Outcome:  services.OutcomeFailed,
			Err:      err,
			Duration: time.Since(start),
		}
	}
	result := GroupResult{Run: run}

	groupCtx := services.WithRunID(services.WithGroup(ctx, group.Root), uuid.NewString())
	logger := logging.WithContext(groupCtx, m.logger)

	if err := groupCtx.Err(); err != nil {
		result.Outcome = services.OutcomeFailed
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	logger.Info("group started",
		logging.String(logging.FieldEventType, "group_start"),
		logging.String("name", group.Name()),
		logging.String("kind", string(group.Kind)),
		logging.Int("files", len(group.SongFiles)),
	)

	for _, ps := range m.stages {
		stageCtx := services.WithStage(groupCtx, ps.name)
		stageLogger := logging.WithContext(stageCtx, m.logger)
		stageStart := time.Now()
		stageLogger.Info("stage started",
			logging.String(logging.FieldEventType, "stage_start"),
		)

		err := ps.handler.Prepare(stageCtx, run)
		if err == nil {
			err = ps.handler.Execute(stageCtx, run)
		}
		if err != nil {
			result.Outcome = services.FailureOutcome(err)
			if errors.Is(err, context.Canceled) {
				result.Outcome = services.OutcomeFailed
			}
			result.Stage = ps.name
			result.Err = err
			result.Duration = time.Since(start)

			stageLogger.Error("stage failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "stage_failure"),
				logging.Alert("stage_failure"),
				logging.Duration("stage_duration", time.Since(stageStart)),
			)
			stageLogger.Warn("group abandoned",
				logging.String(logging.FieldEventType, "group_complete"),
				logging.String("outcome", string(result.Outcome)),
				logging.Duration("group_duration", result.Duration),
			)
			return result
		}

		stageLogger.Info("stage completed",
			logging.String(logging.FieldEventType, "stage_complete"),
			logging.Duration("stage_duration", time.Since(stageStart)),
		)
	}

	result.Outcome = services.OutcomePlanned
	result.Duration = time.Since(start)
	logger.Info("group planned",
		logging.String(logging.FieldEventType, "group_complete"),
		logging.String("outcome", string(result.Outcome)),
		logging.Int("songs", len(run.Songs)),
		logging.Duration("group_duration", result.Duration),
	)
	return result
}

// HealthCheck reports the readiness of every registered stage.
func (m *Manager) HealthCheck(ctx context.Context) []stage.Health {
	health := make([]stage.Health, 0, len(m.stages))
	for _, ps := range m.stages {
		health = append(health, ps.handler.HealthCheck(ctx))
	}
	return health
}

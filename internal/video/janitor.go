package video

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/consensuslabs/vodstream/internal/logger"
	"github.com/consensuslabs/vodstream/internal/metrics"
	"github.com/consensuslabs/vodstream/internal/video/layout"
)

// Janitor removes staged uploads and output directories left behind by a
// crash. Anything younger than the grace period is left alone, so the grace
// period must exceed the transcode timeout.
type Janitor struct {
	layout   layout.Layout
	repo     Repository
	grace    time.Duration
	interval time.Duration
	logger   logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewJanitor creates a new Janitor
func NewJanitor(l layout.Layout, repo Repository, grace, interval time.Duration, log logger.Logger, m *metrics.Metrics) *Janitor {
	if m == nil {
		m = metrics.NewUnregistered()
	}
	return &Janitor{
		layout:   l,
		repo:     repo,
		grace:    grace,
		interval: interval,
		logger:   log.WithFields(map[string]interface{}{logger.FieldComponent: "janitor"}),
		metrics:  m,
		now:      time.Now,
	}
}

// Run sweeps once and then every interval until ctx is done. A zero
// interval means a single sweep.
func (j *Janitor) Run(ctx context.Context) {
	j.sweepAndLog(ctx)
	if j.interval <= 0 {
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweepAndLog(ctx)
		}
	}
}

func (j *Janitor) sweepAndLog(ctx context.Context) {
	result, err := j.Sweep(ctx)
	if err != nil {
		j.logger.LogError(err, "Orphan sweep failed")
		return
	}
	if result.StagedRemoved > 0 || result.OutputRemoved > 0 {
		j.logger.LogInfo("Removed orphaned files", map[string]interface{}{
			"staged": result.StagedRemoved,
			"output": result.OutputRemoved,
		})
	}
}

// Sweep removes expired staged uploads and expired output directories
// that no catalog row points into.
func (j *Janitor) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	cutoff := j.now().Add(-j.grace)

	staged, err := j.layout.ListStaged()
	if err != nil {
		return result, err
	}
	for _, entry := range staged {
		if !entry.ModTime.Before(cutoff) {
			continue
		}
		if err := os.Remove(entry.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			j.logger.LogWarn("Failed to remove staged file", map[string]interface{}{"path": entry.Path, "error": err.Error()})
			continue
		}
		result.StagedRemoved++
		j.metrics.JanitorRemoved.WithLabelValues("staged").Inc()
	}

	outputs, err := j.layout.ListOutputs()
	if err != nil {
		return result, err
	}
	if len(outputs) == 0 {
		return result, nil
	}

	paths, err := j.repo.StreamPaths(ctx)
	if err != nil {
		return result, err
	}
	referenced := make(map[string]bool, len(paths))
	for _, p := range paths {
		dir, _, _ := strings.Cut(p, "/")
		referenced[dir] = true
	}

	for _, entry := range outputs {
		if referenced[entry.Name] || j.layout.IsActive(entry.Path) || !entry.ModTime.Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(entry.Path); err != nil {
			j.logger.LogWarn("Failed to remove orphaned output", map[string]interface{}{"path": entry.Path, "error": err.Error()})
			continue
		}
		result.OutputRemoved++
		j.metrics.JanitorRemoved.WithLabelValues("output").Inc()
	}

	return result, nil
}

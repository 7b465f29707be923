package video

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/consensuslabs/vodstream/internal/metrics"
	"github.com/consensuslabs/vodstream/testhelper"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func age(t *testing.T, path string, by time.Duration) {
	t.Helper()
	old := time.Now().Add(-by)
	require.NoError(t, os.Chtimes(path, old, old))
}

func TestJanitorSweep(t *testing.T) {
	p := newTestPipeline(t, testhelper.FFmpegSucceed)
	ctx := context.Background()
	grace := time.Hour

	// A catalogued stream that is old must survive.
	kept, err := p.service.Ingest(ctx, p.stage(t, "Kept"))
	require.NoError(t, err)
	keptDir := filepath.Join(p.layout.StreamRoot(), filepath.Dir(filepath.FromSlash(kept.FilePath)))
	age(t, keptDir, 2*grace)

	orphan, err := p.layout.Allocate()
	require.NoError(t, err)
	p.layout.Release(orphan)
	age(t, orphan.OutputDir, 2*grace)

	fresh, err := p.layout.Allocate()
	require.NoError(t, err)
	p.layout.Release(fresh)

	running, err := p.layout.Allocate()
	require.NoError(t, err)
	age(t, running.OutputDir, 2*grace)

	staleUpload := p.stage(t, "stale").SourcePath
	age(t, staleUpload, 2*grace)
	freshUpload := p.stage(t, "fresh").SourcePath

	m := metrics.NewUnregistered()
	janitor := NewJanitor(p.layout, p.repo, grace, 0, p.logger, m)
	result, err := janitor.Sweep(ctx)
	require.NoError(t, err)

	assert.Equal(t, SweepResult{StagedRemoved: 1, OutputRemoved: 1}, result)
	assert.DirExists(t, keptDir)
	assert.NoDirExists(t, orphan.OutputDir)
	assert.DirExists(t, fresh.OutputDir)
	assert.DirExists(t, running.OutputDir)
	assert.NoFileExists(t, staleUpload)
	assert.FileExists(t, freshUpload)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JanitorRemoved.WithLabelValues("output")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JanitorRemoved.WithLabelValues("staged")))
}

func TestJanitorKeepsOutputsWhenCatalogUnavailable(t *testing.T) {
	p := newTestPipeline(t, testhelper.FFmpegSucceed)
	repo := &MockRepository{}
	repo.On("StreamPaths", mock.Anything).Return(nil, errors.New("db down"))

	orphan, err := p.layout.Allocate()
	require.NoError(t, err)
	p.layout.Release(orphan)
	age(t, orphan.OutputDir, 2*time.Hour)

	janitor := NewJanitor(p.layout, repo, time.Hour, 0, p.logger, nil)
	_, err = janitor.Sweep(context.Background())

	assert.Error(t, err)
	assert.DirExists(t, orphan.OutputDir)
}

func TestJanitorRunSingleSweepWithoutInterval(t *testing.T) {
	p := newTestPipeline(t, testhelper.FFmpegSucceed)
	staleUpload := p.stage(t, "stale").SourcePath
	age(t, staleUpload, 2*time.Hour)

	done := make(chan struct{})
	go func() {
		NewJanitor(p.layout, p.repo, time.Hour, 0, p.logger, nil).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("janitor did not return without an interval")
	}
	assert.NoFileExists(t, staleUpload)
	assert.Len(t, p.logger.GetInfoMessages(), 1)
}

func TestJanitorRunStopsWithContext(t *testing.T) {
	p := newTestPipeline(t, testhelper.FFmpegSucceed)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		NewJanitor(p.layout, p.repo, time.Hour, 10*time.Millisecond, p.logger, nil).Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("janitor ignored cancellation")
	}
}

package video

import (
	"errors"
	"testing"

	"github.com/consensuslabs/vodstream/internal/video/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobHappyPath(t *testing.T) {
	job := NewJob("/staging/a.mp4")
	assert.Equal(t, JobReceived, job.State())

	require.NoError(t, job.Transition(JobValidated))
	require.NoError(t, job.Transition(JobTranscoding))
	require.NoError(t, job.Transition(JobCompleted))

	assert.True(t, job.State().IsTerminal())
	assert.Empty(t, job.ErrorDetail())
}

func TestJobRejectsIllegalTransitions(t *testing.T) {
	tests := []struct {
		name string
		path []JobState
		to   JobState
	}{
		{"skip validation", nil, JobTranscoding},
		{"complete without transcoding", []JobState{JobValidated}, JobCompleted},
		{"backwards", []JobState{JobValidated, JobTranscoding}, JobValidated},
		{"leave completed", []JobState{JobValidated, JobTranscoding, JobCompleted}, JobFailed},
		{"leave failed", []JobState{JobFailed}, JobValidated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewJob("src")
			for _, s := range tt.path {
				require.NoError(t, job.Transition(s))
			}
			before := job.State()
			assert.Error(t, job.Transition(tt.to))
			assert.Equal(t, before, job.State())
		})
	}
}

func TestJobFailFromEveryLiveState(t *testing.T) {
	for _, path := range [][]JobState{nil, {JobValidated}, {JobValidated, JobTranscoding}} {
		job := NewJob("src")
		for _, s := range path {
			require.NoError(t, job.Transition(s))
		}
		require.NoError(t, job.Fail(errors.New("boom")))
		assert.Equal(t, JobFailed, job.State())
		assert.Equal(t, "boom", job.ErrorDetail())
	}

	job := NewJob("src")
	require.NoError(t, job.Fail(errors.New("first")))
	assert.Error(t, job.Fail(errors.New("second")))
	assert.Equal(t, "first", job.ErrorDetail())
}

func TestJobRemoveSourceOnce(t *testing.T) {
	job := NewJob("/staging/a.mp4")
	calls := 0
	remove := func(path string) error {
		calls++
		assert.Equal(t, "/staging/a.mp4", path)
		return errors.New("busy")
	}

	attempted, err := job.RemoveSource(remove)
	assert.True(t, attempted)
	assert.EqualError(t, err, "busy")

	attempted, err = job.RemoveSource(remove)
	assert.False(t, attempted)
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)

	empty := NewJob("")
	attempted, err = empty.RemoveSource(func(string) error {
		t.Fatal("remove called without a source")
		return nil
	})
	assert.False(t, attempted)
	assert.NoError(t, err)
}

func TestJobAttach(t *testing.T) {
	job := NewJob("src")
	job.Attach(&layout.Allocation{JobID: "id", OutputDir: "/out/stream_id", OutputFile: "output_id.m3u8"})

	assert.Equal(t, "id", job.ID)
	assert.Equal(t, "/out/stream_id", job.OutputDir)
	assert.Equal(t, "output_id.m3u8", job.OutputFile)
}

package video

import (
	"fmt"
	"sync"

	"github.com/consensuslabs/vodstream/internal/video/layout"
)

// JobState is the lifecycle position of a transcode job
type JobState string

const (
	JobReceived    JobState = "received"
	JobValidated   JobState = "validated"
	JobTranscoding JobState = "transcoding"
	JobCompleted   JobState = "completed"
	JobFailed      JobState = "failed"
)

var jobTransitions = map[JobState][]JobState{
	JobReceived:    {JobValidated, JobFailed},
	JobValidated:   {JobTranscoding, JobFailed},
	JobTranscoding: {JobCompleted, JobFailed},
}

// IsTerminal reports whether no further transitions are allowed
func (s JobState) IsTerminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Job tracks one upload from staging to catalog entry. It owns the staged
// source file and removes it at most once.
type Job struct {
	ID         string
	SourcePath string
	OutputDir  string
	OutputFile string

	mu          sync.Mutex
	state       JobState
	errorDetail string
	removeOnce  sync.Once
}

// NewJob creates a job in the received state
func NewJob(sourcePath string) *Job {
	return &Job{SourcePath: sourcePath, state: JobReceived}
}

// State returns the current state
func (j *Job) State() JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// ErrorDetail is set only once the job has failed
func (j *Job) ErrorDetail() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.errorDetail
}

// Transition moves the job forward, rejecting anything not in jobTransitions
func (j *Job) Transition(to JobState) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.transitionLocked(to)
}

func (j *Job) transitionLocked(to JobState) error {
	for _, allowed := range jobTransitions[j.state] {
		if allowed == to {
			j.state = to
			return nil
		}
	}
	return fmt.Errorf("illegal job transition from %s to %s", j.state, to)
}

// Fail marks the job failed and keeps the cause
func (j *Job) Fail(cause error) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.transitionLocked(JobFailed); err != nil {
		return err
	}
	if cause != nil {
		j.errorDetail = cause.Error()
	}
	return nil
}

// Attach records the output location reserved for the job
func (j *Job) Attach(alloc *layout.Allocation) {
	j.ID = alloc.JobID
	j.OutputDir = alloc.OutputDir
	j.OutputFile = alloc.OutputFile
}

// RemoveSource deletes the staged source with remove. Only the first call
// runs remove; attempted reports whether this call was that one.
func (j *Job) RemoveSource(remove func(string) error) (attempted bool, err error) {
	j.removeOnce.Do(func() {
		if j.SourcePath == "" {
			return
		}
		attempted = true
		err = remove(j.SourcePath)
	})
	return attempted, err
}

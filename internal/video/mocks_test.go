package video

import (
	"context"
	"sync"

	"github.com/consensuslabs/vodstream/internal/notification"
	"github.com/consensuslabs/vodstream/internal/video/layout"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Insert(ctx context.Context, title, description, streamPath string) (*Video, error) {
	args := m.Called(ctx, title, description, streamPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Video), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context) ([]Video, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Video), args.Error(1)
}

func (m *MockRepository) StreamPaths(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockIngestService is a mock implementation of IngestService
type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) Ingest(ctx context.Context, upload Upload) (*Video, error) {
	args := m.Called(ctx, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Video), args.Error(1)
}

func (m *MockIngestService) ListVideos(ctx context.Context) ([]Video, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Video), args.Error(1)
}

// MockMirror is a mock implementation of storage.Mirror
type MockMirror struct {
	mock.Mock
}

func (m *MockMirror) UploadDir(ctx context.Context, dir, keyPrefix string) (int, error) {
	args := m.Called(ctx, dir, keyPrefix)
	return args.Int(0), args.Error(1)
}

// failingLayout wraps a real layout but refuses to allocate
type failingLayout struct {
	layout.Layout
	err error
}

func (f failingLayout) Allocate() (*layout.Allocation, error) {
	return nil, f.err
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []notification.JobEvent
}

func (r *recordingPublisher) Publish(_ context.Context, event notification.JobEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) Ping(context.Context) error { return nil }
func (r *recordingPublisher) Close() error               { return nil }

func (r *recordingPublisher) states() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	states := make([]string, 0, len(r.events))
	for _, e := range r.events {
		states = append(states, e.State)
	}
	return states
}

func (r *recordingPublisher) last() notification.JobEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

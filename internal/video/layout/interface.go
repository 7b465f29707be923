package layout

// Layout allocates per-job locations under the stream root and the staging area
type Layout interface {
	// Allocate reserves a fresh output directory and playlist name for one job
	Allocate() (*Allocation, error)

	// Release stops tracking an allocation once its job has finished
	Release(alloc *Allocation)

	// StagePath returns a unique path in the staging area for an incoming upload
	StagePath(originalName string) string

	// Relative expresses a path under the stream root relative to that root
	Relative(path string) (string, error)

	// IsActive reports whether the output directory belongs to a running job
	IsActive(dir string) bool

	ListOutputs() ([]Entry, error)
	ListStaged() ([]Entry, error)
}

package index

// FileIndex defines the interface for file inventory indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type FileIndex interface {
	UpsertFile(f FileRow) error
	DeleteFile(path string) error
	GetFile(path string) (*FileRow, error)
	ListFiles(limit, offset int) ([]FileRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies FileIndex at compile time.
var _ FileIndex = (*DB)(nil)

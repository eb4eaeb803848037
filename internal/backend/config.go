package backend

// BackendType identifies a data-store backend implementation.
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

// IsValid reports whether the backend type is supported.
func (t BackendType) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	}
	return false
}

// Config carries what each backend needs to initialize.
type Config struct {
	Type         BackendType
	SQLiteDBPath string
	PostgresURL  string
}

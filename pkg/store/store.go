// Package store persists tasks.
//
// The store is a thin CRUD layer: tasks go in and come out unchanged, and all
// derived data (rows, lanes, positions) is computed elsewhere. Three backends
// share the [Store] interface:
//
//   - [MemoryStore] for tests and the single-user CLI
//   - [PostgresStore] for the relational tasks table, one column per attribute
//   - [MongoStore] for one document per task
//
// Use [Open] to pick a backend from configuration.
package store

import (
	"context"
	"time"

	"github.com/flexgantt/flexgantt/pkg/errors"
	"github.com/flexgantt/flexgantt/pkg/task"
)

// Store is a task repository. Implementations are safe for concurrent use.
type Store interface {
	// List returns all tasks ordered by start date, then id.
	List(ctx context.Context) ([]task.Task, error)

	// Get returns the task with the given id, or an ErrCodeTaskNotFound error.
	Get(ctx context.Context, id string) (task.Task, error)

	// Create stores a new task. An empty id is assigned by the backend.
	// The stored task is returned with its timestamps set.
	Create(ctx context.Context, t task.Task) (task.Task, error)

	// Update replaces the dates and attributes of an existing task.
	Update(ctx context.Context, t task.Task) (task.Task, error)

	// Delete removes a task.
	Delete(ctx context.Context, id string) error

	// Close releases the backend connection.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend string

	// PostgresDSN is a lib/pq connection string or URL.
	PostgresDSN string

	// MongoURI and MongoDatabase locate the tasks collection.
	MongoURI      string
	MongoDatabase string

	// Registry maps attributes to columns. Defaults to task.DefaultRegistry.
	Registry *task.Registry
}

// Open connects to the configured backend. Relational backends get their
// schema created when missing.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if cfg.Registry == nil {
		cfg.Registry = task.DefaultRegistry()
	}
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendPostgres:
		s, err := NewPostgresStore(ctx, cfg.PostgresDSN, cfg.Registry)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case BackendMongo:
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	}
	return nil, errors.New(errors.ErrCodeInvalidConfiguration,
		"unknown store backend %q (must be memory, postgres or mongo)", cfg.Backend)
}

// prepare validates t for writing and stamps its timestamps.
func prepare(t task.Task, now time.Time, creating bool) (task.Task, error) {
	if t.ID != "" || !creating {
		if err := errors.ValidateTaskID(t.ID); err != nil {
			return task.Task{}, err
		}
	}
	if err := t.ValidateDates(); err != nil {
		return task.Task{}, err
	}
	t = t.Clone()
	now = now.UTC().Truncate(time.Microsecond)
	if creating || t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	return t, nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeTaskNotFound, "task %q not found", id)
}

func exists(id string) error {
	return errors.New(errors.ErrCodeInvalidTask, "task %q already exists", id)
}

// backendError wraps a driver failure.
func backendError(err error, op string) error {
	return errors.Wrap(errors.ErrCodeInternal, err, "%s", op)
}

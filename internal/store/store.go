package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/taskmanager/taskmanager/internal/models"
)

// Store loads and replaces the users and tasks collections as whole units
type Store struct {
	backend Backend
}

// NewStore creates a store on top of the given backend
func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
	}
}

// Backend returns the backend the store persists to
func (s *Store) Backend() Backend {
	return s.backend
}

// Init creates every collection that does not exist yet as an empty document
func (s *Store) Init(ctx context.Context) error {
	for _, c := range Collections {
		_, err := s.backend.Read(ctx, c)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrCollectionNotFound) {
			return NewStorageReadError(c, err)
		}
		if err := s.backend.Write(ctx, c, []byte("[]")); err != nil {
			return NewStorageWriteError(c, err)
		}
	}
	return nil
}

// LoadUsers reads the full users collection
func (s *Store) LoadUsers(ctx context.Context) ([]string, error) {
	users := make([]string, 0)
	if err := s.load(ctx, Users, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SaveUsers replaces the users collection
func (s *Store) SaveUsers(ctx context.Context, users []string) error {
	if users == nil {
		users = []string{}
	}
	return s.save(ctx, Users, users)
}

// LoadTasks reads the full tasks collection in stored order
func (s *Store) LoadTasks(ctx context.Context) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	if err := s.load(ctx, Tasks, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// SaveTasks replaces the tasks collection
func (s *Store) SaveTasks(ctx context.Context, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	return s.save(ctx, Tasks, tasks)
}

func (s *Store) load(ctx context.Context, c Collection, out any) error {
	document, err := s.backend.Read(ctx, c)
	if err != nil {
		if errors.Is(err, ErrCollectionNotFound) {
			// first use: an absent collection is an empty one
			if err := s.backend.Write(ctx, c, []byte("[]")); err != nil {
				return NewStorageWriteError(c, err)
			}
			return nil
		}
		return NewStorageReadError(c, err)
	}

	if len(bytes.TrimSpace(document)) == 0 {
		return nil
	}
	if err := json.Unmarshal(document, out); err != nil {
		return NewStorageDecodeError(c, err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, c Collection, records any) error {
	document, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return NewStorageEncodeError(c, err)
	}
	if err := s.backend.Write(ctx, c, document); err != nil {
		return NewStorageWriteError(c, err)
	}
	return nil
}

// Package memory implements an in-memory store for development and testing.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tasktracker/internal/models"
	"tasktracker/internal/storage"
)

// Store keeps users and tasks in process memory. Tasks preserve insertion
// order, matching the storage-order listing of the mongo adapter.
type Store struct {
	mu    sync.Mutex
	users []models.User
	tasks []models.Task
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{}
}

var _ storage.Store = (*Store)(nil)

// CreateUser adds a user, enforcing username uniqueness under the lock.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return models.User{}, storage.ErrUsernameTaken
		}
	}

	user := models.User{
		ID:        primitive.NewObjectID(),
		Username:  username,
		Password:  passwordHash,
		CreatedAt: time.Now().UTC(),
	}
	s.users = append(s.users, user)
	return user, nil
}

// UserByUsername fetches a user by exact username.
func (s *Store) UserByUsername(ctx context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

// ListTasks returns the owner's tasks in insertion order.
func (s *Store) ListTasks(ctx context.Context, owner primitive.ObjectID) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := []models.Task{}
	for _, t := range s.tasks {
		if t.Owner == owner {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

// CreateTask appends a new task owned by the given user.
func (s *Store) CreateTask(ctx context.Context, owner primitive.ObjectID, title, description string) (models.Task, error) {
	if strings.TrimSpace(title) == "" {
		return models.Task{}, fmt.Errorf("task title must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	task := models.Task{
		ID:          primitive.NewObjectID(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Owner:       owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.tasks = append(s.tasks, task)
	return task, nil
}

// UpdateTask applies the supplied changes to a task the owner holds.
func (s *Store) UpdateTask(ctx context.Context, owner, id primitive.ObjectID, changes storage.TaskChanges) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		t := &s.tasks[i]
		if t.ID != id || t.Owner != owner {
			continue
		}

		if changes.Title != nil && strings.TrimSpace(*changes.Title) != "" {
			t.Title = strings.TrimSpace(*changes.Title)
		}
		if changes.Description != nil {
			t.Description = strings.TrimSpace(*changes.Description)
		}
		if changes.Completed != nil {
			t.Completed = *changes.Completed
		}
		t.UpdatedAt = time.Now().UTC()
		return *t, nil
	}
	return models.Task{}, storage.ErrNotFound
}

// Close is a no-op; the store holds no external resources.
func (s *Store) Close(ctx context.Context) error {
	return nil
}

// DeleteTask removes a task the owner holds.
func (s *Store) DeleteTask(ctx context.Context, owner, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.tasks {
		if t.ID == id && t.Owner == owner {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

// Package storage defines the persistence port the HTTP server talks to.
package storage

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tasktracker/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist or is not visible
	// to the caller. Task lookups are always owner-scoped, so a task owned by
	// someone else is indistinguishable from a missing one.
	ErrNotFound = errors.New("not found")
	// ErrUsernameTaken is returned when registering a username that exists.
	ErrUsernameTaken = errors.New("username already taken")
)

// TaskChanges carries a partial task update. Nil fields are left unchanged;
// a title that is present but blank is ignored rather than applied.
type TaskChanges struct {
	Title       *string
	Description *string
	Completed   *bool
}

// Store is implemented by the mongo adapter and by the in-memory store used
// in tests.
type Store interface {
	CreateUser(ctx context.Context, username, passwordHash string) (models.User, error)
	UserByUsername(ctx context.Context, username string) (models.User, error)

	ListTasks(ctx context.Context, owner primitive.ObjectID) ([]models.Task, error)
	CreateTask(ctx context.Context, owner primitive.ObjectID, title, description string) (models.Task, error)
	UpdateTask(ctx context.Context, owner, id primitive.ObjectID, changes TaskChanges) (models.Task, error)
	DeleteTask(ctx context.Context, owner, id primitive.ObjectID) error

	Close(ctx context.Context) error
}

// Package mongo implements the storage port on top of a MongoDB database.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tasktracker/internal/models"
	"tasktracker/internal/storage"
)

// Store wraps access to the MongoDB collections and exposes high level helpers.
type Store struct {
	client *mongo.Client
	users  *mongo.Collection
	tasks  *mongo.Collection
	logger *slog.Logger
}

var _ storage.Store = (*Store)(nil)

// Open connects to MongoDB, verifies the connection and ensures the indexes
// the application relies on.
func Open(ctx context.Context, uri, database string, logger *slog.Logger) (*Store, error) {
	if uri == "" {
		return nil, fmt.Errorf("empty mongo uri")
	}

	if logger == nil {
		logger = slog.Default()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client: client,
		users:  db.Collection("users"),
		tasks:  db.Collection("tasks"),
		logger: logger,
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// ensureIndexes is the document-store analogue of a relational migration:
// a unique index backs the username invariant, an owner index backs the
// per-user task listing.
func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}

	_, err = s.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("tasks index: %w", err)
	}
	return nil
}

// CreateUser inserts a new user with the given bcrypt hash. A concurrent
// duplicate insert is caught by the unique index and reported as
// storage.ErrUsernameTaken.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (models.User, error) {
	user := models.User{
		ID:        primitive.NewObjectID(),
		Username:  username,
		Password:  passwordHash,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, storage.ErrUsernameTaken
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// UserByUsername fetches a user by exact username.
func (s *Store) UserByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, storage.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ListTasks returns the owner's tasks in storage order.
func (s *Store) ListTasks(ctx context.Context, owner primitive.ObjectID) ([]models.Task, error) {
	cursor, err := s.tasks.Find(ctx, bson.M{"owner": owner})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// CreateTask inserts a new task owned by the given user.
func (s *Store) CreateTask(ctx context.Context, owner primitive.ObjectID, title, description string) (models.Task, error) {
	if strings.TrimSpace(title) == "" {
		return models.Task{}, fmt.Errorf("task title must not be empty")
	}

	now := time.Now().UTC()
	task := models.Task{
		ID:          primitive.NewObjectID(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Owner:       owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.tasks.InsertOne(ctx, task); err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

// UpdateTask applies the supplied changes to a task the owner holds and
// returns the updated document. The owner filter makes a foreign task look
// exactly like a missing one.
func (s *Store) UpdateTask(ctx context.Context, owner, id primitive.ObjectID, changes storage.TaskChanges) (models.Task, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if changes.Title != nil && strings.TrimSpace(*changes.Title) != "" {
		set["title"] = strings.TrimSpace(*changes.Title)
	}
	if changes.Description != nil {
		set["description"] = strings.TrimSpace(*changes.Description)
	}
	if changes.Completed != nil {
		set["completed"] = *changes.Completed
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var task models.Task
	err := s.tasks.FindOneAndUpdate(ctx, bson.M{"_id": id, "owner": owner}, bson.M{"$set": set}, opts).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Task{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// DeleteTask removes a task the owner holds.
func (s *Store) DeleteTask(ctx context.Context, owner, id primitive.ObjectID) error {
	res, err := s.tasks.DeleteOne(ctx, bson.M{"_id": id, "owner": owner})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

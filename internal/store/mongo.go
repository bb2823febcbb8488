package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"tasklist/internal/models"
)

// taskDocument is the stored shape of a task.
type taskDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Completed bool               `bson:"completed"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *taskDocument) toTask() *models.Task {
	createdAt := d.CreatedAt
	return &models.Task{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Completed: d.Completed,
		CreatedAt: &createdAt,
	}
}

// MongoStore implements the Store interface on a MongoDB collection.
// Single-document operations rely on the server's per-document atomicity.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and uses database.collection for tasks.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	s := &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
	if err := s.Ping(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	_, err = s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create createdAt index: %w", err)
	}

	return s, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

// Ping checks that the primary is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return &models.StoreError{Op: "ping mongodb", Err: err}
	}
	return nil
}

// ListTasks retrieves all tasks, newest first.
func (s *MongoStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: -1},
	})
	cursor, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, &models.StoreError{Op: "list tasks", Err: err}
	}

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, &models.StoreError{Op: "decode tasks", Err: err}
	}

	tasks := make([]models.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, *docs[i].toTask())
	}
	return tasks, nil
}

// GetTask retrieves a task by its ObjectID hex string.
func (s *MongoStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	var doc taskDocument
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		return nil, mongoError("get task", err)
	}
	return doc.toTask(), nil
}

// CreateTask inserts a new document and sets the task's ID and CreatedAt.
func (s *MongoStore) CreateTask(ctx context.Context, task *models.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	doc := taskDocument{
		ID:        primitive.NewObjectID(),
		Title:     task.Title,
		Completed: task.Completed,
		// BSON dates carry millisecond precision
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return &models.StoreError{Op: "create task", Err: err}
	}

	task.ID = doc.ID.Hex()
	task.CreatedAt = &doc.CreatedAt
	return nil
}

// UpdateTask sets the supplied fields and returns the updated document.
func (s *MongoStore) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.GetTask(ctx, id)
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	set := bson.D{}
	if patch.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *patch.Title})
	}
	if patch.Completed != nil {
		set = append(set, bson.E{Key: "completed", Value: *patch.Completed})
	}

	var doc taskDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		return nil, mongoError("update task", err)
	}
	return doc.toTask(), nil
}

// DeleteTask removes a document and returns it.
func (s *MongoStore) DeleteTask(ctx context.Context, id string) (*models.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	var doc taskDocument
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mongoError("delete task", err)
	}
	return doc.toTask(), nil
}

func mongoError(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ErrNotFound
	}
	return &models.StoreError{Op: op, Err: err}
}

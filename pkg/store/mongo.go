package store

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/flexgantt/flexgantt/pkg/cache"
	"github.com/flexgantt/flexgantt/pkg/errors"
	"github.com/flexgantt/flexgantt/pkg/task"
)

// DefaultMongoDatabase is used when no database name is configured.
const DefaultMongoDatabase = "flexgantt"

const tasksCollection = "tasks"

// MongoStore keeps one document per task in the tasks collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// taskDocument is the stored form of a task. Dates are kept as midnight UTC
// so range queries and sorting work natively.
type taskDocument struct {
	ID         string    `bson:"_id"`
	StartDate  time.Time `bson:"startDate"`
	EndDate    time.Time `bson:"endDate"`
	Attributes bson.M    `bson:"attributes,omitempty"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

func toDocument(t task.Task) taskDocument {
	doc := taskDocument{
		ID:        t.ID,
		StartDate: t.Start.Time(),
		EndDate:   t.End.Time(),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if len(t.Attributes) > 0 {
		doc.Attributes = make(bson.M, len(t.Attributes))
		for k, v := range t.Attributes {
			doc.Attributes[k] = v.Interface()
		}
	}
	return doc
}

func (d taskDocument) toTask() (task.Task, error) {
	t := task.New(d.ID, task.DateOf(d.StartDate), task.DateOf(d.EndDate))
	for k, raw := range d.Attributes {
		v, err := task.ValueOf(raw)
		if err != nil {
			return task.Task{}, errors.Wrap(errors.ErrCodeInternal, err, "task %q attribute %q", d.ID, k)
		}
		t.Attributes[k] = v
	}
	t.CreatedAt = d.CreatedAt.UTC()
	t.UpdatedAt = d.UpdatedAt.UTC()
	return t, nil
}

// NewMongoStore connects to uri and pings the primary, retrying transient
// failures.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "mongo store needs a connection URI")
	}
	if database == "" {
		database = DefaultMongoDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "connect mongo")
	}
	err = cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx, nil); err != nil {
			return cache.Retryable(err)
		}
		return nil
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(tasksCollection),
	}, nil
}

// List returns all tasks ordered by start date, then id.
func (s *MongoStore) List(ctx context.Context) ([]task.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "startDate", Value: 1}, {Key: "endDate", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, backendError(err, "list tasks")
	}
	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, backendError(err, "decode tasks")
	}
	out := make([]task.Task, 0, len(docs))
	for _, d := range docs {
		t, err := d.toTask()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Get returns one task.
func (s *MongoStore) Get(ctx context.Context, id string) (task.Task, error) {
	var doc taskDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return task.Task{}, notFound(id)
	}
	if err != nil {
		return task.Task{}, backendError(err, "get task")
	}
	return doc.toTask()
}

// Create inserts t, assigning a UUID when its id is empty.
func (s *MongoStore) Create(ctx context.Context, t task.Task) (task.Task, error) {
	t, err := prepare(t, time.Now(), true)
	if err != nil {
		return task.Task{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if _, err := s.coll.InsertOne(ctx, toDocument(t)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return task.Task{}, exists(t.ID)
		}
		return task.Task{}, backendError(err, "create task")
	}
	return t, nil
}

// Update replaces the dates and attributes of an existing task, keeping its
// creation time.
func (s *MongoStore) Update(ctx context.Context, t task.Task) (task.Task, error) {
	t, err := prepare(t, time.Now(), false)
	if err != nil {
		return task.Task{}, err
	}
	doc := toDocument(t)
	set := bson.M{
		"startDate":  doc.StartDate,
		"endDate":    doc.EndDate,
		"attributes": doc.Attributes,
		"updatedAt":  doc.UpdatedAt,
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": t.ID}, bson.M{"$set": set})
	if err != nil {
		return task.Task{}, backendError(err, "update task")
	}
	if res.MatchedCount == 0 {
		return task.Task{}, notFound(t.ID)
	}
	return s.Get(ctx, t.ID)
}

// Delete removes a task.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return backendError(err, "delete task")
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)

// internal/app/store/records/recordstore.go
package recordstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is a schemaless store over one console collection. Documents are
// returned as bson.M; typing happens at the edges (models, gateway).
type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicate = errors.New("a record with these values already exists")
	ErrNotFound  = errors.New("record not found")
)

func New(db *mongo.Database, collection string) *Store {
	return &Store{c: db.Collection(collection)}
}

// Name returns the collection name.
func (s *Store) Name() string {
	return s.c.Name()
}

// Find returns all documents matching filter. The caller builds the filter
// and options (sorting, projection).
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]bson.M, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	docs := []bson.M{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// FindAllSorted returns every document sorted descending on sortField.
func (s *Store) FindAllSorted(ctx context.Context, sortField string) ([]bson.M, error) {
	opts := options.Find()
	if sortField != "" {
		opts.SetSort(bson.D{{Key: sortField, Value: -1}, {Key: "_id", Value: -1}})
	}
	return s.Find(ctx, bson.M{}, opts)
}

// Create inserts doc with a fresh ID and timestamps and returns it.
func (s *Store) Create(ctx context.Context, doc bson.M) (bson.M, error) {
	now := time.Now().UTC()
	out := bson.M{}
	for k, v := range doc {
		out[k] = v
	}
	out["_id"] = primitive.NewObjectID()
	out["created_at"] = now
	out["updated_at"] = now

	if _, err := s.c.InsertOne(ctx, out); err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return out, nil
}

// Update applies set to the document and refreshes updated_at. It returns
// the updated document, or ErrNotFound when no document has id.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (bson.M, error) {
	fields := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range set {
		fields[k] = v
	}

	var out bson.M
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return out, nil
}

// Delete removes a document by ID. Deleting a missing document returns
// ErrNotFound so bulk callers can report it per record.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of documents matching filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	return s.c.CountDocuments(ctx, filter)
}

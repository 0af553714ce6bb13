package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on top of MongoDB. Document ids are stored as
// string _id values so external ids like "stickKulfi" or "2025/months/04"
// round-trip unchanged. Partial updates are flattened to dotted $set paths,
// which gives Firestore-style merge semantics for nested objects.
type MongoStore struct {
	client *mongo.Client
	dbName string
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoStore{client: client, dbName: dbName}, nil
}

// Create inserts data under a generated ObjectID-derived string id.
func (s *MongoStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := primitive.NewObjectID().Hex()

	doc := bson.M{"_id": id}
	for k, v := range data {
		doc[k] = v
	}

	if _, err := s.coll(collection).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	return id, nil
}

// ReadAll scans the whole collection.
func (s *MongoStore) ReadAll(ctx context.Context, collection string) ([]Document, error) {
	cur, err := s.coll(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var docs []Document
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode document in %s: %w", collection, err)
		}
		docs = append(docs, fromBSON(raw))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor in %s: %w", collection, err)
	}
	return docs, nil
}

// Get fetches one document by id.
func (s *MongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw bson.M
	err := s.coll(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return fromBSON(raw), nil
}

// Update applies a merge-semantics partial update, upserting when missing.
func (s *MongoStore) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	set := bson.M{}
	for k, v := range Flatten(partial) {
		set[k] = v
	}
	if len(set) == 0 {
		return nil
	}

	_, err := s.coll(collection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes a document by id. Missing documents are not an error.
func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.coll(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) coll(name string) *mongo.Collection {
	return s.client.Database(s.dbName).Collection(name)
}

// fromBSON converts a decoded bson.M into the Document shape, renaming _id
// to id and normalizing nested bson types to plain maps and slices.
func fromBSON(raw bson.M) Document {
	doc := Document{}
	for k, v := range raw {
		if k == "_id" {
			if id, ok := v.(string); ok {
				doc["id"] = id
			} else {
				doc["id"] = fmt.Sprint(v)
			}
			continue
		}
		doc[k] = normalizeBSON(v)
	}
	return doc
}

func normalizeBSON(v any) any {
	switch val := v.(type) {
	case bson.M:
		m := make(map[string]any, len(val))
		for k, inner := range val {
			m[k] = normalizeBSON(inner)
		}
		return m
	case bson.D:
		m := make(map[string]any, len(val))
		for _, e := range val {
			m[e.Key] = normalizeBSON(e.Value)
		}
		return m
	case bson.A:
		s := make([]any, len(val))
		for i, inner := range val {
			s[i] = normalizeBSON(inner)
		}
		return s
	default:
		return val
	}
}

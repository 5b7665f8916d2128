package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"classroom/models"
)

// MongoStore keeps question batches and assignments in MongoDB, one
// collection per kind.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore connects to uri and pings the server before returning.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

func (s *MongoStore) SaveBatch(ctx context.Context, kind string, batch models.QuestionBatch) (string, error) {
	res, err := s.db.Collection(models.CollectionForKind(kind)).InsertOne(ctx, batch)
	if err != nil {
		return "", fmt.Errorf("insert question batch: %w", err)
	}
	return insertedID(res.InsertedID), nil
}

func (s *MongoStore) Insert(ctx context.Context, collection string, doc map[string]any) (string, error) {
	if err := checkCollection(collection); err != nil {
		return "", err
	}
	res, err := s.db.Collection(collection).InsertOne(ctx, bson.M(doc))
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	return insertedID(res.InsertedID), nil
}

func (s *MongoStore) List(ctx context.Context, collection string, colID any) ([]map[string]any, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}

	filter := bson.M{}
	if colID != nil {
		filter["colid"] = colID
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var found []bson.M
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}

	docs := make([]map[string]any, 0, len(found))
	for _, doc := range found {
		if id, ok := doc["_id"]; ok {
			doc["_id"] = insertedID(id)
		}
		docs = append(docs, map[string]any(doc))
	}
	return docs, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func insertedID(id any) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(id)
}

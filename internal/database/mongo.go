package database

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

	"storefront/internal/store"
)

const opTimeout = 5 * time.Second

// Connect dials MongoDB and verifies the primary is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// MongoStore implements store.Store on a single database.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

var _ store.Store = (*MongoStore)(nil)

func (s *MongoStore) Insert(ctx context.Context, collection string, doc any) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return "", fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	if err != nil {
		return "", err
	}
	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	default:
		return fmt.Sprint(id), nil
	}
}

func (s *MongoStore) Find(ctx context.Context, collection string, filter store.Fields, limit int64, out any) error {
	query, err := toFilter(filter)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := s.db.Collection(collection).Find(ctx, query, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	return cursor.All(ctx, out)
}

func (s *MongoStore) FindOne(ctx context.Context, collection string, filter store.Fields, out any) error {
	query, err := toFilter(filter)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err = s.db.Collection(collection).FindOne(ctx, query).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

func (s *MongoStore) UpdateOne(ctx context.Context, collection string, filter, set store.Fields) (store.UpdateResult, error) {
	query, err := toFilter(filter)
	if err != nil {
		return store.UpdateResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.db.Collection(collection).UpdateOne(ctx, query, bson.M{"$set": bson.M(set)})
	if err != nil {
		return store.UpdateResult{}, err
	}
	return store.UpdateResult{
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return s.db.Client().Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Name() string {
	return s.db.Name()
}

func (s *MongoStore) CollectionNames(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.db.ListCollectionNames(ctx, bson.D{})
}

// toFilter converts a flat equality filter, decoding a hex "_id".
func toFilter(filter store.Fields) (bson.M, error) {
	query := bson.M{}
	for k, v := range filter {
		if k == "_id" {
			if hex, ok := v.(string); ok {
				id, err := primitive.ObjectIDFromHex(hex)
				if err != nil {
					return nil, store.ErrInvalidID
				}
				v = id
			}
		}
		query[k] = v
	}
	return query, nil
}

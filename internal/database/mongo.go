package database

import (
	"context"
	"fmt"
	"time"

	"armar/internal/config"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const mongoIDField = "_id"

// MongoStore keeps documents in MongoDB collections.
type MongoStore struct {
	db     *mongo.Database
	logger *zerolog.Logger
	now    func() time.Time
}

// NewMongoStore connects to MongoDB. An unreachable server is logged but does not fail:
// the driver keeps trying in the background and operations report the error.
func NewMongoStore(ctx context.Context, cfg config.DatabaseConfig, logger *zerolog.Logger) (*MongoStore, error) {
	logger = nopIfNil(logger)
	timeout := time.Duration(cfg.ConnectTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URL).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		logger.Warn().Err(err).Str("database", cfg.Name).Msg("mongo ping failed, continuing with lazy connection")
	} else {
		logger.Info().Str("database", cfg.Name).Msg("mongo connected")
	}

	return newMongoStore(client.Database(cfg.Name), logger), nil
}

func newMongoStore(db *mongo.Database, logger *zerolog.Logger) *MongoStore {
	return &MongoStore{db: db, logger: nopIfNil(logger), now: time.Now}
}

func (s *MongoStore) CreateDocument(ctx context.Context, collection string, record any) (string, error) {
	fields, err := toFields(record, s.now())
	if err != nil {
		return "", &Error{Op: "insert", Collection: collection, Err: err}
	}

	res, err := s.db.Collection(collection).InsertOne(ctx, fields)
	if err != nil {
		return "", &Error{Op: "insert", Collection: collection, Err: err}
	}
	return mongoID(res.InsertedID), nil
}

func (s *MongoStore) GetDocuments(ctx context.Context, collection string, limit int) ([]Document, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.db.Collection(collection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, &Error{Op: "find", Collection: collection, Err: err}
	}

	var raw []primitive.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, &Error{Op: "find", Collection: collection, Err: err}
	}

	docs := make([]Document, 0, len(raw))
	for _, m := range raw {
		id := mongoID(m[mongoIDField])
		delete(m, mongoIDField)
		fields, _ := normalizeBSON(m).(map[string]any)
		docs = append(docs, Document{ID: id, Fields: fields})
	}
	return docs, nil
}

func (s *MongoStore) Status(ctx context.Context) Status {
	status := Status{State: StateConnected, Name: s.db.Name()}
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		status.State = StateConnectedWithError
		status.Err = err
		return status
	}
	status.Collections = truncateCollections(names)
	return status
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

func mongoID(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

// normalizeBSON turns driver-specific values into plain JSON-friendly ones.
func normalizeBSON(v any) any {
	switch val := v.(type) {
	case primitive.M:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeBSON(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeBSON(item)
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = normalizeBSON(e.Value)
		}
		return out
	case primitive.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeBSON(item)
		}
		return out
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.ObjectID:
		return val.Hex()
	case primitive.Decimal128:
		return val.String()
	default:
		return val
	}
}

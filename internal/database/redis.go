package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"armar/internal/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisStore keeps documents as JSON strings. Layout for database name "db":
//
//	db:collections          set of collection names
//	db:<collection>:ids     list of ids in insertion order
//	db:<collection>:<id>    JSON body
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *zerolog.Logger
	now    func() time.Time
}

// NewRedisStoreFromURL creates a client from a redis:// URL. A failed ping is logged only.
func NewRedisStoreFromURL(ctx context.Context, cfg config.DatabaseConfig, logger *zerolog.Logger) (*RedisStore, error) {
	logger = nopIfNil(logger)
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.ConnectTimeout > 0 {
		opts.DialTimeout = time.Duration(cfg.ConnectTimeout) * time.Second
	}

	store := NewRedisStore(redis.NewClient(opts), cfg.Name, logger)
	if err := store.ping(ctx); err != nil {
		logger.Warn().Err(err).Str("addr", opts.Addr).Msg("redis connection failed, continuing without a live connection")
	} else {
		logger.Info().Str("addr", opts.Addr).Str("database", cfg.Name).Msg("redis connected")
	}
	return store, nil
}

func NewRedisStore(client *redis.Client, name string, logger *zerolog.Logger) *RedisStore {
	return &RedisStore{client: client, prefix: name, logger: nopIfNil(logger), now: time.Now}
}

func (s *RedisStore) collectionsKey() string {
	return s.prefix + ":collections"
}

func (s *RedisStore) idsKey(collection string) string {
	return fmt.Sprintf("%s:%s:ids", s.prefix, collection)
}

func (s *RedisStore) docKey(collection, id string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, collection, id)
}

func (s *RedisStore) CreateDocument(ctx context.Context, collection string, record any) (string, error) {
	fields, err := toFields(record, s.now())
	if err != nil {
		return "", &Error{Op: "insert", Collection: collection, Err: err}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", &Error{Op: "insert", Collection: collection, Err: err}
	}

	id := uuid.NewString()
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.docKey(collection, id), data, 0)
	pipe.RPush(ctx, s.idsKey(collection), id)
	pipe.SAdd(ctx, s.collectionsKey(), collection)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", &Error{Op: "insert", Collection: collection, Err: err}
	}
	return id, nil
}

func (s *RedisStore) GetDocuments(ctx context.Context, collection string, limit int) ([]Document, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	ids, err := s.client.LRange(ctx, s.idsKey(collection), 0, stop).Result()
	if err != nil {
		return nil, &Error{Op: "find", Collection: collection, Err: err}
	}
	if len(ids) == 0 {
		return []Document{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.docKey(collection, id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, &Error{Op: "find", Collection: collection, Err: err}
	}

	docs := make([]Document, 0, len(values))
	for i, v := range values {
		body, ok := v.(string)
		if !ok {
			continue
		}
		var fields map[string]any
		if err := json.Unmarshal([]byte(body), &fields); err != nil {
			s.logger.Warn().Err(err).Str("collection", collection).Str("id", ids[i]).Msg("skip unreadable document")
			continue
		}
		docs = append(docs, Document{ID: ids[i], Fields: fields})
	}
	return docs, nil
}

func (s *RedisStore) Status(ctx context.Context) Status {
	status := Status{State: StateConnected, Name: s.prefix}
	names, err := s.client.SMembers(ctx, s.collectionsKey()).Result()
	if err != nil {
		status.State = StateConnectedWithError
		status.Err = err
		return status
	}
	status.Collections = truncateCollections(names)
	return status
}

func (s *RedisStore) Close(_ context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *RedisStore) ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

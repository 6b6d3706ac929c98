package staging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/logger"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/models"
)

const (
	// RecordPrefix namespaces flattened variant records.
	RecordPrefix = "final_"
	// RawPrefix namespaces raw merged items, kept only when requested.
	RawPrefix = "raw_"
)

// ErrMissingKey marks a batch write containing a record whose key field is
// empty. The whole batch is rejected; nothing is persisted.
var ErrMissingKey = errors.New("staging: record key is empty")

// Store is the Redis hand-off point between the extract and insert phases.
type Store struct {
	rdb    *redis.Client
	logger *logger.Logger
}

func New(redisURL string, logger *logger.Logger) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("staging: parse redis url: %w", err)
	}
	return &Store{rdb: redis.NewClient(opts), logger: logger}, nil
}

// NewWithClient wraps an existing redis client.
func NewWithClient(rdb *redis.Client, logger *logger.Logger) *Store {
	return &Store{rdb: rdb, logger: logger}
}

// Flush clears the staging database before a fresh run.
func (s *Store) Flush(ctx context.Context) error {
	if err := s.rdb.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("staging: flush: %w", err)
	}
	return nil
}

// PutRecords stages flattened variant records under RecordPrefix keyed by SKU.
// Every record is validated before anything is written, so one missing SKU
// fails the batch without persisting partial rows.
func (s *Store) PutRecords(ctx context.Context, records []models.VariantRecord) error {
	for _, record := range records {
		if record.SKU == "" {
			return fmt.Errorf("%w: variant record for handle %q has no SKU", ErrMissingKey, record.Handle)
		}
	}

	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, record := range records {
			data, err := json.Marshal(record)
			if err != nil {
				return fmt.Errorf("staging: marshal record %s: %w", record.SKU, err)
			}
			pipe.Set(ctx, RecordPrefix+record.SKU, data, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("staging: write records: %w", err)
	}

	s.logger.Info("Staged %d variant records", len(records))
	return nil
}

// PutRaw stages arbitrary values under prefix+key. Used for the optional raw
// item snapshot.
func (s *Store) PutRaw(ctx context.Context, prefix string, keyed map[string]interface{}) error {
	for key := range keyed {
		if key == "" {
			return ErrMissingKey
		}
	}

	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range keyed {
			data, err := json.Marshal(value)
			if err != nil {
				return fmt.Errorf("staging: marshal %s: %w", key, err)
			}
			pipe.Set(ctx, prefix+key, data, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("staging: write raw: %w", err)
	}
	return nil
}

// Records reads back every staged variant record, in ascending key order so
// downstream grouping is deterministic.
func (s *Store) Records(ctx context.Context) ([]models.VariantRecord, error) {
	keys, err := s.keys(ctx, RecordPrefix)
	if err != nil {
		return nil, err
	}

	records := make([]models.VariantRecord, 0, len(keys))
	for _, key := range keys {
		data, err := s.rdb.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("staging: read %s: %w", key, err)
		}
		var record models.VariantRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("staging: decode %s: %w", key, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *Store) keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("staging: scan %s: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

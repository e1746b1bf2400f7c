package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/redis/go-redis/v9"

	"registrar/internal/record/models"
	"registrar/pkg/platform/sentinel"
)

// DefaultRedisKey is the hash holding every record.
const DefaultRedisKey = "registrar:records"

// RedisStore keeps records in a single Redis hash. Each field is an
// identifier and each value is the record's flat-file line.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

// NewRedis constructs a Redis-backed record store.
func NewRedis(client *redis.Client, key string, logger *slog.Logger) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RedisStore{client: client, key: key, logger: logger}
}

func (s *RedisStore) Put(ctx context.Context, rec *models.Record) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("put record: identifier is required")
	}
	if err := CheckEncodable(rec); err != nil {
		return fmt.Errorf("put record: %w", err)
	}
	if err := s.client.HSet(ctx, s.key, rec.ID, EncodeLine(rec)).Err(); err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, id string) (*models.Record, error) {
	line, err := s.client.HGet(ctx, s.key, id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find record by id: %w", err)
	}
	rec, err := DecodeLine(line)
	if err != nil {
		return nil, fmt.Errorf("decode record %q: %w", id, err)
	}
	return rec, nil
}

// List returns every decodable record ordered by identifier. Malformed values
// are skipped, as they are when loading the flat file.
func (s *RedisStore) List(ctx context.Context) ([]*models.Record, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	records := make([]*models.Record, 0, len(values))
	for _, line := range values {
		rec, err := DecodeLine(line)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping malformed record in redis",
				"key", s.key,
				"error", err,
			)
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.HLen(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return int(n), nil
}

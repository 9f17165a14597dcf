// internal/common/database/records.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"campaign-orchestrator/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	recordKeyPrefix  = "campaign:"
	DefaultRecordTTL = 24 * time.Hour
)

var ErrRecordNotFound = errors.New("RECORD_NOT_FOUND")

// RecordStore persists the per-request working record so progress can be
// polled while the pipeline runs. Writers treat every error as best-effort.
type RecordStore interface {
	Put(ctx context.Context, key, field string, value interface{}) error
	SetStatus(ctx context.Context, key string, status models.CampaignStatusValue) error
	Get(ctx context.Context, key string) (map[string]string, error)
}

// RedisRecordStore keeps one hash per request under campaign:{key}.
type RedisRecordStore struct {
	client redis.Cmdable
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisRecordStore(client redis.Cmdable, ttl time.Duration) *RedisRecordStore {
	if ttl <= 0 {
		ttl = DefaultRecordTTL
	}
	return &RedisRecordStore{client: client, ttl: ttl, now: time.Now}
}

func recordKey(key string) string {
	return recordKeyPrefix + key
}

// Put stores value as JSON under field. Fields that mark pipeline progress
// also advance the status.
func (s *RedisRecordStore) Put(ctx context.Context, key, field string, value interface{}) error {
	var encoded string
	switch v := value.(type) {
	case string:
		encoded = v
	default:
		payload, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", field, err)
		}
		encoded = string(payload)
	}

	status, _ := models.StatusForField(field)
	return s.write(ctx, key, status, field, encoded)
}

func (s *RedisRecordStore) SetStatus(ctx context.Context, key string, status models.CampaignStatusValue) error {
	return s.write(ctx, key, status)
}

// advanceStatus only moves the status forward: a lower progress value
// never replaces a higher one.
// KEYS[1] record, ARGV[1] status, ARGV[2] progress, ARGV[3] "1" to force.
var advanceStatus = redis.NewScript(`
local current = tonumber(redis.call('HGET', KEYS[1], 'progress') or '-1')
if ARGV[3] == '1' or tonumber(ARGV[2]) > current then
	redis.call('HSET', KEYS[1], 'status', ARGV[1], 'progress', ARGV[2])
	return 1
end
return 0
`)

func (s *RedisRecordStore) write(ctx context.Context, key string, status models.CampaignStatusValue, pairs ...interface{}) error {
	values := append(pairs, models.RecordFieldUpdatedAt, s.now().UTC().Format(time.RFC3339))

	k := recordKey(key)
	if err := s.client.HSet(ctx, k, values...).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", k, err)
	}
	if status != "" {
		force := "0"
		if status == models.StatusFailed {
			force = "1"
		}
		if err := advanceStatus.Run(ctx, s.client, []string{k}, string(status), models.Progress(status), force).Err(); err != nil {
			return fmt.Errorf("advance status %s: %w", k, err)
		}
	}
	if err := s.client.Expire(ctx, k, s.ttl).Err(); err != nil {
		return fmt.Errorf("expire %s: %w", k, err)
	}
	return nil
}

func (s *RedisRecordStore) Get(ctx context.Context, key string) (map[string]string, error) {
	k := recordKey(key)
	fields, err := s.client.HGetAll(ctx, k).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", k, err)
	}
	if len(fields) == 0 {
		return nil, ErrRecordNotFound
	}
	return fields, nil
}

// NoopRecordStore is used when Redis is disabled.
type NoopRecordStore struct{}

func (NoopRecordStore) Put(context.Context, string, string, interface{}) error { return nil }

func (NoopRecordStore) SetStatus(context.Context, string, models.CampaignStatusValue) error {
	return nil
}

func (NoopRecordStore) Get(context.Context, string) (map[string]string, error) {
	return nil, ErrRecordNotFound
}

// StatusFromRecord builds the status view from a stored hash.
func StatusFromRecord(key string, fields map[string]string) *models.CampaignStatus {
	status := models.CampaignStatusValue(fields[models.RecordFieldStatus])
	if status == "" {
		status = models.StatusProcessing
	}

	var populated []string
	for name := range fields {
		switch name {
		case models.RecordFieldStatus, models.RecordFieldProgress, models.RecordFieldUpdatedAt, models.RecordFieldCorrelationID, models.RecordFieldMethod:
			continue
		}
		populated = append(populated, name)
	}
	sort.Strings(populated)

	return &models.CampaignStatus{
		CampaignID:       key,
		CorrelationID:    fields[models.RecordFieldCorrelationID],
		Status:           status,
		Progress:         models.Progress(status),
		GenerationMethod: models.GenerationMethod(strings.Trim(fields[models.RecordFieldMethod], `"`)),
		Fields:           populated,
		UpdatedAt:        fields[models.RecordFieldUpdatedAt],
	}
}

package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cinebun/registry/domain"

	"github.com/redis/go-redis/v9"
)

// RedisEventSink espelha os registros em hashes no Redis.
//
// O Redis aqui é só observador: o registro em memória continua sendo a
// fonte da verdade e nada é relido daqui.
type RedisEventSink struct {
	rdb redis.Cmdable

	prefix string
	// ttl aplica apenas em chaves de série temporal / por slot.
	// total é cumulativo e não expira.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"

	trackSlots bool
}

type RedisEventOption func(*RedisEventSink)

func WithEventPrefix(prefix string) RedisEventOption {
	return func(s *RedisEventSink) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithEventTTL(d time.Duration) RedisEventOption {
	return func(s *RedisEventSink) { s.ttl = d }
}

func WithEventBucket(bucket string) RedisEventOption {
	return func(s *RedisEventSink) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithEventTrackSlots(track bool) RedisEventOption {
	return func(s *RedisEventSink) { s.trackSlots = track }
}

func NewRedisEventSink(rdb redis.Cmdable, opts ...RedisEventOption) *RedisEventSink {
	s := &RedisEventSink{
		rdb:    rdb,
		prefix: "cinebun:registry",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisEventSink) Prefix() string { return s.prefix }

func (s *RedisEventSink) TotalKey() string { return s.prefix + ":total" }

func (s *RedisEventSink) MinuteKey(at time.Time) string {
	return fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
}

func (s *RedisEventSink) SlotKey(id string) string { return s.prefix + ":slot:" + id }

func (s *RedisEventSink) Record(ctx context.Context, ev domain.RegistrationEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := ev.Tier.String()

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.TotalKey(), field, 1)

	if s.bucket == "minute" {
		bucketKey := s.MinuteKey(at)
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	if s.trackSlots {
		id := strings.TrimSpace(ev.SlotID)
		if id != "" {
			slotKey := s.SlotKey(id)
			pipe.HSet(ctx, slotKey,
				"tier", int(ev.Tier),
				"registered_at", ev.RegisteredAt,
				"settlement", ev.SettlementEpoch,
			)
			if s.ttl > 0 {
				pipe.Expire(ctx, slotKey, s.ttl)
			}
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}

package call

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single entry in a dialogue transcript.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// TranscriptStore persists the append-only dialogue transcript. Prior turns
// are never edited or removed.
type TranscriptStore interface {
	Append(ctx context.Context, sessionID string, turn Turn) error
	List(ctx context.Context, sessionID string) ([]Turn, error)
}

const transcriptKeyPrefix = "call_transcript:"

// RedisTranscriptStore keeps transcripts in Redis lists with a TTL, so a
// session survives an API restart but expires after the call window.
type RedisTranscriptStore struct {
	redis  *redis.Client
	tracer trace.Tracer
	ttl    time.Duration
}

func NewRedisTranscriptStore(redisClient *redis.Client, ttl time.Duration) *RedisTranscriptStore {
	if redisClient == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisTranscriptStore{
		redis:  redisClient,
		tracer: otel.Tracer("apptline.internal.call.transcript"),
		ttl:    ttl,
	}
}

func (s *RedisTranscriptStore) Append(ctx context.Context, sessionID string, turn Turn) error {
	if sessionID == "" {
		return errors.New("call: transcript sessionID required")
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("call: marshal transcript turn: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "call.transcript.append")
	defer span.End()

	key := transcriptKey(sessionID)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("call: append transcript turn: %w", err)
	}
	return nil
}

func (s *RedisTranscriptStore) List(ctx context.Context, sessionID string) ([]Turn, error) {
	if sessionID == "" {
		return nil, errors.New("call: transcript sessionID required")
	}

	ctx, span := s.tracer.Start(ctx, "call.transcript.list")
	defer span.End()

	raw, err := s.redis.LRange(ctx, transcriptKey(sessionID), 0, -1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("call: list transcript: %w", err)
	}

	turns := make([]Turn, 0, len(raw))
	for _, item := range raw {
		var turn Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("call: unmarshal transcript turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func transcriptKey(sessionID string) string {
	return transcriptKeyPrefix + sessionID
}

// MemoryTranscriptStore is the in-process fallback used when Redis is not
// configured, and in tests.
type MemoryTranscriptStore struct {
	mu    sync.RWMutex
	turns map[string][]Turn
}

func NewMemoryTranscriptStore() *MemoryTranscriptStore {
	return &MemoryTranscriptStore{turns: make(map[string][]Turn)}
}

func (s *MemoryTranscriptStore) Append(ctx context.Context, sessionID string, turn Turn) error {
	if sessionID == "" {
		return errors.New("call: transcript sessionID required")
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}
	s.mu.Lock()
	s.turns[sessionID] = append(s.turns[sessionID], turn)
	s.mu.Unlock()
	return nil
}

func (s *MemoryTranscriptStore) List(ctx context.Context, sessionID string) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.turns[sessionID]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out, nil
}

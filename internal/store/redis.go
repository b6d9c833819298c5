package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/wwwxxch/linebot-genai/internal/model"
)

const keyPrefix = "chat:state:"

// maxTxRetries bounds optimistic-transaction retries on WATCH conflicts
// before surfacing ErrVersionConflict.
const maxTxRetries = 3

type redisStore struct {
	client *redis.Client
}

// NewRedisStore creates a ConversationStore backed by Redis. Each thread is
// one JSON blob under chat:state:<threadID>; writes go through WATCH/MULTI
// transactions so racing turns for the same thread cannot lose updates.
func NewRedisStore(client *redis.Client) ConversationStore {
	return &redisStore{client: client}
}

func stateKey(threadID string) string {
	return keyPrefix + threadID
}

func (s *redisStore) Load(ctx context.Context, threadID string) (*model.ConversationState, error) {
	data, err := s.client.Get(ctx, stateKey(threadID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation %s: %w", threadID, err)
	}

	var state model.ConversationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", threadID, err)
	}

	return &state, nil
}

func (s *redisStore) Save(ctx context.Context, state *model.ConversationState) error {
	key := stateKey(state.ThreadID)

	txn := func(tx *redis.Tx) error {
		stored, err := s.storedVersion(ctx, tx, key)
		if err != nil {
			return err
		}
		if stored != state.Version {
			return ErrVersionConflict
		}

		next := state.Clone()
		next.Version = state.Version + 1

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode conversation %s: %w", state.ThreadID, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	if err := s.watch(ctx, key, txn); err != nil {
		return err
	}

	state.Version++
	return nil
}

func (s *redisStore) RemoveMessages(ctx context.Context, threadID string, messageIDs []int64) error {
	if len(messageIDs) == 0 {
		return nil
	}

	remove := make(map[int64]struct{}, len(messageIDs))
	for _, id := range messageIDs {
		remove[id] = struct{}{}
	}

	key := stateKey(threadID)

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load conversation %s: %w", threadID, err)
		}

		var state model.ConversationState
		if err := json.Unmarshal(data, &state); err != nil {
			return fmt.Errorf("decode conversation %s: %w", threadID, err)
		}

		kept := state.Messages[:0]
		for _, msg := range state.Messages {
			if _, ok := remove[msg.ID]; !ok {
				kept = append(kept, msg)
			}
		}
		state.Messages = kept
		state.Version++

		updated, err := json.Marshal(&state)
		if err != nil {
			return fmt.Errorf("encode conversation %s: %w", threadID, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	return s.watch(ctx, key, txn)
}

// watch runs the transaction under WATCH, retrying a bounded number of times
// when a concurrent write invalidates it.
func (s *redisStore) watch(ctx context.Context, key string, txn func(tx *redis.Tx) error) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txn, key)
		if errors.Is(err, redis.TxFailedErr) {
			slog.DebugContext(ctx, "redis transaction conflicted, retrying", "key", key, "attempt", i+1)
			continue
		}
		return err
	}
	return ErrVersionConflict
}

func (s *redisStore) storedVersion(ctx context.Context, tx *redis.Tx, key string) (int64, error) {
	data, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load stored version: %w", err)
	}

	var state model.ConversationState
	if err := json.Unmarshal(data, &state); err != nil {
		return 0, fmt.Errorf("decode stored version: %w", err)
	}
	return state.Version, nil
}

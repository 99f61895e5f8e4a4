package uistate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// maxModifyAttempts bounds optimistic retries when another writer touches
// the same key between read and commit.
const maxModifyAttempts = 5

// RedisPersister keeps each state as a JSON string under ui:{userId}.
// Entries do not expire.
type RedisPersister struct {
	client *redis.Client
}

func NewRedisPersister(client *redis.Client) *RedisPersister {
	return &RedisPersister{client: client}
}

func key(userID string) string {
	return "ui:" + userID
}

func decodeState(raw []byte, err error) (State, bool, error) {
	if err == redis.Nil {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("get ui state: %w", err)
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return State{}, false, fmt.Errorf("decode ui state: %w", err)
	}
	return state, true, nil
}

func (p *RedisPersister) Load(ctx context.Context, userID string) (State, bool, error) {
	return decodeState(p.client.Get(ctx, key(userID)).Bytes())
}

// Modify runs fn under WATCH and commits with MULTI/EXEC, so a write from
// another replica in between aborts the commit and fn reruns on the new
// value.
func (p *RedisPersister) Modify(ctx context.Context, userID string, fn ModifyFunc) (State, error) {
	k := key(userID)
	var result State

	txf := func(tx *redis.Tx) error {
		current, found, err := decodeState(tx.Get(ctx, k).Bytes())
		if err != nil {
			return err
		}
		next, changed, err := fn(current, found)
		if err != nil {
			return err
		}
		result = next
		if !changed {
			return nil
		}

		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode ui state: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, raw, 0)
			return nil
		})
		return err
	}

	for attempt := 1; attempt <= maxModifyAttempts; attempt++ {
		err := p.client.Watch(ctx, txf, k)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return State{}, err
		}
		log.Printf("[UIState] Modify retry: user=%s attempt=%d", userID, attempt)
	}
	return State{}, ErrStateConflict
}

// MemoryPersister is used when Redis is not configured.
type MemoryPersister struct {
	mu     sync.RWMutex
	states map[string]State
	saves  int
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{states: make(map[string]State)}
}

func (p *MemoryPersister) Load(_ context.Context, userID string) (State, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	state, ok := p.states[userID]
	return state.clone(), ok, nil
}

// Modify holds the write lock across read and save.
func (p *MemoryPersister) Modify(_ context.Context, userID string, fn ModifyFunc) (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	current, found := p.states[userID]
	next, changed, err := fn(current.clone(), found)
	if err != nil {
		return State{}, err
	}
	if changed {
		p.states[userID] = next.clone()
		p.saves++
	}
	return next, nil
}

// Saves reports how many writes reached the persister.
func (p *MemoryPersister) Saves() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.saves
}

package timer

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"klocka/internal/kv"
)

const StorageKey = "klockaTimers"

type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// Registry maps product ids to timers. It is persisted on state transitions
// only; plain countdown updates stay in memory.
type Registry struct {
	storage Storage
	logger  *slog.Logger
	timers  map[int64]*Timer
}

func NewRegistry(storage Storage, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		storage: storage,
		logger:  logger,
		timers:  make(map[int64]*Timer),
	}
}

// Load reads persisted timers and brings running ones up to date with now,
// so a countdown that finished while the program was closed comes back expired.
func (r *Registry) Load(now time.Time) error {
	r.timers = make(map[int64]*Timer)

	data, err := r.storage.Get(StorageKey)
	if errors.Is(err, kv.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load timers: %w", err)
	}

	var raw map[string]*Timer
	if err := json.Unmarshal(data, &raw); err != nil {
		r.logger.Warn("stored timers are malformed, starting empty", "error", err)
		return nil
	}

	for key, t := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil || t == nil {
			r.logger.Warn("skipping stored timer", "key", key)
			continue
		}
		t.RemainingMs = max(0, t.RemainingMs)
		if !t.Running {
			t.EndTimeMs = nil
		}
		r.timers[id] = t
	}

	if expired := r.advance(now); len(expired) > 0 {
		r.logger.Info("timers expired while closed", "ids", expired)
		return r.Save()
	}
	return nil
}

func (r *Registry) Save() error {
	raw := make(map[string]*Timer, len(r.timers))
	for id, t := range r.timers {
		raw[strconv.FormatInt(id, 10)] = t
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode timers: %w", err)
	}
	if err := r.storage.Set(StorageKey, data); err != nil {
		return fmt.Errorf("save timers: %w", err)
	}
	return nil
}

// Get returns the timer for id; the second result is false on a miss.
func (r *Registry) Get(id int64) (Timer, bool) {
	t, ok := r.timers[id]
	if !ok {
		return Timer{}, false
	}
	return *t, true
}

func (r *Registry) IDs() []int64 {
	ids := make([]int64, 0, len(r.timers))
	for id := range r.timers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Sync creates the timer for id on first sight, seeded with totalMs, and
// retargets an existing one to totalMs.
func (r *Registry) Sync(id, totalMs int64) error {
	t, ok := r.timers[id]
	if !ok {
		r.timers[id] = New(totalMs)
		return r.Save()
	}
	if t.Retarget(totalMs) {
		return r.Save()
	}
	return nil
}

// Start reports false when id has no timer.
func (r *Registry) Start(id int64, now time.Time) (bool, error) {
	t, ok := r.timers[id]
	if !ok {
		return false, nil
	}
	t.Start(now)
	return true, r.Save()
}

func (r *Registry) Stop(id int64) (bool, error) {
	t, ok := r.timers[id]
	if !ok {
		return false, nil
	}
	t.Stop()
	return true, r.Save()
}

func (r *Registry) Remove(id int64) (bool, error) {
	if _, ok := r.timers[id]; !ok {
		return false, nil
	}
	delete(r.timers, id)
	return true, r.Save()
}

// Tick recomputes every running timer against now and returns the ids that
// expired, in ascending order. Storage is written only when something expired.
func (r *Registry) Tick(now time.Time) ([]int64, error) {
	expired := r.advance(now)
	if len(expired) == 0 {
		return nil, nil
	}
	return expired, r.Save()
}

func (r *Registry) advance(now time.Time) []int64 {
	var expired []int64
	for id, t := range r.timers {
		if t.Advance(now) {
			expired = append(expired, id)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i] < expired[j] })
	return expired
}

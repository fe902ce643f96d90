package product

import (
	"errors"
	"testing"

	"klocka/internal/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStorage struct {
	data   map[string][]byte
	writes int
	err    error
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string][]byte)}
}

func (m *memStorage) Get(key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return v, nil
}

func (m *memStorage) Set(key string, value []byte) error {
	if m.err != nil {
		return m.err
	}
	m.writes++
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func ptr[T any](v T) *T { return &v }

func TestLoadDefaultsWhenMissing(t *testing.T) {
	s := NewStore(newMemStorage(), nil)
	require.NoError(t, s.Load())

	assert.Equal(t, Defaults(), s.All())
}

func TestLoadCorruptFallsBackToEmpty(t *testing.T) {
	st := newMemStorage()
	st.data[StorageKey] = []byte(`{"not":"a list"}`)

	s := NewStore(st, nil)
	require.NoError(t, s.Load())

	assert.Zero(t, s.Len())
}

func TestLoadClampsStoredValues(t *testing.T) {
	st := newMemStorage()
	st.data[StorageKey] = []byte(`[{"id":3,"name":"Tea","hours":150,"minutes":-2,"active":true}]`)

	s := NewStore(st, nil)
	require.NoError(t, s.Load())

	p, ok := s.Get(3)
	require.True(t, ok)
	assert.Equal(t, 99, p.Hours)
	assert.Equal(t, 0, p.Minutes)
}

func TestAddAssignsMaxPlusOne(t *testing.T) {
	st := newMemStorage()
	st.data[StorageKey] = []byte(`[{"id":2,"name":"a"},{"id":7,"name":"b"}]`)
	s := NewStore(st, nil)
	require.NoError(t, s.Load())

	p, err := s.Add()
	require.NoError(t, err)
	assert.Equal(t, Product{ID: 8, Active: true}, p)

	_, err = s.Delete(8)
	require.NoError(t, err)
	_, err = s.Delete(7)
	require.NoError(t, err)

	p, err = s.Add()
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.ID)
}

func TestAddPersists(t *testing.T) {
	st := newMemStorage()
	s := NewStore(st, nil)
	require.NoError(t, s.Load())

	_, err := s.Add()
	require.NoError(t, err)

	reloaded := NewStore(st, nil)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, 9, reloaded.Len())
	assert.Equal(t, s.All(), reloaded.All())
}

func TestUpdateMergesAndClamps(t *testing.T) {
	s := NewStore(newMemStorage(), nil)
	require.NoError(t, s.Load())

	p, ok, err := s.Update(1, Patch{Name: ptr("Tea"), Minutes: ptr(75)})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Tea", p.Name)
	assert.Equal(t, 59, p.Minutes)
	assert.Equal(t, 0, p.Hours)
	assert.True(t, p.Active)
}

func TestUnknownIDIsNoop(t *testing.T) {
	st := newMemStorage()
	s := NewStore(st, nil)
	require.NoError(t, s.Load())

	_, ok, err := s.Update(99, Patch{Name: ptr("x")})
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Delete(99)
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.Zero(t, st.writes)
}

func TestActiveFiltersInactiveAndUnnamed(t *testing.T) {
	s := NewStore(newMemStorage(), nil)
	require.NoError(t, s.Load())
	_, _, err := s.Update(2, Patch{Active: ptr(false)})
	require.NoError(t, err)
	_, _, err = s.Update(3, Patch{Name: ptr(" ")})
	require.NoError(t, err)

	var ids []int64
	for _, p := range s.Active() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{1, 4, 5, 6, 7, 8}, ids)
}

func TestSaveErrorIsWrapped(t *testing.T) {
	st := newMemStorage()
	s := NewStore(st, nil)
	require.NoError(t, s.Load())

	boom := errors.New("disk full")
	st.err = boom

	_, err := s.Add()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 9, s.Len())
}

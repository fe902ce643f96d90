package product

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"klocka/internal/kv"
)

const StorageKey = "klockaProducts"

// Storage is the durable key-value backend the store persists into.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// Store is the ordered product list. Every mutation is written through to storage.
type Store struct {
	storage  Storage
	logger   *slog.Logger
	products []Product
}

func NewStore(storage Storage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{storage: storage, logger: logger}
}

// Load reads the persisted list. A missing record yields the default catalog,
// a corrupt one an empty list.
func (s *Store) Load() error {
	data, err := s.storage.Get(StorageKey)
	if errors.Is(err, kv.ErrNotFound) {
		s.products = Defaults()
		s.logger.Info("no stored products, using default catalog", "count", len(s.products))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		s.logger.Warn("stored products are malformed, starting empty", "error", err)
		s.products = nil
		return nil
	}
	for i := range products {
		products[i].clamp()
	}
	s.products = products
	return nil
}

func (s *Store) Save() error {
	products := s.products
	if products == nil {
		products = []Product{}
	}
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode products: %w", err)
	}
	if err := s.storage.Set(StorageKey, data); err != nil {
		return fmt.Errorf("save products: %w", err)
	}
	return nil
}

// Add appends an empty active product with id one greater than the current maximum.
func (s *Store) Add() (Product, error) {
	p := Product{ID: s.nextID(), Active: true}
	s.products = append(s.products, p)
	return p, s.Save()
}

// Update merges patch into the product with the given id. It reports false
// and writes nothing when the id is unknown.
func (s *Store) Update(id int64, patch Patch) (Product, bool, error) {
	i := s.index(id)
	if i < 0 {
		return Product{}, false, nil
	}
	s.products[i].apply(patch)
	return s.products[i], true, s.Save()
}

func (s *Store) Delete(id int64) (bool, error) {
	i := s.index(id)
	if i < 0 {
		return false, nil
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	return true, s.Save()
}

func (s *Store) Get(id int64) (Product, bool) {
	i := s.index(id)
	if i < 0 {
		return Product{}, false
	}
	return s.products[i], true
}

func (s *Store) All() []Product {
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

// Active returns the products shown in the run-time view, in list order.
func (s *Store) Active() []Product {
	var out []Product
	for _, p := range s.products {
		if p.Visible() {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) Len() int {
	return len(s.products)
}

func (s *Store) nextID() int64 {
	var maxID int64
	for _, p := range s.products {
		maxID = max(maxID, p.ID)
	}
	return maxID + 1
}

func (s *Store) index(id int64) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Package memory is an in-process transaction store for local
// development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jizhang/internal/core"
	"jizhang/internal/store"
)

// Store keeps transactions in memory, keyed by type and id.
type Store struct {
	mu  sync.RWMutex
	cal core.Calendar
	txs map[string]core.Transaction
}

// New builds an empty store using the calendar for range filtering.
func New(cal core.Calendar) *Store {
	return &Store{cal: cal, txs: make(map[string]core.Transaction)}
}

func key(typ core.TxType, id string) string {
	return string(typ) + "/" + id
}

// Add seeds a transaction, overwriting any existing one with the same
// type and id.
func (s *Store) Add(tx core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs[key(tx.Type, tx.ID)] = tx
}

func (s *Store) FetchRange(_ context.Context, userID string, from, to time.Time) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Transaction
	for _, tx := range s.txs {
		if tx.UserID != userID {
			continue
		}
		d, err := core.ParseLocalDate(tx.Date)
		if err != nil {
			continue
		}
		at := s.cal.At(d)
		if at.Before(from) || at.After(to) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (s *Store) FetchByID(_ context.Context, id string, typ core.TxType) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.txs[key(typ, id)]
	if !ok {
		return core.Transaction{}, fmt.Errorf("%w: %s %s", store.ErrNotFound, typ, id)
	}
	return tx, nil
}

func (s *Store) Update(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(tx.Type, tx.ID)
	if _, ok := s.txs[k]; !ok {
		return fmt.Errorf("%w: %s %s", store.ErrNotFound, tx.Type, tx.ID)
	}
	s.txs[k] = tx
	return nil
}

func (s *Store) Delete(_ context.Context, id string, typ core.TxType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(typ, id)
	if _, ok := s.txs[k]; !ok {
		return fmt.Errorf("%w: %s %s", store.ErrNotFound, typ, id)
	}
	delete(s.txs, k)
	return nil
}

// Package otp keeps pending one-time login codes in an in-memory badger
// database so every entry expires on its own.
package otp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

var (
	ErrNotFound        = errors.New("otp: not requested or expired")
	ErrMismatch        = errors.New("otp: code mismatch")
	ErrTooManyAttempts = errors.New("otp: too many attempts")
)

const DefaultMaxAttempts = 5

type entry struct {
	Hash     string `json:"hash"`
	Attempts int    `json:"attempts"`
}

type Store struct {
	db          *badger.DB
	ttl         time.Duration
	maxAttempts int
}

// Open starts an in-memory store. The caller owns it and must Close it.
func Open(ttl time.Duration, maxAttempts int) (*Store, error) {
	if ttl <= 0 {
		return nil, errors.New("otp: ttl must be positive")
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open otp store: %w", err)
	}
	return &Store{db: db, ttl: ttl, maxAttempts: maxAttempts}, nil
}

func (s *Store) TTL() time.Duration { return s.ttl }

func key(email string) []byte {
	return []byte("otp:" + strings.ToLower(strings.TrimSpace(email)))
}

// Save replaces any pending code for email and restarts its lifetime.
func (s *Store) Save(email, hash string) error {
	val, err := json.Marshal(entry{Hash: hash})
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key(email), val).WithTTL(s.ttl))
	})
}

// Verify consumes the pending code when check accepts its hash. A rejected
// attempt keeps the remaining lifetime; the entry is dropped once the
// attempt budget is spent.
func (s *Store) Verify(email string, check func(hash string) bool) error {
	k := key(email)
	// outcome is reported after commit; returning it from the txn func would
	// discard the attempt counter update
	var outcome error
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if errors.Is(err, badger.ErrKeyNotFound) {
			outcome = ErrNotFound
			return nil
		}
		if err != nil {
			return err
		}

		var e entry
		if err := item.Value(func(v []byte) error { return json.Unmarshal(v, &e) }); err != nil {
			return err
		}

		if check(e.Hash) {
			return txn.Delete(k)
		}

		e.Attempts++
		if e.Attempts >= s.maxAttempts {
			outcome = ErrTooManyAttempts
			return txn.Delete(k)
		}

		remaining := time.Until(time.Unix(int64(item.ExpiresAt()), 0))
		if remaining <= 0 {
			outcome = ErrNotFound
			return nil
		}
		val, err := json.Marshal(e)
		if err != nil {
			return err
		}
		outcome = ErrMismatch
		return txn.SetEntry(badger.NewEntry(k, val).WithTTL(remaining))
	})
	if err != nil {
		return err
	}
	return outcome
}

func (s *Store) Delete(email string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(email))
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}

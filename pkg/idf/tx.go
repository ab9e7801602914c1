package idf

import (
	"errors"
	"fmt"
)

// Tx records the inverse of every store mutation made while it is open, so
// the store can be rolled back to the state at [Store.Begin].
//
// Create via [Store.Begin]. Exactly one of [Tx.Commit] or [Tx.Rollback]
// must be called. Only one transaction may be open per store.
//
// Records removed and restored by a rollback are the same *Record values, so
// handles held by callers stay valid. Marks on fields that were removed stay
// stale after a rollback.
type Tx struct {
	store *Store
	undo  []func()
	done  bool
}

// Begin opens a transaction. It fails with [ErrTxActive] if one is open.
func (s *Store) Begin() (*Tx, error) {
	if s.tx != nil {
		return nil, ErrTxActive
	}

	tx := &Tx{store: s}
	s.tx = tx

	return tx, nil
}

// Commit keeps every mutation made since Begin.
func (tx *Tx) Commit() error {
	if tx.done {
		return ErrTxDone
	}

	tx.done = true
	tx.undo = nil
	tx.store.tx = nil

	return nil
}

// Rollback reverts every mutation made since Begin, newest first.
func (tx *Tx) Rollback() error {
	if tx.done {
		return ErrTxDone
	}

	tx.rollbackTo(0)
	tx.done = true
	tx.store.tx = nil

	return nil
}

// Len returns the number of mutations recorded so far.
func (tx *Tx) Len() int {
	return len(tx.undo)
}

func (tx *Tx) rollbackTo(savepoint int) {
	s := tx.store
	s.undoing = true

	for i := len(tx.undo) - 1; i >= savepoint; i-- {
		tx.undo[i]()
	}

	s.undoing = false
	tx.undo = tx.undo[:savepoint]
}

// Update runs fn as one all-or-nothing unit: when fn returns an error or
// panics, every mutation fn made is rolled back.
//
// Inside an open transaction Update uses a savepoint, so only fn's own
// mutations are undone and the outer transaction stays open.
func (s *Store) Update(fn func() error) (err error) {
	if fn == nil {
		return errors.New("update: fn is nil")
	}

	if s.tx != nil {
		savepoint := len(s.tx.undo)
		tx := s.tx

		defer func() {
			if p := recover(); p != nil {
				tx.rollbackTo(savepoint)
				panic(p)
			}

			if err != nil {
				tx.rollbackTo(savepoint)
			}
		}()

		return fn()
	}

	tx, err := s.Begin()
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()

			panic(p)
		}

		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}

			return
		}

		err = tx.Commit()
	}()

	return fn()
}

func (s *Store) logUndo(fn func()) {
	if s.tx == nil || s.undoing {
		return
	}

	s.tx.undo = append(s.tx.undo, fn)
}

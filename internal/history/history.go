// Package history keeps generated records in an encrypted zstore
// collection.
package history

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/zarlcorp/core/pkg/zstore"

	"github.com/zarlcorp/zpersona/internal/identity"
)

const collectionName = "history"

// ErrNotFound is returned for an ID that is not in the history.
var ErrNotFound = errors.New("record not found")

// History is the record collection. It is safe to use from one goroutine
// at a time, like the store underneath.
type History struct {
	col *zstore.Collection[identity.Record]
}

// Open returns the history collection of an open store.
func Open(s *zstore.Store) (*History, error) {
	col, err := zstore.NewCollection[identity.Record](s, collectionName)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return &History{col: col}, nil
}

// Add stores records in order. It stops at the first failure; records
// before it stay stored.
func (h *History) Add(records ...identity.Record) error {
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("add record: empty id")
		}
		if err := h.col.Put(r.ID, r); err != nil {
			return fmt.Errorf("add record %s: %w", r.ID, err)
		}
	}
	return nil
}

// List returns every record, newest first. Records with equal timestamps
// are ordered by ID.
func (h *History) List() ([]identity.Record, error) {
	recs, err := h.col.List()
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	// zstore.List does not guarantee order
	slices.SortFunc(recs, func(a, b identity.Record) int {
		if c := cmp.Compare(b.CreatedAt, a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return recs, nil
}

// Starred returns the starred records, newest first.
func (h *History) Starred() ([]identity.Record, error) {
	recs, err := h.List()
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(recs, func(r identity.Record) bool { return !r.Starred }), nil
}

// Get returns the record with the given ID.
func (h *History) Get(id string) (identity.Record, error) {
	r, err := h.col.Get(id)
	if err == nil {
		return r, nil
	}
	if !h.has(id) {
		return identity.Record{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return identity.Record{}, fmt.Errorf("get %s: %w", id, err)
}

// Remove deletes the record with the given ID.
func (h *History) Remove(id string) error {
	if !h.has(id) {
		return fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}
	if err := h.col.Delete(id); err != nil {
		return fmt.Errorf("remove %s: %w", id, err)
	}
	return nil
}

// ToggleStar flips the starred flag and returns the updated record.
func (h *History) ToggleStar(id string) (identity.Record, error) {
	r, err := h.Get(id)
	if err != nil {
		return identity.Record{}, err
	}

	r.Starred = !r.Starred
	if err := h.col.Put(id, r); err != nil {
		return identity.Record{}, fmt.Errorf("star %s: %w", id, err)
	}
	return r, nil
}

// Clear removes every record and returns how many were removed.
func (h *History) Clear() (int, error) {
	recs, err := h.col.List()
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}

	for i, r := range recs {
		if err := h.col.Delete(r.ID); err != nil {
			return i, fmt.Errorf("clear history: %s: %w", r.ID, err)
		}
	}
	return len(recs), nil
}

func (h *History) has(id string) bool {
	recs, err := h.col.List()
	if err != nil {
		return false
	}
	return slices.ContainsFunc(recs, func(r identity.Record) bool { return r.ID == id })
}

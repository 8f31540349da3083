package catalog

import (
	"context"
	"errors"
	"os"
	"slices"

	"github.com/mrlokans/coursecatalog/internal/entities"
	"github.com/mrlokans/coursecatalog/internal/jsonstore"
)

// NextID returns one more than the largest id in items, or 1 for an empty
// collection.
func NextID[T entities.Identifiable](items []T) int {
	maxID := 0
	for _, item := range items {
		if id := item.GetID(); id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}

// Sequence is the highest id ever handed out for one collection.
type Sequence struct {
	Collection string `json:"collection"`
	LastID     int    `json:"lastId"`
}

// sequences remembers the last allocated id per collection so that deleting
// the record holding the maximum id does not make that id available again.
// A nil file disables the high-water mark and allocation is plain max+1.
type sequences struct {
	file *jsonstore.File[Sequence]
}

// reserve returns the id to use for a new record given candidate, the
// max+1 of the records currently stored, and persists it as the new high-water
// mark before the caller writes the record.
func (s *sequences) reserve(ctx context.Context, collection string, candidate int) (int, error) {
	if s == nil || s.file == nil {
		return candidate, nil
	}

	seqs, err := s.file.ReadAll(ctx)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return 0, asStorageError(err)
		}
		seqs = []Sequence{}
	}

	next := candidate
	idx := slices.IndexFunc(seqs, func(seq Sequence) bool { return seq.Collection == collection })
	if idx == -1 {
		seqs = append(seqs, Sequence{Collection: collection})
		idx = len(seqs) - 1
	} else if seqs[idx].LastID >= next {
		next = seqs[idx].LastID + 1
	}

	seqs[idx].LastID = next
	if err := s.file.WriteAll(ctx, seqs); err != nil {
		return 0, asStorageError(err)
	}
	return next, nil
}

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/coursecatalog/internal/entities"
	"github.com/mrlokans/coursecatalog/internal/jsonstore"
)

func TestNextID(t *testing.T) {
	assert.Equal(t, 1, NextID([]entities.Course{}))
	assert.Equal(t, 1, NextID[entities.Lesson](nil))
	assert.Equal(t, 8, NextID([]entities.Module{{ID: 3}, {ID: 7}, {ID: 2}}))
}

func TestSequences_Reserve(t *testing.T) {
	ctx := context.Background()

	t.Run("nil file returns candidate", func(t *testing.T) {
		var s *sequences
		id, err := s.reserve(ctx, "courses", 4)
		require.NoError(t, err)
		assert.Equal(t, 4, id)
	})

	t.Run("never goes below the high-water mark", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sequences.json")
		s := &sequences{file: jsonstore.NewFile[Sequence](path)}

		id, err := s.reserve(ctx, "lessons", 5)
		require.NoError(t, err)
		assert.Equal(t, 5, id)

		id, err = s.reserve(ctx, "lessons", 3)
		require.NoError(t, err)
		assert.Equal(t, 6, id)

		id, err = s.reserve(ctx, "modules", 1)
		require.NoError(t, err)
		assert.Equal(t, 1, id)

		id, err = s.reserve(ctx, "lessons", 10)
		require.NoError(t, err)
		assert.Equal(t, 10, id)
	})

	t.Run("corrupt file is a storage error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sequences.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
		s := &sequences{file: jsonstore.NewFile[Sequence](path)}

		_, err := s.reserve(ctx, "lessons", 1)
		assert.ErrorIs(t, err, ErrStorage)
	})
}

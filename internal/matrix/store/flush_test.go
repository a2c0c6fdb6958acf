package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/creativeops/matrixsync/internal/matrix/codec"
)

func TestFlush_PartitionsAndMarksSynced(t *testing.T) {
	t.Parallel()

	s, ft := seeded(t)
	_, err := s.AddMessage("launch", "ya")
	require.NoError(t, err)

	res := s.Flush(context.Background())

	require.True(t, res.Success)
	require.Empty(t, res.Errors)
	require.Len(t, res.Sheets, 3)

	require.Equal(t, 1, ft.appended(codec.SheetAudiences))
	require.Equal(t, 1, ft.appended(codec.SheetTopics))
	require.Equal(t, 1, ft.appended(codec.SheetMessages))

	require.Zero(t, s.PendingCount())
	for _, e := range s.Outbox() {
		require.True(t, e.Synced)
	}
}

func TestFlush_Idempotent(t *testing.T) {
	t.Parallel()

	s, ft := seeded(t)
	_, err := s.AddMessage("launch", "ya")
	require.NoError(t, err)

	first := s.Flush(context.Background())
	require.True(t, first.Success)

	second := s.Flush(context.Background())
	require.True(t, second.Success)
	require.Empty(t, second.Sheets)

	// No additional remote writes on the second run.
	require.Equal(t, 1, ft.appended(codec.SheetAudiences))
	require.Equal(t, 1, ft.appended(codec.SheetTopics))
	require.Equal(t, 1, ft.appended(codec.SheetMessages))
}

func TestFlush_EmptyOutboxDoesNothing(t *testing.T) {
	t.Parallel()

	ft := newFakeTransport()
	s := New(ft)

	res := s.Flush(context.Background())
	require.True(t, res.Success)
	require.Empty(t, res.Sheets)
	require.Zero(t, ft.appended(codec.SheetMessages))
}

func TestFlush_PartitionsFailIndependently(t *testing.T) {
	t.Parallel()

	s, ft := seeded(t)
	_, err := s.AddMessage("launch", "ya")
	require.NoError(t, err)

	ft.mu.Lock()
	ft.writeErr[codec.SheetTopics] = errors.New("quota exceeded")
	ft.mu.Unlock()

	res := s.Flush(context.Background())

	require.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	require.Len(t, res.Sheets, 3)

	// Audience and message partitions flushed despite the topic failure.
	require.Equal(t, 1, ft.appended(codec.SheetAudiences))
	require.Equal(t, 1, ft.appended(codec.SheetMessages))
	require.Equal(t, 1, s.PendingCount())

	// A re-run after the failure retries only the failed partition.
	ft.mu.Lock()
	delete(ft.writeErr, codec.SheetTopics)
	ft.mu.Unlock()

	res = s.Flush(context.Background())
	require.True(t, res.Success)
	require.Len(t, res.Sheets, 1)
	require.Equal(t, codec.SheetTopics, res.Sheets[0].Sheet)
	require.Zero(t, s.PendingCount())
	require.Equal(t, 1, ft.appended(codec.SheetAudiences))
}

func TestFlush_RepairsMessagesHeader(t *testing.T) {
	t.Parallel()

	s, ft := seeded(t)
	_, err := s.AddMessage("launch", "ya")
	require.NoError(t, err)

	// Header drift: status column missing.
	ft.mu.Lock()
	ft.values[codec.SheetMessages] = [][]string{{"name", "number", "variant"}}
	ft.mu.Unlock()

	res := s.Flush(context.Background())
	require.True(t, res.Success)

	ft.mu.Lock()
	defer ft.mu.Unlock()
	require.Equal(t, []string{"messages!A1:O1"}, ft.updateCalls)
	require.Equal(t, codec.MessagesHeader, ft.values[codec.SheetMessages][0])
	// Data row appended after the repaired header.
	require.Len(t, ft.values[codec.SheetMessages], 2)
}

func TestFlush_HeaderIntactNoRepair(t *testing.T) {
	t.Parallel()

	s, ft := seeded(t)
	_, err := s.AddMessage("launch", "ya")
	require.NoError(t, err)

	res := s.Flush(context.Background())
	require.True(t, res.Success)

	ft.mu.Lock()
	defer ft.mu.Unlock()
	require.Empty(t, ft.updateCalls)
}

func TestFlush_RemoveAppendsRow(t *testing.T) {
	t.Parallel()

	s, ft := seeded(t)
	m, err := s.AddMessage("launch", "ya")
	require.NoError(t, err)

	res := s.Flush(context.Background())
	require.True(t, res.Success)

	_, err = s.RemoveMessage(m.ID)
	require.NoError(t, err)

	res = s.Flush(context.Background())
	require.True(t, res.Success)

	// Removal never deletes: the sheet now holds the header, the original
	// row, and an appended row with status "removed".
	ft.mu.Lock()
	defer ft.mu.Unlock()
	rows := ft.values[codec.SheetMessages]
	require.Len(t, rows, 3)
	require.Equal(t, m.Name, rows[2][0])
	require.Equal(t, "removed", rows[2][14])
}

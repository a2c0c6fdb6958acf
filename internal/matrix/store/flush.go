package store

import (
	"context"
	"fmt"

	"github.com/creativeops/matrixsync/internal/matrix/codec"
	"github.com/creativeops/matrixsync/internal/matrix/models"
)

// SheetResult reports the outcome of flushing one sheet partition.
type SheetResult struct {
	Sheet   string
	Entries int
	Err     error
}

// FlushResult reports a flush. Partitions fail independently: Success is
// true only when Errors is empty, but a failed partition never blocks the
// others.
type FlushResult struct {
	Success bool
	Sheets  []SheetResult
	Errors  []error
}

// partition groups the unsynced entries of one entity kind, in outbox
// order.
type partition struct {
	kind    models.EntityKind
	sheet   string
	entries []models.ChangeEntry
}

// Flush drains unsynced outbox entries to the remote store, one sheet at a
// time. All actions are expressed as appended rows: the remote store is
// log-structured, and a re-read resolves duplicates by keeping the last row
// per key. Entries of a partition are marked synced only after its write
// succeeds, so a re-run retries exactly the failed partitions.
func (s *Store) Flush(ctx context.Context) *FlushResult {
	s.mu.Lock()
	parts := []*partition{
		{kind: models.KindAudience, sheet: codec.SheetAudiences},
		{kind: models.KindTopic, sheet: codec.SheetTopics},
		{kind: models.KindMessage, sheet: codec.SheetMessages},
	}
	for _, e := range s.outbox {
		if e.Synced {
			continue
		}
		for _, p := range parts {
			if p.kind == e.Kind {
				p.entries = append(p.entries, e)
			}
		}
	}
	s.mu.Unlock()

	result := &FlushResult{}

	for _, p := range parts {
		if len(p.entries) == 0 {
			continue
		}

		err := s.flushPartition(ctx, p)
		result.Sheets = append(result.Sheets, SheetResult{Sheet: p.sheet, Entries: len(p.entries), Err: err})

		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("flushing %s: %w", p.sheet, err))
			s.log.Error(ctx, "flush partition failed", "sheet", p.sheet, "entries", len(p.entries), "error", err)
			continue
		}

		s.markSynced(p.entries)
		s.log.Info(ctx, "flushed partition", "sheet", p.sheet, "entries", len(p.entries))
	}

	result.Success = len(result.Errors) == 0
	return result
}

func (s *Store) flushPartition(ctx context.Context, p *partition) error {
	rows := make([][]string, 0, len(p.entries))
	for _, e := range p.entries {
		switch {
		case e.Payload.Audience != nil:
			rows = append(rows, codec.EncodeAudienceRow(*e.Payload.Audience))
		case e.Payload.Topic != nil:
			rows = append(rows, codec.EncodeTopicRow(*e.Payload.Topic))
		case e.Payload.Message != nil:
			rows = append(rows, codec.EncodeMessageRow(*e.Payload.Message))
		}
	}
	if len(rows) == 0 {
		return nil
	}

	if p.kind == models.KindMessage {
		if err := s.repairMessagesHeader(ctx); err != nil {
			return err
		}
	}

	return s.api.Append(ctx, p.sheet, rows)
}

// repairMessagesHeader rewrites row 1 of the messages sheet when the status
// column is missing or misplaced. Consumers rely on status occupying column
// 15, and header drift would otherwise go unnoticed by the positional
// codec.
func (s *Store) repairMessagesHeader(ctx context.Context) error {
	rows, err := s.api.Values(ctx, codec.SheetMessages)
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}

	if len(rows) > 0 && len(rows[0]) >= len(codec.MessagesHeader) && rows[0][14] == "status" {
		return nil
	}

	s.log.Warn(ctx, "repairing messages sheet header")
	rng := fmt.Sprintf("%s!A1:O1", codec.SheetMessages)
	if err := s.api.Update(ctx, rng, [][]string{codec.MessagesHeader}); err != nil {
		return fmt.Errorf("rewriting header: %w", err)
	}
	return nil
}

func (s *Store) markSynced(entries []models.ChangeEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seqs := make(map[int64]bool, len(entries))
	for _, e := range entries {
		seqs[e.Seq] = true
	}
	for i := range s.outbox {
		if seqs[s.outbox[i].Seq] {
			s.outbox[i].Synced = true
		}
	}
}

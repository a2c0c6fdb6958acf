package store

import (
	"context"
	"fmt"

	"github.com/creativeops/matrixsync/internal/common"
	"github.com/creativeops/matrixsync/internal/matrix/codec"
)

// SyncFromRemote reads all four sheets and replaces the local collections
// wholesale. Wholesale replacement would silently discard local edits that
// have not been flushed yet, so the sync refuses to run while unsynced
// outbox entries exist and reports common.ErrPendingChanges instead; flush
// first, then sync. A read failure aborts the whole sync and leaves the
// prior state untouched.
func (s *Store) SyncFromRemote(ctx context.Context) error {
	s.mu.Lock()
	pending := s.pendingCountLocked()
	s.mu.Unlock()

	if pending > 0 {
		return fmt.Errorf("%d entries: %w", pending, common.ErrPendingChanges)
	}

	audienceRows, err := s.api.Values(ctx, codec.SheetAudiences)
	if err != nil {
		return fmt.Errorf("reading %s: %w", codec.SheetAudiences, err)
	}
	topicRows, err := s.api.Values(ctx, codec.SheetTopics)
	if err != nil {
		return fmt.Errorf("reading %s: %w", codec.SheetTopics, err)
	}
	messageRows, err := s.api.Values(ctx, codec.SheetMessages)
	if err != nil {
		return fmt.Errorf("reading %s: %w", codec.SheetMessages, err)
	}
	templateRows, err := s.api.Values(ctx, codec.SheetTemplates)
	if err != nil {
		return fmt.Errorf("reading %s: %w", codec.SheetTemplates, err)
	}

	audiences := codec.DecodeAudiences(audienceRows)
	topics := codec.DecodeTopics(topicRows)
	messages := codec.DecodeMessages(messageRows)
	templates := codec.DecodeTemplates(templateRows)

	s.mu.Lock()
	s.audiences = audiences
	s.topics = topics
	s.messages = messages
	s.templates = templates
	s.mu.Unlock()

	s.log.Info(ctx, "synced from remote",
		"audiences", len(audiences),
		"topics", len(topics),
		"messages", len(messages),
		"templates", len(templates),
	)
	return nil
}

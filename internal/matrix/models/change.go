package models

import "time"

// EntityKind partitions change entries by the sheet they target.
type EntityKind string

const (
	KindAudience EntityKind = "audience"
	KindTopic    EntityKind = "topic"
	KindMessage  EntityKind = "message"
)

// Action is the kind of local mutation a change entry records.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionMove   Action = "move"
	ActionCopy   Action = "copy"
	ActionRemove Action = "remove"
)

// ChangeEntry is one record of the in-memory outbox: an ordered, idempotent
// log of local mutations awaiting confirmation from the remote store.
// Entries are created only by store mutations, flipped to Synced by a
// successful flush, and never deleted — they are the history of local edits
// since the last successful flush.
//
// Seq is a monotonically increasing sequence number assigned by the store;
// it, not the wall clock, defines flush order.
type ChangeEntry struct {
	Seq       int64
	ID        string
	Timestamp time.Time
	Kind      EntityKind
	Action    Action
	Payload   ChangePayload
	Synced    bool
}

// ChangePayload carries the action-specific data of a change entry. Exactly
// one of Audience/Topic/Message is set, a snapshot of the entity as of the
// mutation. The remaining fields qualify particular actions.
type ChangePayload struct {
	Audience *Audience
	Topic    *Topic
	Message  *Message

	// Changes lists the fields touched by an update action.
	Changes map[string]string

	// From and To are audience keys recorded for a move action.
	From string
	To   string

	// OriginalID is the source message id recorded for a copy action.
	OriginalID string
}

// Package models defines the matrix entities: audiences (columns), topics
// (rows), messages (cells), and read-only templates.
package models

// Status is the lifecycle state of a message. "removed" is a soft delete:
// removed rows stay in the remote store and in local state and are filtered
// out by consumers.
type Status string

const (
	StatusActive   Status = "active"
	StatusDraft    Status = "draft"
	StatusReview   Status = "review"
	StatusApproved Status = "approved"
	StatusRemoved  Status = "removed"
)

// Audience is a matrix column: a targetable group with its buying metadata.
// Key plus Order determine column placement; Key is referenced by
// Message.Audience.
type Audience struct {
	ID             string
	Name           string
	Key            string
	Order          int
	Status         string
	Strategy       string
	BuyingPlatform string
	DataSource     string
	TargetingType  string
	Device         string
	Tag            string
	Comment        string
	CampaignName   string
	CampaignID     string
	LineItemName   string
	LineItemID     string

	// IsNew marks entities created locally and not yet confirmed by a full
	// sync; IsModified marks local edits awaiting a flush.
	IsNew      bool
	IsModified bool
}

// Topic is a matrix row. Message.Topic references Topic.Key.
type Topic struct {
	ID      string
	Name    string
	Key     string
	Order   int
	Status  string
	Tag1    string
	Tag2    string
	Tag3    string
	Tag4    string
	Created string
	Comment string

	IsNew      bool
	IsModified bool
}

// Message is a matrix cell entry. Name is the sole externally visible
// identity string and must always equal
// "{audience}!{topic}!m{number}!{variant}!n{version}".
type Message struct {
	ID         string
	Name       string
	Number     int
	Variant    string
	Audience   string
	Topic      string
	Version    int
	Template   string
	LandingURL string
	Headline   string
	Copy1      string
	Copy2      string
	Flash      string
	CTA        string
	Comment    string
	Status     Status

	IsNew      bool
	IsModified bool
}

// Template is read-only from the engine's perspective: produced by remote
// sync, never mutated locally.
type Template struct {
	ID         string
	Name       string
	Type       string
	Dimensions string
	Version    string
}

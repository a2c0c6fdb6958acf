package store

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/creativeops/matrixsync/internal/common"
	"github.com/creativeops/matrixsync/internal/matrix/codec"
	"github.com/creativeops/matrixsync/internal/matrix/models"
)

// AddAudience creates a new matrix column. The key is derived from the name
// and is not checked for uniqueness against existing keys; callers that need
// distinct keys must pick distinct names.
func (s *Store) AddAudience(name string) models.Audience {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := 0
	for _, a := range s.audiences {
		if a.Order > order {
			order = a.Order
		}
	}
	order++

	a := models.Audience{
		ID:     uuid.NewString(),
		Name:   name,
		Key:    codec.SlugKey(name, order),
		Order:  order,
		Status: "active",
		IsNew:  true,
	}
	s.audiences = append(s.audiences, a)

	snapshot := a
	s.appendChange(models.KindAudience, models.ActionCreate, models.ChangePayload{Audience: &snapshot})

	return a
}

// AddTopic creates a new matrix row, stamped with the creation date.
func (s *Store) AddTopic(name string) models.Topic {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := 0
	for _, t := range s.topics {
		if t.Order > order {
			order = t.Order
		}
	}
	order++

	t := models.Topic{
		ID:      uuid.NewString(),
		Name:    name,
		Key:     codec.SlugKey(name, order),
		Order:   order,
		Status:  "active",
		Created: s.now().Format("2006-01-02"),
		IsNew:   true,
	}
	s.topics = append(s.topics, t)

	snapshot := t
	s.appendChange(models.KindTopic, models.ActionCreate, models.ChangePayload{Topic: &snapshot})

	return t
}

// AddMessage creates a message in the (topic, audience) cell. The number is
// shared with any message already in the cell (variants accumulate under one
// number), otherwise allocated one past the highest number in use; the
// variant is the first free letter for that number.
func (s *Store) AddMessage(topicKey, audienceKey string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.findTopic(topicKey); err != nil {
		return models.Message{}, err
	}
	if _, err := s.findAudience(audienceKey); err != nil {
		return models.Message{}, err
	}

	number := codec.NextMessageNumber(s.messages, topicKey, audienceKey)
	variant, err := codec.NextVariant(s.messages, topicKey, audienceKey, number)
	if err != nil {
		return models.Message{}, err
	}

	m := models.Message{
		ID:       uuid.NewString(),
		Number:   number,
		Variant:  variant,
		Audience: audienceKey,
		Topic:    topicKey,
		Version:  1,
		Status:   models.StatusActive,
		IsNew:    true,
	}
	m.Name = codec.MessageName(m.Audience, m.Topic, m.Number, m.Variant, m.Version)

	s.messages = append(s.messages, m)

	snapshot := m
	s.appendChange(models.KindMessage, models.ActionCreate, models.ChangePayload{Message: &snapshot})

	return m, nil
}

// MessageChanges is a partial update: nil fields are left untouched.
type MessageChanges struct {
	Name       *string
	Number     *int
	Variant    *string
	Audience   *string
	Topic      *string
	Version    *int
	Template   *string
	LandingURL *string
	Headline   *string
	Copy1      *string
	Copy2      *string
	Flash      *string
	CTA        *string
	Comment    *string
	Status     *models.Status
}

// UpdateMessage merges changes into an existing message and records an
// update entry listing the touched fields. The identity string is recomputed
// when any of audience/topic/number/variant/version change, unless the
// caller set Name explicitly.
func (s *Store) UpdateMessage(id string, ch MessageChanges) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.findMessage(id)
	if err != nil {
		return models.Message{}, err
	}

	changes := make(map[string]string)
	identityChanged := false

	setString := func(field string, dst *string, v *string) {
		if v != nil && *v != *dst {
			*dst = *v
			changes[field] = *v
		}
	}

	if ch.Number != nil && *ch.Number != m.Number {
		m.Number = *ch.Number
		changes["number"] = strconv.Itoa(m.Number)
		identityChanged = true
	}
	if ch.Version != nil && *ch.Version != m.Version {
		m.Version = *ch.Version
		changes["version"] = strconv.Itoa(m.Version)
		identityChanged = true
	}
	if ch.Variant != nil && *ch.Variant != m.Variant {
		m.Variant = *ch.Variant
		changes["variant"] = m.Variant
		identityChanged = true
	}
	if ch.Audience != nil && *ch.Audience != m.Audience {
		m.Audience = *ch.Audience
		changes["audience"] = m.Audience
		identityChanged = true
	}
	if ch.Topic != nil && *ch.Topic != m.Topic {
		m.Topic = *ch.Topic
		changes["topic"] = m.Topic
		identityChanged = true
	}

	setString("template", &m.Template, ch.Template)
	setString("landingUrl", &m.LandingURL, ch.LandingURL)
	setString("headline", &m.Headline, ch.Headline)
	setString("copy1", &m.Copy1, ch.Copy1)
	setString("copy2", &m.Copy2, ch.Copy2)
	setString("flash", &m.Flash, ch.Flash)
	setString("cta", &m.CTA, ch.CTA)
	setString("comment", &m.Comment, ch.Comment)

	if ch.Status != nil && *ch.Status != m.Status {
		m.Status = *ch.Status
		changes["status"] = string(m.Status)
	}

	if ch.Name != nil {
		m.Name = *ch.Name
		changes["name"] = m.Name
	} else if identityChanged {
		m.Name = codec.MessageName(m.Audience, m.Topic, m.Number, m.Variant, m.Version)
		changes["name"] = m.Name
	}

	m.IsModified = true
	s.replaceMessage(*m)

	snapshot := *m
	s.appendChange(models.KindMessage, models.ActionUpdate, models.ChangePayload{
		Message: &snapshot,
		Changes: changes,
	})

	return *m, nil
}

// MoveMessage reassigns a message to another audience column, recomputing
// its identity string under the new audience.
func (s *Store) MoveMessage(id, newAudienceKey string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.findMessage(id)
	if err != nil {
		return models.Message{}, err
	}
	if _, err := s.findAudience(newAudienceKey); err != nil {
		return models.Message{}, err
	}

	from := m.Audience
	m.Audience = newAudienceKey
	m.Name = codec.MessageName(m.Audience, m.Topic, m.Number, m.Variant, m.Version)
	m.IsModified = true
	s.replaceMessage(*m)

	snapshot := *m
	s.appendChange(models.KindMessage, models.ActionMove, models.ChangePayload{
		Message: &snapshot,
		From:    from,
		To:      newAudienceKey,
	})

	return *m, nil
}

// CopyMessage clones a message into another audience column, keeping the
// number and version but allocating a fresh variant there.
func (s *Store) CopyMessage(id, newAudienceKey string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.findMessage(id)
	if err != nil {
		return models.Message{}, err
	}
	if _, err := s.findAudience(newAudienceKey); err != nil {
		return models.Message{}, err
	}

	variant, err := codec.NextVariant(s.messages, m.Topic, newAudienceKey, m.Number)
	if err != nil {
		return models.Message{}, err
	}

	clone := *m
	clone.ID = uuid.NewString()
	clone.Audience = newAudienceKey
	clone.Variant = variant
	clone.Name = codec.MessageName(clone.Audience, clone.Topic, clone.Number, clone.Variant, clone.Version)
	clone.IsNew = true
	clone.IsModified = false

	s.messages = append(s.messages, clone)

	snapshot := clone
	s.appendChange(models.KindMessage, models.ActionCopy, models.ChangePayload{
		Message:    &snapshot,
		OriginalID: id,
	})

	return clone, nil
}

// RemoveMessage soft-deletes a message. The remote store has no row-level
// delete: removal is expressed at flush time by appending a fresh row whose
// status column is "removed".
func (s *Store) RemoveMessage(id string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.findMessage(id)
	if err != nil {
		return models.Message{}, err
	}

	m.Status = models.StatusRemoved
	m.IsModified = true
	s.replaceMessage(*m)

	snapshot := *m
	s.appendChange(models.KindMessage, models.ActionRemove, models.ChangePayload{Message: &snapshot})

	return *m, nil
}

// UpdateAudienceName renames an audience in place. The key is stable: only
// the display name changes.
func (s *Store) UpdateAudienceName(key, newName string) (models.Audience, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.audiences {
		if s.audiences[i].Key != key {
			continue
		}
		s.audiences[i].Name = newName
		s.audiences[i].IsModified = true

		snapshot := s.audiences[i]
		s.appendChange(models.KindAudience, models.ActionUpdate, models.ChangePayload{
			Audience: &snapshot,
			Changes:  map[string]string{"name": newName},
		})
		return snapshot, nil
	}
	return models.Audience{}, fmt.Errorf("audience %q: %w", key, common.ErrNotFound)
}

// UpdateTopicName renames a topic in place.
func (s *Store) UpdateTopicName(key, newName string) (models.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.topics {
		if s.topics[i].Key != key {
			continue
		}
		s.topics[i].Name = newName
		s.topics[i].IsModified = true

		snapshot := s.topics[i]
		s.appendChange(models.KindTopic, models.ActionUpdate, models.ChangePayload{
			Topic:   &snapshot,
			Changes: map[string]string{"name": newName},
		})
		return snapshot, nil
	}
	return models.Topic{}, fmt.Errorf("topic %q: %w", key, common.ErrNotFound)
}

func (s *Store) findAudience(key string) (*models.Audience, error) {
	for i := range s.audiences {
		if s.audiences[i].Key == key {
			return &s.audiences[i], nil
		}
	}
	return nil, fmt.Errorf("audience %q: %w", key, common.ErrNotFound)
}

func (s *Store) findTopic(key string) (*models.Topic, error) {
	for i := range s.topics {
		if s.topics[i].Key == key {
			return &s.topics[i], nil
		}
	}
	return nil, fmt.Errorf("topic %q: %w", key, common.ErrNotFound)
}

// findMessage returns a copy of the message with the given id; mutations go
// back through replaceMessage.
func (s *Store) findMessage(id string) (*models.Message, error) {
	for i := range s.messages {
		if s.messages[i].ID == id {
			m := s.messages[i]
			return &m, nil
		}
	}
	return nil, fmt.Errorf("message %q: %w", id, common.ErrNotFound)
}

func (s *Store) replaceMessage(m models.Message) {
	for i := range s.messages {
		if s.messages[i].ID == m.ID {
			s.messages[i] = m
			return
		}
	}
}

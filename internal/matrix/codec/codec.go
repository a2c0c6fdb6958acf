// Package codec maps between the remote store's flat string rows and typed
// matrix entities. Columns are positional, not named: the header row is
// skipped on decode and every encode emits a fixed column count so the
// remote schema stays stable.
//
// The decoder is tolerant, not a validator: rows missing required fields are
// skipped. Because the remote store is log-structured (edits and removals
// are appended as fresh rows), decode keeps the last occurrence of a key.
package codec

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/creativeops/matrixsync/internal/matrix/models"
)

// Sheet names in the remote spreadsheet.
const (
	SheetAudiences = "audiences"
	SheetTopics    = "topics"
	SheetMessages  = "messages"
	SheetTemplates = "templates"
)

// Canonical header rows, one per sheet. MessagesHeader is also the repair
// row written when the messages sheet header has drifted (the status column
// must occupy position 15).
var (
	AudiencesHeader = []string{
		"id", "name", "order", "status", "strategy", "buying_platform",
		"data_source", "targeting_type", "device", "tag", "key", "comment",
		"campaign_name", "campaign_id", "lineitem_name", "lineitem_id",
	}
	TopicsHeader = []string{
		"id", "name", "key", "order", "status",
		"tag1", "tag2", "tag3", "tag4", "created", "comment",
	}
	MessagesHeader = []string{
		"name", "number", "variant", "audience", "topic", "version",
		"template", "landingUrl", "headline", "copy1", "copy2", "flash",
		"cta", "comment", "status",
	}
	TemplatesHeader = []string{"name", "type", "dimensions", "version"}
)

// cell returns the i-th column of a possibly short row.
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// DecodeAudiences maps audience rows to entities. The first row is the
// header and is skipped; rows without both name and key are skipped; for
// duplicate keys the last row wins.
func DecodeAudiences(rows [][]string) []models.Audience {
	out := make([]models.Audience, 0, max(len(rows)-1, 0))
	index := make(map[string]int)

	for i, row := range rows {
		if i == 0 {
			continue
		}
		name, key := cell(row, 1), cell(row, 10)
		if name == "" || key == "" {
			continue
		}

		id := cell(row, 0)
		if id == "" {
			id = uuid.NewString()
		}

		a := models.Audience{
			ID:             id,
			Name:           name,
			Order:          atoi(cell(row, 2)),
			Status:         cell(row, 3),
			Strategy:       cell(row, 4),
			BuyingPlatform: cell(row, 5),
			DataSource:     cell(row, 6),
			TargetingType:  cell(row, 7),
			Device:         cell(row, 8),
			Tag:            cell(row, 9),
			Key:            key,
			Comment:        cell(row, 11),
			CampaignName:   cell(row, 12),
			CampaignID:     cell(row, 13),
			LineItemName:   cell(row, 14),
			LineItemID:     cell(row, 15),
		}

		if at, ok := index[key]; ok {
			out[at] = a
			continue
		}
		index[key] = len(out)
		out = append(out, a)
	}
	return out
}

// DecodeTopics maps topic rows to entities, with the same skip and
// last-wins rules as DecodeAudiences.
func DecodeTopics(rows [][]string) []models.Topic {
	out := make([]models.Topic, 0, max(len(rows)-1, 0))
	index := make(map[string]int)

	for i, row := range rows {
		if i == 0 {
			continue
		}
		name, key := cell(row, 1), cell(row, 2)
		if name == "" || key == "" {
			continue
		}

		id := cell(row, 0)
		if id == "" {
			id = uuid.NewString()
		}

		tp := models.Topic{
			ID:      id,
			Name:    name,
			Key:     key,
			Order:   atoi(cell(row, 3)),
			Status:  cell(row, 4),
			Tag1:    cell(row, 5),
			Tag2:    cell(row, 6),
			Tag3:    cell(row, 7),
			Tag4:    cell(row, 8),
			Created: cell(row, 9),
			Comment: cell(row, 10),
		}

		if at, ok := index[key]; ok {
			out[at] = tp
			continue
		}
		index[key] = len(out)
		out = append(out, tp)
	}
	return out
}

// DecodeMessages maps message rows to entities. Rows without name, number,
// audience and topic are skipped. Message rows have no id column, so each
// decoded entity gets a fresh id. The remote messages sheet is append-only:
// for duplicate names the last row wins, which is how an appended
// status="removed" row supersedes its predecessor.
func DecodeMessages(rows [][]string) []models.Message {
	out := make([]models.Message, 0, max(len(rows)-1, 0))
	index := make(map[string]int)

	for i, row := range rows {
		if i == 0 {
			continue
		}
		name := cell(row, 0)
		number := cell(row, 1)
		audience := cell(row, 3)
		topic := cell(row, 4)
		if name == "" || number == "" || audience == "" || topic == "" {
			continue
		}

		m := models.Message{
			ID:         uuid.NewString(),
			Name:       name,
			Number:     atoi(number),
			Variant:    cell(row, 2),
			Audience:   audience,
			Topic:      topic,
			Version:    atoi(cell(row, 5)),
			Template:   cell(row, 6),
			LandingURL: cell(row, 7),
			Headline:   cell(row, 8),
			Copy1:      cell(row, 9),
			Copy2:      cell(row, 10),
			Flash:      cell(row, 11),
			CTA:        cell(row, 12),
			Comment:    cell(row, 13),
			Status:     models.Status(cell(row, 14)),
		}

		if at, ok := index[name]; ok {
			out[at] = m
			continue
		}
		index[name] = len(out)
		out = append(out, m)
	}
	return out
}

// DecodeTemplates maps template rows to entities. Templates have no id
// column either; the name doubles as the id.
func DecodeTemplates(rows [][]string) []models.Template {
	out := make([]models.Template, 0, max(len(rows)-1, 0))

	for i, row := range rows {
		if i == 0 {
			continue
		}
		name := cell(row, 0)
		if name == "" {
			continue
		}
		out = append(out, models.Template{
			ID:         name,
			Name:       name,
			Type:       cell(row, 1),
			Dimensions: cell(row, 2),
			Version:    cell(row, 3),
		})
	}
	return out
}

// EncodeAudienceRow is the inverse of DecodeAudiences for one entity.
func EncodeAudienceRow(a models.Audience) []string {
	return []string{
		a.ID, a.Name, strconv.Itoa(a.Order), a.Status, a.Strategy,
		a.BuyingPlatform, a.DataSource, a.TargetingType, a.Device, a.Tag,
		a.Key, a.Comment, a.CampaignName, a.CampaignID, a.LineItemName,
		a.LineItemID,
	}
}

// EncodeTopicRow is the inverse of DecodeTopics for one entity.
func EncodeTopicRow(t models.Topic) []string {
	return []string{
		t.ID, t.Name, t.Key, strconv.Itoa(t.Order), t.Status,
		t.Tag1, t.Tag2, t.Tag3, t.Tag4, t.Created, t.Comment,
	}
}

// EncodeMessageRow is the inverse of DecodeMessages for one entity.
func EncodeMessageRow(m models.Message) []string {
	return []string{
		m.Name, strconv.Itoa(m.Number), m.Variant, m.Audience, m.Topic,
		strconv.Itoa(m.Version), m.Template, m.LandingURL, m.Headline,
		m.Copy1, m.Copy2, m.Flash, m.CTA, m.Comment, string(m.Status),
	}
}

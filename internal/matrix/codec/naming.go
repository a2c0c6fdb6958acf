package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/creativeops/matrixsync/internal/common"
	"github.com/creativeops/matrixsync/internal/matrix/models"
)

// slugMaxLen is applied to the lower-cased name before stripping, so
// "Young Professionals" becomes "young prof" and then "youngprof".
const slugMaxLen = 10

// SlugKey derives a short identifier-safe key from a human-readable name:
// lower-cased, truncated, non-alphanumerics stripped. If nothing survives,
// a numeric fallback based on n (typically the entity's order value) is
// returned.
func SlugKey(name string, n int) string {
	s := strings.ToLower(name)
	if runes := []rune(s); len(runes) > slugMaxLen {
		s = string(runes[:slugMaxLen])
	}

	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return "k" + strconv.Itoa(n)
	}
	return b.String()
}

// MessageName formats the canonical message identity string.
func MessageName(audience, topic string, number int, variant string, version int) string {
	return fmt.Sprintf("%s!%s!m%d!%s!n%d", audience, topic, number, variant, version)
}

// NextMessageNumber returns the number a new message in (topic, audience)
// should carry: the number already shared by that pair if any message exists
// for it (variants accumulate under one number), otherwise one past the
// highest number in use anywhere.
func NextMessageNumber(messages []models.Message, topic, audience string) int {
	maxNumber := 0
	for _, m := range messages {
		if m.Topic == topic && m.Audience == audience {
			return m.Number
		}
		if m.Number > maxNumber {
			maxNumber = m.Number
		}
	}
	return maxNumber + 1
}

// NextVariant returns the first letter 'a'..'z' not already used by a
// message sharing (topic, audience, number). Past 'z' it fails with
// common.ErrVariantCapacity rather than wrapping.
func NextVariant(messages []models.Message, topic, audience string, number int) (string, error) {
	used := make(map[string]bool)
	for _, m := range messages {
		if m.Topic == topic && m.Audience == audience && m.Number == number {
			used[m.Variant] = true
		}
	}

	for c := 'a'; c <= 'z'; c++ {
		if !used[string(c)] {
			return string(c), nil
		}
	}
	return "", common.ErrVariantCapacity
}

package forms

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ExtractorKind selects the validation rule applied to a raw slot
// value.
type ExtractorKind string

const (
	// Text accepts free text, trimmed and NFC-normalized.
	Text ExtractorKind = "text"

	// Number requires a numeric value and fails extraction otherwise.
	Number ExtractorKind = "number"
)

type SlotExtractor struct {
	Kind ExtractorKind
}

func TextExtractor() SlotExtractor   { return SlotExtractor{Kind: Text} }
func NumberExtractor() SlotExtractor { return SlotExtractor{Kind: Number} }

// Extract validates and canonicalizes a raw value for the named slot.
func (e SlotExtractor) Extract(slot string, raw any) (any, error) {
	switch e.Kind {
	case Number:
		return extractNumber(slot, raw)
	default:
		return extractText(raw), nil
	}
}

func extractText(raw any) any {
	if s, ok := raw.(string); ok {
		return norm.NFC.String(strings.TrimSpace(s))
	}
	return raw
}

func extractNumber(slot string, raw any) (any, error) {
	switch n := raw.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return nil, &ValidationError{Field: slot, Reason: fmt.Sprintf("%q is not a number", n)}
		}
		return parsed, nil
	default:
		return nil, &ValidationError{Field: slot, Reason: fmt.Sprintf("unsupported value %v", raw)}
	}
}

package logging

import (
	"log/slog"
	"strings"
)

type infoField struct {
	label string
	value string
}

const maxInfoValueLen = 160

// infoHighlightKeys are printed first, in this order, when present.
var infoHighlightKeys = []string{
	FieldAlert,
	FieldEventType,
	FieldDecisionType,
	"decision_result",
	"decision_reason",
	"title",
	"release_date",
	"old_date",
	"new_date",
	"notification_type",
	"books",
	"drafts",
	"new_discoveries",
	"date_changes",
	"notifications_sent",
	"authors",
	"errors",
	"error",
	FieldErrorHint,
	FieldImpact,
	"duration",
}

// selectInfoFields returns formatted info-level fields and a count of
// debug-only entries that were left out.
func selectInfoFields(attrs []kv) ([]infoField, int) {
	if len(attrs) == 0 {
		return nil, 0
	}
	used := make([]bool, len(attrs))
	result := make([]infoField, 0, len(attrs))
	hidden := 0

	consider := func(idx int) {
		used[idx] = true
		attr := attrs[idx]
		if skipInfoKey(attr.key) {
			return
		}
		value := formatInfoValue(attr.key, attr.value)
		if isDebugOnlyKey(attr.key) || (attr.key != "error" && len(value) > maxInfoValueLen) {
			hidden++
			return
		}
		result = append(result, infoField{label: displayLabel(attr.key), value: value})
	}

	for _, key := range infoHighlightKeys {
		for idx, attr := range attrs {
			if !used[idx] && attr.key == key {
				consider(idx)
				break
			}
		}
	}
	for idx := range attrs {
		if !used[idx] {
			consider(idx)
		}
	}
	return result, hidden
}

func formatInfoValue(key string, v slog.Value) string {
	v = v.Resolve()
	if v.Kind() == slog.KindBool {
		if v.Bool() {
			return "yes"
		}
		return "no"
	}
	value := formatValue(v)
	if key == "error" && len(value) > 2*maxInfoValueLen {
		value = value[:2*maxInfoValueLen] + "…"
	}
	return value
}

func skipInfoKey(key string) bool {
	switch key {
	case "", FieldComponent, FieldAuthor:
		return true
	}
	return false
}

func isDebugOnlyKey(key string) bool {
	switch key {
	case FieldRunID, FieldCorrelationID, FieldBookID, "url", "source_url":
		return true
	}
	return strings.HasSuffix(key, "_path") || strings.HasSuffix(key, "_dir")
}

func displayLabel(key string) string {
	switch key {
	case FieldAlert:
		return "Alert"
	case FieldEventType:
		return "Event"
	case FieldDecisionType, "decision_result":
		return "Decision"
	case FieldErrorHint:
		return "Hint"
	case "decision_reason":
		return "Reason"
	}
	return titleizeKey(key)
}

func titleizeKey(key string) string {
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	for i, part := range parts {
		lower := strings.ToLower(part)
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func attrValue(attrs []kv, key string) string {
	for _, kv := range attrs {
		if kv.key == key {
			return attrString(kv.value)
		}
	}
	return ""
}

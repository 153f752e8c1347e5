// Package utils decodes request payloads into store inputs. Partial updates
// are decoded from raw JSON keys so an absent field, an explicit null and an
// empty value stay distinguishable.
package utils

import (
	"encoding/json"
	"errors"
	"strings"

	"dailynote.app/notes-api/internal/models"
)

var (
	ErrTitleContentRequired = errors.New("Title and content are required")
	ErrNoData               = errors.New("No data provided")
	ErrOrderNotList         = errors.New("Order must be a list of note ids")
)

// DecodeCreateNote requires title and content keys; tags defaults to an
// empty list, with null treated the same as absent.
func DecodeCreateNote(raw map[string]json.RawMessage) (models.CreateNoteInput, error) {
	var in models.CreateNoteInput

	title, ok := decodeString(raw, "title")
	if !ok {
		return in, ErrTitleContentRequired
	}
	content, ok := decodeString(raw, "content")
	if !ok {
		return in, ErrTitleContentRequired
	}
	in.Title = title
	in.Content = content

	in.Tags = []string{}
	if b, present := raw["tags"]; present {
		var tags []string
		if err := json.Unmarshal(b, &tags); err == nil && tags != nil {
			in.Tags = tags
		}
	}
	in.EventDate = decodeOptionalString(raw, "event_date")
	in.EventTime = decodeOptionalString(raw, "event_time")
	return in, nil
}

// DecodeUpdateNote maps present keys onto the update input. Tags must be a
// list to be applied; event_date and event_time are applied whenever the
// key is present, including an explicit null.
func DecodeUpdateNote(noteID int64, raw map[string]json.RawMessage) (models.UpdateNoteInput, error) {
	in := models.UpdateNoteInput{NoteID: noteID}
	if len(raw) == 0 {
		return in, ErrNoData
	}

	if title, ok := decodeString(raw, "title"); ok {
		in.Title = &title
	}
	if content, ok := decodeString(raw, "content"); ok {
		in.Content = &content
	}
	if b, present := raw["tags"]; present {
		var tags []string
		if err := json.Unmarshal(b, &tags); err == nil && tags != nil {
			in.Tags = &tags
		}
	}
	if b, present := raw["event_date"]; present {
		in.EventDateSet = true
		in.EventDate = rawToStringPtr(b)
	}
	if b, present := raw["event_time"]; present {
		in.EventTimeSet = true
		in.EventTime = rawToStringPtr(b)
	}
	return in, nil
}

// DecodeReorder extracts the ordered id list; anything other than a
// non-empty list of integers is rejected.
func DecodeReorder(raw map[string]json.RawMessage) ([]int64, error) {
	b, present := raw["order"]
	if !present {
		return nil, ErrOrderNotList
	}
	var ids []int64
	if err := json.Unmarshal(b, &ids); err != nil {
		return nil, ErrOrderNotList
	}
	if len(ids) == 0 {
		return nil, ErrOrderNotList
	}
	return ids, nil
}

func decodeString(raw map[string]json.RawMessage, key string) (string, bool) {
	b, present := raw[key]
	if !present {
		return "", false
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return "", false
	}
	return s, true
}

func decodeOptionalString(raw map[string]json.RawMessage, key string) *string {
	b, present := raw[key]
	if !present {
		return nil
	}
	return rawToStringPtr(b)
}

func rawToStringPtr(b json.RawMessage) *string {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	return s
}

func NilIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

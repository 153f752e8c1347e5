package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TagList maps the JSON-encoded tags column. Scanning always produces a
// fresh slice so no two notes ever share a backing array.
type TagList []string

func (t TagList) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *TagList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = TagList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("tags: cannot scan %T", src)
	}
	if len(raw) == 0 {
		*t = TagList{}
		return nil
	}
	out := make([]string, 0, 4)
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	*t = out
	return nil
}

type Note struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	Tags      TagList   `db:"tags"`
	EventDate *string   `db:"event_date"`
	EventTime *string   `db:"event_time"`
	Position  *int64    `db:"position"`
}

type CreateNoteInput struct {
	Title     string
	Content   string
	Tags      []string
	EventDate *string
	EventTime *string
}

// UpdateNoteInput carries a partial update. A nil pointer means the field
// was absent from the request. EventDate and EventTime additionally
// distinguish absent from explicit null via their Set flags.
type UpdateNoteInput struct {
	NoteID       int64
	Title        *string
	Content      *string
	Tags         *[]string
	EventDateSet bool
	EventDate    *string
	EventTimeSet bool
	EventTime    *string
}

// NoteDTO is the wire shape of a note.
type NoteDTO struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	CreatedAt *string  `json:"created_at"`
	UpdatedAt *string  `json:"updated_at"`
	Tags      []string `json:"tags"`
	EventDate *string  `json:"event_date"`
	EventTime *string  `json:"event_time"`
	Position  *int64   `json:"position"`
}

func (n *Note) ToDTO() NoteDTO {
	dto := NoteDTO{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Tags:      n.Tags,
		EventDate: n.EventDate,
		EventTime: n.EventTime,
		Position:  n.Position,
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	if !n.CreatedAt.IsZero() {
		s := n.CreatedAt.UTC().Format(time.RFC3339Nano)
		dto.CreatedAt = &s
	}
	if !n.UpdatedAt.IsZero() {
		s := n.UpdatedAt.UTC().Format(time.RFC3339Nano)
		dto.UpdatedAt = &s
	}
	return dto
}

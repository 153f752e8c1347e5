package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dailynote.app/notes-api/internal/models"
)

func TestTagList_RoundTrip(t *testing.T) {
	tags := models.TagList{"work", "待办"}

	v, err := tags.Value()
	require.NoError(t, err)

	var scanned models.TagList
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, tags, scanned)
}

func TestTagList_NilValueIsEmptyArray(t *testing.T) {
	var tags models.TagList
	v, err := tags.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestTagList_ScanProducesIndependentSlices(t *testing.T) {
	var a, b models.TagList
	require.NoError(t, a.Scan(`["x"]`))
	require.NoError(t, b.Scan(`["x"]`))

	a[0] = "changed"
	assert.Equal(t, "x", b[0])
}

func TestTagList_ScanNull(t *testing.T) {
	var tags models.TagList
	require.NoError(t, tags.Scan(nil))
	assert.NotNil(t, tags)
	assert.Empty(t, tags)
}

func TestNoteToDTO(t *testing.T) {
	created := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	updated := created.Add(time.Minute)
	pos := int64(2)
	date := "2026-08-30"

	n := models.Note{
		ID:        4,
		Title:     "t",
		Content:   "c",
		CreatedAt: created,
		UpdatedAt: updated,
		EventDate: &date,
		Position:  &pos,
	}

	dto := n.ToDTO()
	require.NotNil(t, dto.CreatedAt)
	assert.Equal(t, "2026-08-30T10:00:00Z", *dto.CreatedAt)
	require.NotNil(t, dto.UpdatedAt)
	assert.Equal(t, "2026-08-30T10:01:00Z", *dto.UpdatedAt)
	assert.NotNil(t, dto.Tags)
	assert.Empty(t, dto.Tags)

	// nil tags must serialize as [], not null
	b, err := json.Marshal(dto)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"tags":[]`)
	assert.Contains(t, string(b), `"event_time":null`)
}

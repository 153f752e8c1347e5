package utils_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dailynote.app/notes-api/internal/utils"
)

func raw(t *testing.T, body string) map[string]json.RawMessage {
	t.Helper()
	out := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func TestDecodeCreateNote(t *testing.T) {
	in, err := utils.DecodeCreateNote(raw(t, `{"title":"t","content":"c","tags":["a","b"],"event_date":"2026-08-30"}`))
	require.NoError(t, err)
	assert.Equal(t, "t", in.Title)
	assert.Equal(t, "c", in.Content)
	assert.Equal(t, []string{"a", "b"}, in.Tags)
	require.NotNil(t, in.EventDate)
	assert.Equal(t, "2026-08-30", *in.EventDate)
	assert.Nil(t, in.EventTime)
}

func TestDecodeCreateNote_TagsDefaultToEmpty(t *testing.T) {
	for _, body := range []string{`{"title":"t","content":"c"}`, `{"title":"t","content":"c","tags":null}`} {
		in, err := utils.DecodeCreateNote(raw(t, body))
		require.NoError(t, err)
		assert.NotNil(t, in.Tags, "body %q", body)
		assert.Empty(t, in.Tags)
	}
}

func TestDecodeCreateNote_MissingRequired(t *testing.T) {
	for _, body := range []string{`{}`, `{"title":"t"}`, `{"content":"c"}`, `{"title":null,"content":"c"}`} {
		_, err := utils.DecodeCreateNote(raw(t, body))
		assert.ErrorIs(t, err, utils.ErrTitleContentRequired, "body %q", body)
	}
}

func TestDecodeUpdateNote_AbsentVsNull(t *testing.T) {
	in, err := utils.DecodeUpdateNote(5, raw(t, `{"event_date":null,"title":"new"}`))
	require.NoError(t, err)
	assert.Equal(t, int64(5), in.NoteID)

	// event_date present with explicit null clears the field
	assert.True(t, in.EventDateSet)
	assert.Nil(t, in.EventDate)
	// event_time absent stays untouched
	assert.False(t, in.EventTimeSet)

	require.NotNil(t, in.Title)
	assert.Equal(t, "new", *in.Title)
	assert.Nil(t, in.Content)
	assert.Nil(t, in.Tags)
}

func TestDecodeUpdateNote_TagsReplacedWholesale(t *testing.T) {
	in, err := utils.DecodeUpdateNote(5, raw(t, `{"tags":[]}`))
	require.NoError(t, err)
	require.NotNil(t, in.Tags)
	assert.Empty(t, *in.Tags)
}

func TestDecodeUpdateNote_NoData(t *testing.T) {
	_, err := utils.DecodeUpdateNote(5, map[string]json.RawMessage{})
	assert.ErrorIs(t, err, utils.ErrNoData)
}

func TestDecodeReorder(t *testing.T) {
	ids, err := utils.DecodeReorder(raw(t, `{"order":[3,1,2]}`))
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, ids)
}

func TestDecodeReorder_Invalid(t *testing.T) {
	for _, body := range []string{`{}`, `{"order":null}`, `{"order":"3,1,2"}`, `{"order":[]}`, `{"order":[1,"two"]}`} {
		_, err := utils.DecodeReorder(raw(t, body))
		assert.ErrorIs(t, err, utils.ErrOrderNotList, "body %q", body)
	}
}

func TestNilIfEmpty(t *testing.T) {
	assert.Nil(t, utils.NilIfEmpty("  "))
	require.NotNil(t, utils.NilIfEmpty("x"))
	assert.Equal(t, "x", *utils.NilIfEmpty("x"))
}

package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)
	token, err := EncodeCursor(Cursor{ID: "42", CreatedAt: at.Format(time.RFC3339Nano)})
	require.NoError(t, err)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "42", cursor.ID)

	parsed, err := cursor.CreatedAtTime()
	require.NoError(t, err)
	assert.True(t, parsed.Equal(at))
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("%%%")
	assert.ErrorIs(t, err, ErrInvalidPageToken)

	token, _ := EncodeCursor(Cursor{})
	_, err = DecodeCursor(token)
	assert.ErrorIs(t, err, ErrInvalidPageToken)
}

func TestLimit(t *testing.T) {
	assert.Equal(t, DefaultPageSize, Pagination{}.Limit())
	assert.Equal(t, 10, Pagination{PageSize: 10}.Limit())
	assert.Equal(t, MaxPageSize, Pagination{PageSize: 10_000}.Limit())
}

func TestTrim(t *testing.T) {
	items := []int{1, 2, 3}
	extract := func(v int) Cursor { return Cursor{ID: "x"} }

	out, info := Trim(items, 3, extract)
	assert.Len(t, out, 3)
	assert.False(t, info.HasMore)

	out, info = Trim(items, 2, extract)
	assert.Equal(t, []int{1, 2}, out)
	assert.True(t, info.HasMore)
	assert.NotEmpty(t, info.NextPageToken)
}

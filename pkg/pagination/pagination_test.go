package pagination

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCursorIsURLSafe(t *testing.T) {
	cursor := Cursor{CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 123456789, time.UTC), ID: uuid.New()}
	encoded := EncodeCursor(cursor)
	require.Equal(t, encoded, url.QueryEscape(encoded))

	parsed, err := ParseCursor(encoded)
	require.NoError(t, err)
	require.True(t, cursor.CreatedAt.Equal(parsed.CreatedAt))
	require.Equal(t, cursor.ID, parsed.ID)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	parsed, err := ParseCursor("  ")
	require.NoError(t, err)
	require.Nil(t, parsed)

	_, err = ParseCursor("%%%")
	require.Error(t, err)

	_, err = ParseCursor(EncodeCursor(Cursor{ID: uuid.New()})[:6])
	require.Error(t, err)
}

func TestSplit(t *testing.T) {
	rows := []int{1, 2, 3, 4}
	page, next := Split(rows, 3)
	require.Equal(t, []int{1, 2, 3}, page)
	require.NotNil(t, next)
	require.Equal(t, 3, *next)

	page, next = Split(rows[:2], 3)
	require.Len(t, page, 2)
	require.Nil(t, next)
}

func TestNormalizeLimit(t *testing.T) {
	require.Equal(t, DefaultLimit, NormalizeLimit(0))
	require.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+50))
	require.Equal(t, MaxLimit+1, LimitWithBuffer(1000))
}

func TestParseCursorRejectsEmptyPosition(t *testing.T) {
	_, err := ParseCursor(EncodeCursor(Cursor{CreatedAt: time.Unix(0, 0), ID: uuid.New()}))
	require.ErrorIs(t, err, ErrInvalidCursor)

	_, err = ParseCursor(EncodeCursor(Cursor{CreatedAt: time.Now()}))
	require.ErrorIs(t, err, ErrInvalidCursor)
}

package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken(t *testing.T) {
	cursor := Cursor{
		Date:      time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2024, 5, 15, 14, 30, 45, 123456789, time.UTC),
		ID:        "b5a7c4de-0000-4000-8000-000000000001",
	}

	token := EncodeToken(cursor)
	assert.NotEmpty(t, token, "Token should not be empty")

	decoded, err := DecodeToken(token)
	require.NoError(t, err)
	assert.True(t, cursor.Date.Equal(decoded.Date), "Date should match after decode")
	assert.True(t, cursor.CreatedAt.Equal(decoded.CreatedAt), "Created at should match after decode")
	assert.Equal(t, cursor.ID, decoded.ID)
}

func TestDecodeTokenError(t *testing.T) {
	_, err := DecodeToken("this is not base64!")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "base64 decode")

	missingID := base64.URLEncoding.EncodeToString([]byte("2024-05-15T00:00:00Z|2024-05-15T00:00:00Z"))
	_, err = DecodeToken(missingID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	badDate := base64.URLEncoding.EncodeToString([]byte("notadate|2024-05-15T00:00:00Z|abc"))
	_, err = DecodeToken(badDate)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "date parse")
}

func TestCursorBefore(t *testing.T) {
	day := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	at := day.Add(10 * time.Hour)
	c := Cursor{Date: day, CreatedAt: at, ID: "m"}

	assert.True(t, c.Before(day.AddDate(0, 0, -1), at.Add(time.Hour), "z"), "earlier date comes later")
	assert.False(t, c.Before(day.AddDate(0, 0, 1), at, "a"), "later date comes earlier")
	assert.True(t, c.Before(day, at.Add(-time.Second), "z"))
	assert.True(t, c.Before(day, at, "a"))
	assert.False(t, c.Before(day, at, "m"), "the cursor row itself is excluded")
}

package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContext(t *testing.T) {
	t.Run("SetUserContext and getters", func(t *testing.T) {
		id := uuid.New()
		ctx := SetUserContext(context.Background(), id, "user@example.com", "vendor")

		got, ok := GetUserIDFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, id, got)
		assert.Equal(t, "user@example.com", GetUserEmailFromContext(ctx))
		assert.Equal(t, "vendor", GetUserRoleFromContext(ctx))
	})

	t.Run("empty context", func(t *testing.T) {
		_, ok := GetUserIDFromContext(context.Background())
		assert.False(t, ok)
		assert.Empty(t, GetUserRoleFromContext(context.Background()))
	})

	t.Run("nil uuid is not a user", func(t *testing.T) {
		ctx := SetUserContext(context.Background(), uuid.Nil, "", "")
		_, ok := GetUserIDFromContext(ctx)
		assert.False(t, ok)
	})
}

func TestWriteJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSONError(w, "insufficient stock for some items", http.StatusBadRequest, "Onion: requested 3, available 2")

	resp := w.Result()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body ErrorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "insufficient stock for some items", body.Error)
	assert.Equal(t, []string{"Onion: requested 3, available 2"}, body.Details)
}

func TestWriteJSONErrorOmitsEmptyDetails(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSONError(w, "order not found", http.StatusNotFound)

	assert.JSONEq(t, `{"error":"order not found"}`, w.Body.String())
}

func TestPositiveInt(t *testing.T) {
	assert.Equal(t, 3, PositiveInt("3", 1))
	assert.Equal(t, 1, PositiveInt("", 1))
	assert.Equal(t, 10, PositiveInt("abc", 10))
	assert.Equal(t, 10, PositiveInt("-4", 10))
	assert.Equal(t, 10, PositiveInt("0", 10))
}

func TestParseID(t *testing.T) {
	id := uuid.New()

	got, ok := ParseID(id.String())
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = ParseID("42")
	assert.False(t, ok)

	_, ok = ParseID(uuid.Nil.String())
	assert.False(t, ok)
}

func TestTooLong(t *testing.T) {
	assert.False(t, TooLong("abc", 3))
	assert.True(t, TooLong("abcd", 3))
	assert.False(t, TooLong("ñañ", 3))
}

func TestFormatOrderNumber(t *testing.T) {
	at := time.Date(2026, 3, 7, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "BZ-20260307-00000042", FormatOrderNumber(at, 42))
	assert.Equal(t, "BZ-20260307-123456789", FormatOrderNumber(at, 123456789))
	assert.NotEqual(t, FormatOrderNumber(at, 1), FormatOrderNumber(at, 2))
}

package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad input"), KindValidation},
		{"wrapped not found", fmt.Errorf("load: %w", NotFound("order not found")), KindNotFound},
		{"forbidden", Forbidden("nope"), KindAuthorization},
		{"conflict", Conflict("insufficient stock", "a: requested 3, available 2"), KindConflict},
		{"plain error", errors.New("boom"), KindInternal},
		{"nil", nil, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorIs(t *testing.T) {
	sentinel := NotFound("order not found")

	assert.True(t, errors.Is(fmt.Errorf("repo: %w", NotFound("order not found")), sentinel))
	assert.False(t, errors.Is(NotFound("product not found"), sentinel))
	assert.False(t, errors.Is(Validation("order not found"), sentinel))
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Internal(cause)

	assert.Equal(t, "internal server error", err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestConflictDetails(t *testing.T) {
	err := Conflict("insufficient stock for some items", "Onion: requested 3, available 2")
	assert.Equal(t, []string{"Onion: requested 3, available 2"}, err.Details)
	assert.Equal(t, "conflict", err.Kind.String())
}

func TestWithDetailsKeepsSentinel(t *testing.T) {
	sentinel := Conflict("insufficient stock for some items")
	err := sentinel.WithDetails("Onion: requested 3, available 2")

	assert.ErrorIs(t, err, sentinel)
	assert.Empty(t, sentinel.Details)
	assert.Equal(t, []string{"Onion: requested 3, available 2"}, err.Details)
}

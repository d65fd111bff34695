package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		wantKind Kind
	}{
		{"unauthorized", Unauthorized(""), KindUnauthorized},
		{"forbidden", Forbidden("edit_posts"), KindForbidden},
		{"validation", Validation("slug", "slug must be url-safe"), KindValidation},
		{"not found", NotFound("post", "p1"), KindNotFound},
		{"conflict", Conflict("slug already exists"), KindConflict},
		{"immutable builtin", ImmutableBuiltin("post"), KindImmutableBuiltin},
		{"in use", InUse("post type", 3), KindInUse},
		{"tenant not found", TenantNotFound("t1"), KindTenantNotFound},
		{"tenant inactive", TenantInactive("t1"), KindTenantInactive},
		{"not impersonating", NotImpersonating(), KindNotImpersonating},
		{"internal", Internal(errors.New("boom")), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKind, tt.err.Kind)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestForbiddenNamesCapability(t *testing.T) {
	err := Forbidden("manage_options")
	assert.Contains(t, err.Error(), "manage_options")
}

func TestInUseCarriesCount(t *testing.T) {
	err := InUse("taxonomy", 12)
	assert.Equal(t, int64(12), err.Count)
	assert.Contains(t, err.Message, "12")
}

func TestKindOf(t *testing.T) {
	t.Run("typed error", func(t *testing.T) {
		assert.Equal(t, KindNotFound, KindOf(NotFound("term", "abc")))
	})

	t.Run("wrapped typed error", func(t *testing.T) {
		wrapped := fmt.Errorf("loading term: %w", NotFound("term", "abc"))
		assert.Equal(t, KindNotFound, KindOf(wrapped))
	})

	t.Run("untyped error collapses to internal", func(t *testing.T) {
		assert.Equal(t, KindInternal, KindOf(errors.New("connection reset")))
	})

	t.Run("nil error collapses to internal", func(t *testing.T) {
		assert.Equal(t, KindInternal, KindOf(nil))
	})
}

func TestWithCause(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")
	err := Conflict("slug already exists").WithCause(cause)

	require.ErrorIs(t, err, cause)
	// The cause shows up server-side but the client message stays clean.
	assert.Contains(t, err.Error(), cause.Error())
	assert.Equal(t, "slug already exists", err.Message)
}

func TestAs(t *testing.T) {
	t.Run("extracts typed error", func(t *testing.T) {
		e, ok := As(fmt.Errorf("wrapped: %w", TenantInactive("t9")))
		require.True(t, ok)
		assert.Equal(t, KindTenantInactive, e.Kind)
		assert.Equal(t, "t9", e.ID)
	})

	t.Run("plain error does not match", func(t *testing.T) {
		_, ok := As(errors.New("nope"))
		assert.False(t, ok)
	})
}

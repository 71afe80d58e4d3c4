package shared_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cronkeeper/internal/shared"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		context  string
		expected string
		isNil    bool
	}{
		{
			name:    "nil error",
			err:     nil,
			context: "some context",
			isNil:   true,
		},
		{
			name:     "simple error",
			err:      errors.New("original"),
			context:  "wrapper",
			expected: "wrapper: original",
		},
		{
			name:     "empty context",
			err:      errors.New("original"),
			context:  "",
			expected: "original",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := shared.Wrap(tt.err, tt.context)
			if tt.isNil {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.Equal(t, tt.expected, result.Error())
			assert.True(t, errors.Is(result, tt.err))
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want shared.Kind
	}{
		{"nil", nil, shared.KindUnknown},
		{"unrecognized", errors.New("whatever"), shared.KindUnknown},
		{"not found", shared.ErrNotFound, shared.KindNotFound},
		{"wrapped not found", fmt.Errorf("read: %w", shared.ErrNotFound), shared.KindNotFound},
		{"validation", shared.MarkKind(errors.New("bad name"), shared.KindValidation), shared.KindValidation},
		{"io", shared.MarkKind(errors.New("disk full"), shared.KindIO), shared.KindIO},
		{"internal", shared.ErrInternal, shared.KindInternal},
		{
			// NotFound wins over IO when both are present in the chain
			name: "priority order",
			err:  errors.Join(shared.ErrIO, shared.ErrNotFound),
			want: shared.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shared.KindOf(tt.err))
		})
	}
}

func TestMarkKind(t *testing.T) {
	base := errors.New("open /etc/crontab: permission denied")

	marked := shared.MarkKind(base, shared.KindIO)
	assert.True(t, errors.Is(marked, shared.ErrIO))
	assert.True(t, errors.Is(marked, base))

	// idempotent
	again := shared.MarkKind(marked, shared.KindIO)
	assert.Same(t, marked, again)

	// nil yields the bare sentinel
	assert.Equal(t, shared.ErrValidation, shared.MarkKind(nil, shared.KindValidation))

	// unknown kind passes through
	assert.Same(t, base, shared.MarkKind(base, shared.KindUnknown))
}

func TestPredicates(t *testing.T) {
	assert.True(t, shared.IsNotFound(shared.Wrap(shared.ErrNotFound, "job 42")))
	assert.False(t, shared.IsNotFound(shared.ErrIO))
	assert.True(t, shared.IsValidation(shared.MarkKind(errors.New("x"), shared.KindValidation)))
	assert.True(t, shared.IsIO(shared.MarkKind(errors.New("x"), shared.KindIO)))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "NotFound", shared.KindNotFound.String())
	assert.Equal(t, "Validation", shared.KindValidation.String())
	assert.Equal(t, "IO", shared.KindIO.String())
	assert.Equal(t, "Internal", shared.KindInternal.String())
	assert.Equal(t, "Unknown", shared.KindUnknown.String())
}

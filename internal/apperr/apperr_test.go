package apperr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"validation", Validation("title is required"), ErrValidation},
		{"not found", NotFound("listing", "42"), ErrNotFound},
		{"wrapped twice", fmt.Errorf("update listing: %w", Unauthorized("not the owner")), ErrUnauthorized},
		{"quota", QuotaExceeded(5), ErrQuotaExceeded},
		{"storage", Storage("put object", errors.New("disk full")), ErrStorage},
		{"unclassified", errors.New("boom"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestStorageKeepsCause(t *testing.T) {
	err := Storage("write file", fs.ErrPermission)

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Contains(t, err.Error(), "write file")
}

func TestMessages(t *testing.T) {
	assert.EqualError(t, NotFound("account", "abc"), "not found: account abc")
	assert.EqualError(t, QuotaExceeded(5), "quota exceeded: an account may own at most 5 listings")
	assert.EqualError(t, TooManyAttempts("5s"), "too many attempts: retry in 5s")
}

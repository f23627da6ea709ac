package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	driverErr := errors.New("dial tcp 127.0.0.1:5432: connection refused")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"invalid url", &ErrInvalidURL{URL: "javascript:alert(1)"}, KindInvalidURL},
		{"invalid alias", &ErrInvalidAlias{Alias: "a"}, KindInvalidAlias},
		{"invalid expiry", &ErrInvalidExpiry{Reason: "expires_at et expiration_minutes sont exclusifs"}, KindInvalidExpiry},
		{"alias taken", &ErrAliasTaken{Alias: "my-link"}, KindAliasTaken},
		{"exhausted", &ErrCodeGenerationFailed{Attempts: 5}, KindAllocationExhausted},
		{"not found", &ErrLinkNotFound{ShortCode: "abc"}, KindNotFound},
		{"expired", &ErrLinkExpired{ShortCode: "abc"}, KindExpired},
		{"store", StoreUnavailable("save", driverErr), KindStoreUnavailable},
		{"duplicate", ErrDuplicateKey, KindDuplicateKey},
		{"wrapped duplicate", fmt.Errorf("save: %w", ErrDuplicateKey), KindDuplicateKey},
		{"wrapped typed", fmt.Errorf("resolve: %w", &ErrLinkNotFound{ShortCode: "x"}), KindNotFound},
		{"unknown", errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestStoreUnavailableUnwrap(t *testing.T) {
	driverErr := errors.New("connection reset")
	err := StoreUnavailable("find_by_code", driverErr)

	assert.ErrorIs(t, err, driverErr)
	assert.Contains(t, err.Error(), "find_by_code")
	assert.Nil(t, StoreUnavailable("noop", nil))
}

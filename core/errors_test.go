package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_UnwrapsKindAndReason(t *testing.T) {
	// Arrange
	cause := errors.New("db down")
	err := fmt.Errorf("handler: %w", internal(cause))

	// Assert
	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
}

func TestError_MessageIncludesCode(t *testing.T) {
	e := unauthenticated(errors.New("token is expired"))

	assert.Equal(t, "unauthenticated: could not validate credentials (token is expired)", e.Error())
}

func TestAsError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind error
		wantCode string
	}{
		{name: "typed error passes through", err: invalidCredentials(), wantKind: ErrInvalidCredentials, wantCode: CodeInvalidCredentials},
		{name: "wrapped typed error", err: fmt.Errorf("x: %w", accountInactive()), wantKind: ErrForbidden, wantCode: CodeAccountInactive},
		{name: "plain error becomes internal", err: errors.New("boom"), wantKind: ErrInternal, wantCode: CodeInternal},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			e := AsError(test.err)

			require.NotNil(t, e)
			assert.ErrorIs(t, e, test.wantKind)
			assert.Equal(t, test.wantCode, e.Code)
		})
	}

	assert.Nil(t, AsError(nil))
}

package errs

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewErrorFormatsDetails(t *testing.T) {
	err := NewError(ErrUserNotFound, "ghost")
	assert.Equal(t, ErrUserNotFound, err.Code)
	assert.Equal(t, "No such user: ghost", err.Message)
	assert.Equal(t, http.StatusOK, err.Status)
}

func TestNewErrorWithoutDetails(t *testing.T) {
	err := NewError(ErrNotRegistered)
	assert.Equal(t, "Please Identify first", err.Message)
}

func TestNewErrorUnknownCodeFallsBack(t *testing.T) {
	err := NewError(999999)
	assert.Equal(t, ErrUnknown, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestNewErrorDoesNotMutateTemplate(t *testing.T) {
	first := NewError(ErrChannelDeliveryFailed, "#a.b")
	second := NewError(ErrChannelDeliveryFailed, "#c.d")

	assert.Equal(t, "Could not deliver message to channel #a.b", first.Message)
	assert.Equal(t, "Could not deliver message to channel #c.d", second.Message)
}

func TestErrorInterface(t *testing.T) {
	err := NewError(ErrRateLimitExceeded)
	assert.Contains(t, err.Error(), "Too many requests")
}

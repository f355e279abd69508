package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/rewind/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	cfgErr := &domain.ConfigurationError{Reason: "config isn't passed"}
	stateErr := &domain.UnknownStateError{State: "paused"}
	transErr := &domain.NoSuchTransitionError{State: "idle", Event: "stop"}

	assert.Equal(t, "configuration error: config isn't passed", cfgErr.Error())
	assert.Equal(t, "state 'paused' does not exist", stateErr.Error())
	assert.Equal(t, "no transition from state 'idle' for event 'stop'", transErr.Error())

	wrapped := fmt.Errorf("session s1: %w", stateErr)
	assert.ErrorIs(t, wrapped, domain.ErrUnknownState)
	assert.True(t, domain.IsUnknownStateError(wrapped))
	assert.False(t, domain.IsNoSuchTransitionError(wrapped))
	assert.False(t, errors.Is(wrapped, domain.ErrNoSuchTransition))

	assert.ErrorIs(t, transErr, domain.ErrNoSuchTransition)
	assert.True(t, domain.IsNoSuchTransitionError(transErr))

	assert.ErrorIs(t, cfgErr, domain.ErrConfiguration)
	assert.True(t, domain.IsConfigurationError(cfgErr))
	assert.False(t, domain.IsConfigurationError(domain.ErrSessionNotFound))
}

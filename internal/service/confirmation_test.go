package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exusiai.dev/dashsync/internal/app/appconfig"
	"exusiai.dev/dashsync/internal/command"
)

func TestConfirmationRoundTrip(t *testing.T) {
	s := NewConfirmation(&appconfig.Config{ConfigSpec: appconfig.ConfigSpec{ConfirmTokenTTL: time.Minute}})

	token := s.Issue(command.Complete, 42)
	assert.Len(t, token, confirmTokenLength)

	c, err := s.Redeem(token, command.Complete, 42)
	require.NoError(t, err)
	assert.Equal(t, command.Static(true), c)

	_, err = s.Redeem(token, command.Complete, 42)
	assert.ErrorIs(t, err, ErrConfirmationInvalid, "tokens are single use")
}

func TestConfirmationBinding(t *testing.T) {
	s := NewConfirmation(&appconfig.Config{ConfigSpec: appconfig.ConfigSpec{ConfirmTokenTTL: time.Minute}})

	token := s.Issue(command.Complete, 42)
	_, err := s.Redeem(token, command.Refund, 42)
	assert.ErrorIs(t, err, ErrConfirmationInvalid)
	_, err = s.Redeem(token, command.Complete, 42)
	assert.ErrorIs(t, err, ErrConfirmationInvalid, "a mismatched attempt burns the token")

	_, err = s.Redeem("", command.Complete, 42)
	assert.ErrorIs(t, err, ErrConfirmationInvalid)
}

func TestConfirmationExpires(t *testing.T) {
	s := NewConfirmation(&appconfig.Config{ConfigSpec: appconfig.ConfigSpec{ConfirmTokenTTL: 10 * time.Millisecond}})

	token := s.Issue(command.Refund, 1)
	time.Sleep(30 * time.Millisecond)
	_, err := s.Redeem(token, command.Refund, 1)
	assert.ErrorIs(t, err, ErrConfirmationInvalid)
}

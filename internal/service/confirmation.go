package service

import (
	"strconv"

	"github.com/dchest/uniuri"
	"github.com/pkg/errors"

	"exusiai.dev/dashsync/internal/app/appconfig"
	"exusiai.dev/dashsync/internal/command"
	"exusiai.dev/dashsync/internal/pkg/cache"
)

var ErrConfirmationInvalid = errors.New("confirmation token is invalid or expired")

const confirmTokenLength = 24

// Confirmation implements two-step confirmation for hosts that cannot prompt: the
// first request gets a token bound to one command on one shipment, the second
// presents it. A token is redeemable once.
type Confirmation struct {
	tokens *cache.Keyed[string]
}

func NewConfirmation(conf *appconfig.Config) *Confirmation {
	return &Confirmation{
		tokens: cache.NewKeyed[string]("confirm", conf.ConfirmTokenTTL),
	}
}

func binding(k command.Kind, id int64) string {
	return string(k) + "/" + strconv.FormatInt(id, 10)
}

// Issue returns a fresh token confirming k on id.
func (s *Confirmation) Issue(k command.Kind, id int64) string {
	token := uniuri.NewLen(confirmTokenLength)
	s.tokens.Set(token, binding(k, id))
	return token
}

// Redeem consumes token and returns a Confirmer approving k on id. A token issued
// for a different command or shipment is consumed all the same.
func (s *Confirmation) Redeem(token string, k command.Kind, id int64) (command.Confirmer, error) {
	if token == "" {
		return nil, ErrConfirmationInvalid
	}
	bound, err := s.tokens.Take(token)
	if err != nil || bound != binding(k, id) {
		return nil, ErrConfirmationInvalid
	}
	return command.Static(true), nil
}

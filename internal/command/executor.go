// Package command sends the mutating shipment commands: complete and refund.
package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"exusiai.dev/dashsync/internal/model"
	"exusiai.dev/dashsync/internal/pkg/dstructs"
	"exusiai.dev/dashsync/internal/pkg/observability"
	"exusiai.dev/dashsync/internal/poller"
)

type Kind string

const (
	Complete Kind = "complete"
	Refund   Kind = "refund"
)

var (
	ErrNotConfirmed   = errors.New("command: not confirmed")
	ErrMissingToken   = errors.New("command: anti-forgery token unavailable")
	ErrUnknownCommand = errors.New("command: unknown command")
	ErrInvalidTarget  = errors.New("command: invalid shipment id")
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Complete, Refund:
		return k, nil
	}
	return "", errors.Wrapf(ErrUnknownCommand, "%q", s)
}

// Prompt is the confirmation question asked before k is sent for id.
func (k Kind) Prompt(id int64) string {
	if k == Refund {
		return fmt.Sprintf("Refund shipment #%d?", id)
	}
	return fmt.Sprintf("Mark shipment #%d as complete?", id)
}

type Actioner interface {
	PostAction(ctx context.Context, id int64, action, csrfToken string) (string, error)
}

type TokenSource interface {
	CSRFToken() (string, error)
}

type Refresher interface {
	Name() string
	Refresh(ctx context.Context) poller.Result
}

type Executor struct {
	actions       Actioner
	tokens        TokenSource
	notifications *dstructs.FlQueue[model.Notification]
	timeout       time.Duration
	owners        []Refresher
}

// NewExecutor returns an Executor that refreshes owners after every successful
// command. A zero timeout leaves the caller's context as the only bound.
func NewExecutor(actions Actioner, tokens TokenSource, notifications *dstructs.FlQueue[model.Notification], timeout time.Duration, owners ...Refresher) *Executor {
	return &Executor{
		actions:       actions,
		tokens:        tokens,
		notifications: notifications,
		timeout:       timeout,
		owners:        owners,
	}
}

// Execute asks confirmer to approve k for id, then sends exactly one request.
// Failures are reported as error notifications and are never retried.
func (e *Executor) Execute(ctx context.Context, k Kind, id int64, confirmer Confirmer) (string, error) {
	if _, err := ParseKind(string(k)); err != nil {
		return "", err
	}
	if id <= 0 {
		return "", errors.Wrapf(ErrInvalidTarget, "%d", id)
	}

	ok, err := confirmer.Confirm(ctx, k.Prompt(id))
	if err != nil {
		return "", errors.Wrap(err, "command: confirmation failed")
	}
	if !ok {
		observability.CommandExecutions.WithLabelValues(string(k), "declined").Inc()
		return "", ErrNotConfirmed
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	token, err := e.tokens.CSRFToken()
	if err != nil || token == "" {
		err = errors.Wrap(ErrMissingToken, "cannot send the command")
		e.fail(k, id, err)
		return "", err
	}

	msg, err := e.actions.PostAction(ctx, id, string(k), token)
	if err != nil {
		e.fail(k, id, err)
		return "", err
	}

	observability.CommandExecutions.WithLabelValues(string(k), "succeeded").Inc()
	log.Info().
		Str("evt.name", "command.succeeded").
		Str("command", string(k)).
		Int64("shipment", id).
		Str("message", msg).
		Msg("command succeeded")
	e.notify(model.NotificationSuccess, msg)

	for _, owner := range e.owners {
		res := owner.Refresh(ctx)
		log.Debug().
			Str("evt.name", "command.refresh").
			Str("channel", owner.Name()).
			Stringer("result", res).
			Msg("refreshed channel after command")
	}
	return msg, nil
}

func (e *Executor) fail(k Kind, id int64, err error) {
	observability.CommandExecutions.WithLabelValues(string(k), "failed").Inc()
	log.Error().
		Str("evt.name", "command.failed").
		Str("command", string(k)).
		Int64("shipment", id).
		Err(err).
		Msg("command failed")
	e.notify(model.NotificationError, fmt.Sprintf("Failed to %s shipment #%d: %s", k, id, err.Error()))
}

func (e *Executor) notify(level, msg string) {
	if e.notifications == nil {
		return
	}
	e.notifications.Push(&model.Notification{
		ID:      xid.New().String(),
		Level:   level,
		Message: msg,
		At:      time.Now(),
	})
}

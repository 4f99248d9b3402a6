package repo

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"exusiai.dev/dashsync/internal/app/appconfig"
	"exusiai.dev/dashsync/internal/infra"
	"exusiai.dev/dashsync/internal/model"
	"exusiai.dev/dashsync/internal/poller"
)

type Alert struct {
	up       *infra.Upstream
	path     string
	validate *validator.Validate
}

func NewAlert(up *infra.Upstream, conf *appconfig.Config, validate *validator.Validate) *Alert {
	return &Alert{up: up, path: conf.AlertsPath, validate: validate}
}

// Fetch accepts either {"alerts": [...]} or a bare array. Alerts without a
// message are dropped.
func (r *Alert) Fetch(ctx context.Context) (poller.Payload[[]model.Alert], error) {
	b, err := do(ctx, r.up, request{method: http.MethodGet, path: r.path})
	if err != nil {
		return poller.Payload[[]model.Alert]{}, err
	}
	return r.parse(b)
}

func (r *Alert) parse(b []byte) (poller.Payload[[]model.Alert], error) {
	var alerts []model.Alert
	if gjson.ParseBytes(b).IsArray() {
		if err := json.Unmarshal(b, &alerts); err != nil {
			return poller.Payload[[]model.Alert]{}, errors.Wrap(ErrMalformed, err.Error())
		}
		return poller.Payload[[]model.Alert]{Data: r.valid(alerts)}, nil
	}

	list, mk, err := decode[model.AlertList](b)
	if err != nil {
		return poller.Payload[[]model.Alert]{}, err
	}
	return poller.Payload[[]model.Alert]{Data: r.valid(list.Alerts), Marker: mk}, nil
}

func (r *Alert) valid(alerts []model.Alert) []model.Alert {
	out := lo.Filter(alerts, func(a model.Alert, i int) bool {
		if err := r.validate.Struct(&a); err != nil {
			log.Warn().
				Str("evt.name", "repo.alert.invalid").
				Int("index", i).
				Err(err).
				Msg("dropping invalid alert")
			return false
		}
		return true
	})
	if out == nil {
		out = []model.Alert{}
	}
	return out
}

package repo

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"exusiai.dev/dashsync/internal/app/appconfig"
	"exusiai.dev/dashsync/internal/infra"
	"exusiai.dev/dashsync/internal/model"
	"exusiai.dev/dashsync/internal/poller"
)

type Metrics struct {
	up       *infra.Upstream
	path     string
	validate *validator.Validate
}

func NewMetrics(up *infra.Upstream, conf *appconfig.Config, validate *validator.Validate) *Metrics {
	return &Metrics{up: up, path: conf.MetricsPath, validate: validate}
}

func (r *Metrics) Fetch(ctx context.Context) (poller.Payload[model.Metrics], error) {
	b, err := do(ctx, r.up, request{method: http.MethodGet, path: r.path})
	if err != nil {
		return poller.Payload[model.Metrics]{}, err
	}
	m, mk, err := decode[model.Metrics](b)
	if err != nil {
		return poller.Payload[model.Metrics]{}, err
	}
	if err := r.validate.Struct(&m); err != nil {
		return poller.Payload[model.Metrics]{}, errors.Wrap(ErrMalformed, err.Error())
	}
	return poller.Payload[model.Metrics]{Data: m, Marker: mk}, nil
}

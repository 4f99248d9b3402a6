package repo

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"exusiai.dev/dashsync/internal/app/appconfig"
	"exusiai.dev/dashsync/internal/infra"
	"exusiai.dev/dashsync/internal/model"
	"exusiai.dev/dashsync/internal/poller"
)

const (
	ActionComplete = "complete"
	ActionRefund   = "refund"

	HeaderCSRFToken = "X-CSRFToken"
)

type Shipment struct {
	up         *infra.Upstream
	listPath   string
	detailPath string
	actionPath string
	validate   *validator.Validate
}

func NewShipment(up *infra.Upstream, conf *appconfig.Config, validate *validator.Validate) *Shipment {
	return &Shipment{
		up:         up,
		listPath:   conf.OngoingPath,
		detailPath: conf.DetailPath,
		actionPath: conf.ActionPath,
		validate:   validate,
	}
}

// FetchOngoing returns every ongoing shipment. A missing collection is returned as
// an empty one. Rows failing validation are dropped.
func (r *Shipment) FetchOngoing(ctx context.Context) (poller.Payload[[]model.ShipmentRow], error) {
	b, err := do(ctx, r.up, request{method: http.MethodGet, path: r.listPath})
	if err != nil {
		return poller.Payload[[]model.ShipmentRow]{}, err
	}
	list, mk, err := decode[model.ShipmentList](b)
	if err != nil {
		return poller.Payload[[]model.ShipmentRow]{}, err
	}

	rows := lo.Filter(list.Shipments, func(row model.ShipmentRow, i int) bool {
		if err := r.validate.Struct(&row); err != nil {
			log.Warn().
				Str("evt.name", "repo.shipment.invalid").
				Int("index", i).
				Err(err).
				Msg("dropping invalid shipment row")
			return false
		}
		return true
	})
	if rows == nil {
		rows = []model.ShipmentRow{}
	}
	return poller.Payload[[]model.ShipmentRow]{Data: rows, Marker: mk}, nil
}

func (r *Shipment) FetchDetail(ctx context.Context, id int64) (*model.ShipmentDetail, error) {
	b, err := do(ctx, r.up, request{method: http.MethodGet, path: r.detailPath, id: strconv.FormatInt(id, 10)})
	if err != nil {
		return nil, err
	}
	d, _, err := decode[model.ShipmentDetail](b)
	if err != nil {
		return nil, err
	}
	if err := r.validate.Struct(&d); err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	return &d, nil
}

// PostAction sends one action for a shipment and returns the confirmation message.
// It never retries.
func (r *Shipment) PostAction(ctx context.Context, id int64, action, csrfToken string) (string, error) {
	sid := strconv.FormatInt(id, 10)
	b, err := do(ctx, r.up, request{
		method: http.MethodPost,
		path:   r.actionPath,
		id:     sid,
		form:   url.Values{"action": {action}},
		header: map[string]string{
			HeaderCSRFToken: csrfToken,
			// the backend checks the referer of secure unsafe requests
			"Referer": r.up.URL(r.listPath),
		},
	})
	if err != nil {
		if msg := responseMessage(b); msg != "" {
			return "", errors.Wrap(err, msg)
		}
		return "", err
	}

	if msg := responseMessage(b); msg != "" {
		return msg, nil
	}
	return "Shipment #" + sid + " updated.", nil
}

// responseMessage extracts {"message": ...} or {"error": ...} from a JSON body, or
// returns the trimmed body when it is plain text.
func responseMessage(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	if gjson.ValidBytes(b) {
		res := gjson.ParseBytes(b)
		for _, field := range []string{"message", "error", "detail"} {
			if v := res.Get(field); v.Exists() && v.String() != "" {
				return v.String()
			}
		}
		return ""
	}
	text := strings.TrimSpace(string(b))
	if strings.HasPrefix(text, "<") {
		// an HTML error page carries nothing useful to show
		return ""
	}
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

package repo

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"exusiai.dev/dashsync/internal/infra"
	"exusiai.dev/dashsync/internal/pkg/marker"
	"exusiai.dev/dashsync/internal/poller"
)

// maxBodySize caps how much of an upstream response is read.
const maxBodySize = 4 << 20

// MarkerField is the top-level payload field carrying the freshness marker.
const MarkerField = "version"

var ErrMalformed = errors.New("repo: malformed upstream payload")

type request struct {
	method string
	path   string
	id     string
	form   url.Values
	header map[string]string
}

func do(ctx context.Context, up *infra.Upstream, r request) ([]byte, error) {
	var ids []string
	if r.id != "" {
		ids = append(ids, r.id)
	}
	u := up.URL(r.path, ids...)

	var body io.Reader = http.NoBody
	if r.form != nil {
		body = strings.NewReader(r.form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, errors.Wrapf(err, "repo: failed to build request for %s", u)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if up.UserAgent != "" {
		req.Header.Set("User-Agent", up.UserAgent)
	}
	if r.form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range r.header {
		req.Header.Set(k, v)
	}

	res, err := up.Client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "repo: %s %s", r.method, u)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrapf(err, "repo: failed to read response of %s %s", r.method, u)
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return b, errors.Wrapf(poller.ErrStatus, "%s %s: %d", r.method, u, res.StatusCode)
	}
	return b, nil
}

// decode unmarshals a JSON body into T and extracts its freshness marker. Missing
// fields decode to zero values; a body that is not JSON is ErrMalformed.
func decode[T any](b []byte) (T, marker.Marker, error) {
	var v T
	if !gjson.ValidBytes(b) {
		return v, marker.Marker{}, errors.Wrap(ErrMalformed, "body is not valid JSON")
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, marker.Marker{}, errors.Wrap(ErrMalformed, err.Error())
	}
	return v, extractMarker(b), nil
}

func extractMarker(b []byte) marker.Marker {
	r := gjson.GetBytes(b, MarkerField)
	if !r.Exists() || r.Type == gjson.Null {
		return marker.Marker{}
	}
	return marker.Parse(r.String())
}

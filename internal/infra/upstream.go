package infra

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"exusiai.dev/dashsync/internal/app/appconfig"
)

const (
	CookieSession = "sessionid"
	CookieCSRF    = "csrftoken"
)

var ErrNoCSRFToken = errors.New("infra: no anti-forgery token in the credential store")

// Upstream is the HTTP client of the dashboard backend. Its cookie jar is the
// credential store: it is seeded from configuration and picks up cookies the
// backend sets on later responses.
type Upstream struct {
	Base      *url.URL
	Client    *http.Client
	UserAgent string
}

func NewUpstream(conf *appconfig.Config) (*Upstream, error) {
	base, err := url.Parse(strings.TrimRight(conf.UpstreamBaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "infra: invalid upstream base url")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("infra: upstream base url %q must be absolute", conf.UpstreamBaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	var seed []*http.Cookie
	if conf.UpstreamSessionID != "" {
		seed = append(seed, &http.Cookie{Name: CookieSession, Value: conf.UpstreamSessionID, Path: "/"})
	}
	if conf.UpstreamCSRFToken != "" {
		seed = append(seed, &http.Cookie{Name: CookieCSRF, Value: conf.UpstreamCSRFToken, Path: "/"})
	}
	if len(seed) > 0 {
		jar.SetCookies(base, seed)
	}

	return &Upstream{
		Base: base,
		// no client-wide timeout: every call carries its own deadline through its context
		Client:    &http.Client{Jar: jar},
		UserAgent: conf.UpstreamUserAgent,
	}, nil
}

// URL joins path onto the base URL, substituting {id} when given. A path prefix of
// the base, such as /app in http://host/app, is kept.
func (u *Upstream) URL(path string, id ...string) string {
	if len(id) > 0 {
		path = strings.ReplaceAll(path, "{id}", url.PathEscape(id[0]))
	}
	base := *u.Base
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
		base.RawPath = ""
	}
	ref, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return base.String() + strings.TrimLeft(path, "/")
	}
	return base.ResolveReference(ref).String()
}

// CSRFToken reads the anti-forgery token from the cookie jar.
func (u *Upstream) CSRFToken() (string, error) {
	if u.Client.Jar == nil {
		return "", ErrNoCSRFToken
	}
	for _, c := range u.Client.Jar.Cookies(u.Base) {
		if c.Name == CookieCSRF && c.Value != "" {
			return c.Value, nil
		}
	}
	return "", ErrNoCSRFToken
}

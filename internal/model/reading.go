package model

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/guregu/null.v3"
)

// isPlaceholder reports whether s is one of the strings upstream uses in place of a missing value.
func isPlaceholder(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "n/a", "na", "-", "—", "null", "none":
		return true
	}
	return false
}

// Reading is a sensor value that upstream may send as a number, as a string with a unit
// suffix ("4.5°C"), as a placeholder ("N/A") or as null. Only the first two are valid.
type Reading struct {
	Value null.Float
	// Text is the upstream representation when it was sent as a string.
	Text string
}

func ReadingFrom(v float64) Reading {
	return Reading{Value: null.FloatFrom(v)}
}

func (r Reading) Valid() bool {
	return r.Value.Valid
}

func (r *Reading) UnmarshalJSON(b []byte) error {
	*r = Reading{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] != '"' {
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return err
		}
		r.Value = null.FloatFrom(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if isPlaceholder(s) {
		return nil
	}
	r.Text = strings.TrimSpace(s)
	numeric := strings.TrimSpace(strings.TrimRight(r.Text, "°CcFfVv% "))
	if f, err := strconv.ParseFloat(numeric, 64); err == nil {
		r.Value = null.FloatFrom(f)
	}
	return nil
}

func (r Reading) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Value)
}

// Text is an optional string where upstream placeholders such as "N/A" or "—" mean absent.
type Text struct {
	null.String
}

func TextFrom(s string) Text {
	return Text{null.StringFrom(s)}
}

func (t *Text) UnmarshalJSON(b []byte) error {
	t.String = null.String{}
	if err := t.String.UnmarshalJSON(b); err != nil {
		return err
	}
	if t.Valid && isPlaceholder(t.String.String) {
		t.String = null.String{}
	}
	return nil
}

// Or returns the text or fallback when absent.
func (t Text) Or(fallback string) string {
	if !t.Valid {
		return fallback
	}
	return t.String.String
}

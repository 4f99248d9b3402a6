// Package marker implements freshness markers: opaque tokens supplied by an upstream feed that can be
// ordered to tell a newer snapshot from a stale or duplicate one.
package marker

import (
	"strconv"
	"strings"
	"time"
)

type kind int

const (
	kindNone kind = iota
	kindNumber
	kindTime
	kindText
)

// Marker is an immutable freshness token. The zero value means "no marker".
type Marker struct {
	raw  string
	kind kind
	num  float64
	at   time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// Parse classifies raw as a sequence number, a timestamp or, failing both, plain text.
// Blank input yields the zero Marker.
func Parse(raw string) Marker {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Marker{}
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return Marker{raw: raw, kind: kindNumber, num: n}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Marker{raw: raw, kind: kindTime, at: t}
		}
	}
	return Marker{raw: raw, kind: kindText}
}

func FromTime(t time.Time) Marker {
	return Marker{raw: t.Format(time.RFC3339Nano), kind: kindTime, at: t}
}

func (m Marker) IsZero() bool {
	return m.kind == kindNone
}

func (m Marker) String() string {
	return m.raw
}

// After reports whether m is strictly newer than o. Markers of different kinds
// fall back to comparing their raw text.
func (m Marker) After(o Marker) bool {
	if m.IsZero() {
		return false
	}
	if o.IsZero() {
		return true
	}
	if m.kind == o.kind {
		switch m.kind {
		case kindNumber:
			return m.num > o.num
		case kindTime:
			return m.at.After(o.at)
		}
	}
	return m.raw > o.raw
}

// Equal reports whether m and o denote the same point in the feed.
func (m Marker) Equal(o Marker) bool {
	if m.kind != o.kind {
		return false
	}
	switch m.kind {
	case kindNone:
		return true
	case kindNumber:
		return m.num == o.num
	case kindTime:
		return m.at.Equal(o.at)
	}
	return m.raw == o.raw
}

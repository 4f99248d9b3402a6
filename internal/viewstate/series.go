package viewstate

import (
	"errors"

	"exusiai.dev/dashsync/internal/model"
	"exusiai.dev/dashsync/internal/pkg/dstructs"
)

// SeriesMode fixes how a chart buffer may be updated for its whole lifetime.
type SeriesMode string

const (
	// SeriesServer buffers are replaced wholesale with the latest server snapshot.
	SeriesServer SeriesMode = "server"
	// SeriesSimulated buffers are appended to locally, one point per tick.
	SeriesSimulated SeriesMode = "simulated"
)

var ErrSeriesModeMismatch = errors.New("viewstate: series updated outside of its mode")

// Series is a named rolling chart buffer.
type Series struct {
	name  string
	mode  SeriesMode
	buf   *dstructs.Rolling[model.SeriesPoint]
	state *State
}

func (s *Series) Name() string {
	return s.name
}

func (s *Series) Mode() SeriesMode {
	return s.mode
}

func (s *Series) Cap() int {
	return s.buf.Cap()
}

func (s *Series) Len() int {
	return s.buf.Len()
}

// Append pushes p, evicting the oldest point at capacity. Only valid for SeriesSimulated.
func (s *Series) Append(p model.SeriesPoint) error {
	if s.mode != SeriesSimulated {
		return ErrSeriesModeMismatch
	}
	s.state.chartMu.Lock()
	s.buf.Append(p)
	s.state.chartPresent = true
	s.state.chartMu.Unlock()
	s.state.changed()
	return nil
}

// Replace swaps the buffer content for points. Only valid for SeriesServer.
func (s *Series) Replace(points []model.SeriesPoint) error {
	if s.mode != SeriesServer {
		return ErrSeriesModeMismatch
	}
	s.state.chartMu.Lock()
	s.buf.Replace(points)
	s.state.chartPresent = true
	s.state.chartMu.Unlock()
	s.state.changed()
	return nil
}

func (s *Series) snapshot() model.Series {
	return model.Series{
		Name:   s.name,
		Mode:   string(s.mode),
		Points: s.buf.Items(),
	}
}

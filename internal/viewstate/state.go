// Package viewstate holds the in-memory view the dashboard is rendered from. Every
// slice is guarded by its own lock and is written only by the merge step of the
// channel that owns it; readers go through Snapshot.
package viewstate

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"

	"exusiai.dev/dashsync/internal/model"
	"exusiai.dev/dashsync/internal/pkg/dstructs"
)

type MetricsView struct {
	model.Metrics
	UpdatedAt time.Time `json:"updated_at"`
}

type State struct {
	revision atomic.Uint64
	notifier *Notifier

	metricsMu sync.RWMutex
	metrics   *MetricsView

	shipmentsMu sync.RWMutex
	shipments   []model.ShipmentRow
	shipmentIdx map[int64]int

	alertsMu sync.RWMutex
	alerts   []model.Alert

	chartMu      sync.RWMutex
	chart        []*Series
	chartPresent bool
}

func New() *State {
	return &State{
		notifier: NewNotifier(),
	}
}

func (s *State) Notifier() *Notifier {
	return s.notifier
}

// Revision increases by one on every merge or clear.
func (s *State) Revision() uint64 {
	return s.revision.Load()
}

func (s *State) changed() {
	s.revision.Add(1)
	s.notifier.Notify()
}

// SetMetrics replaces the metrics slice.
func (s *State) SetMetrics(m model.Metrics, at time.Time) {
	m.ChartLabels = append([]string(nil), m.ChartLabels...)
	m.ChartValues = append([]float64(nil), m.ChartValues...)

	s.metricsMu.Lock()
	s.metrics = &MetricsView{Metrics: m, UpdatedAt: at}
	s.metricsMu.Unlock()
	s.changed()
}

func (s *State) ClearMetrics() {
	s.metricsMu.Lock()
	s.metrics = nil
	s.metricsMu.Unlock()
	s.changed()
}

// SetShipments replaces the whole shipment collection. A nil slice marks the
// collection as present but empty, same as an empty one.
func (s *State) SetShipments(rows []model.ShipmentRow) {
	next := make([]model.ShipmentRow, len(rows))
	copy(next, rows)
	idx := make(map[int64]int, len(next))
	for i, row := range next {
		idx[row.ID] = i
	}

	s.shipmentsMu.Lock()
	s.shipments = next
	s.shipmentIdx = idx
	s.shipmentsMu.Unlock()
	s.changed()
}

func (s *State) ClearShipments() {
	s.shipmentsMu.Lock()
	s.shipments = nil
	s.shipmentIdx = nil
	s.shipmentsMu.Unlock()
	s.changed()
}

// Shipment looks up a row by its identifier.
func (s *State) Shipment(id int64) (model.ShipmentRow, bool) {
	s.shipmentsMu.RLock()
	defer s.shipmentsMu.RUnlock()
	i, ok := s.shipmentIdx[id]
	if !ok {
		return model.ShipmentRow{}, false
	}
	return s.shipments[i], true
}

func (s *State) SetAlerts(alerts []model.Alert) {
	next := make([]model.Alert, len(alerts))
	copy(next, alerts)

	s.alertsMu.Lock()
	s.alerts = next
	s.alertsMu.Unlock()
	s.changed()
}

func (s *State) ClearAlerts() {
	s.alertsMu.Lock()
	s.alerts = nil
	s.alertsMu.Unlock()
	s.changed()
}

// AddSeries registers a chart series. Registering an existing name returns the
// existing series when the mode matches, and ErrSeriesModeMismatch otherwise.
func (s *State) AddSeries(name string, mode SeriesMode, capacity int) (*Series, error) {
	s.chartMu.Lock()
	defer s.chartMu.Unlock()
	if existing, ok := lo.Find(s.chart, func(se *Series) bool { return se.name == name }); ok {
		if existing.mode != mode {
			return nil, ErrSeriesModeMismatch
		}
		return existing, nil
	}
	se := &Series{
		name:  name,
		mode:  mode,
		buf:   dstructs.NewRolling[model.SeriesPoint](capacity),
		state: s,
	}
	s.chart = append(s.chart, se)
	return se, nil
}

func (s *State) Series(name string) (*Series, bool) {
	s.chartMu.RLock()
	defer s.chartMu.RUnlock()
	return lo.Find(s.chart, func(se *Series) bool { return se.name == name })
}

// ClearChart empties every series and marks the chart absent.
func (s *State) ClearChart() {
	s.chartMu.Lock()
	for _, se := range s.chart {
		se.buf.Reset()
	}
	s.chartPresent = false
	s.chartMu.Unlock()
	s.changed()
}

// Snapshot is a deep copy of the State. A nil slice means the owning channel has
// not merged anything since it was last activated.
type Snapshot struct {
	Revision  uint64              `json:"revision"`
	Metrics   *MetricsView        `json:"metrics"`
	Shipments []model.ShipmentRow `json:"shipments"`
	Alerts    []model.Alert       `json:"alerts"`
	Chart     []model.Series      `json:"chart"`
}

func (s *State) Snapshot() Snapshot {
	var snap Snapshot

	s.metricsMu.RLock()
	if s.metrics != nil {
		m := *s.metrics
		m.ChartLabels = append([]string(nil), m.ChartLabels...)
		m.ChartValues = append([]float64(nil), m.ChartValues...)
		snap.Metrics = &m
	}
	s.metricsMu.RUnlock()

	s.shipmentsMu.RLock()
	if s.shipments != nil {
		snap.Shipments = append(make([]model.ShipmentRow, 0, len(s.shipments)), s.shipments...)
	}
	s.shipmentsMu.RUnlock()

	s.alertsMu.RLock()
	if s.alerts != nil {
		snap.Alerts = append(make([]model.Alert, 0, len(s.alerts)), s.alerts...)
	}
	s.alertsMu.RUnlock()

	s.chartMu.RLock()
	if s.chartPresent {
		snap.Chart = lo.Map(s.chart, func(se *Series, _ int) model.Series { return se.snapshot() })
	}
	s.chartMu.RUnlock()

	snap.Revision = s.Revision()
	return snap
}

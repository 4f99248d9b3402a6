package render

import (
	"fmt"
	"strconv"
	"time"

	"github.com/samber/lo"

	"exusiai.dev/dashsync/internal/model"
	"exusiai.dev/dashsync/internal/viewstate"
)

const (
	Placeholder = "—"

	NoShipmentsMessage = "No ongoing shipments found."
	NoAlertsMessage    = "No active alerts."
	NoDataText         = "No Data"

	// OngoingColumns is the column count of the ongoing-shipments table.
	OngoingColumns = 7
)

const (
	classCell        = "px-4 py-3"
	classProduct     = "px-4 py-3 fw-bold text-dark"
	classTemperature = "fw-bold text-success"
	classNoData      = "badge bg-secondary px-2 py-1"
	classInTransit   = "badge bg-info text-dark px-3 py-2 rounded-pill"
	classOtherStatus = "badge bg-success px-3 py-2 rounded-pill"
	classEmptyRow    = "text-center text-muted py-3"
	classAction      = "btn btn-sm btn-outline-primary view-shipment"
)

type Renderer struct {
	loc *time.Location
}

// New returns a Renderer formatting times in loc, or in time.Local when loc is nil.
func New(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	return &Renderer{loc: loc}
}

// Render projects snap onto s. Slices absent from snap leave their elements alone.
func (r *Renderer) Render(snap viewstate.Snapshot, s Surface) {
	if snap.Metrics != nil {
		r.metrics(snap.Metrics, s)
	}
	if snap.Shipments != nil {
		s.ReplaceRows(IDOngoingTable, ShipmentRows(snap.Shipments))
	}
	if snap.Alerts != nil {
		s.ReplaceList(IDAlertsContainer, AlertItems(snap.Alerts))
	}
	if snap.Chart != nil {
		s.UpdateChart(IDTemperatureChart, snap.Chart)
	}
}

func (r *Renderer) metrics(m *viewstate.MetricsView, s Surface) {
	s.SetText(IDAvgTemp, FormatTemp(m.AvgTemp.Float64, m.AvgTemp.Valid))
	s.SetText(IDTotalContracts, strconv.Itoa(m.TotalContracts))
	s.SetText(IDContractBreakdown, fmt.Sprintf("%d active, %d completed", m.ActiveContracts, m.CompletedContracts))
	s.SetText(IDActiveAlerts, strconv.Itoa(m.ActiveAlerts))
	s.SetText(IDSuccessRate, formatFloat(m.SuccessRate)+"%")
	if !m.UpdatedAt.IsZero() {
		s.SetText(IDLastUpdated, m.UpdatedAt.In(r.loc).Format("15:04:05"))
	}

	s.SetText(IDActiveBadge, strconv.Itoa(m.ActiveContracts))
	s.SetText(IDOngoingBadge, strconv.Itoa(m.OngoingContracts))
	s.SetText(IDCompletedBadge, strconv.Itoa(m.CompletedContracts))
	s.SetText(IDAlertsBadge, strconv.Itoa(m.ActiveAlerts))

	s.SetClass(IDStatusIndicator, []string{m.NormalizedStatusColor()}, model.StatusColors)
	if m.SystemStatus != "" {
		s.SetText(IDSystemStatus, m.SystemStatus)
	}
}

// ShipmentRows renders the ongoing-shipments table body. An empty collection
// yields a single placeholder row spanning every column.
func ShipmentRows(rows []model.ShipmentRow) []Row {
	if len(rows) == 0 {
		return []Row{{Cells: []Cell{{
			Text:    NoShipmentsMessage,
			Class:   classEmptyRow,
			ColSpan: OngoingColumns,
		}}}}
	}
	return lo.Map(rows, func(sh model.ShipmentRow, _ int) Row {
		id := strconv.FormatInt(sh.ID, 10)
		return Row{Cells: []Cell{
			{Text: "#" + id, Class: classCell},
			{Text: sh.ProductName, Class: classProduct},
			temperatureCell(sh.Temperature),
			statusCell(sh.Status),
			{Text: sh.BuyerName.Or(Placeholder), Class: classCell},
			{Text: sh.SellerName.Or(Placeholder), Class: classCell},
			{Class: classAction, Data: map[string]string{"id": id}},
		}}
	})
}

func temperatureCell(t model.Reading) Cell {
	if !t.Valid() {
		return Cell{Text: NoDataText, Class: classNoData}
	}
	text := t.Text
	if text == "" {
		text = FormatTemp(t.Value.Float64, true)
	}
	return Cell{Text: text, Class: classTemperature}
}

func statusCell(status string) Cell {
	if status == model.ShipmentStatusInTransit {
		return Cell{Text: status, Class: classInTransit}
	}
	return Cell{Text: status, Class: classOtherStatus}
}

// AlertItems renders the alerts container content. Severity picks the style.
func AlertItems(alerts []model.Alert) []Item {
	if len(alerts) == 0 {
		return []Item{{Text: NoAlertsMessage, Class: "text-muted"}}
	}
	return lo.Map(alerts, func(a model.Alert, _ int) Item {
		return Item{Text: a.Message, Class: "alert alert-" + a.Style()}
	})
}

// FormatTemp renders a temperature in °C, or the placeholder when it is absent.
func FormatTemp(v float64, valid bool) string {
	if !valid {
		return Placeholder
	}
	return formatFloat(v) + "°C"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

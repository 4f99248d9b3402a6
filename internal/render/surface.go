// Package render projects a view snapshot onto a Surface. It never fetches and
// never mutates the view.
package render

import "exusiai.dev/dashsync/internal/model"

// Element ids of the dashboard markup.
const (
	IDAvgTemp           = "avgTemp"
	IDTotalContracts    = "totalContracts"
	IDContractBreakdown = "contractBreakdown"
	IDActiveAlerts      = "activeAlerts"
	IDSuccessRate       = "successRate"
	IDLastUpdated       = "lastUpdated"
	IDStatusIndicator   = "statusIndicator"
	IDSystemStatus      = "systemStatus"

	IDActiveBadge    = "activeBadge"
	IDOngoingBadge   = "ongoingBadge"
	IDCompletedBadge = "completedBadge"
	IDAlertsBadge    = "alertsBadge"

	IDOngoingTable     = "ongoingShipmentsBody"
	IDAlertsContainer  = "alertsContainer"
	IDTemperatureChart = "temperatureChart"
)

// Cell is one table cell. Data carries data-* attributes.
type Cell struct {
	Text    string            `json:"text"`
	Class   string            `json:"class,omitempty"`
	ColSpan int               `json:"colspan,omitempty"`
	Data    map[string]string `json:"data,omitempty"`
}

type Row struct {
	Cells []Cell `json:"cells"`
}

type Item struct {
	Text  string `json:"text"`
	Class string `json:"class,omitempty"`
}

// Surface is the rendering target. Implementations apply calls in order and
// ignore ids they do not know.
type Surface interface {
	SetText(id, text string)
	SetClass(id string, add, remove []string)
	ReplaceRows(id string, rows []Row)
	ReplaceList(id string, items []Item)
	UpdateChart(id string, series []model.Series)
}

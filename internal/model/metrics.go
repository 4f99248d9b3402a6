package model

import "gopkg.in/guregu/null.v3"

// Known status color tokens, in the order they are stripped from the status indicator.
var StatusColors = []string{"bg-success", "bg-danger", "bg-warning", "bg-info", "bg-secondary"}

const StatusColorUnknown = "bg-secondary"

// Metrics is the aggregate payload of the metrics feed.
type Metrics struct {
	TotalContracts     int        `json:"total_contracts" validate:"gte=0"`
	ActiveContracts    int        `json:"active_contracts" validate:"gte=0"`
	OngoingContracts   int        `json:"ongoing_contracts" validate:"gte=0"`
	CompletedContracts int        `json:"completed_contracts" validate:"gte=0"`
	AvgTemp            null.Float `json:"avg_temp"`
	SuccessRate        float64    `json:"success_rate"`
	ActiveAlerts       int        `json:"active_alerts" validate:"gte=0"`
	SystemStatus       string     `json:"system_status"`
	StatusColor        string     `json:"status_color"`

	// ChartLabels and ChartValues are only present when the deployment combines the
	// temperature chart with the metrics feed.
	ChartLabels []string  `json:"chart_labels,omitempty"`
	ChartValues []float64 `json:"chart_values,omitempty"`
}

// NormalizedStatusColor returns the status color token, or StatusColorUnknown when the
// token is not one of StatusColors.
func (m *Metrics) NormalizedStatusColor() string {
	for _, c := range StatusColors {
		if c == m.StatusColor {
			return c
		}
	}
	return StatusColorUnknown
}

// ChartPoints zips ChartLabels and ChartValues. Surplus entries on either side are dropped.
func (m *Metrics) ChartPoints() []SeriesPoint {
	n := len(m.ChartLabels)
	if len(m.ChartValues) < n {
		n = len(m.ChartValues)
	}
	points := make([]SeriesPoint, n)
	for i := 0; i < n; i++ {
		points[i] = SeriesPoint{Label: m.ChartLabels[i], Value: m.ChartValues[i]}
	}
	return points
}

// HasChart reports whether the payload carried chart arrays at all.
func (m *Metrics) HasChart() bool {
	return m.ChartLabels != nil || m.ChartValues != nil
}

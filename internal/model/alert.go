package model

import "strings"

type Alert struct {
	Severity string `json:"severity"`
	Message  string `json:"message" validate:"required"`
}

// Style maps the severity onto a style class suffix, case-insensitively.
func (a Alert) Style() string {
	switch strings.ToLower(strings.TrimSpace(a.Severity)) {
	case "critical", "danger", "error", "high":
		return "danger"
	case "warning", "warn", "medium":
		return "warning"
	case "info", "low":
		return "info"
	case "success", "ok", "resolved":
		return "success"
	}
	return "secondary"
}

type AlertList struct {
	Alerts []Alert `json:"alerts"`
}

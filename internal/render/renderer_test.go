package render

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exusiai.dev/dashsync/internal/model"
	"exusiai.dev/dashsync/internal/viewstate"
)

func renderState(t *testing.T, state *viewstate.State) *Document {
	t.Helper()
	doc := NewDocument()
	New(time.UTC).Render(state.Snapshot(), doc)
	return doc
}

func TestRenderMetrics(t *testing.T) {
	var m model.Metrics
	require.NoError(t, json.Unmarshal([]byte(`{"avg_temp": -2.5, "active_contracts": 3, "completed_contracts": 7, "active_alerts": 1, "status_color": "bg-success"}`), &m))

	state := viewstate.New()
	state.SetMetrics(m, time.Date(2024, 5, 1, 10, 4, 5, 0, time.UTC))
	doc := renderState(t, state)

	assert.Equal(t, "-2.5°C", doc.Text(IDAvgTemp))
	assert.Equal(t, "3 active, 7 completed", doc.Text(IDContractBreakdown))
	assert.True(t, doc.HasClass(IDStatusIndicator, "bg-success"))
	assert.False(t, doc.HasClass(IDStatusIndicator, "bg-danger"))
	assert.Equal(t, "1", doc.Text(IDAlertsBadge))
	assert.Equal(t, "3", doc.Text(IDActiveBadge))
	assert.Equal(t, "10:04:05", doc.Text(IDLastUpdated))
}

func TestRenderStatusColorSwitches(t *testing.T) {
	state := viewstate.New()
	doc := NewDocument()
	r := New(time.UTC)

	state.SetMetrics(model.Metrics{StatusColor: "bg-danger", SystemStatus: "Critical"}, time.Now())
	r.Render(state.Snapshot(), doc)
	assert.True(t, doc.HasClass(IDStatusIndicator, "bg-danger"))
	assert.Equal(t, "Critical", doc.Text(IDSystemStatus))

	state.SetMetrics(model.Metrics{StatusColor: "bg-success"}, time.Now())
	r.Render(state.Snapshot(), doc)
	assert.True(t, doc.HasClass(IDStatusIndicator, "bg-success"))
	assert.False(t, doc.HasClass(IDStatusIndicator, "bg-danger"))

	assert.Equal(t, "—", doc.Text(IDAvgTemp), "a missing average renders the placeholder")
}

func TestRenderEmptyShipments(t *testing.T) {
	for _, payload := range []string{`{"ongoing_data": []}`, `{}`} {
		t.Run(payload, func(t *testing.T) {
			var list model.ShipmentList
			require.NoError(t, json.Unmarshal([]byte(payload), &list))

			state := viewstate.New()
			state.SetShipments(list.Shipments)
			rows := renderState(t, state).Rows(IDOngoingTable)

			require.Len(t, rows, 1)
			require.Len(t, rows[0].Cells, 1)
			assert.Equal(t, OngoingColumns, rows[0].Cells[0].ColSpan)
			assert.Contains(t, rows[0].Cells[0].Text, "No ongoing shipments")
		})
	}
}

func TestRenderShipmentRow(t *testing.T) {
	var list model.ShipmentList
	require.NoError(t, json.Unmarshal([]byte(`{"ongoing_data": [{"contract_id": 42, "product_name": "VaccineX", "temperature": null, "status": "In Transit", "buyer_name": null, "seller_name": "Acme"}]}`), &list))

	state := viewstate.New()
	state.SetShipments(list.Shipments)
	rows := renderState(t, state).Rows(IDOngoingTable)

	require.Len(t, rows, 1)
	cells := rows[0].Cells
	require.Len(t, cells, OngoingColumns)
	assert.Equal(t, "#42", cells[0].Text)
	assert.Equal(t, "VaccineX", cells[1].Text)
	assert.Equal(t, NoDataText, cells[2].Text)
	assert.Contains(t, cells[2].Class, "badge")
	assert.Equal(t, "In Transit", cells[3].Text)
	assert.Contains(t, cells[3].Class, "bg-info")
	assert.Equal(t, "—", cells[4].Text)
	assert.Equal(t, "Acme", cells[5].Text)
	assert.Equal(t, "42", cells[6].Data["id"])
}

func TestRenderTemperatureAndStatus(t *testing.T) {
	rows := ShipmentRows([]model.ShipmentRow{
		{ID: 1, Temperature: model.ReadingFrom(4.25), Status: model.ShipmentStatusDelivered},
		{ID: 2, Temperature: model.Reading{Value: model.ReadingFrom(5).Value, Text: "5.0°C"}, Status: "Ongoing"},
	})
	assert.Equal(t, "4.25°C", rows[0].Cells[2].Text)
	assert.Contains(t, rows[0].Cells[3].Class, "bg-success")
	assert.Equal(t, "5.0°C", rows[1].Cells[2].Text)
}

func TestRenderAlertsReplacesContainer(t *testing.T) {
	state := viewstate.New()
	doc := NewDocument()
	r := New(time.UTC)

	state.SetAlerts([]model.Alert{
		{Severity: "CRITICAL", Message: "Freezer 3 above threshold"},
		{Severity: "Warning", Message: "Battery low"},
	})
	r.Render(state.Snapshot(), doc)
	items := doc.Items(IDAlertsContainer)
	require.Len(t, items, 2)
	assert.Equal(t, "alert alert-danger", items[0].Class)
	assert.Equal(t, "alert alert-warning", items[1].Class)

	state.SetAlerts([]model.Alert{{Severity: "info", Message: "Recovered"}})
	r.Render(state.Snapshot(), doc)
	items = doc.Items(IDAlertsContainer)
	require.Len(t, items, 1)
	assert.Equal(t, "Recovered", items[0].Text)

	state.SetAlerts(nil)
	r.Render(state.Snapshot(), doc)
	assert.Equal(t, NoAlertsMessage, doc.Items(IDAlertsContainer)[0].Text)
}

func TestRenderPartialStateIsNoop(t *testing.T) {
	doc := NewDocument()
	doc.SetText(IDAvgTemp, "4°C")

	New(time.UTC).Render(viewstate.New().Snapshot(), doc)

	assert.Equal(t, "4°C", doc.Text(IDAvgTemp))
	_, ok := doc.Element(IDOngoingTable)
	assert.False(t, ok)
	_, ok = doc.Element(IDTemperatureChart)
	assert.False(t, ok)
}

func TestRenderChart(t *testing.T) {
	state := viewstate.New()
	se, err := state.AddSeries("Temperature", viewstate.SeriesServer, 10)
	require.NoError(t, err)
	require.NoError(t, se.Replace([]model.SeriesPoint{{Label: "10:00", Value: 4}, {Label: "10:01", Value: 4.5}}))

	e, ok := renderState(t, state).Element(IDTemperatureChart)
	require.True(t, ok)
	require.Len(t, e.Chart, 1)
	assert.Equal(t, []string{"10:00", "10:01"}, e.Chart[0].Labels())
	assert.Equal(t, []float64{4, 4.5}, e.Chart[0].Values())
}

func TestDocumentElementsSorted(t *testing.T) {
	doc := NewDocument()
	doc.SetText("b", "2")
	doc.SetText("a", "1")
	doc.SetClass("a", []string{"x", "y"}, nil)
	doc.SetClass("a", []string{"z"}, []string{"x"})

	els := doc.Elements()
	require.Len(t, els, 2)
	assert.Equal(t, "a", els[0].ID)
	assert.Equal(t, []string{"y", "z"}, els[0].Classes)
}

package model

type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Series is a read-only copy of one chart series.
type Series struct {
	Name   string        `json:"name"`
	Mode   string        `json:"mode"`
	Points []SeriesPoint `json:"points"`
}

func (s Series) Labels() []string {
	labels := make([]string, len(s.Points))
	for i, p := range s.Points {
		labels[i] = p.Label
	}
	return labels
}

func (s Series) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

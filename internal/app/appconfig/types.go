package appconfig

import (
	"fmt"
	"strconv"
	"strings"
)

type SeriesSeed struct {
	Name     string
	Baseline float64
}

// SeriesSeeds decodes a comma separated list of name:baseline pairs.
type SeriesSeeds []SeriesSeed

func (s *SeriesSeeds) Decode(value string) error {
	*s = SeriesSeeds{}
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		i := strings.LastIndex(pair, ":")
		if i <= 0 {
			return fmt.Errorf("invalid series seed: expect a `:` separated name and baseline for each element, but got: %s", pair)
		}
		baseline, err := strconv.ParseFloat(strings.TrimSpace(pair[i+1:]), 64)
		if err != nil {
			return fmt.Errorf("invalid baseline in series seed %q: %w", pair, err)
		}
		*s = append(*s, SeriesSeed{Name: strings.TrimSpace(pair[:i]), Baseline: baseline})
	}
	return nil
}

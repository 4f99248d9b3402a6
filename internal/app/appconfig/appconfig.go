package appconfig

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"exusiai.dev/dashsync/internal/app/appcontext"
	"exusiai.dev/dashsync/internal/pkg/projectpath"
)

const envPrefix = "dashsync"

func Parse(ctx appcontext.Ctx) (*Config, error) {
	err := godotenv.Load(filepath.Join(projectpath.Root, ".env"))
	if err != nil {
		log.Warn().Err(err).Msg("failed to load .env file")
	}

	var config ConfigSpec
	err = envconfig.Process(envPrefix, &config)
	if err != nil {
		_ = envconfig.Usage(envPrefix, &config)
		return nil, fmt.Errorf("failed to parse configuration: %w. More info on how to configure dashsync is located at https://pkg.go.dev/exusiai.dev/dashsync/internal/app/appconfig#ConfigSpec", err)
	}

	if config.ChartMode != ChartModeCombined && config.ChartMode != ChartModeSimulated {
		return nil, fmt.Errorf("failed to parse configuration: unknown chart mode %q", config.ChartMode)
	}

	return &Config{
		ConfigSpec: config,
		AppContext: ctx,
	}, nil
}

const (
	ChartModeCombined  = "combined"
	ChartModeSimulated = "simulated"
)

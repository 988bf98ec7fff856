// Package runtimeinit loads configuration and builds the process logger.
package runtimeinit

import (
	"fmt"

	"go.uber.org/zap"

	"csd2-bot/src/config"
	"csd2-bot/src/logutil"
	"csd2-bot/src/recipe"
)

type Options struct {
	LoadOptions config.LoadOptions
	// LogDir overrides the log file directory, mainly for tests.
	LogDir string
}

func Bootstrap(opts Options) (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logutil.Setup(logutil.Options{
		Level:             cfg.BotSettings.LoggingLevel,
		EnableFileLogging: cfg.BotSettings.EnableFileLogging,
		Dir:               opts.LogDir,
	})
	if cfg.ConfigFile != "" {
		logger.Info("configuration loaded", zap.String("file", cfg.ConfigFile))
	} else {
		logger.Warn("no config file found, using defaults")
	}
	if len(cfg.OCRRegions.IngredientSlotROIs) == 0 {
		logger.Warn("no ingredient slots configured, every page will read as empty")
	}
	return cfg, logger, nil
}

// NewMapper builds the recipe mapper from the loaded configuration.
func NewMapper(cfg *config.Config, logger *zap.Logger) *recipe.Mapper {
	return recipe.NewMapper(recipe.MapperOptions{
		InputKeys:              cfg.Controls.InputKeys,
		FuzzyEnabled:           cfg.BotSettings.FuzzyMatchingEnabled,
		MultiStepCharThreshold: cfg.BotSettings.MultiStepCharThreshold,
		MatchThreshold:         cfg.BotSettings.FuzzyMatchThreshold,
		CaseSensitive:          cfg.BotSettings.CaseSensitive,
		ReuseSlots:             cfg.BotSettings.ReuseSlots,
		Special: recipe.SpecialActions{
			ChoresSequence: cfg.Controls.ChoresSequence,
			PourKey:        cfg.Controls.PourKey,
			PourHold:       cfg.BotSettings.PourHoldDuration(),
		},
		Logger: logger,
	})
}

// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"strings"

	"github.com/iwvelando/capital-lab/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for capital-lab.
type Configuration struct {
	CashFlows            string        `yaml:"cashFlows"`
	Search               SearchConfig  `yaml:"search,omitempty"`
	ReferenceRatePercent float64       `yaml:"referenceRatePercent,omitempty"`
	Dataset              DatasetConfig `yaml:"dataset,omitempty"`
	Game                 GameConfig    `yaml:"game,omitempty"`
	Logging              LoggingConfig `yaml:"logging,omitempty"`
	Output               OutputConfig  `yaml:"output,omitempty"`
}

// SearchConfig bounds the IRR scan. All rates are percentage points; the
// conversion to the solver's decimal units happens in SearchRange.
type SearchConfig struct {
	RateMinPercent   float64 `yaml:"rateMinPercent,omitempty"`
	RateMaxPercent   float64 `yaml:"rateMaxPercent,omitempty"`
	Samples          int     `yaml:"samples,omitempty"`
	PrecisionPercent float64 `yaml:"precisionPercent,omitempty"`
}

// DatasetConfig selects the industry benchmark source.
type DatasetConfig struct {
	URL             string `yaml:"url,omitempty"`
	File            string `yaml:"file,omitempty"`
	RefreshSchedule string `yaml:"refreshSchedule,omitempty"`
}

// GameConfig holds guessing-game options. A zero Seed selects time-based
// seeding; any other value makes target selection reproducible.
type GameConfig struct {
	HistoryDatabase string `yaml:"historyDatabase,omitempty"`
	Seed            int64  `yaml:"seed,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.ApplyDefaults()
	return &configuration, nil
}

// ApplyDefaults fills zero values with the solver and dataset defaults.
func (c *Configuration) ApplyDefaults() {
	if c.Search.RateMaxPercent == 0 {
		c.Search.RateMinPercent = constants.DefaultSearchMin * constants.PercentageMultiplier
		c.Search.RateMaxPercent = constants.DefaultSearchMax * constants.PercentageMultiplier
	}
	if c.Search.Samples == 0 {
		c.Search.Samples = constants.DefaultSampleCount
	}
	if c.Search.PrecisionPercent == 0 {
		c.Search.PrecisionPercent = constants.DefaultPrecision * constants.PercentageMultiplier
	}
	if c.ReferenceRatePercent == 0 {
		c.ReferenceRatePercent = constants.DefaultReferenceRate * constants.PercentageMultiplier
	}
	if c.Dataset.URL == "" {
		c.Dataset.URL = constants.DefaultDatasetURL
	}
	if c.Dataset.RefreshSchedule == "" {
		c.Dataset.RefreshSchedule = constants.DefaultRefreshSchedule
	}
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings for settings that are legal but probably unintended.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if strings.TrimSpace(c.CashFlows) == "" {
		warnings = append(warnings, "no cash flows configured; nothing to solve")
	}

	if c.ReferenceRatePercent < c.Search.RateMinPercent || c.ReferenceRatePercent > c.Search.RateMaxPercent {
		warnings = append(warnings, fmt.Sprintf(
			"reference rate %.2f%% lies outside the search range [%.2f%%, %.2f%%]",
			c.ReferenceRatePercent, c.Search.RateMinPercent, c.Search.RateMaxPercent))
	}

	if c.Search.Samples > 0 && c.Search.Samples < 100 {
		warnings = append(warnings, fmt.Sprintf(
			"sample count %d is very coarse; closely spaced roots may be merged or missed", c.Search.Samples))
	}

	rangeWidth := c.Search.RateMaxPercent - c.Search.RateMinPercent
	if rangeWidth > 0 && c.Search.PrecisionPercent >= rangeWidth {
		warnings = append(warnings, fmt.Sprintf(
			"precision %.4f%% is no finer than the search range width %.2f%%",
			c.Search.PrecisionPercent, rangeWidth))
	}

	return warnings
}

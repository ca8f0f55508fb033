package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// DefaultSampleArea is the sample cross-section used when none is
// configured, in m². It matches the test-station default geometry and
// must be overridden when a different device is measured.
const DefaultSampleArea = 32e-6

// DefaultSkipRows is the preamble length of the standard instrument
// export format. The loader itself takes the skip count as an explicit
// parameter; this default exists only at the configuration surface.
const DefaultSkipRows = 16

// Config represents the complete analyzer configuration
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	Input    InputConfig    `yaml:"input" envconfig:"INPUT"`
	Output   OutputConfig   `yaml:"output" envconfig:"OUTPUT"`
	Plot     PlotConfig     `yaml:"plot" envconfig:"PLOT"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// AnalysisConfig contains the physical and model parameters of a run
type AnalysisConfig struct {
	// SampleArea is the device cross-section in m², used to convert
	// current to current density.
	SampleArea float64 `yaml:"sample_area" envconfig:"SAMPLE_AREA" validate:"gt=0"`
	// Material selects the fit model: "metal" (linear) or
	// "semiconductor" (log-linear diode fit).
	Material string `yaml:"material" envconfig:"MATERIAL" validate:"oneof=metal semiconductor"`
}

// InputConfig contains instrument export format parameters
type InputConfig struct {
	// SkipRows is the number of preamble lines before the header row.
	SkipRows  int    `yaml:"skip_rows" envconfig:"SKIP_ROWS" validate:"gte=0"`
	Delimiter string `yaml:"delimiter" envconfig:"DELIMITER" validate:"len=1"`
}

// OutputConfig controls which artifacts a run produces
type OutputConfig struct {
	Dir         string `yaml:"dir" envconfig:"DIR" validate:"required"`
	SavePlots   bool   `yaml:"save_plots" envconfig:"SAVE_PLOTS"`
	SaveReport  bool   `yaml:"save_report" envconfig:"SAVE_REPORT"`
	SaveCSV     bool   `yaml:"save_csv" envconfig:"SAVE_CSV"`
	PrintReport bool   `yaml:"print_report" envconfig:"PRINT_REPORT"`
}

// PlotConfig controls rendered image geometry
type PlotConfig struct {
	Width  int `yaml:"width" envconfig:"WIDTH" validate:"gte=100,lte=4096"`
	Height int `yaml:"height" envconfig:"HEIGHT" validate:"gte=100,lte=4096"`
	DPI    int `yaml:"dpi" envconfig:"DPI" validate:"gte=72,lte=1200"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=text json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Analysis: AnalysisConfig{
			SampleArea: DefaultSampleArea,
			Material:   "metal",
		},
		Input: InputConfig{
			SkipRows:  DefaultSkipRows,
			Delimiter: ",",
		},
		Output: OutputConfig{
			Dir:         "results",
			SavePlots:   true,
			SaveReport:  true,
			SaveCSV:     false,
			PrintReport: true,
		},
		Plot: PlotConfig{
			Width:  800,
			Height: 600,
			DPI:    300,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "console",
			FilePath: filepath.Join("logs", "ivcli.log"),
		},
	}
}

// Load builds the configuration in three layers: built-in defaults, an
// optional YAML file, then environment variables. Later layers win.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := overlayFromFile(configFile, &cfg); err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	if err := envconfig.Process("IV", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// overlayFromFile unmarshals YAML over the existing config, so keys
// absent from the file keep their current values.
func overlayFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration against its struct constraints
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	return nil
}

// DelimiterRune returns the configured delimiter as a rune
func (c *InputConfig) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ','
}

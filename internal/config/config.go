package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to the env tag of every overridable field
const EnvPrefix = "SHIFT_"

// Horizon defines the days and opening hours being scheduled
type Horizon struct {
	// StartDate of day 1, needed for date and rrule roster windows
	StartDate string `yaml:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	NumDays   int    `yaml:"numDays" validate:"min=1"`
	NumHours  int    `yaml:"numHours" validate:"min=1,max=24"`
	StartHour int    `yaml:"startHour" validate:"min=0,max=23"`
}

// Start parses StartDate, returning the zero time when unset
func (h Horizon) Start() (time.Time, error) {
	if h.StartDate == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", h.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse horizon start date: %w", err)
	}
	return t, nil
}

// Staffing holds the hard limits every schedule is scored against
type Staffing struct {
	MinStaffPerHour     int `yaml:"minStaffPerHour" validate:"min=0"`
	MaxStaffPerHour     int `yaml:"maxStaffPerHour" validate:"min=0,gtefield=MinStaffPerHour"`
	MaxWorkHoursPerDay  int `yaml:"maxWorkHoursPerDay" validate:"min=0"`
	MaxWorkHoursPerWeek int `yaml:"maxWorkHoursPerWeek" validate:"min=0"`
	MinWorkHoursPerWeek int `yaml:"minWorkHoursPerWeek,omitempty" validate:"min=0,ltefield=MaxWorkHoursPerWeek"`
}

// Genetic holds the optimiser tuning parameters
type Genetic struct {
	PopulationSize     int           `yaml:"populationSize" validate:"min=1"`
	Generations        int           `yaml:"generations" validate:"min=0"`
	CrossoverProb      float64       `yaml:"crossoverProb" validate:"min=0,max=1"`
	MutationProb       float64       `yaml:"mutationProb" validate:"min=0,max=1"`
	GeneFlipProb       float64       `yaml:"geneFlipProb,omitempty" validate:"min=0,max=1"`
	Selection          string        `yaml:"selection" validate:"oneof=tournament roulette"`
	TournamentSize     int           `yaml:"tournamentSize" validate:"min=1"`
	Crossover          string        `yaml:"crossover" validate:"oneof=mixed day_block staff_block"`
	SmartSeedRatio     float64       `yaml:"smartSeedRatio" validate:"min=0,max=1"`
	SeedRetries        int           `yaml:"seedRetries" validate:"min=0"`
	RepairProb         float64       `yaml:"repairProb" validate:"min=0,max=1"`
	Parallelism        int           `yaml:"parallelism,omitempty" validate:"min=0"`
	Seed               uint64        `yaml:"seed,omitempty" env:"SEED"`
	PlateauGenerations int           `yaml:"plateauGenerations,omitempty" validate:"min=0"`
	TimeLimit          time.Duration `yaml:"timeLimit,omitempty" validate:"min=0"`
	LogInterval        int           `yaml:"logInterval" validate:"min=0"`
	VarianceThreshold  float64       `yaml:"varianceThreshold" validate:"min=0"`
	MutationBoost      float64       `yaml:"mutationBoost" validate:"min=1"`
	MutationDecay      float64       `yaml:"mutationDecay" validate:"min=0,max=1"`
}

// Weights multiplies each penalty term. Zero disables a term without hiding its violations.
type Weights struct {
	Understaffed   float64 `yaml:"understaffed" validate:"min=0"`
	Overstaffed    float64 `yaml:"overstaffed" validate:"min=0"`
	Overwork       float64 `yaml:"overwork" validate:"min=0"`
	WeeklyOverwork float64 `yaml:"weeklyOverwork" validate:"min=0"`
	Underwork      float64 `yaml:"underwork" validate:"min=0"`
	Unavailable    float64 `yaml:"unavailable" validate:"min=0"`
	MissedDesired  float64 `yaml:"missedDesired" validate:"min=0"`
	Incompatible   float64 `yaml:"incompatible" validate:"min=0"`
	SplitShift     float64 `yaml:"splitShift" validate:"min=0"`
}

// Config represents the application configuration
type Config struct {
	RosterFile      string `yaml:"rosterFile" env:"ROSTER_FILE" validate:"required"`
	DatabaseURL     string `yaml:"databaseURL,omitempty" env:"DATABASE_URL"`
	DatabaseSheetID string `yaml:"databaseSheetID,omitempty" env:"DATABASE_SHEET_ID" validate:"excluded_with=DatabaseURL"`
	ScheduleSheetID string `yaml:"scheduleSheetID,omitempty" env:"SCHEDULE_SHEET_ID"`

	Horizon  Horizon  `yaml:"horizon"`
	Staffing Staffing `yaml:"staffing"`
	Genetic  Genetic  `yaml:"genetic"`
	Weights  Weights  `yaml:"weights"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns the configuration every file is layered on top of
func Default() *Config {
	return &Config{
		RosterFile: "roster.yaml",
		Horizon: Horizon{
			NumDays:   7,
			NumHours:  12,
			StartHour: 9,
		},
		Staffing: Staffing{
			MinStaffPerHour:     1,
			MaxStaffPerHour:     3,
			MaxWorkHoursPerDay:  8,
			MaxWorkHoursPerWeek: 40,
		},
		Genetic: Genetic{
			PopulationSize:    150,
			Generations:       100,
			CrossoverProb:     0.8,
			MutationProb:      0.15,
			Selection:         "tournament",
			TournamentSize:    3,
			Crossover:         "mixed",
			SmartSeedRatio:    0.7,
			SeedRetries:       10,
			RepairProb:        1.0,
			LogInterval:       10,
			VarianceThreshold: 100,
			MutationBoost:     3,
			MutationDecay:     0.5,
		},
		Weights: Weights{
			Understaffed:   2000,
			Overstaffed:    500,
			Overwork:       1000,
			WeeklyOverwork: 1000,
			Underwork:      100,
			Unavailable:    5000,
			MissedDesired:  50,
			Incompatible:   100,
			SplitShift:     300,
		},
	}
}

// Load loads and validates the configuration from shift_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads and validates the configuration with an environment suffix
// For example, env="test" will look for "shift_config.test.yaml"
func LoadWithEnv(envName string) (*Config, error) {
	configPath, err := findConfigFile(envName)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads the configuration from a specific path, applies SHIFT_* environment
// overrides and validates the result. Fields missing from the file keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration struct and the cross-field limits tags cannot express
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Horizon.StartHour+cfg.Horizon.NumHours > 24 {
		return fmt.Errorf("config validation failed: horizon runs past midnight (startHour %d + numHours %d)",
			cfg.Horizon.StartHour, cfg.Horizon.NumHours)
	}

	return nil
}

// findConfigFile returns the config file name for the environment, e.g. "shift_config.test.yaml"
func findConfigFile(envName string) (string, error) {
	configFileName := "shift_config.yaml"
	if envName != "" {
		configFileName = "shift_config." + envName + ".yaml"
	}
	return locate(configFileName)
}

// locate searches for a file in the current directory, then the user's home directory
func locate(fileName string) (string, error) {
	if _, err := os.Stat(fileName); err == nil {
		return fileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, fileName)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", fileName)
}

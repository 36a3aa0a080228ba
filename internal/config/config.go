// Package config handles loading cohort.toml configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/amonks/cohort/internal/paths"
	"github.com/amonks/cohort/schedule"
)

// ProjectFile is the name of the per-directory config file.
const ProjectFile = "cohort.toml"

// Config represents the cohort.toml configuration file.
type Config struct {
	Cohort Cohort `toml:"cohort"`
	Paths  Paths  `toml:"paths"`
	Log    Log    `toml:"log"`
}

// Cohort seeds the schedule of a new ledger.
type Cohort struct {
	// Number identifies the cohort in form titles.
	Number int `toml:"number"`

	// Orientation is the orientation date, dd/mm/yyyy.
	Orientation string `toml:"orientation"`

	// ClassDays lists three weekday names or indices (0 is Monday).
	ClassDays []string `toml:"class-days"`

	Weeks int `toml:"weeks"`
}

// Paths locates cohort's files.
type Paths struct {
	StateDir string `toml:"state-dir"`
	Roster   string `toml:"roster"`
	FormsDir string `toml:"forms-dir"`
}

// Log configures the log file.
type Log struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string `toml:"level"`

	// Format is console or json. Defaults to console.
	Format string `toml:"format"`

	// File defaults to cohort.log in the state directory.
	File string `toml:"file"`
}

// Load loads configuration from dir and the global config file.
// Returns an empty config if no config files exist.
func Load(dir string) (*Config, error) {
	globalPath, err := globalConfigPath()
	if err != nil {
		return nil, err
	}

	globalCfg, globalMeta, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	projectCfg, projectMeta, err := loadConfigFile(filepath.Join(dir, ProjectFile))
	if err != nil {
		return nil, err
	}

	merged := mergeConfigs(globalCfg, projectCfg, globalMeta, projectMeta)
	return merged, nil
}

func globalConfigPath() (string, error) {
	dir, err := paths.DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: unknown key %s", path, undecoded[0])
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, projectCfg *Config, globalMeta, projectMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if projectCfg == nil {
		projectCfg = &Config{}
	}

	merged := Config{}
	merged.Cohort.Number = mergeInt(projectMeta.IsDefined("cohort", "number"), projectCfg.Cohort.Number, globalCfg.Cohort.Number)
	merged.Cohort.Orientation = mergeString(projectMeta.IsDefined("cohort", "orientation"), projectCfg.Cohort.Orientation, globalCfg.Cohort.Orientation)
	merged.Cohort.Weeks = mergeInt(projectMeta.IsDefined("cohort", "weeks"), projectCfg.Cohort.Weeks, globalCfg.Cohort.Weeks)
	if projectMeta.IsDefined("cohort", "class-days") {
		merged.Cohort.ClassDays = append([]string(nil), projectCfg.Cohort.ClassDays...)
	} else if globalMeta.IsDefined("cohort", "class-days") {
		merged.Cohort.ClassDays = append([]string(nil), globalCfg.Cohort.ClassDays...)
	}

	merged.Paths.StateDir = mergeString(projectMeta.IsDefined("paths", "state-dir"), projectCfg.Paths.StateDir, globalCfg.Paths.StateDir)
	merged.Paths.Roster = mergeString(projectMeta.IsDefined("paths", "roster"), projectCfg.Paths.Roster, globalCfg.Paths.Roster)
	merged.Paths.FormsDir = mergeString(projectMeta.IsDefined("paths", "forms-dir"), projectCfg.Paths.FormsDir, globalCfg.Paths.FormsDir)

	merged.Log.Level = mergeString(projectMeta.IsDefined("log", "level"), projectCfg.Log.Level, globalCfg.Log.Level)
	merged.Log.Format = mergeString(projectMeta.IsDefined("log", "format"), projectCfg.Log.Format, globalCfg.Log.Format)
	merged.Log.File = mergeString(projectMeta.IsDefined("log", "file"), projectCfg.Log.File, globalCfg.Log.File)

	return &merged
}

func mergeString(projectDefined bool, projectValue, globalValue string) string {
	value := globalValue
	if projectDefined {
		value = projectValue
	}
	return strings.TrimSpace(value)
}

func mergeInt(projectDefined bool, projectValue, globalValue int) int {
	if projectDefined {
		return projectValue
	}
	return globalValue
}

// Schedule parses the configured orientation date and class days. Unset
// values come back zero.
func (c Cohort) Schedule() (schedule.Date, schedule.ClassDays, error) {
	var orientation schedule.Date
	if c.Orientation != "" {
		parsed, err := schedule.ParseDate(c.Orientation)
		if err != nil {
			return schedule.Date{}, nil, fmt.Errorf("cohort.orientation: %w", err)
		}
		orientation = parsed
	}

	if len(c.ClassDays) == 0 {
		return orientation, nil, nil
	}
	days, err := schedule.ParseClassDays(strings.Join(c.ClassDays, ","))
	if err != nil {
		return schedule.Date{}, nil, fmt.Errorf("cohort.class-days: %w", err)
	}
	return orientation, days, nil
}

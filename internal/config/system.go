package config

import "slices"

// SystemConfig holds the filters for one water system.
type SystemConfig struct {
	// Skip excludes every report of the system.
	Skip bool `yaml:"skip,omitempty"`

	// Years restricts extraction to these report years.
	// Empty means every year.
	Years []int `yaml:"years,omitempty"`
}

// Defaults holds the file-level defaults.
type Defaults struct {
	// Batch overrides the default batch size.
	Batch int `yaml:"batch,omitempty"`

	// OutputDir overrides the default output directory.
	OutputDir string `yaml:"output_dir,omitempty"`

	// MaxFileSize overrides the default maximum document size in bytes.
	MaxFileSize int64 `yaml:"max_file_size,omitempty"`

	// Years restricts every system to these years unless the system lists its own.
	Years []int `yaml:"years,omitempty"`
}

// File represents the structure of the .ccrscan configuration file.
type File struct {
	// Defaults contains options applied when the matching flag is not given.
	Defaults Defaults `yaml:"defaults,omitempty"`

	// Systems maps public water system ids (e.g. "TX1234567") to their filters.
	Systems map[string]SystemConfig `yaml:"systems,omitempty"`
}

// GetSystemConfig returns the filters for a system, merged with the defaults.
func (cf *File) GetSystemConfig(systemID string) SystemConfig {
	result := SystemConfig{Years: cf.Defaults.Years}

	if systemConfig, ok := cf.Systems[systemID]; ok {
		result.Skip = systemConfig.Skip
		if len(systemConfig.Years) > 0 {
			result.Years = systemConfig.Years
		}
	}

	return result
}

// Allows reports whether a document of the system and year should be extracted.
// A nil File allows everything. When years are restricted, documents without
// a year in their name are excluded.
func (cf *File) Allows(systemID string, year *int) bool {
	if cf == nil {
		return true
	}

	sc := cf.GetSystemConfig(systemID)
	if sc.Skip {
		return false
	}
	if len(sc.Years) == 0 {
		return true
	}
	return year != nil && slices.Contains(sc.Years, *year)
}

// Package config handles mattework configuration loading and management.
package config

// Config holds all mattework settings.
type Config struct {
	Scene   SceneConfig   `yaml:"scene"`
	Matte   MatteConfig   `yaml:"matte"`
	Logging LoggingConfig `yaml:"logging"`
}

// SceneConfig locates the scene document.
type SceneConfig struct {
	Path   string `yaml:"path"`   // Scene document path
	Format string `yaml:"format"` // yaml or sqlite; empty picks by extension
}

// MatteConfig holds multimatte generation settings.
type MatteConfig struct {
	Suffix      string `yaml:"suffix"`       // Appended to generated matte names
	IncludeZero bool   `yaml:"include_zero"` // Whether 0 may be allocated as a new ID
	MaxID       int    `yaml:"max_id"`       // Largest ID handed out
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Scene: SceneConfig{
			Path:   "scene.yaml",
			Format: "",
		},
		Matte: MatteConfig{
			Suffix:      "_matte",
			IncludeZero: false,
			MaxID:       65535,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

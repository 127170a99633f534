// config.go: settings struct for qrregister and functions to load and save it.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/qrregister/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

// MainSettings contains application-wide settings.
type MainSettings struct {
	Name    string `yaml:"name" mapstructure:"name"`       // instance name shown in logs
	DataDir string `yaml:"datadir" mapstructure:"datadir"` // base directory for relative store and export paths
}

// StoreSettings configures the record store.
type StoreSettings struct {
	Path          string        `yaml:"path" mapstructure:"path"`                   // SQLite database file, relative to DataDir
	Memory        bool          `yaml:"memory" mapstructure:"memory"`               // use the in-memory store instead of SQLite
	SlowThreshold time.Duration `yaml:"slowthreshold" mapstructure:"slowthreshold"` // statements slower than this are logged at WARN
}

// ExportSettings configures CSV export.
type ExportSettings struct {
	Dir      string `yaml:"dir" mapstructure:"dir"`           // directory CSV files are written to, relative to DataDir
	ShareDir string `yaml:"sharedir" mapstructure:"sharedir"` // when set, exported files are shared by copying here
	Stdout   bool   `yaml:"stdout" mapstructure:"stdout"`     // stream the CSV to stdout when no share target exists
}

// CaptureSettings configures the capture surface.
type CaptureSettings struct {
	Camera   bool          `yaml:"camera" mapstructure:"camera"`     // start the camera decoder on scan
	Command  string        `yaml:"command" mapstructure:"command"`   // decoder program printing one payload per line
	Args     []string      `yaml:"args" mapstructure:"args"`         // decoder arguments
	Cooldown time.Duration `yaml:"cooldown" mapstructure:"cooldown"` // debounce window after an accepted scan
}

// RegistrationSettings configures the registration flow.
type RegistrationSettings struct {
	WarningDuration time.Duration `yaml:"warningduration" mapstructure:"warningduration"` // how long the duplicate warning stays visible
	SuccessDuration time.Duration `yaml:"successduration" mapstructure:"successduration"` // how long the success notice stays visible
	ErrorDuration   time.Duration `yaml:"errorduration" mapstructure:"errorduration"`     // how long failure notices stay visible
}

// MetricsSettings configures the Prometheus text-file dump.
type MetricsSettings struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`   // collect metrics
	TextFile string `yaml:"textfile" mapstructure:"textfile"` // write metrics in text format here on exit
}

// Settings contains all configuration options for qrregister.
type Settings struct {
	Debug bool `yaml:"debug" mapstructure:"debug"` // true to enable debug mode

	Main         MainSettings         `yaml:"main" mapstructure:"main"`
	Logging      logger.LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Store        StoreSettings        `yaml:"store" mapstructure:"store"`
	Export       ExportSettings       `yaml:"export" mapstructure:"export"`
	Capture      CaptureSettings      `yaml:"capture" mapstructure:"capture"`
	Registration RegistrationSettings `yaml:"registration" mapstructure:"registration"`
	Metrics      MetricsSettings      `yaml:"metrics" mapstructure:"metrics"`
}

var (
	settingsMutex sync.Mutex

	// configFileOverride is set from the --config flag before Load
	configFileOverride string
)

// SetConfigFile makes Load read the given file instead of searching the default paths.
func SetConfigFile(path string) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	configFileOverride = path
}

// Load reads the configuration file and environment variables into a new Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	return settings, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	setDefaultConfig()

	if err := configureEnvironmentVariables(); err != nil {
		// Bad environment values are reported but do not stop startup
		GetLogger().Warn("environment configuration issues", logger.Error(err))
	}

	if configFileOverride != "" {
		viper.SetConfigFile(configFileOverride)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("fatal error reading config file %s: %w", configFileOverride, err)
		}
		return nil
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the embedded default config into dir and reads it back.
func createDefaultConfig(dir string) error {
	configPath := filepath.Join(dir, "config.yaml")

	defaultConfig, err := getDefaultConfig()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, defaultConfig, 0o644); err != nil { //nolint:gosec // config is not secret
		return fmt.Errorf("error writing default config file: %w", err)
	}

	GetLogger().Info("created default config file", logger.String("path", configPath))
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() ([]byte, error) {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return nil, fmt.Errorf("error reading embedded config: %w", err)
	}
	return data, nil
}

// ConfigFileUsed returns the config file read by the last Load.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}

// StorePath returns the absolute path of the SQLite database.
func (s *Settings) StorePath() string {
	return resolvePath(s.Main.DataDir, s.Store.Path)
}

// ExportDir returns the directory CSV exports are written to.
func (s *Settings) ExportDir() string {
	return resolvePath(s.Main.DataDir, s.Export.Dir)
}

// SaveYAMLConfig writes settings to configPath. The write goes through a
// temporary file and a rename, so readers never see a partial file.
// Comments and ordering of an existing file are not preserved.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}

	return nil
}

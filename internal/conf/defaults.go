// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "qrregister")
	viper.SetDefault("main.datadir", defaultDataDir())

	viper.SetDefault("logging.default_level", "info")
	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.console.enabled", true)
	viper.SetDefault("logging.console.level", "info")
	viper.SetDefault("logging.file_output.enabled", false)
	viper.SetDefault("logging.file_output.path", "logs/qrregister.log")
	viper.SetDefault("logging.file_output.level", "debug")

	viper.SetDefault("store.path", DefaultStoreFile)
	viper.SetDefault("store.memory", false)
	viper.SetDefault("store.slowthreshold", 200*time.Millisecond)

	viper.SetDefault("export.dir", "exports")
	viper.SetDefault("export.sharedir", "")
	viper.SetDefault("export.stdout", true)

	viper.SetDefault("capture.camera", false)
	viper.SetDefault("capture.command", DefaultDecoderCommand)
	viper.SetDefault("capture.args", []string{"--raw", "--nodisplay"})
	viper.SetDefault("capture.cooldown", 2*time.Second)

	viper.SetDefault("registration.warningduration", 3*time.Second)
	viper.SetDefault("registration.successduration", 2*time.Second)
	viper.SetDefault("registration.errorduration", 5*time.Second)

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.textfile", "")
}

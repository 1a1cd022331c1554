package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Settings is the persisted configuration layer beneath CLI flags: values
// here are defaults a flag can override for a single invocation (mirrors
// the teacher's viper-backed Settings, narrowed to this tool's tunables).
type Settings struct {
	Prefix            string  `json:"prefix" mapstructure:"prefix"`
	Instrument        string  `json:"instrument" mapstructure:"instrument"`
	FallbackTimestamp string  `json:"fallbackTimestamp" mapstructure:"fallback_timestamp"`
	NumListenerTasks  int     `json:"numListenerTasks" mapstructure:"num_listener_tasks"`
	FECVolumes        int     `json:"fecVolumes" mapstructure:"fec_volumes"`
	FECRedundancyPct  float64 `json:"fecRedundancyPct" mapstructure:"fec_redundancy_pct"`
	KeepWavs          bool    `json:"keepWavs" mapstructure:"keep_wavs"`
	SkipCopyback      bool    `json:"skipCopyback" mapstructure:"skip_copyback"`
}

func getConfigPath() (string, error) {
	configDir := filepath.Join(xdg.ConfigHome, "talkytime")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// InitConfig loads config.yaml from customPath, or the XDG default
// location, seeding it with defaults on first run.
func InitConfig(customPath string) error {
	if customPath != "" {
		viper.SetConfigFile(customPath)
	} else {
		configPath, err := getConfigPath()
		if err != nil {
			return err
		}
		viper.SetConfigFile(configPath)
		viper.SetConfigType("yaml")
	}

	viper.SetDefault("prefix", "piano")
	viper.SetDefault("instrument", "")
	viper.SetDefault("fallback_timestamp", "now")
	viper.SetDefault("num_listener_tasks", 6)
	viper.SetDefault("fec_volumes", 2)
	viper.SetDefault("fec_redundancy_pct", 5.0)
	viper.SetDefault("keep_wavs", false)
	viper.SetDefault("skip_copyback", false)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		// The config file is set explicitly above, so a missing one surfaces
		// as a not-exist error; seed it at that same path.
		return viper.SafeWriteConfigAs(viper.ConfigFileUsed())
	}
	return nil
}

func SaveSettings(settings Settings) error {
	viper.Set("prefix", settings.Prefix)
	viper.Set("instrument", settings.Instrument)
	viper.Set("fallback_timestamp", settings.FallbackTimestamp)
	viper.Set("num_listener_tasks", settings.NumListenerTasks)
	viper.Set("fec_volumes", settings.FECVolumes)
	viper.Set("fec_redundancy_pct", settings.FECRedundancyPct)
	viper.Set("keep_wavs", settings.KeepWavs)
	viper.Set("skip_copyback", settings.SkipCopyback)

	configPath, err := getConfigPath()
	if err != nil {
		return err
	}
	viper.SetConfigFile(configPath)
	return viper.WriteConfig()
}

func LoadSettings() (Settings, error) {
	var settings Settings
	if err := viper.Unmarshal(&settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

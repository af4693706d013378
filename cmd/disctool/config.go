package main

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the settings read from disctool.yaml and DISCKIT_* environment variables.
type Config struct {
	SectorSize int  `mapstructure:"sector_size"`
	UseMmap    bool `mapstructure:"use_mmap"`
	// Partition restricts UDF root discovery; negative accepts any partition.
	Partition int  `mapstructure:"partition"`
	Verbose   bool `mapstructure:"verbose"`
	Color     bool `mapstructure:"color"`
}

// LoadConfig reads configuration from path, or from the default search
// locations when path is empty. A missing config file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("disctool")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.disckit")
		v.AddConfigPath("/etc/disckit")
	}

	v.SetDefault("sector_size", 2352)
	v.SetDefault("use_mmap", true)
	v.SetDefault("partition", -1)
	v.SetDefault("verbose", false)
	v.SetDefault("color", true)

	v.SetEnvPrefix("DISCKIT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if c.SectorSize != 2336 && c.SectorSize != 2352 {
		return nil, fmt.Errorf("sector_size must be 2336 or 2352, got %d", c.SectorSize)
	}
	return &c, nil
}

package disk

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// ImageConfig holds configuration for opening NTFS images
type ImageConfig struct {
	AutoDetectPartition bool   `mapstructure:"auto_detect_partition"`
	PartitionOffset     uint64 `mapstructure:"partition_offset"`
	UseMmap             bool   `mapstructure:"use_mmap"`
	RecordCacheSize     int    `mapstructure:"record_cache_size"`
	ScanWorkers         int    `mapstructure:"scan_workers"`
	SectorSize          int    `mapstructure:"sector_size"`
}

// DefaultImageConfig returns the built-in defaults
func DefaultImageConfig() *ImageConfig {
	return &ImageConfig{
		AutoDetectPartition: true,
		PartitionOffset:     0,
		UseMmap:             false,
		RecordCacheSize:     4096,
		ScanWorkers:         8,
		SectorSize:          512,
	}
}

// LoadImageConfig loads image configuration using Viper. Extra search paths are
// consulted before the standard locations.
func LoadImageConfig(paths ...string) (*ImageConfig, error) {
	v := viper.New()
	v.SetConfigName("ntfs-config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.ntfs")
	v.AddConfigPath("/etc/ntfs")

	defaults := DefaultImageConfig()
	v.SetDefault("auto_detect_partition", defaults.AutoDetectPartition)
	v.SetDefault("partition_offset", defaults.PartitionOffset)
	v.SetDefault("use_mmap", defaults.UseMmap)
	v.SetDefault("record_cache_size", defaults.RecordCacheSize)
	v.SetDefault("scan_workers", defaults.ScanWorkers)
	v.SetDefault("sector_size", defaults.SectorSize)

	// NTFS_USE_MMAP=true and friends
	v.SetEnvPrefix("NTFS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config ImageConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects settings the decoder cannot honour
func (c *ImageConfig) Validate() error {
	if c.SectorSize != 512 {
		return fmt.Errorf("sector_size %d is not supported, only 512", c.SectorSize)
	}
	if c.RecordCacheSize < 0 {
		return fmt.Errorf("record_cache_size must not be negative, got %d", c.RecordCacheSize)
	}
	if c.ScanWorkers < 1 {
		return fmt.Errorf("scan_workers must be at least 1, got %d", c.ScanWorkers)
	}
	return nil
}

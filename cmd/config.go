package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-ntfs/internal/disk"
	"github.com/deploymenttheory/go-ntfs/pkg/app"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective image configuration",
	Long: `Print the configuration used to open images after merging defaults,
ntfs-config.yaml and NTFS_* environment variables.

Examples:
  go-ntfs config
  NTFS_SCAN_WORKERS=16 go-ntfs config -o yaml`,

	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		c := ctx.Config
		return writeFields(cmd.OutOrStdout(), ctx.OutputFormat, fields{
			{"auto_detect_partition", c.AutoDetectPartition},
			{"partition_offset", c.PartitionOffset},
			{"use_mmap", c.UseMmap},
			{"record_cache_size", c.RecordCacheSize},
			{"scan_workers", c.ScanWorkers},
			{"sector_size", c.SectorSize},
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// newAppContext builds the application context from the global flags and the
// loaded image configuration
func newAppContext(cmd *cobra.Command) (*app.Context, error) {
	ctx := app.NewContext()
	ctx.Context = cmd.Context()
	ctx.OutputFormat = GetOutputFormat()
	ctx.Verbose = GetVerbose()
	ctx.Quiet = GetQuiet()
	ctx.DefaultTimeout = openTimeout

	if err := ctx.ConfigureLogger(); err != nil {
		return nil, fmt.Errorf("failed to configure logger: %w", err)
	}

	var paths []string
	if configDir != "" {
		paths = append(paths, configDir)
	}
	config, err := disk.LoadImageConfig(paths...)
	if err != nil {
		return nil, app.NewError(app.ErrCodeInvalidInput, "failed to load configuration", err)
	}
	ctx.Config = config

	return ctx, nil
}

// imageTarget builds the image target for path from the global flags
func imageTarget(path string) app.ImageTarget {
	return app.ImageTarget{
		Path:            path,
		PartitionOffset: partitionOffset,
		UseMmap:         useMmap,
	}
}

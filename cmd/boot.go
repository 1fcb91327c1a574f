package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/deploymenttheory/go-ntfs/internal/types"
	"github.com/deploymenttheory/go-ntfs/pkg/app"
)

var bootCmd = &cobra.Command{
	Use:   "boot [image-path]",
	Short: "Show the decoded partition boot sector",
	Long: `Decode the NTFS partition boot sector and print the volume geometry.

Examples:
  # Raw volume image
  go-ntfs boot volume.raw

  # Whole-disk image with an explicit partition offset
  go-ntfs boot disk.img --offset 1048576 -o json`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBoot(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(bootCmd)
}

func runBoot(cmd *cobra.Command, imagePath string) error {
	ctx, err := newAppContext(cmd)
	if err != nil {
		return err
	}

	vol, err := app.OpenVolume(ctx, imageTarget(imagePath))
	if err != nil {
		ctx.Error("failed to open volume", zap.String("image", imagePath), zap.Error(err))
		return err
	}
	defer vol.Close()

	offset, method := vol.Image.PartitionOffset()
	boot := vol.BootSector()
	g := boot.Geometry()

	out := fields{
		{"partition_offset", offset},
		{"detected_by", method},
		{"oem_id", boot.OEMID()},
		{"bytes_per_sector", g.BytesPerSector},
		{"sectors_per_cluster", g.SectorsPerCluster},
		{"cluster_size", g.ClusterSize()},
		{"media_descriptor", fmt.Sprintf("0x%02X", g.MediaDescriptor)},
		{"sectors_per_track", g.SectorsPerTrack},
		{"number_of_heads", g.NumberOfHeads},
		{"hidden_sectors", g.HiddenSectors},
		{"total_sectors", g.TotalSectors},
		{"volume_size", g.VolumeSize()},
		{"mft_cluster", g.MftClusterNumber},
		{"mft_mirror_cluster", g.MftMirrorClusterNumber},
		{"file_record_size", sizeUnit(g.FileRecordSegmentSize, g.FileRecordSize())},
		{"index_buffer_size", sizeUnit(g.IndexBufferSize, g.IndexBufferBytes())},
		{"volume_serial", fmt.Sprintf("%016X", g.VolumeSerialNumber)},
		{"mft_records", vol.Index().RecordCount()},
	}

	if info, err := vol.Info(ctx); err == nil {
		out = append(out,
			field{"label", info.Label},
			field{"version", fmt.Sprintf("%d.%d", info.MajorVersion, info.MinorVersion)},
			field{"dirty", info.Dirty})
	} else {
		ctx.Log("volume information unavailable")
	}

	return writeFields(cmd.OutOrStdout(), ctx.OutputFormat, out)
}

func sizeUnit(s types.SizeUnit, resolved uint32) string {
	if s.IsBytes() {
		return fmt.Sprintf("%d bytes", resolved)
	}
	return fmt.Sprintf("%d bytes (%d clusters)", resolved, s.Value)
}

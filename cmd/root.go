package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
)

var (
	// Global output flags
	verbose      bool
	quiet        bool
	outputFormat string

	// Image selection flags shared by every command
	configDir       string
	partitionOffset uint64
	useMmap         bool
	openTimeout     time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "go-ntfs",
	Short: "Read-only NTFS boot sector and MFT explorer",
	Long: `go-ntfs is a cross-platform, read-only command-line tool for inspecting
NTFS volumes inside raw disk images, partitions, or block devices.

It decodes the partition boot sector and the Master File Table directly,
without mounting the volume or relying on Windows. Useful for forensic
triage, data recovery, and image verification.

Commands:
  boot        Show the decoded partition boot sector
  record      Decode a single MFT File Record
  list        Enumerate files by name, extension, size, or date
  extract     Copy a file's data stream out of the image
  config      Show the effective image configuration`,
	Version:       "0.1.0-dev",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output except errors")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, json, yaml)")

	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "directory searched first for ntfs-config.yaml")
	rootCmd.PersistentFlags().Uint64Var(&partitionOffset, "offset", 0, "byte offset of the NTFS partition (disables auto-detection)")
	rootCmd.PersistentFlags().BoolVar(&useMmap, "mmap", false, "memory-map the image instead of positioned reads")
	rootCmd.PersistentFlags().DurationVar(&openTimeout, "timeout", 30*time.Second, "time allowed to open a volume (0 disables)")

	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}

// GetQuiet returns the quiet flag value
func GetQuiet() bool {
	return quiet
}

// GetOutputFormat returns the output format
func GetOutputFormat() string {
	return outputFormat
}

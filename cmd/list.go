package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-ntfs/pkg/app/enumerate"
)

var (
	// File matching criteria
	namePattern   string
	nameRegex     string
	extensions    []string
	caseSensitive bool

	// Size criteria
	minSize string
	maxSize string

	// Date criteria
	modifiedAfter  string
	modifiedBefore string

	// Record selection
	includeDeleted bool
	includeSystem  bool
	maxResults     int
)

var listCmd = &cobra.Command{
	Use:     "list [image-path]",
	Aliases: []string{"discover"},
	Short:   "Enumerate files by name, extension, size, or date",
	Long: `Scan every record of the Master File Table and list the files that match.

Examples:
  # Every PDF on the volume
  go-ntfs list volume.raw --ext pdf

  # Deleted files with "invoice" in the name
  go-ntfs list disk.img --name "*invoice*" --deleted

  # Large files modified during 2024, as JSON
  go-ntfs list disk.img --min-size 100MB --after 2024-01-01 --before 2025-01-01 -o json`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	// File matching
	listCmd.Flags().StringVarP(&namePattern, "name", "n", "", "filename pattern (wildcards: *, ?)")
	listCmd.Flags().StringVar(&nameRegex, "regex", "", "filename regex pattern")
	listCmd.Flags().StringSliceVar(&extensions, "ext", nil, "file extensions (pdf,jpg,txt)")
	listCmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "case-sensitive matching")

	// Size filtering
	listCmd.Flags().StringVar(&minSize, "min-size", "", "minimum file size (10MB, 1GB)")
	listCmd.Flags().StringVar(&maxSize, "max-size", "", "maximum file size (100MB, 2GB)")

	// Date filtering
	listCmd.Flags().StringVar(&modifiedAfter, "after", "", "modified after (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&modifiedBefore, "before", "", "modified before (YYYY-MM-DD)")

	// Record selection
	listCmd.Flags().BoolVar(&includeDeleted, "deleted", false, "include records that are no longer in use")
	listCmd.Flags().BoolVar(&includeSystem, "system", false, "include NTFS metadata files")
	listCmd.Flags().IntVar(&maxResults, "limit", enumerate.DefaultMaxResults, "maximum results")

	listCmd.MarkFlagsMutuallyExclusive("name", "regex")
}

func runList(cmd *cobra.Command, imagePath string) error {
	ctx, err := newAppContext(cmd)
	if err != nil {
		return err
	}

	request := &enumerate.Request{
		Target:         imageTarget(imagePath),
		NamePattern:    namePattern,
		NameRegex:      nameRegex,
		Extensions:     extensions,
		CaseSensitive:  caseSensitive,
		MinSize:        minSize,
		MaxSize:        maxSize,
		ModifiedAfter:  modifiedAfter,
		ModifiedBefore: modifiedBefore,
		IncludeDeleted: includeDeleted,
		IncludeSystem:  includeSystem,
		MaxResults:     maxResults,
	}

	response, err := enumerate.Handle(ctx, request)
	if err != nil {
		return err
	}

	ctx.Log(enumerate.FormatSummary(response))
	return enumerate.FormatOutput(cmd.OutOrStdout(), response, ctx.OutputFormat)
}

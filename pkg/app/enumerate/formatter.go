package enumerate

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// FormatOutput writes enumeration results to w in the requested format
func FormatOutput(w io.Writer, response *Response, format string) error {
	switch format {
	case "json":
		return formatJSON(w, response)
	case "yaml":
		return formatYAML(w, response)
	case "table":
		return formatTable(w, response)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// formatTable formats results as a table ordered by record number
func formatTable(out io.Writer, response *Response) error {
	if len(response.Files) == 0 {
		_, err := fmt.Fprintln(out, "No files found matching the search criteria.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "RECORD\tPATH\tSIZE\tMODIFIED\tTYPE\n")
	fmt.Fprintf(w, "------\t----\t----\t--------\t----\n")

	for _, file := range response.Files {
		path := file.Path
		if file.Deleted {
			path += " (deleted)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			file.Record, path, file.FormatSize(), file.Modified.Format("2006-01-02 15:04"), file.Type)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	if response.VolumeInfo.Label != "" {
		fmt.Fprintf(out, "Volume: %s (serial %s)\n", response.VolumeInfo.Label, response.VolumeInfo.Serial)
	}
	fmt.Fprintf(out, "Found %d files", response.TotalFound)
	if response.Truncated {
		fmt.Fprintf(out, " (showing first %d)", len(response.Files))
	}
	if skipped := response.Scan.Skipped(); skipped > 0 {
		fmt.Fprintf(out, ", %d records skipped", skipped)
	}
	_, err := fmt.Fprintf(out, " in %v\n", response.SearchTime)
	return err
}

// formatJSON formats results as JSON
func formatJSON(w io.Writer, response *Response) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// formatYAML formats results as YAML
func formatYAML(w io.Writer, response *Response) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(response)
}

// FormatSummary provides a brief summary for verbose output
func FormatSummary(response *Response) string {
	if response.TotalFound == 0 {
		return "No files found"
	}

	summary := fmt.Sprintf("Found %d file", response.TotalFound)
	if response.TotalFound != 1 {
		summary += "s"
	}
	if response.Truncated {
		summary += fmt.Sprintf(" (showing %d)", len(response.Files))
	}

	var totalSize int64
	for _, file := range response.Files {
		totalSize += file.Size
	}

	summary += fmt.Sprintf(" totaling %s", formatBytes(totalSize))
	summary += fmt.Sprintf(" in %v", response.SearchTime)

	return summary
}

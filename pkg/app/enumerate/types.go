package enumerate

import (
	"fmt"
	"time"

	"github.com/deploymenttheory/go-ntfs/internal/services"
	"github.com/deploymenttheory/go-ntfs/pkg/app"
)

// Request represents a file enumeration request
type Request struct {
	Target app.ImageTarget

	// Search criteria
	NamePattern    string
	NameRegex      string
	Extensions     []string
	CaseSensitive  bool
	MinSize        string
	MaxSize        string
	ModifiedAfter  string
	ModifiedBefore string
	IncludeDeleted bool
	IncludeSystem  bool
	MaxResults     int
}

// Response represents enumeration results
type Response struct {
	Files       []FileResult         `json:"files" yaml:"files"`
	TotalFound  int                  `json:"total_found" yaml:"total_found"`
	SearchTime  time.Duration        `json:"search_time" yaml:"search_time"`
	VolumeInfo  VolumeInfo           `json:"volume_info" yaml:"volume_info"`
	Scan        services.ScanSummary `json:"scan" yaml:"scan"`
	Truncated   bool                 `json:"truncated" yaml:"truncated"`
	SearchQuery SearchQuery          `json:"search_query" yaml:"search_query"`
}

// FileResult represents one File Record that matched the criteria
type FileResult struct {
	Record     uint64    `json:"record" yaml:"record"`
	Sequence   uint16    `json:"sequence" yaml:"sequence"`
	Path       string    `json:"path" yaml:"path"`
	Name       string    `json:"name" yaml:"name"`
	Size       int64     `json:"size" yaml:"size"`
	Modified   time.Time `json:"modified" yaml:"modified"`
	Created    time.Time `json:"created" yaml:"created"`
	Type       string    `json:"type" yaml:"type"`
	Deleted    bool      `json:"deleted" yaml:"deleted"`
	Extension  string    `json:"extension,omitempty" yaml:"extension,omitempty"`
	Streams    []string  `json:"streams,omitempty" yaml:"streams,omitempty"`
	Compressed bool      `json:"compressed" yaml:"compressed"`
	Encrypted  bool      `json:"encrypted" yaml:"encrypted"`
	Sparse     bool      `json:"sparse" yaml:"sparse"`
}

// VolumeInfo represents information about the enumerated volume
type VolumeInfo struct {
	Label           string `json:"label" yaml:"label"`
	Serial          string `json:"serial" yaml:"serial"`
	Version         string `json:"version" yaml:"version"`
	Dirty           bool   `json:"dirty" yaml:"dirty"`
	ClusterSize     uint32 `json:"cluster_size" yaml:"cluster_size"`
	RecordSize      uint32 `json:"record_size" yaml:"record_size"`
	RecordCount     uint64 `json:"record_count" yaml:"record_count"`
	PartitionOffset uint64 `json:"partition_offset" yaml:"partition_offset"`
}

// SearchQuery represents the executed search parameters
type SearchQuery struct {
	NamePattern    string   `json:"name_pattern,omitempty" yaml:"name_pattern,omitempty"`
	NameRegex      string   `json:"name_regex,omitempty" yaml:"name_regex,omitempty"`
	Extensions     []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	CaseSensitive  bool     `json:"case_sensitive" yaml:"case_sensitive"`
	MinSize        string   `json:"min_size,omitempty" yaml:"min_size,omitempty"`
	MaxSize        string   `json:"max_size,omitempty" yaml:"max_size,omitempty"`
	ModifiedAfter  string   `json:"modified_after,omitempty" yaml:"modified_after,omitempty"`
	ModifiedBefore string   `json:"modified_before,omitempty" yaml:"modified_before,omitempty"`
	IncludeDeleted bool     `json:"include_deleted" yaml:"include_deleted"`
	IncludeSystem  bool     `json:"include_system" yaml:"include_system"`
	MaxResults     int      `json:"max_results" yaml:"max_results"`
}

// FormatSize returns a human-readable size string
func (f *FileResult) FormatSize() string {
	return formatBytes(f.Size)
}

// formatBytes formats byte count as human readable
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

package enumerate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/deploymenttheory/go-ntfs/pkg/app"
)

// DefaultMaxResults is used by callers that do not set a limit
const DefaultMaxResults = 1000

const dateLayout = "2006-01-02"

// Validate validates an enumeration request
func (r *Request) Validate() error {
	if err := r.Target.Validate(); err != nil {
		return app.NewError(app.ErrCodeInvalidInput, "invalid image target", err)
	}

	if r.NameRegex != "" {
		if _, err := regexp.Compile(r.NameRegex); err != nil {
			return app.NewError(app.ErrCodeInvalidInput, "invalid regex pattern", err)
		}
	}

	if r.MinSize != "" {
		if _, err := ParseSize(r.MinSize); err != nil {
			return app.NewError(app.ErrCodeInvalidInput, "invalid min-size format", err)
		}
	}
	if r.MaxSize != "" {
		if _, err := ParseSize(r.MaxSize); err != nil {
			return app.NewError(app.ErrCodeInvalidInput, "invalid max-size format", err)
		}
	}

	if r.ModifiedAfter != "" {
		if _, err := time.Parse(dateLayout, r.ModifiedAfter); err != nil {
			return app.NewError(app.ErrCodeInvalidInput, "invalid date format for modified-after, use YYYY-MM-DD", err)
		}
	}
	if r.ModifiedBefore != "" {
		if _, err := time.Parse(dateLayout, r.ModifiedBefore); err != nil {
			return app.NewError(app.ErrCodeInvalidInput, "invalid date format for modified-before, use YYYY-MM-DD", err)
		}
	}

	if r.MaxResults < 1 || r.MaxResults > 100000 {
		return app.NewError(app.ErrCodeInvalidInput, "max results must be between 1 and 100000", nil)
	}

	if r.NamePattern != "" && r.NameRegex != "" {
		return app.NewError(app.ErrCodeInvalidInput, "cannot specify both name pattern and regex", nil)
	}

	return nil
}

var sizeMultipliers = map[string]int64{
	"B":  1,
	"KB": 1024,
	"MB": 1024 * 1024,
	"GB": 1024 * 1024 * 1024,
	"TB": 1024 * 1024 * 1024 * 1024,
}

// ParseSize converts size strings like "10MB" or " 1.5 kb " to bytes
func ParseSize(size string) (int64, error) {
	size = strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(size)), " ", "")
	if size == "" {
		return 0, fmt.Errorf("empty size")
	}

	split := strings.IndexFunc(size, func(c rune) bool {
		return (c < '0' || c > '9') && c != '.'
	})
	if split == 0 {
		return 0, fmt.Errorf("no numeric value found")
	}
	numPart, unit := size, "B"
	if split > 0 {
		numPart, unit = size[:split], size[split:]
	}

	value, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value: %s", numPart)
	}

	multiplier, ok := sizeMultipliers[unit]
	if !ok {
		return 0, fmt.Errorf("invalid size unit: %s (valid: B, KB, MB, GB, TB)", unit)
	}

	return int64(value * float64(multiplier)), nil
}

package enumerate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	filerecord "github.com/deploymenttheory/go-ntfs/internal/parsers/file_record"
	"github.com/deploymenttheory/go-ntfs/internal/services"
	"github.com/deploymenttheory/go-ntfs/internal/types"
	"github.com/deploymenttheory/go-ntfs/pkg/app"
)

// Handle processes an enumeration request
func Handle(ctx *app.Context, req *Request) (*Response, error) {
	startTime := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx.Log("starting enumeration", zap.String("image", req.Target.String()))
	ctx.Progress("Opening image...", 5)

	vol, err := app.OpenVolume(ctx, req.Target)
	if err != nil {
		return nil, err
	}
	defer vol.Close()

	response, err := HandleVolume(ctx, vol.Volume, req)
	if err != nil {
		return nil, err
	}

	response.VolumeInfo.PartitionOffset, _ = vol.Image.PartitionOffset()
	response.SearchTime = time.Since(startTime)

	ctx.Progress("Complete", 100)
	ctx.Log("enumeration completed",
		zap.Int("found", response.TotalFound),
		zap.Duration("elapsed", response.SearchTime))

	return response, nil
}

// HandleVolume runs the enumeration against an already opened volume
func HandleVolume(ctx *app.Context, vol *services.Volume, req *Request) (*Response, error) {
	startTime := time.Now()

	f, err := newFilter(req)
	if err != nil {
		return nil, app.NewError(app.ErrCodeInvalidInput, "invalid search criteria", err)
	}
	logSearchCriteria(ctx, req)

	ctx.Progress("Scanning MFT...", 25)

	var (
		mu    sync.Mutex
		files []FileResult
	)

	resolver := vol.Resolver()
	summary, err := vol.Scanner().Scan(ctx, services.ScanOptions{IncludeUnused: req.IncludeDeleted},
		func(ctx context.Context, n uint64, rec *filerecord.Record) error {
			if !req.IncludeSystem && n < types.FirstUserRecord {
				return nil
			}
			if !rec.IsBase() {
				return nil
			}

			result, ok := describe(n, rec)
			if !ok || !f.match(&result) {
				return nil
			}

			path, err := resolver.PathOf(ctx, n, rec)
			if err != nil {
				return err
			}
			result.Path = path

			mu.Lock()
			files = append(files, result)
			mu.Unlock()
			return nil
		})
	if err != nil {
		return nil, app.ClassifyError("failed to scan MFT", err)
	}

	ctx.Progress("Processing results...", 90)

	sort.Slice(files, func(i, j int) bool {
		return files[i].Record < files[j].Record
	})

	response := &Response{
		Files:       files,
		TotalFound:  len(files),
		VolumeInfo:  volumeInfo(ctx, vol),
		Scan:        summary,
		SearchQuery: createSearchQuery(req),
	}
	if len(response.Files) > req.MaxResults {
		response.Files = response.Files[:req.MaxResults]
		response.Truncated = true
	}
	response.SearchTime = time.Since(startTime)

	return response, nil
}

// describe builds the result for a record, reporting false when it carries no name
func describe(n uint64, rec *filerecord.Record) (FileResult, bool) {
	result := FileResult{
		Record:   n,
		Sequence: rec.Header().SequenceNumber,
		Type:     "file",
		Deleted:  !rec.IsInUse(),
	}

	fn, hasName := rec.FileName()
	switch {
	case hasName:
		result.Name = fn.Name
		result.Size = int64(fn.RealSize)
		result.Created = fn.Times.Created
		result.Modified = fn.Times.Modified
	default:
		name, ok := types.SystemFileName(n)
		if !ok {
			return FileResult{}, false
		}
		result.Name = name
	}

	if rec.IsDirectory() {
		result.Type = "directory"
		result.Size = 0
	} else {
		result.Extension = strings.TrimPrefix(strings.ToLower(filepath.Ext(result.Name)), ".")
	}

	if si, err := rec.StandardInformation(); err == nil {
		result.Created = si.Times.Created
		result.Modified = si.Times.Modified
		result.Compressed = si.FileAttributes.Has(types.FileAttributeCompressed)
		result.Encrypted = si.FileAttributes.Has(types.FileAttributeEncrypted)
		result.Sparse = si.FileAttributes.Has(types.FileAttributeSparseFile)
	}

	for _, attr := range rec.FindAll(types.AttributeData) {
		h := attr.Header()
		if h.Name != "" {
			result.Streams = append(result.Streams, h.Name)
			continue
		}

		result.Compressed = result.Compressed || h.Flags.IsCompressed()
		result.Encrypted = result.Encrypted || h.Flags.IsEncrypted()
		result.Sparse = result.Sparse || h.Flags.IsSparse()
		switch a := attr.(type) {
		case *types.ResidentAttribute:
			result.Size = int64(len(a.Data))
		case *types.NonResidentAttribute:
			result.Size = int64(a.RealSize)
		}
	}

	return result, true
}

// volumeInfo gathers the volume summary, tolerating a damaged $Volume record
func volumeInfo(ctx *app.Context, vol *services.Volume) VolumeInfo {
	g := vol.Geometry()
	info := VolumeInfo{
		Serial:      fmt.Sprintf("%016X", g.VolumeSerialNumber),
		ClusterSize: g.ClusterSize(),
		RecordSize:  g.FileRecordSize(),
		RecordCount: vol.Index().RecordCount(),
	}

	vi, err := vol.Info(ctx)
	if err != nil {
		ctx.Log("volume information unavailable", zap.Error(err))
		return info
	}
	info.Label = vi.Label
	info.Version = fmt.Sprintf("%d.%d", vi.MajorVersion, vi.MinorVersion)
	info.Dirty = vi.Dirty
	return info
}

// filter holds the compiled search criteria
type filter struct {
	caseSensitive  bool
	pattern        string
	regex          *regexp.Regexp
	extensions     map[string]bool
	minSize        int64
	maxSize        int64
	modifiedAfter  time.Time
	modifiedBefore time.Time
}

func newFilter(req *Request) (*filter, error) {
	f := &filter{
		caseSensitive: req.CaseSensitive,
		pattern:       req.NamePattern,
		maxSize:       -1,
	}
	if !f.caseSensitive {
		f.pattern = strings.ToLower(f.pattern)
	}

	var errs []error
	if req.NameRegex != "" {
		expr := req.NameRegex
		if !req.CaseSensitive {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		errs = append(errs, err)
		f.regex = re
	}

	if len(req.Extensions) > 0 {
		f.extensions = make(map[string]bool, len(req.Extensions))
		for _, ext := range req.Extensions {
			f.extensions[strings.TrimPrefix(strings.ToLower(ext), ".")] = true
		}
	}

	var err error
	if req.MinSize != "" {
		f.minSize, err = ParseSize(req.MinSize)
		errs = append(errs, err)
	}
	if req.MaxSize != "" {
		f.maxSize, err = ParseSize(req.MaxSize)
		errs = append(errs, err)
	}
	if req.ModifiedAfter != "" {
		f.modifiedAfter, err = time.Parse(dateLayout, req.ModifiedAfter)
		errs = append(errs, err)
	}
	if req.ModifiedBefore != "" {
		f.modifiedBefore, err = time.Parse(dateLayout, req.ModifiedBefore)
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *filter) match(r *FileResult) bool {
	name := r.Name
	if !f.caseSensitive {
		name = strings.ToLower(name)
	}

	if f.pattern != "" {
		if ok, _ := filepath.Match(f.pattern, name); !ok {
			return false
		}
	}
	if f.regex != nil && !f.regex.MatchString(r.Name) {
		return false
	}
	if f.extensions != nil && !f.extensions[r.Extension] {
		return false
	}
	if r.Size < f.minSize || (f.maxSize >= 0 && r.Size > f.maxSize) {
		return false
	}
	if !f.modifiedAfter.IsZero() && r.Modified.Before(f.modifiedAfter) {
		return false
	}
	if !f.modifiedBefore.IsZero() && !r.Modified.Before(f.modifiedBefore) {
		return false
	}
	return true
}

// logSearchCriteria logs the search criteria for verbose output
func logSearchCriteria(ctx *app.Context, req *Request) {
	if !ctx.Verbose {
		return
	}

	ctx.Log("search criteria",
		zap.String("name_pattern", req.NamePattern),
		zap.String("name_regex", req.NameRegex),
		zap.Strings("extensions", req.Extensions),
		zap.String("min_size", req.MinSize),
		zap.String("max_size", req.MaxSize),
		zap.Bool("include_deleted", req.IncludeDeleted),
		zap.Bool("include_system", req.IncludeSystem))
}

// createSearchQuery creates a SearchQuery from the request
func createSearchQuery(req *Request) SearchQuery {
	return SearchQuery{
		NamePattern:    req.NamePattern,
		NameRegex:      req.NameRegex,
		Extensions:     req.Extensions,
		CaseSensitive:  req.CaseSensitive,
		MinSize:        req.MinSize,
		MaxSize:        req.MaxSize,
		ModifiedAfter:  req.ModifiedAfter,
		ModifiedBefore: req.ModifiedBefore,
		IncludeDeleted: req.IncludeDeleted,
		IncludeSystem:  req.IncludeSystem,
		MaxResults:     req.MaxResults,
	}
}

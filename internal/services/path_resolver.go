package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	filerecord "github.com/deploymenttheory/go-ntfs/internal/parsers/file_record"
	"github.com/deploymenttheory/go-ntfs/internal/types"
)

// OrphanPrefix roots paths whose parent chain is broken by a stale reference,
// an unreadable parent or a cycle
const OrphanPrefix = "$Orphan"

// maxPathDepth bounds the parent walk
const maxPathDepth = 1024

// PathResolver builds full paths by following $FILE_NAME parent references to
// the root directory
type PathResolver struct {
	index  *MftIndex
	logger *zap.Logger

	// Directory paths keyed by the reference that named them.
	dirs sync.Map
}

// NewPathResolver creates a resolver over index
func NewPathResolver(index *MftIndex, logger *zap.Logger) *PathResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PathResolver{index: index, logger: logger}
}

// Path returns the full path of record n using its preferred name
func (r *PathResolver) Path(ctx context.Context, n uint64) (string, error) {
	if n == types.RecordRoot {
		return "/", nil
	}

	rec, err := r.index.Record(ctx, n)
	if err != nil {
		return "", err
	}
	return r.PathOf(ctx, n, rec)
}

// PathOf returns the full path of an already decoded record n
func (r *PathResolver) PathOf(ctx context.Context, n uint64, rec *filerecord.Record) (string, error) {
	if n == types.RecordRoot {
		return "/", nil
	}

	name, ok := rec.FileName()
	if !ok {
		return "", fmt.Errorf("record %d has no $FILE_NAME: %w", n, types.ErrAttributeNotFound)
	}

	parent, err := r.directoryPath(ctx, name.ParentDirectory, map[uint64]bool{n: true}, 0)
	if err != nil {
		return "", err
	}
	return joinPath(parent, name.Name), nil
}

// directoryPath resolves the directory named by ref, caching the result
func (r *PathResolver) directoryPath(ctx context.Context, ref types.FileReference, seen map[uint64]bool, depth int) (string, error) {
	entry := ref.Entry()
	if entry == types.RecordRoot {
		return "/", nil
	}
	if cached, ok := r.dirs.Load(ref); ok {
		return cached.(string), nil
	}
	if seen[entry] || depth >= maxPathDepth {
		r.logger.Debug("parent chain loops", zap.Uint64("record", entry))
		return OrphanPrefix, nil
	}
	seen[entry] = true

	rec, err := r.index.Record(ctx, entry)
	if err != nil {
		if types.IsSkippable(err) || errors.Is(err, types.ErrOutOfRange) {
			r.logger.Debug("parent unreadable", zap.Uint64("record", entry), zap.Error(err))
			return OrphanPrefix, nil
		}
		return "", err
	}

	if !rec.IsInUse() || ref.Stale(rec.Header().SequenceNumber) {
		r.logger.Debug("stale parent reference",
			zap.Stringer("reference", ref),
			zap.Uint16("sequence", rec.Header().SequenceNumber))
		return OrphanPrefix, nil
	}

	name, ok := rec.FileName()
	if !ok {
		return OrphanPrefix, nil
	}

	parent, err := r.directoryPath(ctx, name.ParentDirectory, seen, depth+1)
	if err != nil {
		return "", err
	}

	path := joinPath(parent, name.Name)
	r.dirs.Store(ref, path)
	return path, nil
}

func joinPath(dir, name string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}

package disk

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/deploymenttheory/go-ntfs/internal/interfaces"
)

// Image is an opened NTFS image or device, positioned at the start of the volume
type Image struct {
	source interfaces.SizedByteSource
	closer io.Closer
	volume *OffsetSource
	method string
	stats  ImageStats
	mu     sync.Mutex
}

// ImageStats tracks image access statistics
type ImageStats struct {
	Reads     int64
	BytesRead int64
	Errors    int64
}

// OpenImage opens path according to config and locates the NTFS volume inside it
func OpenImage(path string, config *ImageConfig, logger *zap.Logger) (*Image, error) {
	if config == nil {
		config = DefaultImageConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		source interfaces.SizedByteSource
		closer io.Closer
	)
	if config.UseMmap {
		m, err := OpenMmap(path)
		if err != nil {
			return nil, err
		}
		source, closer = m, m
	} else {
		f, err := OpenFile(path)
		if err != nil {
			return nil, err
		}
		source, closer = f, f
	}

	offset, method := config.PartitionOffset, MethodConfigured
	if config.AutoDetectPartition && config.PartitionOffset == 0 {
		detected, how, err := DetectPartition(source)
		if err != nil {
			logger.Debug("partition detection failed, using offset 0", zap.Error(err))
		} else {
			offset, method = detected, how
		}
	}

	if offset >= source.Size() {
		closer.Close()
		return nil, fmt.Errorf("partition offset %d is past the end of the %d-byte image", offset, source.Size())
	}

	logger.Debug("opened image",
		zap.String("path", path),
		zap.Bool("mmap", config.UseMmap),
		zap.Uint64("size", source.Size()),
		zap.Uint64("partition_offset", offset),
		zap.String("method", method))

	return &Image{
		source: source,
		closer: closer,
		volume: NewOffsetSource(source, offset, source.Size()-offset),
		method: method,
	}, nil
}

// ReadAt reads length bytes at the volume-relative offset
func (img *Image) ReadAt(offset uint64, length uint32) ([]byte, error) {
	data, err := img.volume.ReadAt(offset, length)

	img.mu.Lock()
	img.stats.Reads++
	if err != nil {
		img.stats.Errors++
	} else {
		img.stats.BytesRead += int64(len(data))
	}
	img.mu.Unlock()

	return data, err
}

// Size returns the volume size in bytes
func (img *Image) Size() uint64 {
	return img.volume.Size()
}

// PartitionOffset returns where the volume starts and how that was determined
func (img *Image) PartitionOffset() (uint64, string) {
	return img.volume.Offset(), img.method
}

// Stats returns a snapshot of the access statistics
func (img *Image) Stats() ImageStats {
	img.mu.Lock()
	defer img.mu.Unlock()
	return img.stats
}

// Close releases the underlying file or mapping
func (img *Image) Close() error {
	if img.closer != nil {
		return img.closer.Close()
	}
	return nil
}

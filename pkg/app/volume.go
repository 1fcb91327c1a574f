package app

import (
	"errors"

	"go.uber.org/zap"

	"github.com/deploymenttheory/go-ntfs/internal/disk"
	"github.com/deploymenttheory/go-ntfs/internal/services"
)

// OpenedVolume is a decoded volume together with the image it was read from
type OpenedVolume struct {
	*services.Volume
	Image *disk.Image
}

// Close releases the image
func (o *OpenedVolume) Close() error {
	return o.Image.Close()
}

// OpenVolume opens the target image with the context configuration and decodes its volume.
// Decoding the boot sector and bootstrapping the MFT is bounded by ctx.DefaultTimeout.
func OpenVolume(ctx *Context, target ImageTarget) (*OpenedVolume, error) {
	if err := target.Validate(); err != nil {
		return nil, NewError(ErrCodeInvalidInput, "invalid image target", err)
	}

	config := *ctx.Config
	if target.PartitionOffset != 0 {
		config.PartitionOffset = target.PartitionOffset
	}
	if target.UseMmap {
		config.UseMmap = true
	}

	img, err := disk.OpenImage(target.Path, &config, ctx.Logger)
	if err != nil {
		return nil, NewError(ErrCodeImageAccess, "failed to open image", err)
	}

	offset, method := img.PartitionOffset()
	ctx.Log("opened image", zap.String("target", target.String()),
		zap.Uint64("partition_offset", offset), zap.String("method", method))

	openCtx, cancel := ctx.WithTimeout(ctx.DefaultTimeout)
	defer cancel()

	vol, err := services.OpenVolume(openCtx, img, services.VolumeOptions{
		CacheSize:   config.RecordCacheSize,
		ScanWorkers: config.ScanWorkers,
		SectorSize:  config.SectorSize,
		Logger:      ctx.Logger,
	})
	if err != nil {
		return nil, errors.Join(ClassifyError("failed to open NTFS volume", err), img.Close())
	}

	return &OpenedVolume{Volume: vol, Image: img}, nil
}

// Package storage defines the block backend the load generator drives.
//
// The generator treats a backend as two opaque operations, read and write,
// each addressed by logical block address and block count. No partial
// completion is modeled: an operation either succeeds or returns an error.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/torosent/blockfire/internal/config"
)

// BlockSize is the device sector size in bytes.
const BlockSize = 512

var (
	ErrOutOfRange  = errors.New("storage: address beyond device")
	ErrTransfer    = errors.New("storage: transfer exceeds device maximum")
	ErrShortBuffer = errors.New("storage: buffer smaller than transfer")
)

// Backend is a block device under test.
type Backend interface {
	// ReadBlocks fills buf with count blocks starting at lba.
	ReadBlocks(ctx context.Context, buf []byte, lba uint64, count int) error
	// WriteBlocks stores count blocks from buf starting at lba.
	WriteBlocks(ctx context.Context, buf []byte, lba uint64, count int) error
	// TotalBlocks reports the addressable block range.
	TotalBlocks() uint64
	// MaxTransfer reports the largest block count a single request may carry.
	MaxTransfer() int
	Close() error
}

// Open constructs the backend selected by cfg.
func Open(ctx context.Context, cfg config.BackendConfig) (Backend, error) {
	switch cfg.Kind {
	case config.BackendMem:
		return NewMemDisk(MemDiskOptions{
			TotalBlocks:    cfg.TotalBlocks,
			MaxTransfer:    cfg.MaxTransfer,
			ServiceLatency: cfg.ServiceLatency,
			IOPSLimit:      cfg.IOPSLimit,
			FailEvery:      cfg.FailEvery,
		}), nil
	case config.BackendFile:
		return OpenFileDisk(cfg.Path, cfg.Sync, cfg.MaxTransfer)
	case config.BackendS3:
		return OpenObjectDisk(ctx, cfg.S3, cfg.TotalBlocks, cfg.MaxTransfer)
	default:
		return nil, fmt.Errorf("storage: unknown backend kind %q", cfg.Kind)
	}
}

// checkTransfer validates a request envelope against device geometry.
func checkTransfer(buf []byte, lba uint64, count, maxTransfer int, totalBlocks uint64) error {
	if count <= 0 || count > maxTransfer {
		return ErrTransfer
	}
	if lba+uint64(count) > totalBlocks {
		return ErrOutOfRange
	}
	if len(buf) < count*BlockSize {
		return ErrShortBuffer
	}
	return nil
}

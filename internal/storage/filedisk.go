package storage

import (
	"context"
	"fmt"
	"os"
)

// FileDisk serves block I/O against a regular file or raw block device via
// positioned reads and writes.
type FileDisk struct {
	f           *os.File
	totalBlocks uint64
	maxTransfer int
}

// OpenFileDisk opens path for block I/O. The device size is taken from the
// file's current length. With sync set, writes are issued with O_SYNC so a
// completed write has reached stable storage.
func OpenFileDisk(path string, sync bool, maxTransfer int) (*FileDisk, error) {
	flags := os.O_RDWR
	if sync {
		flags |= os.O_SYNC
	}
	f, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return nil, fmt.Errorf("filedisk: open %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("filedisk: stat %s: %w", path, err)
	}
	if fi.Size() < BlockSize {
		f.Close()
		return nil, fmt.Errorf("filedisk: %s smaller than one block", path)
	}
	if maxTransfer <= 0 {
		maxTransfer = 256
	}
	return &FileDisk{
		f:           f,
		totalBlocks: uint64(fi.Size()) / BlockSize,
		maxTransfer: maxTransfer,
	}, nil
}

func (d *FileDisk) ReadBlocks(ctx context.Context, buf []byte, lba uint64, count int) error {
	if err := checkTransfer(buf, lba, count, d.maxTransfer, d.totalBlocks); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := d.f.ReadAt(buf[:count*BlockSize], int64(lba)*BlockSize)
	if err != nil {
		return fmt.Errorf("filedisk: read lba %d: %w", lba, err)
	}
	return nil
}

func (d *FileDisk) WriteBlocks(ctx context.Context, buf []byte, lba uint64, count int) error {
	if err := checkTransfer(buf, lba, count, d.maxTransfer, d.totalBlocks); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := d.f.WriteAt(buf[:count*BlockSize], int64(lba)*BlockSize)
	if err != nil {
		return fmt.Errorf("filedisk: write lba %d: %w", lba, err)
	}
	return nil
}

func (d *FileDisk) TotalBlocks() uint64 { return d.totalBlocks }
func (d *FileDisk) MaxTransfer() int    { return d.maxTransfer }
func (d *FileDisk) Close() error        { return d.f.Close() }

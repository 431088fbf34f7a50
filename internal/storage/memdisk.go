package storage

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// ErrInjected is returned by a MemDisk configured to fail requests.
var ErrInjected = errors.New("storage: injected failure")

// MemDiskOptions configure the simulated device.
type MemDiskOptions struct {
	TotalBlocks uint64
	MaxTransfer int

	// ServiceLatency is added to every operation before it completes.
	ServiceLatency time.Duration

	// IOPSLimit caps the device's operation rate. 0 means uncapped.
	IOPSLimit float64

	// FailEvery makes every Nth operation report failure. 1 fails every
	// operation; 0 never fails.
	FailEvery int
}

// MemDisk is a simulated block device with a configurable service time,
// an IOPS ceiling, and deterministic failure injection. It carries no
// backing data: reads leave the buffer untouched, writes discard it.
type MemDisk struct {
	opt     MemDiskOptions
	limiter *rate.Limiter
	ops     int64
}

func NewMemDisk(opt MemDiskOptions) *MemDisk {
	if opt.TotalBlocks == 0 {
		opt.TotalBlocks = 1 << 20
	}
	if opt.MaxTransfer <= 0 {
		opt.MaxTransfer = 256
	}
	d := &MemDisk{opt: opt}
	if opt.IOPSLimit > 0 {
		burst := int(opt.IOPSLimit)
		if burst < 1 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(opt.IOPSLimit), burst)
	}
	return d
}

func (d *MemDisk) ReadBlocks(ctx context.Context, buf []byte, lba uint64, count int) error {
	return d.serve(ctx, buf, lba, count)
}

func (d *MemDisk) WriteBlocks(ctx context.Context, buf []byte, lba uint64, count int) error {
	return d.serve(ctx, buf, lba, count)
}

func (d *MemDisk) serve(ctx context.Context, buf []byte, lba uint64, count int) error {
	if err := checkTransfer(buf, lba, count, d.opt.MaxTransfer, d.opt.TotalBlocks); err != nil {
		return err
	}
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if d.opt.ServiceLatency > 0 {
		time.Sleep(d.opt.ServiceLatency)
	}
	n := atomic.AddInt64(&d.ops, 1)
	if d.opt.FailEvery > 0 && n%int64(d.opt.FailEvery) == 0 {
		return ErrInjected
	}
	return nil
}

func (d *MemDisk) TotalBlocks() uint64 { return d.opt.TotalBlocks }
func (d *MemDisk) MaxTransfer() int    { return d.opt.MaxTransfer }
func (d *MemDisk) Close() error        { return nil }

// Ops reports how many operations the device has served.
func (d *MemDisk) Ops() int64 { return atomic.LoadInt64(&d.ops) }

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMemDiskRejectsOutOfRange(t *testing.T) {
	d := NewMemDisk(MemDiskOptions{TotalBlocks: 100, MaxTransfer: 8})
	buf := make([]byte, 8*BlockSize)
	if err := d.ReadBlocks(context.Background(), buf, 96, 8); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if err := d.ReadBlocks(context.Background(), buf, 92, 8); err != nil {
		t.Fatalf("in-range read failed: %v", err)
	}
}

func TestMemDiskRejectsOversizeTransfer(t *testing.T) {
	d := NewMemDisk(MemDiskOptions{TotalBlocks: 100, MaxTransfer: 4})
	buf := make([]byte, 8*BlockSize)
	if err := d.WriteBlocks(context.Background(), buf, 0, 8); !errors.Is(err, ErrTransfer) {
		t.Fatalf("expected ErrTransfer, got %v", err)
	}
}

func TestMemDiskRejectsShortBuffer(t *testing.T) {
	d := NewMemDisk(MemDiskOptions{TotalBlocks: 100, MaxTransfer: 8})
	if err := d.ReadBlocks(context.Background(), make([]byte, BlockSize), 0, 4); !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("expected ErrShortBuffer, got %v", err)
	}
}

func TestMemDiskFailureInjection(t *testing.T) {
	d := NewMemDisk(MemDiskOptions{TotalBlocks: 100, MaxTransfer: 8, FailEvery: 1})
	buf := make([]byte, BlockSize)
	for i := 0; i < 5; i++ {
		if err := d.ReadBlocks(context.Background(), buf, 0, 1); !errors.Is(err, ErrInjected) {
			t.Fatalf("op %d: expected ErrInjected, got %v", i, err)
		}
	}
}

func TestMemDiskServiceLatency(t *testing.T) {
	d := NewMemDisk(MemDiskOptions{TotalBlocks: 100, MaxTransfer: 8, ServiceLatency: 5 * time.Millisecond})
	buf := make([]byte, BlockSize)
	begin := time.Now()
	if err := d.WriteBlocks(context.Background(), buf, 0, 1); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if elapsed := time.Since(begin); elapsed < 5*time.Millisecond {
		t.Fatalf("write returned after %s, before the configured service time", elapsed)
	}
}

func TestFileDiskRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	if err := os.WriteFile(path, make([]byte, 64*BlockSize), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := OpenFileDisk(path, false, 8)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer d.Close()

	if got := d.TotalBlocks(); got != 64 {
		t.Fatalf("expected 64 blocks, got %d", got)
	}

	out := make([]byte, 2*BlockSize)
	for i := range out {
		out[i] = byte(i)
	}
	if err := d.WriteBlocks(context.Background(), out, 8, 2); err != nil {
		t.Fatalf("write: %v", err)
	}
	in := make([]byte, 2*BlockSize)
	if err := d.ReadBlocks(context.Background(), in, 8, 2); err != nil {
		t.Fatalf("read: %v", err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("byte %d: wrote %d, read %d", i, out[i], in[i])
		}
	}
}

func TestFileDiskRejectsMissingPath(t *testing.T) {
	if _, err := OpenFileDisk(filepath.Join(t.TempDir(), "absent"), false, 8); err == nil {
		t.Fatal("expected error opening a missing device")
	}
}

package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/torosent/blockfire/internal/config"
)

// ObjectDisk maps block I/O onto an S3-compatible object store. Reads are
// ranged GETs against one backing device object; writes land as chunk
// objects keyed by the aligned block address, since object stores have no
// ranged PUT.
type ObjectDisk struct {
	client      *minio.Client
	bucket      string
	object      string
	prefix      string
	totalBlocks uint64
	maxTransfer int
}

// OpenObjectDisk connects to the configured endpoint and verifies the
// backing object exists and is large enough for the advertised block range.
func OpenObjectDisk(ctx context.Context, cfg config.S3Config, totalBlocks uint64, maxTransfer int) (*ObjectDisk, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("objstore: connect %s: %w", cfg.Endpoint, err)
	}
	info, err := client.StatObject(ctx, cfg.Bucket, cfg.Object, minio.StatObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("objstore: stat %s/%s: %w", cfg.Bucket, cfg.Object, err)
	}
	if totalBlocks == 0 {
		totalBlocks = uint64(info.Size) / BlockSize
	}
	if uint64(info.Size) < totalBlocks*BlockSize {
		return nil, fmt.Errorf("objstore: %s/%s holds %d bytes, need %d", cfg.Bucket, cfg.Object, info.Size, totalBlocks*BlockSize)
	}
	if maxTransfer <= 0 {
		maxTransfer = 256
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "blk"
	}
	return &ObjectDisk{
		client:      client,
		bucket:      cfg.Bucket,
		object:      cfg.Object,
		prefix:      prefix,
		totalBlocks: totalBlocks,
		maxTransfer: maxTransfer,
	}, nil
}

func (d *ObjectDisk) ReadBlocks(ctx context.Context, buf []byte, lba uint64, count int) error {
	if err := checkTransfer(buf, lba, count, d.maxTransfer, d.totalBlocks); err != nil {
		return err
	}
	off := int64(lba) * BlockSize
	length := int64(count) * BlockSize
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, off+length-1); err != nil {
		return fmt.Errorf("objstore: range lba %d: %w", lba, err)
	}
	obj, err := d.client.GetObject(ctx, d.bucket, d.object, opts)
	if err != nil {
		return fmt.Errorf("objstore: get lba %d: %w", lba, err)
	}
	defer obj.Close()
	if _, err := io.ReadFull(obj, buf[:length]); err != nil {
		return fmt.Errorf("objstore: read lba %d: %w", lba, err)
	}
	return nil
}

func (d *ObjectDisk) WriteBlocks(ctx context.Context, buf []byte, lba uint64, count int) error {
	if err := checkTransfer(buf, lba, count, d.maxTransfer, d.totalBlocks); err != nil {
		return err
	}
	length := int64(count) * BlockSize
	key := fmt.Sprintf("%s/%016x", d.prefix, lba)
	_, err := d.client.PutObject(ctx, d.bucket, key, bytes.NewReader(buf[:length]), length,
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return fmt.Errorf("objstore: put lba %d: %w", lba, err)
	}
	return nil
}

func (d *ObjectDisk) TotalBlocks() uint64 { return d.totalBlocks }
func (d *ObjectDisk) MaxTransfer() int    { return d.maxTransfer }
func (d *ObjectDisk) Close() error        { return nil }

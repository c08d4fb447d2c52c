package maintenance

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"smart-certify/certify-backend/pkg/storage"
)

// checksumKey is the object metadata entry holding the file digest.
const checksumKey = "sha256"

// ArchiveResult counts what one archive run did
type ArchiveResult struct {
	Uploaded int
	Skipped  int
	Failed   int
}

// Archiver copies rendered certificates to an S3 bucket. Files whose digest
// matches the archived object are not uploaded again.
type Archiver struct {
	dir    string
	store  storage.S3Client
	bucket string
	prefix string
	logger *zap.Logger
}

// NewArchiver creates an archiver for dir
func NewArchiver(dir string, store storage.S3Client, bucket, prefix string, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{dir: dir, store: store, bucket: bucket, prefix: prefix, logger: logger}
}

// Key returns the object key for a certificate file name.
func (a *Archiver) Key(fileName string) string {
	return path.Join(a.prefix, fileName)
}

// Archive uploads every new or changed certificate.
func (a *Archiver) Archive(ctx context.Context) (ArchiveResult, error) {
	var result ArchiveResult

	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return result, nil
		}
		return result, fmt.Errorf("failed to list %s: %w", a.dir, err)
	}

	var errs []error
	for _, entry := range entries {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".pdf") {
			continue
		}

		uploaded, err := a.archiveFile(ctx, name)
		switch {
		case err != nil:
			result.Failed++
			errs = append(errs, err)
			a.logger.Warn("Failed to archive certificate", zap.String("file", name), zap.Error(err))
		case uploaded:
			result.Uploaded++
		default:
			result.Skipped++
		}
	}

	a.logger.Info("Certificate archive run finished",
		zap.Int("uploaded", result.Uploaded),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))

	return result, errors.Join(errs...)
}

func (a *Archiver) archiveFile(ctx context.Context, name string) (bool, error) {
	full := filepath.Join(a.dir, name)
	sum, err := fileDigest(full)
	if err != nil {
		return false, err
	}

	key := a.Key(name)
	info, err := a.store.Head(ctx, a.bucket, key)
	switch {
	case err == nil && info.Metadata[checksumKey] == sum:
		return false, nil
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		return false, err
	}

	f, err := os.Open(full)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if err := a.store.Upload(ctx, a.bucket, key, f, map[string]string{checksumKey: sum}); err != nil {
		return false, err
	}
	return true, nil
}

func fileDigest(name string) (string, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", name, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gcs "cloud.google.com/go/storage"
)

const gcsScheme = "gs://"

// Save persists data at dst. Local writes go through a temp file in the same
// directory followed by a rename, so dst is either the old file or the new one.
func Save(ctx context.Context, dst string, data []byte, contentType string) error {
	if bucket, object, ok := ParseGCS(dst); ok {
		return saveGCS(ctx, bucket, object, data, contentType)
	}
	return saveFile(dst, data)
}

func ParseGCS(uri string) (bucket, object string, ok bool) {
	if !strings.HasPrefix(uri, gcsScheme) {
		return "", "", false
	}
	rest := strings.TrimPrefix(uri, gcsScheme)
	bucket, object, found := strings.Cut(rest, "/")
	if !found || bucket == "" || strings.Trim(object, "/") == "" {
		return "", "", false
	}
	return bucket, object, true
}

func saveFile(dst string, data []byte) error {
	dst = strings.TrimSpace(dst)
	if dst == "" {
		return fmt.Errorf("missing output path")
	}

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(dst)+".*.part")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()

	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", dst, writeErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", dst, closeErr)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename into %s: %w", dst, err)
	}
	return nil
}

func saveGCS(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("storage.NewClient: %w", err)
	}
	defer client.Close()

	// The object only becomes visible once Close succeeds.
	writer := client.Bucket(bucket).Object(object).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("upload gs://%s/%s: %w", bucket, object, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize gs://%s/%s: %w", bucket, object, err)
	}
	return nil
}

package snapshot

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArchiveStore uploads snapshot archives to S3-compatible object storage.
type ArchiveStore struct {
	client *minio.Client
	bucket string
}

// NewArchiveStore connects to the object store and ensures the bucket exists.
func NewArchiveStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*ArchiveStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}

	return &ArchiveStore{client: client, bucket: bucket}, nil
}

// Upload stores a snapshot archive under the given key.
func (a *ArchiveStore) Upload(ctx context.Context, key string, data []byte) error {
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/gzip",
	})
	if err != nil {
		return fmt.Errorf("upload archive %s: %w", key, err)
	}
	return nil
}

// Download fetches a snapshot archive by key.
func (a *ArchiveStore) Download(ctx context.Context, key string) ([]byte, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get archive %s: %w", key, err)
	}
	defer obj.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(obj); err != nil {
		return nil, fmt.Errorf("read archive %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

// BuildArchive packs snapshot content into a gzipped tarball with one file
// per manuscript plus a project.json manifest.
func BuildArchive(content Content, createdAt time.Time) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	manifest := fmt.Sprintf("{\n  \"title\": %q,\n  \"description\": %q,\n  \"manuscripts\": %d\n}\n",
		content.Title, content.Description, len(content.Manuscripts))
	if err := writeTarFile(tw, "project.json", []byte(manifest), createdAt); err != nil {
		return nil, err
	}

	for _, ms := range content.Manuscripts {
		name := fmt.Sprintf("manuscripts/%s.txt", ms.ID)
		body := ms.Title + "\n\n" + ms.Body + "\n"
		if err := writeTarFile(tw, name, []byte(body), createdAt); err != nil {
			return nil, err
		}
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("close tar: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("close gzip: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTarFile(tw *tar.Writer, name string, data []byte, modTime time.Time) error {
	if err := tw.WriteHeader(&tar.Header{
		Name:    name,
		Mode:    0o644,
		Size:    int64(len(data)),
		ModTime: modTime,
	}); err != nil {
		return fmt.Errorf("write tar header %s: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("write tar entry %s: %w", name, err)
	}
	return nil
}

package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"live-poll/internal/storage"
	poll_errors "live-poll/pkg/errors"

	"github.com/google/uuid"
)

// ObjectStore is the part of the S3 client the uploader needs.
type ObjectStore interface {
	PutObject(ctx context.Context, key, contentType string, body *bytes.Reader, sizeBytes int64) error
	FileURL(key string) string
}

type s3ObjectStore struct {
	client *storage.Client
}

func (s s3ObjectStore) PutObject(ctx context.Context, key, contentType string, body *bytes.Reader, sizeBytes int64) error {
	return s.client.PutObject(ctx, key, contentType, body, sizeBytes)
}

func (s s3ObjectStore) FileURL(key string) string {
	return s.client.FileURL(key)
}

// S3Uploader stores media in a bucket and serves it from S3_PUBLIC_BASE.
type S3Uploader struct {
	store ObjectStore
}

func NewS3Uploader(client *storage.Client) *S3Uploader {
	return &S3Uploader{store: s3ObjectStore{client: client}}
}

func (u *S3Uploader) Upload(ctx context.Context, f MediaFile) (UploadResult, error) {
	key := buildObjectKey(f.Name)
	size := int64(len(f.Data))
	if err := u.store.PutObject(ctx, key, f.MIME, bytes.NewReader(f.Data), size); err != nil {
		return UploadResult{}, fmt.Errorf("%w: %v", poll_errors.ErrUploadFailed, err)
	}
	url := u.store.FileURL(key)
	if url == "" {
		return UploadResult{}, fmt.Errorf("%w: no public base configured", poll_errors.ErrUploadFailed)
	}
	return UploadResult{URL: url, ResourceType: string(f.Type), Bytes: size}, nil
}

func buildObjectKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return "media/" + uuid.NewString() + ext
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"live-poll/internal/domain/question"
	poll_errors "live-poll/pkg/errors"

	"github.com/gabriel-vasile/mimetype"
)

// MediaFile is a Meme attachment that passed the size ceiling and content
// sniffing.
type MediaFile struct {
	Name string
	MIME string
	Type question.MediaType
	Data []byte
}

type UploadResult struct {
	URL          string
	ResourceType string
	Bytes        int64
}

type MediaUploader interface {
	Upload(ctx context.Context, f MediaFile) (UploadResult, error)
}

// ReadMedia reads at most maxBytes from r and classifies the content by its
// leading bytes. The declared content type of the upload is ignored.
func ReadMedia(r io.Reader, name string, maxBytes int64) (MediaFile, error) {
	if r == nil {
		return MediaFile{}, poll_errors.NewValidationError("media", "Please upload an image or video.")
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return MediaFile{}, fmt.Errorf("read media: %w", err)
	}
	if len(data) == 0 {
		return MediaFile{}, poll_errors.NewValidationError("media", "Please upload an image or video.")
	}
	if int64(len(data)) > maxBytes {
		v := poll_errors.NewValidationError("media", fmt.Sprintf("Media must be %s or smaller.", formatSize(maxBytes)))
		v.Cause = poll_errors.ErrTooLarge
		return MediaFile{}, v
	}

	mt := mimetype.Detect(data)
	var kind question.MediaType
	switch {
	case strings.HasPrefix(mt.String(), "image/"):
		kind = question.MediaImage
	case strings.HasPrefix(mt.String(), "video/"):
		kind = question.MediaVideo
	default:
		return MediaFile{}, poll_errors.NewValidationError("media", "Media must be an image or a video.")
	}

	if name == "" {
		name = "media" + mt.Extension()
	}
	return MediaFile{Name: name, MIME: mt.String(), Type: kind, Data: data}, nil
}

// PresetUploader posts the file with an unsigned upload preset; the media
// host answers with the public URL.
type PresetUploader struct {
	endpoint string
	preset   string
	client   *http.Client
}

func NewPresetUploader(endpoint, preset string, client *http.Client) *PresetUploader {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &PresetUploader{endpoint: endpoint, preset: preset, client: client}
}

type presetUploadResponse struct {
	SecureURL    string `json:"secure_url"`
	ResourceType string `json:"resource_type"`
	Bytes        int64  `json:"bytes"`
}

func (u *PresetUploader) Upload(ctx context.Context, f MediaFile) (UploadResult, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", f.Name)
	if err != nil {
		return UploadResult{}, err
	}
	if _, err := part.Write(f.Data); err != nil {
		return UploadResult{}, err
	}
	if err := w.WriteField("upload_preset", u.preset); err != nil {
		return UploadResult{}, err
	}
	if err := w.Close(); err != nil {
		return UploadResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: %v", poll_errors.ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: %v", poll_errors.ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return UploadResult{}, fmt.Errorf("%w: status %d", poll_errors.ErrUploadFailed, resp.StatusCode)
	}

	var out presetUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return UploadResult{}, fmt.Errorf("%w: decode response: %v", poll_errors.ErrUploadFailed, err)
	}
	if out.SecureURL == "" {
		return UploadResult{}, fmt.Errorf("%w: response has no url", poll_errors.ErrUploadFailed)
	}
	return UploadResult{URL: out.SecureURL, ResourceType: out.ResourceType, Bytes: out.Bytes}, nil
}

func formatSize(n int64) string {
	const mb = 1024 * 1024
	if n >= mb {
		return fmt.Sprintf("%d MB", n/mb)
	}
	return fmt.Sprintf("%d KB", n/1024)
}

package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/placekeeper/placekeeper/internal/common"
	"github.com/placekeeper/placekeeper/internal/server/config"
	"github.com/placekeeper/placekeeper/internal/server/storage"
)

// photoHTTPClient fetches remote photos for SaveFromURL. A package variable
// so tests can swap it for a stub transport.
var photoHTTPClient = &http.Client{Timeout: 30 * time.Second}

// extByContentType maps the image types the service accepts to the extension
// used for generated filenames.
var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// PhotoService stores listing photos in the configured backend under
// generated names of the form photo_<hex><ext>.
type PhotoService struct {
	store    storage.PhotoStore
	maxBytes int64
}

func NewPhotoService(store storage.PhotoStore, cfg *config.Config) *PhotoService {
	return &PhotoService{store: store, maxBytes: cfg.MaxUploadBytes}
}

// SaveFromURL downloads the photo behind link and stores it, returning the
// generated filename. Non-http(s) links, non-image responses, and oversized
// bodies surface as common.ErrorValidation; an unreachable host or non-200
// response surfaces as common.ErrorDownloadFailed.
func (s *PhotoService) SaveFromURL(ctx context.Context, link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: link must be an http(s) url", common.ErrorValidation)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("%w: bad link", common.ErrorValidation)
	}

	resp, err := photoHTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s unreachable", common.ErrorDownloadFailed, u.Host)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", common.ErrorDownloadFailed, resp.StatusCode)
	}

	contentType, ext := photoKind(resp.Header.Get("Content-Type"), u.Path)
	if ext == "" {
		return "", fmt.Errorf("%w: link does not point to a supported image", common.ErrorValidation)
	}

	return s.save(ctx, ext, contentType, resp.Body)
}

// SaveUpload stores one uploaded file, preserving its extension, and returns
// the generated filename.
func (s *PhotoService) SaveUpload(ctx context.Context, originalName, contentType string, r io.Reader) (string, error) {
	ext := strings.ToLower(path.Ext(originalName))
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	if ext == "" {
		contentType, ext = photoKind(contentType, "")
		if ext == "" {
			return "", fmt.Errorf("%w: unsupported file type", common.ErrorValidation)
		}
	}

	return s.save(ctx, ext, contentType, r)
}

func (s *PhotoService) save(ctx context.Context, ext, contentType string, r io.Reader) (string, error) {
	suffix, err := common.MakeRandHexString(8)
	if err != nil {
		return "", common.ErrorInternal
	}
	name := "photo_" + suffix + ext

	limited := &io.LimitedReader{R: r, N: s.maxBytes + 1}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, limited); err != nil {
		return "", fmt.Errorf("error reading photo: %w", err)
	}
	if int64(buf.Len()) > s.maxBytes {
		return "", fmt.Errorf("%w: photo exceeds %d bytes", common.ErrorValidation, s.maxBytes)
	}

	if err := s.store.Save(ctx, name, contentType, &buf); err != nil {
		return "", fmt.Errorf("error storing photo: %w", err)
	}
	return name, nil
}

// photoKind resolves a content type and filename extension from the response
// Content-Type with the URL path extension as fallback. Returns empty
// extension when neither identifies a supported image.
func photoKind(contentType, urlPath string) (string, string) {
	ct := contentType
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(strings.ToLower(ct))
	if ext, ok := extByContentType[ct]; ok {
		return ct, ext
	}

	ext := strings.ToLower(path.Ext(urlPath))
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	for knownCT, knownExt := range extByContentType {
		if ext == knownExt {
			return knownCT, ext
		}
	}
	return "", ""
}

package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"maps"
	"mime"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/tendant/demo-content/pkg/democontent"
)

// Attachment attributes recorded for every sideloaded image.
const (
	AttrFile          = "_file"
	AttrThumbnailFile = "_thumbnail_file"
	AttrWidth         = "_width"
	AttrHeight        = "_height"
)

const (
	// ThumbnailSize is the edge of the square thumbnail in pixels.
	ThumbnailSize = 150

	defaultTimeout  = 30 * time.Second
	defaultMaxBytes = 20 << 20
	userAgent       = "demo-content-sideloader/1.0"
)

// ErrNotAnImage indicates the fetched resource could not be decoded as an image.
var ErrNotAnImage = errors.New("resource is not a supported image")

// Sideloader fetches remote images, stores the original and a thumbnail in a
// blob store and registers the result as an attachment.
type Sideloader struct {
	repository democontent.Repository
	store      democontent.BlobStore
	client     *http.Client
	maxBytes   int64
	logger     *slog.Logger
}

var _ democontent.Sideloader = (*Sideloader)(nil)

// Option configures a Sideloader
type Option func(*Sideloader)

// WithHTTPClient replaces the HTTP client used for fetches
func WithHTTPClient(client *http.Client) Option {
	return func(s *Sideloader) {
		s.client = client
	}
}

// WithTimeout sets the per-fetch client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(s *Sideloader) {
		s.client = &http.Client{Timeout: timeout}
	}
}

// WithMaxBytes caps the size of a fetched image
func WithMaxBytes(n int64) Option {
	return func(s *Sideloader) {
		s.maxBytes = n
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sideloader) {
		s.logger = logger
	}
}

// NewSideloader creates a sideloader writing attachments to repo and files to store
func NewSideloader(repo democontent.Repository, store democontent.BlobStore, opts ...Option) *Sideloader {
	s := &Sideloader{
		repository: repo,
		store:      store,
		client:     &http.Client{Timeout: defaultTimeout},
		maxBytes:   defaultMaxBytes,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sideload downloads req.URL and creates an attachment carrying
// req.Attributes. Nothing is stored when the fetch or decode fails.
func (s *Sideloader) Sideload(ctx context.Context, req democontent.SideloadRequest) (*democontent.Item, error) {
	data, contentType, err := s.fetch(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	img, format, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotAnImage, req.URL, err)
	}
	mimeType := "image/" + format
	if strings.HasPrefix(contentType, "image/") {
		mimeType = contentType
	}

	name := fileBase(req.Title, req.URL)
	dir := uuid.New().String()
	fileKey := dir + "/" + name + extension(mimeType, format)
	thumbKey := dir + "/" + name + fmt.Sprintf("-%dx%d.jpg", ThumbnailSize, ThumbnailSize)

	if err := s.store.Upload(ctx, fileKey, bytes.NewReader(data), mimeType); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	var thumb bytes.Buffer
	if err := imaging.Encode(&thumb, imaging.Thumbnail(img, ThumbnailSize, ThumbnailSize, imaging.Lanczos), imaging.JPEG); err != nil {
		s.discard(ctx, fileKey)
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	if err := s.store.Upload(ctx, thumbKey, &thumb, "image/jpeg"); err != nil {
		s.discard(ctx, fileKey)
		return nil, fmt.Errorf("failed to store thumbnail: %w", err)
	}

	publicURL, err := s.store.PublicURL(ctx, fileKey)
	if err != nil {
		s.discard(ctx, fileKey, thumbKey)
		return nil, fmt.Errorf("failed to resolve public URL: %w", err)
	}

	attributes := maps.Clone(req.Attributes)
	if attributes == nil {
		attributes = make(map[string]string, 4)
	}
	bounds := img.Bounds()
	attributes[AttrFile] = fileKey
	attributes[AttrThumbnailFile] = thumbKey
	attributes[AttrWidth] = strconv.Itoa(bounds.Dx())
	attributes[AttrHeight] = strconv.Itoa(bounds.Dy())

	title := req.Title
	if title == "" {
		title = name
	}
	item := &democontent.Item{
		Type:       democontent.ContentTypeAttachment,
		Title:      title,
		Slug:       name,
		Status:     democontent.StatusInherit,
		MimeType:   mimeType,
		URL:        publicURL,
		Attributes: attributes,
	}
	if err := s.repository.CreateItem(ctx, item); err != nil {
		s.discard(ctx, fileKey, thumbKey)
		return nil, fmt.Errorf("failed to create attachment: %w", err)
	}

	s.logger.DebugContext(ctx, "Sideloaded image", "url", req.URL, "id", item.ID, "key", fileKey)
	return item, nil
}

func (s *Sideloader) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", democontent.ErrFetchFailed, err)
	}
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Accept", "image/*")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", democontent.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("%w: %s returned status %d", democontent.ErrFetchFailed, rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", democontent.ErrFetchFailed, err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, "", fmt.Errorf("%w: %s exceeds %d bytes", democontent.ErrFetchFailed, rawURL, s.maxBytes)
	}

	contentType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return data, contentType, nil
}

// discard removes blobs of a sideload that could not complete.
func (s *Sideloader) discard(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "Failed to discard blob", "key", key, "error", err)
		}
	}
}

// decode returns the image and its format name as used in MIME types
// ("jpeg", "png", "gif").
func decode(data []byte) (image.Image, string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", err
	}
	return img, format, nil
}

func extension(mimeType, format string) string {
	switch mimeType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return "." + format
}

var nonFileChars = regexp.MustCompile(`[^a-z0-9]+`)

// fileBase derives a file name without extension from the title, falling
// back to the last path segment of the URL.
func fileBase(title, rawURL string) string {
	base := title
	if base == "" {
		if u, err := url.Parse(rawURL); err == nil {
			base = strings.TrimSuffix(path.Base(u.Path), path.Ext(u.Path))
		}
	}
	base = strings.Trim(nonFileChars.ReplaceAllString(strings.ToLower(base), "-"), "-")
	if base == "" {
		return "image"
	}
	return base
}

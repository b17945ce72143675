package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"auth_backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrInvalidImage marks input that cannot be hosted as a picture: undecodable,
// empty, too large or not an image.
var ErrInvalidImage = errors.New("invalid image")

const (
	keyPrefix    = "profile-pictures"
	fetchTimeout = 15 * time.Second
)

// ObjectPutter is the subset of *s3.Client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ImageHost stores profile pictures in an S3-compatible bucket.
type S3ImageHost struct {
	client     ObjectPutter
	bucket     string
	region     string
	endpoint   string
	publicBase string
	maxBytes   int64
	httpClient *http.Client
	newKey     func(userID, ext string) string
}

func NewS3ImageHost(client ObjectPutter, cfg config.ImagesConfig) *S3ImageHost {
	return &S3ImageHost{
		client:     client,
		bucket:     cfg.Bucket,
		region:     cfg.Region,
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		publicBase: strings.TrimRight(cfg.PublicBaseURL, "/"),
		maxBytes:   cfg.MaxBytes,
		httpClient: newFetchClient(internalAddr),
		newKey:     randomKey,
	}
}

func randomKey(userID, ext string) string {
	return fmt.Sprintf("%s/%s/%s%s", keyPrefix, userID, uuid.NewString(), ext)
}

// Upload accepts a data URI, a bare base64 payload or an http(s) URL, stores
// the image and returns its public URL. URLs resolving to internal addresses
// are refused.
func (h *S3ImageHost) Upload(ctx context.Context, userID, source string) (string, error) {
	data, err := h.load(ctx, source)
	if err != nil {
		return "", err
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrInvalidImage, mt.String())
	}

	key := h.newKey(userID, mt.Extension())
	_, err = h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(h.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(mt.String()),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}
	return h.objectURL(key), nil
}

func (h *S3ImageHost) load(ctx context.Context, source string) ([]byte, error) {
	switch {
	case strings.HasPrefix(source, "data:"):
		return h.decodeDataURI(source)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return h.fetch(ctx, source)
	default:
		return h.decodeBase64(source)
	}
}

func (h *S3ImageHost) decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: data URI must be base64 encoded", ErrInvalidImage)
	}
	return h.decodeBase64(payload)
}

func (h *S3ImageHost) decodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > h.maxBytes+2 {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidImage, h.maxBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return h.checkSize(data)
}

func (h *S3ImageHost) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, errBlockedAddress) || errors.Is(err, ErrInvalidImage) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrInvalidImage, url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return h.checkSize(data)
}

func (h *S3ImageHost) checkSize(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}
	if int64(len(data)) > h.maxBytes {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidImage, h.maxBytes)
	}
	return data, nil
}

func (h *S3ImageHost) objectURL(key string) string {
	switch {
	case h.publicBase != "":
		return h.publicBase + "/" + key
	case h.endpoint != "":
		return fmt.Sprintf("%s/%s/%s", h.endpoint, h.bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", h.bucket, h.region, key)
	}
}

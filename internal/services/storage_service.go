// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/vendor-console/internal/config"
	"github.com/javajoker/vendor-console/internal/models"
)

var (
	ErrFileTooLarge        = errors.New("file exceeds the maximum upload size")
	ErrUnsupportedFileType = errors.New("file is not a supported image")
	ErrBlobNotFound        = errors.New("staged file not found")
)

// BlobStore keeps staged upload bytes until submission.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type StorageService struct {
	store   BlobStore
	uploads config.UploadConfig
	prefix  string
	now     func() time.Time
}

// NewStorageService stages to S3 when a bucket is configured and to memory
// otherwise.
func NewStorageService(cfg *config.Config) (*StorageService, error) {
	if !cfg.AWS.Enabled() {
		return NewStorageServiceWithStore(NewMemoryBlobStore(), cfg.Uploads, cfg.AWS.StagingPrefix), nil
	}

	awsCfg := &aws.Config{Region: aws.String(cfg.AWS.Region)}
	if cfg.AWS.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	store := &S3BlobStore{client: s3.New(sess), bucket: cfg.AWS.S3Bucket}
	return NewStorageServiceWithStore(store, cfg.Uploads, cfg.AWS.StagingPrefix), nil
}

func NewStorageServiceWithStore(store BlobStore, uploads config.UploadConfig, prefix string) *StorageService {
	return &StorageService{
		store:   store,
		uploads: uploads,
		prefix:  prefix,
		now:     time.Now,
	}
}

// StageUpload stages one file from a multipart form.
func (s *StorageService) StageUpload(ctx context.Context, header *multipart.FileHeader) (models.StagedFile, error) {
	if s.uploads.MaxFileSize > 0 && header.Size > s.uploads.MaxFileSize {
		return models.StagedFile{}, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, header.Size)
	}
	file, err := header.Open()
	if err != nil {
		return models.StagedFile{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()
	return s.Stage(ctx, header.Filename, file)
}

// StageUploads stages every file or none: on failure the files already staged
// are released.
func (s *StorageService) StageUploads(ctx context.Context, headers []*multipart.FileHeader) ([]models.StagedFile, error) {
	files := make([]models.StagedFile, 0, len(headers))
	for _, h := range headers {
		f, err := s.StageUpload(ctx, h)
		if err != nil {
			s.Release(ctx, files...)
			return nil, fmt.Errorf("%s: %w", h.Filename, err)
		}
		files = append(files, f)
	}
	return files, nil
}

// Stage validates an image, downsizes it when it exceeds the configured
// dimension and stores it under a fresh key.
func (s *StorageService) Stage(ctx context.Context, filename string, r io.Reader) (models.StagedFile, error) {
	limit := s.uploads.MaxFileSize
	if limit <= 0 {
		limit = 10 << 20
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return models.StagedFile{}, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > limit {
		return models.StagedFile{}, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, limit)
	}

	contentType := detectImageType(data)
	if contentType == "" || !s.allowed(contentType) {
		return models.StagedFile{}, fmt.Errorf("%w: %s", ErrUnsupportedFileType, filepath.Ext(filename))
	}

	data, err = s.downsize(data, contentType)
	if err != nil {
		return models.StagedFile{}, err
	}

	key := s.generateKey(filename, contentType)
	if err := s.store.Put(ctx, key, contentType, data); err != nil {
		return models.StagedFile{}, fmt.Errorf("failed to stage file: %w", err)
	}

	return models.StagedFile{
		Key:         key,
		Filename:    filepath.Base(filename),
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func (s *StorageService) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.store.Open(ctx, key)
}

// Release deletes staged blobs. Failures are logged, not returned.
func (s *StorageService) Release(ctx context.Context, files ...models.StagedFile) {
	for _, f := range files {
		if f.Key == "" {
			continue
		}
		if err := s.store.Delete(ctx, f.Key); err != nil && !errors.Is(err, ErrBlobNotFound) {
			logrus.WithError(err).WithField("key", f.Key).Warn("Failed to release staged file")
		}
	}
}

func (s *StorageService) allowed(contentType string) bool {
	if len(s.uploads.AllowedTypes) == 0 {
		return true
	}
	for _, t := range s.uploads.AllowedTypes {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}

// downsize re-encodes images larger than MaxDimension on either side. WebP is
// stored as uploaded since it cannot be decoded here.
func (s *StorageService) downsize(data []byte, contentType string) ([]byte, error) {
	maxDim := s.uploads.MaxDimension
	format, ok := imagingFormats[contentType]
	if maxDim <= 0 || !ok {
		return data, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFileType, err)
	}
	if cfg.Width <= maxDim && cfg.Height <= maxDim {
		return data, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFileType, err)
	}
	resized := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"from":   fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"bounds": resized.Bounds().Size().String(),
		"bytes":  buf.Len(),
	}).Debug("Downsized staged image")
	return buf.Bytes(), nil
}

func (s *StorageService) generateKey(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	exts := imageExtensions[contentType]
	if !containsString(exts, ext) && len(exts) > 0 {
		ext = exts[0]
	}
	name := fmt.Sprintf("%s_%s%s", s.now().Format("20060102"), uuid.NewString(), ext)
	if s.prefix != "" {
		return path.Join(s.prefix, name)
	}
	return name
}

var imagingFormats = map[string]imaging.Format{
	"image/jpeg": imaging.JPEG,
	"image/png":  imaging.PNG,
	"image/gif":  imaging.GIF,
}

var imageExtensions = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/gif":  {".gif"},
	"image/webp": {".webp"},
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// detectImageType checks the file signature and returns the image MIME type,
// or "" when the bytes are not a supported image.
func detectImageType(buffer []byte) string {
	switch {
	case len(buffer) >= 3 && buffer[0] == 0xFF && buffer[1] == 0xD8 && buffer[2] == 0xFF:
		return "image/jpeg"
	case len(buffer) >= 8 && bytes.Equal(buffer[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return "image/png"
	case len(buffer) >= 6 && (string(buffer[:6]) == "GIF87a" || string(buffer[:6]) == "GIF89a"):
		return "image/gif"
	case len(buffer) >= 12 && string(buffer[:4]) == "RIFF" && string(buffer[8:12]) == "WEBP":
		return "image/webp"
	}
	return ""
}

type S3BlobStore struct {
	client *s3.S3
	bucket string
}

func (b *S3BlobStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	_, err := b.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (b *S3BlobStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := b.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, key)
		}
		return nil, fmt.Errorf("failed to read from S3: %w", err)
	}
	return out.Body, nil
}

func (b *S3BlobStore) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// MemoryBlobStore keeps staged files in process for local development and
// tests.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (m *MemoryBlobStore) Put(_ context.Context, key, _ string, data []byte) error {
	m.mu.Lock()
	m.blobs[key] = append([]byte(nil), data...)
	m.mu.Unlock()
	return nil
}

func (m *MemoryBlobStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	data, ok := m.blobs[key]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemoryBlobStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[key]; !ok {
		return fmt.Errorf("%w: %s", ErrBlobNotFound, key)
	}
	delete(m.blobs, key)
	return nil
}

func (m *MemoryBlobStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

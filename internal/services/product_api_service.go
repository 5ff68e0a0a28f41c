// internal/services/product_api_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/vendor-console/internal/builder"
	"github.com/javajoker/vendor-console/internal/config"
	"github.com/javajoker/vendor-console/internal/models"
	"github.com/javajoker/vendor-console/internal/normalizer"
)

// maxResponseSize caps how much of an upstream response body is read.
const maxResponseSize = 8 << 20

// APIError is a non-success answer from the Product API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("product API error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("product API error (%d)", e.StatusCode)
}

// NotFound reports whether the API answered 404.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// BlobOpener reads staged files back for submission.
type BlobOpener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

type tokenKey struct{}

// WithBearerToken attaches the vendor's access token so upstream calls are
// made on the vendor's behalf.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func bearerToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

type ProductAPIService struct {
	client *http.Client
	config config.ProductAPIConfig
	blobs  BlobOpener
}

func NewProductAPIService(cfg config.ProductAPIConfig, blobs BlobOpener) *ProductAPIService {
	return &ProductAPIService{
		client: &http.Client{Timeout: cfg.Timeout},
		config: cfg,
		blobs:  blobs,
	}
}

func (s *ProductAPIService) FetchCategories(ctx context.Context) ([]models.Category, error) {
	body, err := s.get(ctx, s.config.CategoriesPath)
	if err != nil {
		return nil, err
	}
	return normalizer.DecodeCategories(body)
}

func (s *ProductAPIService) FetchMeasurements(ctx context.Context) ([]models.MeasurementPoint, error) {
	body, err := s.get(ctx, s.config.MeasurementsPath)
	if err != nil {
		return nil, err
	}
	return normalizer.DecodeMeasurements(body, s.config.AssetBaseURL)
}

func (s *ProductAPIService) FetchProduct(ctx context.Context, productID string) (*models.Product, error) {
	body, err := s.get(ctx, s.config.ProductsPath+"/"+url.PathEscape(productID))
	if err != nil {
		return nil, err
	}
	p, err := normalizer.Decode(body, s.config.AssetBaseURL)
	if err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = productID
	}
	return p, nil
}

// SubmitProduct streams the payload as multipart/form-data. New products are
// created with POST to the products path; existing ones are posted to their
// own path.
func (s *ProductAPIService) SubmitProduct(ctx context.Context, payload *builder.Payload) (*normalizer.SubmitResult, error) {
	endpoint := s.config.ProductsPath
	if payload.ProductID != "" {
		endpoint += "/" + url.PathEscape(payload.ProductID)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(s.writeMultipart(ctx, mw, payload))
	}()

	req, err := s.newRequest(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	defer pr.Close()

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to submit product: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read submit response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: normalizer.Message(body)}
	}

	result, err := normalizer.DecodeSubmitResult(body)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: result.Message}
	}
	if result.ProductID == "" {
		result.ProductID = payload.ProductID
	}

	logrus.WithFields(logrus.Fields{
		"product_id": result.ProductID,
		"files":      len(payload.Files),
	}).Info("Product submitted")
	return result, nil
}

func (s *ProductAPIService) writeMultipart(ctx context.Context, mw *multipart.Writer, payload *builder.Payload) error {
	for _, f := range payload.Fields {
		if err := mw.WriteField(f.Name, f.Value); err != nil {
			return err
		}
	}
	for _, part := range payload.Files {
		if err := s.writeFile(ctx, mw, part); err != nil {
			return err
		}
	}
	return mw.Close()
}

func (s *ProductAPIService) writeFile(ctx context.Context, mw *multipart.Writer, part builder.FilePart) error {
	src, err := s.blobs.Open(ctx, part.File.Key)
	if err != nil {
		return fmt.Errorf("failed to open staged file for %s: %w", part.Field, err)
	}
	defer src.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(part.Field), escapeQuotes(part.File.Filename)))
	h.Set("Content-Type", part.File.ContentType)
	dst, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	return err
}

func (s *ProductAPIService) get(ctx context.Context, path string) ([]byte, error) {
	req, err := s.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: normalizer.Message(body)}
	}
	return body, nil
}

func (s *ProductAPIService) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.config.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token := bearerToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.NotFound()
}

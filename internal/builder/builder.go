// Package builder holds the in-memory state of a product being created or
// edited and turns it into the Product API's multipart submission.
//
// A Builder is not safe for concurrent use; callers serialize access.
package builder

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/javajoker/vendor-console/internal/models"
)

var (
	ErrMaterialNotFound       = errors.New("material not found")
	ErrUnknownSize            = errors.New("unknown size")
	ErrUnknownMode            = errors.New("unknown pricing mode")
	ErrUnknownField           = errors.New("unknown field")
	ErrImageIndex             = errors.New("image index out of range")
	ErrImageSource            = errors.New("unknown image source")
	ErrAddonIndex             = errors.New("addon index out of range")
	ErrAttributeIndex         = errors.New("attribute index out of range")
	ErrSizeNotSelected        = errors.New("size is not selected")
	ErrSizeNotReady           = errors.New("size is not in the ready inventory list")
	ErrMeasurementNotSelected = errors.New("measurement point is not selected")
	ErrMeasurementsReadOnly   = errors.New("measurements are read-only for non-customizable products")
)

type Builder struct {
	product *models.Product
	newKey  func() string
}

type Option func(*Builder)

// WithKeyGenerator overrides how temporary material keys are generated.
func WithKeyGenerator(fn func() string) Option {
	return func(b *Builder) {
		b.newKey = fn
	}
}

// New starts an empty product.
func New(opts ...Option) *Builder {
	return FromProduct(models.NewProduct(), opts...)
}

// FromProduct wraps an aggregate loaded from the Product API. The builder
// takes ownership of p.
func FromProduct(p *models.Product, opts ...Option) *Builder {
	p.EnsureMaps()
	b := &Builder{
		product: p,
		newKey: func() string {
			return models.TemporaryKeyPrefix + uuid.NewString()
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Product exposes the aggregate for read-only use.
func (b *Builder) Product() *models.Product {
	return b.product
}

// MeasurementsReadOnly reports whether measurement selection and values are
// locked to what was loaded from the server.
func (b *Builder) MeasurementsReadOnly() bool {
	return !b.product.IsCustomizable
}

func (b *Builder) material(key string) (*models.Material, error) {
	m, _ := b.product.FindMaterial(key)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrMaterialNotFound, key)
	}
	return m, nil
}

func standardSize(size string) (string, error) {
	s := models.NormalizeSize(size)
	if !models.IsStandardSize(s) {
		return "", fmt.Errorf("%w: %q", ErrUnknownSize, size)
	}
	return s, nil
}

func removeString(list []string, v string) ([]string, bool) {
	for i, s := range list {
		if s == v {
			return append(list[:i:i], list[i+1:]...), true
		}
	}
	return list, false
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// internal/services/catalog_service.go
package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/javajoker/vendor-console/internal/models"
)

const (
	categoriesCacheKey   = "catalog:categories"
	measurementsCacheKey = "catalog:measurements"
)

// CatalogSource fetches the reference lists the product form is built from.
type CatalogSource interface {
	FetchCategories(ctx context.Context) ([]models.Category, error)
	FetchMeasurements(ctx context.Context) ([]models.MeasurementPoint, error)
}

// Notice is a non-fatal problem surfaced next to otherwise usable data.
type Notice struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// Bootstrap is everything the product form needs before the vendor starts
// editing.
type Bootstrap struct {
	Categories    []models.Category         `json:"categories"`
	Measurements  []models.MeasurementPoint `json:"measurements"`
	MaterialTypes []string                  `json:"material_types"`
	Sizes         []string                  `json:"sizes"`
	Notices       []Notice                  `json:"notices"`
}

type CatalogService struct {
	source CatalogSource
	cache  Cache
	group  singleflight.Group
}

func NewCatalogService(source CatalogSource, cache Cache) *CatalogService {
	return &CatalogService{source: source, cache: cache}
}

// Categories never fails: when the upstream fetch fails the list is empty and
// a notice explains why.
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, *Notice) {
	var cached []models.Category
	if s.fromCache(ctx, categoriesCacheKey, &cached) {
		return cached, nil
	}

	val, err, _ := s.group.Do(categoriesCacheKey, func() (interface{}, error) {
		return s.source.FetchCategories(ctx)
	})
	if err != nil {
		return []models.Category{}, s.fetchFailed("categories", err)
	}

	categories := val.([]models.Category)
	s.toCache(ctx, categoriesCacheKey, categories)
	return categories, nil
}

func (s *CatalogService) Measurements(ctx context.Context) ([]models.MeasurementPoint, *Notice) {
	var cached []models.MeasurementPoint
	if s.fromCache(ctx, measurementsCacheKey, &cached) {
		return cached, nil
	}

	val, err, _ := s.group.Do(measurementsCacheKey, func() (interface{}, error) {
		return s.source.FetchMeasurements(ctx)
	})
	if err != nil {
		return []models.MeasurementPoint{}, s.fetchFailed("measurements", err)
	}

	points := val.([]models.MeasurementPoint)
	s.toCache(ctx, measurementsCacheKey, points)
	return points, nil
}

// Subcategories returns the subcategories of categoryID, or an empty list for
// an unknown category.
func (s *CatalogService) Subcategories(ctx context.Context, categoryID string) ([]models.Subcategory, *Notice) {
	categories, notice := s.Categories(ctx)
	for _, c := range categories {
		if c.ID == categoryID {
			return c.Subcategories, notice
		}
	}
	return []models.Subcategory{}, notice
}

// Bootstrap loads categories and measurements concurrently.
func (s *CatalogService) Bootstrap(ctx context.Context) *Bootstrap {
	out := &Bootstrap{
		MaterialTypes: models.MaterialTypes,
		Sizes:         models.StandardSizes,
		Notices:       []Notice{},
	}

	var categoriesNotice, measurementsNotice *Notice
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.Categories, categoriesNotice = s.Categories(gctx)
		return nil
	})
	g.Go(func() error {
		out.Measurements, measurementsNotice = s.Measurements(gctx)
		return nil
	})
	_ = g.Wait()

	for _, n := range []*Notice{categoriesNotice, measurementsNotice} {
		if n != nil {
			out.Notices = append(out.Notices, *n)
		}
	}
	return out
}

// Invalidate drops the cached catalog so the next read refetches it.
func (s *CatalogService) Invalidate(ctx context.Context) {
	for _, key := range []string{categoriesCacheKey, measurementsCacheKey} {
		if err := s.cache.Delete(ctx, key); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("Failed to invalidate catalog cache")
		}
	}
}

func (s *CatalogService) fromCache(ctx context.Context, key string, dest interface{}) bool {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Catalog cache read failed")
		return false
	}
	return found
}

func (s *CatalogService) toCache(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Failed to cache catalog")
	}
}

func (s *CatalogService) fetchFailed(source string, err error) *Notice {
	logrus.WithError(err).WithField("source", source).Warn("Catalog fetch failed")
	return &Notice{Source: source, Message: "catalog.fetch_failed"}
}

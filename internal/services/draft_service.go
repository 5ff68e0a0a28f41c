// internal/services/draft_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/vendor-console/internal/builder"
	"github.com/javajoker/vendor-console/internal/config"
	"github.com/javajoker/vendor-console/internal/models"
	"github.com/javajoker/vendor-console/internal/normalizer"
)

var (
	ErrDraftNotFound        = errors.New("draft not found")
	ErrDraftLimit           = errors.New("too many open drafts")
	ErrProductNotFound      = errors.New("product not found")
	ErrSubmissionInProgress = errors.New("a submission for this draft is already in progress")
	ErrStaleResult          = errors.New("draft changed while the request was in flight")
)

// ProductSource loads and saves products on the Product API.
type ProductSource interface {
	FetchProduct(ctx context.Context, productID string) (*models.Product, error)
	SubmitProduct(ctx context.Context, payload *builder.Payload) (*normalizer.SubmitResult, error)
}

// FileReleaser frees staged uploads a draft no longer references.
type FileReleaser interface {
	Release(ctx context.Context, files ...models.StagedFile)
}

const (
	DraftModeCreate = "create"
	DraftModeEdit   = "edit"
)

// Draft is one vendor's editing session. mu guards every field below it;
// submitting is set without the lock but re-checked and cleared under it.
type Draft struct {
	ID       string
	VendorID string

	submitting atomic.Bool

	mu         sync.Mutex
	builder    *builder.Builder
	target     string
	generation uint64
	removed    bool
	notices    []Notice
	createdAt  time.Time
	updatedAt  time.Time

	// releasePending is set when the draft was discarded while a submission
	// still streamed its files.
	releasePending bool
}

type DraftView struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"`
	ProductID  string    `json:"product_id,omitempty"`
	Submitting bool      `json:"submitting"`
	Notices    []Notice  `json:"notices"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	// Product is the builder snapshot, encoded while the draft lock is held.
	Product json.RawMessage `json:"product"`
}

type SubmitOutcome struct {
	ProductID   string            `json:"product_id"`
	MaterialIDs map[string]string `json:"material_ids"`
	Message     string            `json:"message,omitempty"`
	// Draft is nil when the draft was discarded or retargeted while the
	// submission was in flight.
	Draft *DraftView `json:"draft,omitempty"`
}

type DraftService struct {
	mu     sync.RWMutex
	drafts map[string]*Draft

	products ProductSource
	files    FileReleaser
	config   config.DraftConfig
	now      func() time.Time
}

func NewDraftService(products ProductSource, files FileReleaser, cfg config.DraftConfig) *DraftService {
	return &DraftService{
		drafts:   make(map[string]*Draft),
		products: products,
		files:    files,
		config:   cfg,
		now:      time.Now,
	}
}

// Create opens a draft for a new product.
func (s *DraftService) Create(vendorID string) (*DraftView, error) {
	d, err := s.register(vendorID, "")
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view(), nil
}

// OpenForEdit opens a draft for an existing product and loads it. A failed
// load is not fatal: the draft stays open, empty, with a notice.
func (s *DraftService) OpenForEdit(ctx context.Context, vendorID, productID string) (*DraftView, error) {
	d, err := s.register(vendorID, productID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	gen := d.generation
	d.mu.Unlock()

	view, err := s.load(ctx, d, gen, productID)
	if errors.Is(err, ErrProductNotFound) {
		s.remove(ctx, d)
	}
	return view, err
}

// Retarget points an existing draft at another product (or at a new one when
// productID is empty). Results of fetches still in flight for the previous
// target are discarded.
func (s *DraftService) Retarget(ctx context.Context, vendorID, draftID, productID string) (*DraftView, error) {
	d, err := s.get(vendorID, draftID)
	if err != nil {
		return nil, err
	}
	if d.submitting.Load() {
		return nil, ErrSubmissionInProgress
	}

	d.mu.Lock()
	if d.submitting.Load() {
		d.mu.Unlock()
		return nil, ErrSubmissionInProgress
	}
	d.generation++
	gen := d.generation
	released := d.builder.StagedFiles()
	d.builder = emptyBuilder(productID)
	d.target = productID
	d.notices = nil
	d.updatedAt = s.now()
	view := d.view()
	d.mu.Unlock()

	s.files.Release(ctx, released...)
	if productID == "" {
		return view, nil
	}
	return s.load(ctx, d, gen, productID)
}

// Reload refetches the product a draft edits, discarding local changes.
func (s *DraftService) Reload(ctx context.Context, vendorID, draftID string) (*DraftView, error) {
	d, err := s.get(vendorID, draftID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	target := d.target
	d.mu.Unlock()
	return s.Retarget(ctx, vendorID, draftID, target)
}

func (s *DraftService) Get(vendorID, draftID string) (*DraftView, error) {
	d, err := s.get(vendorID, draftID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.updatedAt = s.now()
	return d.view(), nil
}

// Mutate applies fn to the draft's builder under the draft lock. Staged files
// returned by fn are no longer referenced and are released.
func (s *DraftService) Mutate(ctx context.Context, vendorID, draftID string, fn func(b *builder.Builder) ([]models.StagedFile, error)) (*DraftView, error) {
	d, err := s.get(vendorID, draftID)
	if err != nil {
		return nil, err
	}
	if d.submitting.Load() {
		return nil, ErrSubmissionInProgress
	}

	d.mu.Lock()
	if d.submitting.Load() {
		d.mu.Unlock()
		return nil, ErrSubmissionInProgress
	}
	released, err := fn(d.builder)
	if err != nil {
		d.mu.Unlock()
		return nil, err
	}
	d.updatedAt = s.now()
	view := d.view()
	d.mu.Unlock()

	s.files.Release(ctx, released...)
	return view, nil
}

// Inspect runs a read-only fn against the draft's builder.
func (s *DraftService) Inspect(vendorID, draftID string, fn func(b *builder.Builder) error) error {
	d, err := s.get(vendorID, draftID)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.updatedAt = s.now()
	return fn(d.builder)
}

// Discard closes the draft and frees its staged files.
func (s *DraftService) Discard(ctx context.Context, vendorID, draftID string) error {
	d, err := s.get(vendorID, draftID)
	if err != nil {
		return err
	}
	s.remove(ctx, d)
	return nil
}

// Submit validates and sends the draft. Only one submission per draft may be
// in flight. On failure the draft is left untouched so it can be retried.
func (s *DraftService) Submit(ctx context.Context, vendorID, draftID string) (*SubmitOutcome, error) {
	d, err := s.get(vendorID, draftID)
	if err != nil {
		return nil, err
	}
	if !d.submitting.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInProgress
	}
	defer s.endSubmission(ctx, d)

	d.mu.Lock()
	payload, err := d.builder.Serialize()
	gen := d.generation
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}

	log := logrus.WithFields(logrus.Fields{"draft_id": d.ID, "vendor_id": vendorID})
	result, err := s.products.SubmitProduct(ctx, payload)
	if err != nil {
		log.WithError(err).Warn("Product submission failed")
		return nil, err
	}

	outcome := &SubmitOutcome{
		ProductID:   result.ProductID,
		MaterialIDs: result.MaterialIDs,
		Message:     result.Message,
	}

	d.mu.Lock()
	if d.removed || d.generation != gen {
		d.mu.Unlock()
		log.Info("Draft changed during submission; result not applied")
		return outcome, nil
	}
	d.builder.MarkSubmitted(result.ProductID, result.MaterialIDs)
	submitted := d.builder.ClearStagedFiles()
	if result.ProductID != "" {
		d.target = result.ProductID
	}
	d.notices = nil
	d.updatedAt = s.now()
	target := d.target
	d.mu.Unlock()

	s.files.Release(ctx, submitted...)

	if target != "" {
		s.refresh(ctx, d, gen, target)
	}
	d.mu.Lock()
	if !d.removed && d.generation == gen {
		outcome.Draft = d.view()
	}
	d.mu.Unlock()
	return outcome, nil
}

// endSubmission clears the in-flight flag under the draft lock. Files of a
// draft discarded during the submission are released here, whatever its
// outcome.
func (s *DraftService) endSubmission(ctx context.Context, d *Draft) {
	d.mu.Lock()
	d.submitting.Store(false)
	var orphaned []models.StagedFile
	if d.releasePending {
		orphaned = d.builder.StagedFiles()
		d.releasePending = false
	}
	d.mu.Unlock()
	s.files.Release(ctx, orphaned...)
}

// Sweep removes drafts idle for longer than the configured TTL and returns
// how many were removed.
func (s *DraftService) Sweep(ctx context.Context) int {
	cutoff := s.now().Add(-s.config.TTL)

	s.mu.RLock()
	var expired []*Draft
	for _, d := range s.drafts {
		if d.submitting.Load() {
			continue
		}
		d.mu.Lock()
		idle := d.updatedAt.Before(cutoff)
		d.mu.Unlock()
		if idle {
			expired = append(expired, d)
		}
	}
	s.mu.RUnlock()

	for _, d := range expired {
		s.remove(ctx, d)
	}
	if len(expired) > 0 {
		logrus.WithField("count", len(expired)).Info("Expired idle drafts")
	}
	return len(expired)
}

// Run sweeps expired drafts until ctx is done.
func (s *DraftService) Run(ctx context.Context) {
	interval := s.config.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

func (s *DraftService) register(vendorID, productID string) (*Draft, error) {
	now := s.now()
	d := &Draft{
		ID:        uuid.NewString(),
		VendorID:  vendorID,
		builder:   emptyBuilder(productID),
		target:    productID,
		createdAt: now,
		updatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config.MaxPerVendor > 0 {
		open := 0
		for _, other := range s.drafts {
			if other.VendorID == vendorID {
				open++
			}
		}
		if open >= s.config.MaxPerVendor {
			return nil, ErrDraftLimit
		}
	}
	s.drafts[d.ID] = d
	return d, nil
}

// get hides drafts owned by other vendors behind ErrDraftNotFound.
func (s *DraftService) get(vendorID, draftID string) (*Draft, error) {
	s.mu.RLock()
	d, ok := s.drafts[draftID]
	s.mu.RUnlock()
	if !ok || d.VendorID != vendorID {
		return nil, ErrDraftNotFound
	}
	return d, nil
}

func (s *DraftService) remove(ctx context.Context, d *Draft) {
	s.mu.Lock()
	delete(s.drafts, d.ID)
	s.mu.Unlock()

	d.mu.Lock()
	d.removed = true
	d.generation++
	var released []models.StagedFile
	// An in-flight submission is still streaming these files; Submit
	// releases them once it returns.
	if d.submitting.Load() {
		d.releasePending = true
	} else {
		released = d.builder.StagedFiles()
	}
	d.mu.Unlock()

	s.files.Release(ctx, released...)
}

// load fetches productID and installs it, unless the draft moved on to
// another generation while the fetch was in flight.
func (s *DraftService) load(ctx context.Context, d *Draft, gen uint64, productID string) (*DraftView, error) {
	p, err := s.products.FetchProduct(ctx, productID)

	d.mu.Lock()
	defer d.mu.Unlock()
	log := logrus.WithFields(logrus.Fields{"draft_id": d.ID, "product_id": productID})

	if d.removed || d.generation != gen {
		log.Info("Discarding stale product fetch")
		return nil, ErrStaleResult
	}
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		log.WithError(err).Warn("Product fetch failed")
		d.notices = []Notice{{Source: "product", Message: "draft.load_failed"}}
		return d.view(), nil
	}

	d.builder = builder.FromProduct(p)
	d.notices = nil
	d.updatedAt = s.now()
	return d.view(), nil
}

// refresh replaces the builder with the stored product after a successful
// submission so that uploaded images show their stored URLs.
func (s *DraftService) refresh(ctx context.Context, d *Draft, gen uint64, productID string) {
	p, err := s.products.FetchProduct(ctx, productID)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.removed || d.generation != gen {
		return
	}
	if err != nil {
		logrus.WithError(err).WithField("product_id", productID).Warn("Failed to refresh submitted product")
		d.notices = []Notice{{Source: "product", Message: "draft.refresh_failed"}}
		return
	}
	d.builder = builder.FromProduct(p)
}

func emptyBuilder(productID string) *builder.Builder {
	p := models.NewProduct()
	p.ID = productID
	return builder.FromProduct(p)
}

// view must be called with d.mu held.
func (d *Draft) view() *DraftView {
	mode := DraftModeCreate
	if d.target != "" {
		mode = DraftModeEdit
	}
	notices := append([]Notice{}, d.notices...)

	product, err := json.Marshal(d.builder.Snapshot())
	if err != nil {
		logrus.WithError(err).WithField("draft_id", d.ID).Error("Failed to encode draft snapshot")
		product = []byte("null")
	}
	return &DraftView{
		ID:         d.ID,
		Mode:       mode,
		ProductID:  d.target,
		Submitting: d.submitting.Load(),
		Notices:    notices,
		CreatedAt:  d.createdAt,
		UpdatedAt:  d.updatedAt,
		Product:    product,
	}
}

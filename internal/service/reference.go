package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"referensi/internal/model"
	"referensi/internal/query"
	"referensi/internal/repository"
	"referensi/internal/schema"
	"referensi/internal/storage"
)

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrNotFound         = errors.New("document not found")
	ErrMalformedRecord  = schema.ErrMalformedRecord
	ErrStoreUnavailable = errors.New("document store unavailable")
)

// DefaultDiscoverSize is the number of documents Discover returns unless configured otherwise.
const DefaultDiscoverSize = 9

var tracer = otel.Tracer("referensi/internal/service")

// PageResult is one page of the filtered listing.
type PageResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// ReferenceService answers search and listing requests over the reference collection.
// Every document it returns has passed schema validation.
type ReferenceService interface {
	// Search returns all documents matching a required keyword, optionally within a category.
	Search(ctx context.Context, keyword string, categoryID *int64) ([]model.Document, error)

	// ListPage returns one page of documents; keyword and category are optional.
	ListPage(ctx context.Context, req query.PageRequest) (*PageResult, error)

	// Discover returns a random sample of documents for browsing.
	Discover(ctx context.Context) ([]model.Document, error)

	// Categories returns every category ordered by ID.
	Categories(ctx context.Context) ([]model.Category, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id int64) (*model.Document, error)

	// DownloadURL returns where the document file can be fetched from.
	DownloadURL(ctx context.Context, id int64) (string, error)
}

type referenceService struct {
	repo         repository.ReferenceRepository
	mirror       storage.Storage
	prefix       string
	expiry       time.Duration
	discoverSize int
}

// Option configures the service.
type Option func(*referenceService)

// WithMirror serves downloads from presigned object storage URLs when the object exists.
func WithMirror(store storage.Storage, prefix string, expiry time.Duration) Option {
	return func(s *referenceService) {
		s.mirror = store
		s.prefix = prefix
		s.expiry = expiry
	}
}

// WithDiscoverSize sets how many documents Discover samples.
func WithDiscoverSize(n int) Option {
	return func(s *referenceService) {
		if n > 0 {
			s.discoverSize = n
		}
	}
}

// NewReferenceService constructs a new ReferenceService.
func NewReferenceService(repo repository.ReferenceRepository, opts ...Option) ReferenceService {
	s := &referenceService{repo: repo, discoverSize: DefaultDiscoverSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *referenceService) Search(ctx context.Context, keyword string, categoryID *int64) (_ []model.Document, err error) {
	ctx, span := tracer.Start(ctx, "ReferenceService.Search", trace.WithAttributes(
		attribute.Int("keyword.length", len(keyword)),
		attribute.Bool("category.set", categoryID != nil),
	))
	defer func() { endSpan(span, err) }()

	if !query.ValidKeyword(keyword) {
		return nil, fmt.Errorf("%w: keyword is required and must be at most %d characters", ErrInvalidRequest, query.MaxKeywordLength)
	}

	f := query.PageRequest{Query: keyword, CategoryID: categoryID}.Filter()
	known, err := s.categoryKnown(ctx, f)
	if err != nil {
		return nil, err
	}
	if !known {
		return []model.Document{}, nil
	}

	rows, err := s.repo.Search(ctx, f)
	if err != nil {
		return nil, unavailable(err)
	}
	docs, err := schema.DecodeDocuments(rows)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("result.count", len(docs)))
	return docs, nil
}

func (s *referenceService) ListPage(ctx context.Context, req query.PageRequest) (_ *PageResult, err error) {
	req = req.Normalize()
	ctx, span := tracer.Start(ctx, "ReferenceService.ListPage", trace.WithAttributes(
		attribute.Bool("keyword.set", req.Query != ""),
		attribute.Bool("category.set", req.CategoryID != nil),
		attribute.Int("page", req.Page),
		attribute.Int("limit", req.Limit),
	))
	defer func() { endSpan(span, err) }()

	out := &PageResult{Items: []model.Document{}, Page: req.Page, Limit: req.Limit}

	f := req.Filter()
	known, err := s.categoryKnown(ctx, f)
	if err != nil {
		return nil, err
	}
	if !known {
		return out, nil
	}

	res, err := s.repo.List(ctx, f, repository.PageQuery{Limit: req.Limit, Offset: req.Offset()})
	if err != nil {
		return nil, unavailable(err)
	}
	docs, err := schema.DecodeDocuments(res.Items)
	if err != nil {
		return nil, err
	}
	out.Items = docs
	out.Total = res.Total
	span.SetAttributes(attribute.Int("result.total", res.Total))
	return out, nil
}

func (s *referenceService) Discover(ctx context.Context) (_ []model.Document, err error) {
	ctx, span := tracer.Start(ctx, "ReferenceService.Discover")
	defer func() { endSpan(span, err) }()

	rows, err := s.repo.Random(ctx, s.discoverSize)
	if err != nil {
		return nil, unavailable(err)
	}
	return schema.DecodeDocuments(rows)
}

func (s *referenceService) Categories(ctx context.Context) (_ []model.Category, err error) {
	ctx, span := tracer.Start(ctx, "ReferenceService.Categories")
	defer func() { endSpan(span, err) }()

	cats, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	return cats, nil
}

func (s *referenceService) Get(ctx context.Context, id int64) (_ *model.Document, err error) {
	ctx, span := tracer.Start(ctx, "ReferenceService.Get", trace.WithAttributes(attribute.Int64("document.id", id)))
	defer func() { endSpan(span, err) }()

	return s.get(ctx, id)
}

func (s *referenceService) get(ctx context.Context, id int64) (*model.Document, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be a positive integer", ErrInvalidRequest)
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, unavailable(err)
	}
	doc, err := schema.DecodeDocument(*row)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *referenceService) DownloadURL(ctx context.Context, id int64) (_ string, err error) {
	ctx, span := tracer.Start(ctx, "ReferenceService.DownloadURL", trace.WithAttributes(attribute.Int64("document.id", id)))
	defer func() { endSpan(span, err) }()

	doc, err := s.get(ctx, id)
	if err != nil {
		return "", err
	}
	if s.mirror == nil {
		return doc.DownloadURL, nil
	}

	// Mirror problems are not fatal; the stored URL is always a valid target.
	key := storage.ObjectKey(s.prefix, doc.FolderID, doc.FileID)
	if _, err := s.mirror.Stat(ctx, key); err != nil {
		span.AddEvent("mirror.miss", trace.WithAttributes(attribute.String("mirror.key", key), attribute.String("error", err.Error())))
		return doc.DownloadURL, nil
	}
	u, err := s.mirror.PresignGet(ctx, key, s.expiry)
	if err != nil {
		span.AddEvent("mirror.presign_failed", trace.WithAttributes(attribute.String("mirror.key", key), attribute.String("error", err.Error())))
		return doc.DownloadURL, nil
	}
	span.SetAttributes(attribute.Bool("mirror.hit", true))
	return u, nil
}

// categoryKnown reports whether the filter's category can match anything.
// No category filter is always known.
func (s *referenceService) categoryKnown(ctx context.Context, f query.Filter) (bool, error) {
	if f.CategoryID == nil {
		return true, nil
	}
	if !f.KnownCategory() {
		return false, nil
	}
	ok, err := s.repo.CategoryExists(ctx, *f.CategoryID)
	if err != nil {
		return false, unavailable(err)
	}
	return ok, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tarvee/internal/catalog"
	"tarvee/internal/metrics"
	"tarvee/internal/model"
	"tarvee/internal/repository"
	"tarvee/internal/storage"
	"tarvee/internal/validation"
)

var (
	ErrOwnerRequired = errors.New("owner id is required")
	ErrUpload        = errors.New("image upload failed")
	ErrSave          = errors.New("listing save failed")
)

// CreateListingInput is a listing submission together with its image stream.
type CreateListingInput struct {
	Title            string
	Description      string
	Category         string
	Condition        string
	Price            float64
	Image            io.Reader
	ImageFilename    string
	ImageContentType string
	ImageSize        int64
}

// ListingService defines the catalog use cases.
type ListingService interface {
	// Feed returns the current catalog narrowed by q, newest first.
	Feed(ctx context.Context, q catalog.Query) ([]model.Listing, error)

	// Create validates in, uploads the image, resolves its URL and stores the listing.
	// Nothing leaves the process until validation has passed. If the listing
	// cannot be stored the uploaded image is deleted again.
	Create(ctx context.Context, ownerID string, in CreateListingInput) (*model.Listing, error)
}

// ListingOptions tune a ListingService. Zero values pick defaults.
type ListingOptions struct {
	MaxImageBytes int64
	Logger        *slog.Logger
	Metrics       metrics.Recorder
	Now           func() time.Time
}

type listingService struct {
	source   catalog.Source
	repo     repository.ListingRepository
	store    storage.Storage
	urls     storage.URLResolver
	validate *validation.Validator
	policy   *bluemonday.Policy
	maxImage int64
	log      *slog.Logger
	metrics  metrics.Recorder
	now      func() time.Time
	tracer   trace.Tracer
}

// NewListingService wires the catalog source, the listing write boundary and image storage.
func NewListingService(source catalog.Source, repo repository.ListingRepository, store storage.Storage, urls storage.URLResolver, opts ListingOptions) ListingService {
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = 5 << 20
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &listingService{
		source:   source,
		repo:     repo,
		store:    store,
		urls:     urls,
		validate: validation.New(),
		policy:   bluemonday.StrictPolicy(),
		maxImage: opts.MaxImageBytes,
		log:      opts.Logger.With(slog.String("component", "listings")),
		metrics:  opts.Metrics,
		now:      opts.Now,
		tracer:   otel.Tracer("tarvee/internal/service"),
	}
}

func (s *listingService) Feed(ctx context.Context, q catalog.Query) ([]model.Listing, error) {
	all, err := s.source.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return catalog.Filter(all, q), nil
}

func (s *listingService) Create(ctx context.Context, ownerID string, in CreateListingInput) (*model.Listing, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}

	// Rules apply to the text that will be stored.
	in.Title = s.plainText(in.Title)
	in.Description = s.plainText(in.Description)

	if err := s.check(in); err != nil {
		s.metrics.ListingCreateFailed("validation")
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "listing.create", trace.WithAttributes(
		attribute.String("listing.category", in.Category),
		attribute.Int64("listing.image_size", in.ImageSize),
	))
	defer span.End()

	key := storage.ImageKey(ownerID, in.ImageFilename, s.now())
	obj, err := s.store.Put(ctx, key, in.Image, storage.PutObjectOptions{
		Size:        in.ImageSize,
		ContentType: in.ImageContentType,
		Metadata: map[string]string{
			"original-filename": in.ImageFilename,
			"owner-id":          ownerID,
		},
	})
	if err != nil {
		return nil, s.fail(span, "upload", fmt.Errorf("%w: upload to storage: %v", ErrUpload, err))
	}
	if obj.Key != "" {
		key = obj.Key
	}

	imageURL, err := s.urls.URL(ctx, key)
	if err != nil {
		return nil, s.fail(span, "url", s.rollback(ctx, key, fmt.Errorf("%w: resolve image url: %v", ErrUpload, err)))
	}

	listing := &model.Listing{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Condition:   model.Condition(in.Condition),
		Price:       in.Price,
		ImageURL:    imageURL,
		OwnerID:     ownerID,
	}
	stored, err := s.repo.Create(ctx, listing)
	if err != nil {
		return nil, s.fail(span, "write", s.rollback(ctx, key, fmt.Errorf("%w: db save failed: %v", ErrSave, err)))
	}

	s.metrics.ListingCreated(stored.Category)
	s.log.InfoContext(ctx, "listing_created",
		slog.String("listing_id", stored.ID),
		slog.String("owner_id", ownerID),
		slog.String("category", stored.Category),
		slog.String("object_key", key),
	)
	return stored, nil
}

// check runs every field rule and reports all failures at once.
func (s *listingService) check(in CreateListingInput) error {
	size := in.ImageSize
	if in.Image == nil {
		size = 0
	}
	err := s.validate.Struct(validation.ListingForm{
		Title:         in.Title,
		Description:   in.Description,
		Category:      in.Category,
		Condition:     in.Condition,
		Price:         in.Price,
		ImageSize:     size,
		ImageType:     in.ImageContentType,
		ImageFilename: in.ImageFilename,
	})

	var fields validation.FieldErrors
	switch {
	case err == nil:
		fields = validation.FieldErrors{}
	case errors.As(err, &fields):
	default:
		return err
	}

	if size > s.maxImage {
		if _, set := fields["image"]; !set {
			fields["image"] = "The image must be " + humanize.IBytes(uint64(s.maxImage)) + " or smaller."
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// plainText strips markup and stores the result unescaped, so "&" stays "&".
func (s *listingService) plainText(v string) string {
	return html.UnescapeString(s.policy.Sanitize(v))
}

// rollback removes an uploaded object after a later step failed.
func (s *listingService) rollback(ctx context.Context, key string, cause error) error {
	if delErr := s.store.Delete(ctx, key); delErr != nil {
		s.log.ErrorContext(ctx, "listing_rollback_failed",
			slog.String("object_key", key),
			slog.String("error", delErr.Error()),
		)
		return fmt.Errorf("%w; rollback delete failed: %v", cause, delErr)
	}
	return cause
}

func (s *listingService) fail(span trace.Span, stage string, err error) error {
	s.metrics.ListingCreateFailed(stage)
	span.RecordError(err)
	span.SetStatus(codes.Error, stage)
	s.log.Error("listing_create_failed", slog.String("stage", stage), slog.String("error", err.Error()))
	return err
}

package handler

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"

	"tarvee/internal/auth"
	"tarvee/internal/catalog"
	"tarvee/internal/http/middleware"
	"tarvee/internal/model"
	"tarvee/internal/service"
	"tarvee/internal/validation"
)

const emptyFeedMessage = "No books found. Try a different search or category!"

// feedResponse is a catalog page. Empty is set when no listing matched so
// clients can render the placeholder with Message.
type feedResponse struct {
	Data     []model.Listing `json:"data"`
	Empty    bool            `json:"empty"`
	Message  string          `json:"message,omitempty"`
	Category *model.Category `json:"category,omitempty"`
}

func newFeedResponse(listings []model.Listing) feedResponse {
	if listings == nil {
		listings = []model.Listing{}
	}
	res := feedResponse{Data: listings}
	if len(listings) == 0 {
		res.Empty = true
		res.Message = emptyFeedMessage
	}
	return res
}

// ListCategories godoc
// @Summary Category and condition options
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/categories [get]
func ListCategories() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"categories": model.Categories,
			"conditions": model.Conditions,
		})
	}
}

// ListListings godoc
// @Summary Search the catalog
// @Description Newest first. Both filters are optional.
// @Tags catalog
// @Produce json
// @Param q query string false "case-insensitive title search"
// @Param category query string false "category slug"
// @Success 200 {object} feedResponse
// @Failure 500 {object} errorPayload
// @Router /api/listings [get]
func ListListings(svc service.ListingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := catalog.Query{
			Category: c.Query("category"),
			Search:   c.Query("q"),
		}
		listings, err := svc.Feed(c.UserContext(), q)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(newFeedResponse(listings))
	}
}

// ListCategoryListings godoc
// @Summary Listings in one category
// @Tags catalog
// @Produce json
// @Param slug path string true "category slug"
// @Param q query string false "case-insensitive title search"
// @Success 200 {object} feedResponse
// @Failure 404 {object} errorPayload
// @Router /api/categories/{slug}/listings [get]
func ListCategoryListings(svc service.ListingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cat, ok := model.CategoryBySlug(c.Params("slug"))
		if !ok {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "category not found")
		}
		listings, err := svc.Feed(c.UserContext(), catalog.Query{Category: cat.Slug, Search: c.Query("q")})
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		res := newFeedResponse(listings)
		res.Category = &cat
		return c.JSON(res)
	}
}

// SellPage returns what the listing form needs, or sends anonymous visitors home.
func SellPage() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return c.Redirect("/?notice=auth_required", fiber.StatusSeeOther)
		}
		return c.JSON(fiber.Map{
			"user":       user,
			"categories": model.Categories,
			"conditions": model.Conditions,
		})
	}
}

// CreateListing godoc
// @Summary Create a listing
// @Description Multipart form. The image is stored first, then the listing.
// @Tags catalog
// @Accept mpfd
// @Produce json
// @Param title formData string true "title, at least 3 characters"
// @Param description formData string true "description, at least 10 characters"
// @Param category formData string true "category slug"
// @Param condition formData string true "new or pre-loved"
// @Param price formData number true "positive price"
// @Param image formData file true "cover image"
// @Success 201 {object} model.Listing
// @Failure 401 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /api/listings [post]
func CreateListing(svc service.ListingService, log *slog.Logger) fiber.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return auth.ErrUnauthenticated
		}

		in := service.CreateListingInput{
			Title:       c.FormValue("title"),
			Description: c.FormValue("description"),
			Category:    c.FormValue("category"),
			Condition:   c.FormValue("condition"),
		}
		// An unparsable price stays zero and fails validation.
		if p := strings.TrimSpace(c.FormValue("price")); p != "" {
			if v, err := strconv.ParseFloat(p, 64); err == nil {
				in.Price = v
			}
		}

		if fh, err := c.FormFile("image"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			defer f.Close()

			// The stored content type comes from the bytes, not the client.
			mt, err := mimetype.DetectReader(f)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot read uploaded file")
			}
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot read uploaded file")
			}

			in.Image = f
			in.ImageFilename = fh.Filename
			in.ImageContentType = mt.String()
			in.ImageSize = fh.Size
		}

		listing, err := svc.Create(c.UserContext(), user.ID, in)
		if err != nil {
			var fields validation.FieldErrors
			switch {
			case errors.As(err, &fields):
				return writeValidation(c, titleUploadFailed, fields)
			case errors.Is(err, service.ErrUpload), errors.Is(err, service.ErrSave):
				return writeNotice(c, fiber.StatusBadGateway, "UPLOAD_FAILED", titleUploadFailed,
					"Something went wrong. Please try again.")
			case errors.Is(err, service.ErrOwnerRequired):
				return auth.ErrUnauthenticated
			default:
				log.ErrorContext(c.UserContext(), "listing_create_error",
					slog.String("request_id", middleware.RequestIDFrom(c)),
					slog.String("error", err.Error()),
				)
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}

		c.Location("/")
		return c.Status(fiber.StatusCreated).JSON(listing)
	}
}

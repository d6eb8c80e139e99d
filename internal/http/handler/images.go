package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"tarvee/internal/storage"
)

// ServeImage streams a listing image out of object storage. Only keys under
// books/ are served.
func ServeImage(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("*")
		if !strings.HasPrefix(key, "books/") || strings.Contains(key, "..") {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "image not found")
		}

		body, info, err := store.Get(c.UserContext(), key)
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "image not found")
			}
			return writeError(c, fiber.StatusBadGateway, "STORAGE_UNAVAILABLE", "image temporarily unavailable")
		}

		ct := info.ContentType
		if ct == "" {
			ct = fiber.MIMEOctetStream
		}
		c.Set(fiber.HeaderContentType, ct)
		// Served from the app origin, so the browser must neither sniff nor run it.
		c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
		c.Set(fiber.HeaderContentSecurityPolicy, "sandbox")
		// Keys embed the upload time, so an object never changes.
		c.Set(fiber.HeaderCacheControl, "public, max-age=604800, immutable")
		if info.ETag != "" {
			c.Set(fiber.HeaderETag, `"`+info.ETag+`"`)
		}
		return c.SendStream(body, int(info.Size))
	}
}

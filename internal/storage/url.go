package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

// MaxPresignExpiry is the longest validity S3 accepts for a presigned URL.
const MaxPresignExpiry = 7 * 24 * time.Hour

const maxFilenameLen = 100

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ImageKey builds the object key for a listing image:
// books/<ownerID>/<unix millis>_<filename>. The filename is reduced to a safe
// basename; an empty result becomes "image".
func ImageKey(ownerID, filename string, at time.Time) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if len(name) > maxFilenameLen {
		name = name[len(name)-maxFilenameLen:]
	}
	if name == "" {
		name = "image"
	}
	return fmt.Sprintf("books/%s/%d_%s", ownerID, at.UnixMilli(), name)
}

// NewURLResolver returns a resolver that joins keys onto publicBaseURL, or
// presigns GET URLs on store when publicBaseURL is empty.
func NewURLResolver(store Storage, publicBaseURL string) URLResolver {
	if publicBaseURL != "" {
		return publicURLs{base: strings.TrimRight(publicBaseURL, "/")}
	}
	return presignedURLs{store: store}
}

type publicURLs struct {
	base string
}

func (p publicURLs) URL(_ context.Context, key string) (string, error) {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return p.base + "/" + strings.Join(segments, "/"), nil
}

type presignedURLs struct {
	store Storage
}

func (p presignedURLs) URL(ctx context.Context, key string) (string, error) {
	return p.store.PresignGet(ctx, key, MaxPresignExpiry)
}

package worker

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"profiledeck/internal/deck"
	"profiledeck/internal/storage"
)

// objectReader is the slice of the storage client the inliner needs.
type objectReader interface {
	ReadObject(ctx context.Context, objectKey string) ([]byte, string, error)
}

// isObjectKey reports whether an image reference points into the object
// store rather than being an absolute URL or an already-inlined data URI.
func isObjectKey(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false
	}
	return !strings.HasPrefix(ref, "http://") &&
		!strings.HasPrefix(ref, "https://") &&
		!strings.HasPrefix(ref, "data:")
}

// inlineDeckImages rewrites every object-store image reference in the deck
// (element images and slide backgrounds) as a data URI, so the captured
// surface needs no network access.
//
// A missing object is not fatal: the slot is cleared so the surface shows
// the select-image placeholder, and the key is reported so the caller can
// attach a warning. A missing bucket is a system error and aborts.
func inlineDeckImages(ctx context.Context, store objectReader, d *deck.Deck) ([]string, error) {
	var missing []string
	seen := make(map[string]struct{})

	record := func(key string) {
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		missing = append(missing, key)
	}

	inline := func(ref string) (string, error) {
		data, contentType, err := store.ReadObject(ctx, ref)
		if err != nil {
			if storage.IsNoSuchBucket(err) {
				return "", &deck.UpstreamError{Op: "read bucket", Err: err}
			}
			if storage.IsNoSuchKey(err) {
				record(ref)
				return "", nil
			}
			return "", &deck.UpstreamError{Op: fmt.Sprintf("fetch image %q", ref), Err: err}
		}
		if !strings.HasPrefix(contentType, "image/") {
			contentType = "image/png"
		}
		return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
	}

	for i := range d.Slides {
		slide := &d.Slides[i]
		if isObjectKey(slide.Background) {
			uri, err := inline(slide.Background)
			if err != nil {
				return missing, err
			}
			slide.Background = uri
		}
		for j := range slide.Elements {
			el := &slide.Elements[j]
			if el.Content.Kind != deck.KindImage || !isObjectKey(el.Content.ImageURL) {
				continue
			}
			uri, err := inline(el.Content.ImageURL)
			if err != nil {
				return missing, err
			}
			el.Content.ImageURL = uri
		}
	}

	return missing, nil
}

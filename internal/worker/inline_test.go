package worker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"

	"profiledeck/internal/deck"
)

// fakeObjectReader serves objects from a map and returns S3-style errors for
// everything else.
type fakeObjectReader struct {
	objects      map[string][]byte
	bucketGone   bool
	contentTypes map[string]string
}

func (f *fakeObjectReader) ReadObject(_ context.Context, objectKey string) ([]byte, string, error) {
	if f.bucketGone {
		return nil, "", minio.ErrorResponse{Code: "NoSuchBucket", Message: "The specified bucket does not exist"}
	}
	data, ok := f.objects[objectKey]
	if !ok {
		return nil, "", minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist"}
	}
	contentType := f.contentTypes[objectKey]
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return data, contentType, nil
}

func imageDeck(refs [deck.SlideCount]string) deck.Deck {
	var d deck.Deck
	for i := range d.Slides {
		d.Slides[i].Number = i + 1
		if refs[i] == "" {
			continue
		}
		d.Slides[i].Elements = []deck.PlacedElement{{
			Element: deck.Element{Type: deck.ElementImage, SlideNumber: i + 1},
			Content: deck.ResolvedContent{Kind: deck.KindImage, ImageURL: refs[i]},
		}}
	}
	return d
}

func TestInlineDeckImagesRewritesObjectKeys(t *testing.T) {
	store := &fakeObjectReader{objects: map[string][]byte{
		"photos/1/beach.jpg": []byte("jpegbytes"),
	}}
	d := imageDeck([deck.SlideCount]string{"photos/1/beach.jpg", "", ""})

	missing, err := inlineDeckImages(context.Background(), store, &d)
	if err != nil {
		t.Fatalf("inlineDeckImages: %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("missing = %v, want none", missing)
	}
	got := d.Slides[0].Elements[0].Content.ImageURL
	if !strings.HasPrefix(got, "data:image/jpeg;base64,") {
		t.Errorf("image URL = %q, want data URI", got)
	}
}

func TestInlineDeckImagesLeavesExternalURLsAlone(t *testing.T) {
	store := &fakeObjectReader{}
	refs := [deck.SlideCount]string{
		"https://cdn.example.com/a.png",
		"data:image/png;base64,AAAA",
		"http://cdn.example.com/b.png",
	}
	d := imageDeck(refs)

	missing, err := inlineDeckImages(context.Background(), store, &d)
	if err != nil {
		t.Fatalf("inlineDeckImages: %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("missing = %v, want none", missing)
	}
	for i, slide := range d.Slides {
		if got := slide.Elements[0].Content.ImageURL; got != refs[i] {
			t.Errorf("slide %d image URL = %q, want untouched %q", slide.Number, got, refs[i])
		}
	}
}

func TestInlineDeckImagesMissingKeyClearsSlot(t *testing.T) {
	store := &fakeObjectReader{objects: map[string][]byte{}}
	d := imageDeck([deck.SlideCount]string{"photos/1/gone.jpg", "", ""})
	d.Slides[1].Background = "backgrounds/gone.png"

	missing, err := inlineDeckImages(context.Background(), store, &d)
	if err != nil {
		t.Fatalf("inlineDeckImages: %v", err)
	}
	if len(missing) != 2 {
		t.Fatalf("missing = %v, want both keys", missing)
	}
	if got := d.Slides[0].Elements[0].Content.ImageURL; got != "" {
		t.Errorf("missing element image = %q, want cleared", got)
	}
	if got := d.Slides[1].Background; got != "" {
		t.Errorf("missing background = %q, want cleared", got)
	}
}

func TestInlineDeckImagesMissingKeyReportedOnce(t *testing.T) {
	store := &fakeObjectReader{objects: map[string][]byte{}}
	d := imageDeck([deck.SlideCount]string{"photos/1/gone.jpg", "photos/1/gone.jpg", ""})

	missing, err := inlineDeckImages(context.Background(), store, &d)
	if err != nil {
		t.Fatalf("inlineDeckImages: %v", err)
	}
	if len(missing) != 1 || missing[0] != "photos/1/gone.jpg" {
		t.Errorf("missing = %v, want single deduplicated key", missing)
	}
}

func TestInlineDeckImagesMissingBucketFails(t *testing.T) {
	store := &fakeObjectReader{bucketGone: true}
	d := imageDeck([deck.SlideCount]string{"photos/1/beach.jpg", "", ""})

	_, err := inlineDeckImages(context.Background(), store, &d)
	if err == nil {
		t.Fatal("expected error for missing bucket")
	}
	var upstream *deck.UpstreamError
	if !errors.As(err, &upstream) {
		t.Errorf("error = %v, want *deck.UpstreamError", err)
	}
}

func TestInlineDeckImagesDefaultsContentType(t *testing.T) {
	store := &fakeObjectReader{
		objects:      map[string][]byte{"photos/1/raw.bin": []byte("x")},
		contentTypes: map[string]string{"photos/1/raw.bin": "application/octet-stream"},
	}
	d := imageDeck([deck.SlideCount]string{"photos/1/raw.bin", "", ""})

	if _, err := inlineDeckImages(context.Background(), store, &d); err != nil {
		t.Fatalf("inlineDeckImages: %v", err)
	}
	if got := d.Slides[0].Elements[0].Content.ImageURL; !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Errorf("image URL = %q, want image/png fallback", got)
	}
}

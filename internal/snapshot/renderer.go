// Package snapshot turns composed HTML surfaces into raster pages and PDF
// documents using a headless chromium driven by go-rod.
package snapshot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"profiledeck/internal/render"
)

// Renderer implements deck.SurfaceCapturer. Each capture runs in a fresh
// page of a freshly launched browser so one bad surface can never poison the
// next; export volume is low enough that launch cost does not matter.
type Renderer struct {
	logger  *slog.Logger
	timeout time.Duration
}

// NewRenderer builds a renderer with the given per-capture timeout.
func NewRenderer(logger *slog.Logger, timeout time.Duration) *Renderer {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Renderer{logger: logger, timeout: timeout}
}

// CaptureSurface renders one surface and screenshots the slide canvas as a
// PNG sized to the surface dimensions.
func (r *Renderer) CaptureSurface(ctx context.Context, surface string) ([]byte, error) {
	page, cleanup, err := r.openSurface(ctx, surface)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             render.SurfaceWidth,
		Height:            render.SurfaceHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	data, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return data, nil
}

// RenderPDF prints a multi-slide document to a single PDF, one page per
// slide, page size taken from the document's @page rule so each page keeps
// the slide aspect ratio.
func (r *Renderer) RenderPDF(ctx context.Context, document string) ([]byte, error) {
	page, cleanup, err := r.openSurface(ctx, document)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		MarginTop:         float64Ptr(0),
		MarginBottom:      float64Ptr(0),
		MarginLeft:        float64Ptr(0),
		MarginRight:       float64Ptr(0),
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("export pdf: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read pdf bytes: %w", err)
	}
	return data, nil
}

func (r *Renderer) openSurface(ctx context.Context, surface string) (_ *rod.Page, cleanup func(), err error) {
	cleanup = func() {}
	defer func() {
		if err != nil {
			cleanup()
		}
	}()

	launch := launcher.New().
		Headless(true).
		NoSandbox(true)

	if path, ok := launcher.LookPath(); ok {
		launch = launch.Bin(path)
	}

	browserURL, err := launch.Launch()
	if err != nil {
		return nil, cleanup, fmt.Errorf("launch chromium: %w", err)
	}
	cleanup = launch.Cleanup

	browser := rod.New().Context(ctx).ControlURL(browserURL).Timeout(r.timeout)
	if err := browser.Connect(); err != nil {
		return nil, cleanup, fmt.Errorf("connect browser: %w", err)
	}
	cleanup = func() {
		_ = browser.Close()
		launch.Cleanup()
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, cleanup, fmt.Errorf("create page: %w", err)
	}
	cleanup = func() {
		_ = page.Close()
		_ = browser.Close()
		launch.Cleanup()
	}

	page = page.Timeout(r.timeout)
	if err := page.SetDocumentContent(surface); err != nil {
		return nil, cleanup, fmt.Errorf("set document content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, cleanup, fmt.Errorf("wait load: %w", err)
	}
	// Inlined data-URI images decode synchronously, but give remote URLs a
	// chance to settle before capture.
	if err := page.WaitIdle(5 * time.Second); err != nil {
		r.logger.Warn("surface did not reach idle before capture", slog.Any("error", err))
	}

	return page, cleanup, nil
}

func float64Ptr(value float64) *float64 {
	return &value
}

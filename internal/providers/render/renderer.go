// Package render turns a scene's visual spec into a still image by loading a
// locally rendered page in a headless browser and capturing the viewport.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"videogen/internal/domain"
	"videogen/internal/infra"
)

// Options configures the headless capture sessions.
type Options struct {
	Width   int
	Height  int
	Timeout time.Duration
	Logger  *infra.Logger
}

// Renderer captures fixed-resolution still images of visual specs. Each
// capture runs in its own isolated browser session that is always closed,
// whether the capture succeeds, times out, or fails.
type Renderer struct {
	width   int
	height  int
	timeout time.Duration
	logger  *infra.Logger
}

// NewRenderer constructs a renderer with the given viewport and wait bound.
func NewRenderer(opts Options) *Renderer {
	width := opts.Width
	if width <= 0 {
		width = 1920
	}
	height := opts.Height
	if height <= 0 {
		height = 1080
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Renderer{width: width, height: height, timeout: timeout, logger: logger}
}

// Capture renders the visual spec into an HTML document at htmlPath, loads it
// in a fresh headless session, waits for the page's ready marker, and writes a
// PNG screenshot to imagePath.
func (r *Renderer) Capture(ctx context.Context, spec domain.VisualSpec, htmlPath, imagePath string) error {
	if err := WriteDocument(spec, htmlPath); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}

	pageURL := &url.URL{Scheme: "file", Path: htmlPath}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("allow-file-access-from-files", true),
		chromedp.Flag("hide-scrollbars", true),
	)...)
	defer cancelAlloc()

	sessionCtx, cancelSession := chromedp.NewContext(allocCtx)
	defer cancelSession()

	captureCtx, cancelCapture := context.WithTimeout(sessionCtx, r.timeout)
	defer cancelCapture()

	start := time.Now()
	var shot []byte
	err := chromedp.Run(captureCtx,
		chromedp.EmulateViewport(int64(r.width), int64(r.height)),
		chromedp.Navigate(pageURL.String()),
		chromedp.WaitReady("#"+readyID, chromedp.ByQuery),
		chromedp.CaptureScreenshot(&shot),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("%w: ready marker did not appear within %s", domain.ErrRenderTimeout, r.timeout)
		}
		return fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}

	if err := os.WriteFile(imagePath, shot, 0o644); err != nil {
		return fmt.Errorf("%w: write image: %v", domain.ErrRenderFailed, err)
	}

	r.logger.Debug().
		Str("image", imagePath).
		Int("width", r.width).
		Int("height", r.height).
		Dur("elapsed", time.Since(start)).
		Msg("render: captured scene image")

	return nil
}

package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"optjournal/internal/types"
)

var (
	headlessOnce sync.Once
	headlessErr  error
)

// EnsureHeadlessAvailable probes for a usable headless browser once per
// process. PNG export stays unavailable (and the HTML page keeps working)
// when no browser is installed.
func EnsureHeadlessAvailable(ctx context.Context) error {
	headlessOnce.Do(func() {
		targetCtx := ctx
		if targetCtx == nil {
			targetCtx = context.Background()
		}
		parent, cancel := chromedp.NewContext(targetCtx)
		if cancel != nil {
			defer cancel()
		}
		headlessErr = chromedp.Run(parent)
	})
	return headlessErr
}

// RenderProfitPNG renders the performance page to a PNG screenshot via a
// headless browser.
func RenderProfitPNG(ctx context.Context, positions []types.Position) ([]byte, error) {
	if err := EnsureHeadlessAvailable(ctx); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := RenderProfitHTML(&buf, positions); err != nil {
		return nil, err
	}
	height := curveHeightPx + barHeightPx + 80
	return renderHTMLToPNG(ctx, buf.Bytes(), chartWidthPx, height)
}

func renderHTMLToPNG(ctx context.Context, html []byte, width, height int) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, 20*time.Second)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500 * time.Millisecond),
		chromedp.FullScreenshot(&screenshot, 90),
	}
	if err := chromedp.Run(timeoutCtx, tasks); err != nil {
		return nil, err
	}
	return screenshot, nil
}

package rod

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"net/url"
	"sync"
	"time"

	"behat-locator/internal/application/port/output"
	"behat-locator/internal/domain/dom"
	"behat-locator/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

const (
	defaultSlowMotion = 0
	defaultTimeout    = 10 * time.Second
	maxScreenshotW    = 1024
)

var (
	ErrInvalidURL    = errors.New("invalid url")
	ErrBrowserClosed = errors.New("browser is closed")
)

type BrowserAdapter struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration
	logger   output.LoggerPort

	mu     sync.Mutex
	closed bool
}

type BrowserConfig struct {
	Headless   bool
	SlowMotion time.Duration
	Timeout    time.Duration
	NoSandbox  bool
	DevTools   bool
	// DisableSecurityFeatures turns off web security so file:// test
	// pages can reach local app servers.
	DisableSecurityFeatures bool
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:   false,
		SlowMotion: defaultSlowMotion,
		Timeout:    defaultTimeout,
	}
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig, logger output.LoggerPort) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		Devtools(cfg.DevTools).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain")
	if cfg.DisableSecurityFeatures {
		l = l.Set("disable-web-security").
			Set("allow-running-insecure-content")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		ControlURL(controlURL).
		SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	logger.Info("browser started", "headless", cfg.Headless, "timeout", cfg.Timeout.String())

	return &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
		logger:   logger,
	}, nil
}

func (b *BrowserAdapter) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed && b.page != nil
}

func (b *BrowserAdapter) Navigate(ctx context.Context, rawURL string) error {
	if err := validateURL(rawURL); err != nil {
		return err
	}
	p, err := b.pageFor(ctx)
	if err != nil {
		return err
	}

	if err := p.Navigate(rawURL); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}
	b.logger.Info("navigated", "url", rawURL)
	return nil
}

// Snapshot captures the composed DOM, shadow roots included, together with
// the computed display and z-index of every element. Handles stay bound to
// their element for the life of the document, so a press started on an
// older snapshot never lands on another element.
func (b *BrowserAdapter) Snapshot(ctx context.Context) (*dom.Tree, error) {
	p, err := b.pageFor(ctx)
	if err != nil {
		return nil, err
	}

	res, err := p.Eval(snapshotJS)
	if err != nil {
		return nil, fmt.Errorf("capture dom: %w", err)
	}

	var root dom.SnapshotNode
	if err := json.Unmarshal([]byte(res.Value.Str()), &root); err != nil {
		return nil, fmt.Errorf("decode dom: %w", err)
	}
	return dom.FromSnapshot(&root), nil
}

func (b *BrowserAdapter) BoundingRect(ctx context.Context, h dom.Handle) (entity.Rect, error) {
	res, err := b.evalHandle(ctx, rectJS, h)
	if err != nil {
		return entity.Rect{}, err
	}
	var rect entity.Rect
	if err := json.Unmarshal([]byte(res.Value.Str()), &rect); err != nil {
		return entity.Rect{}, fmt.Errorf("decode rect: %w", err)
	}
	return rect, nil
}

func (b *BrowserAdapter) ScrollIntoView(ctx context.Context, h dom.Handle) error {
	_, err := b.evalHandle(ctx, scrollJS, h)
	return err
}

func (b *BrowserAdapter) AnimationFrame(ctx context.Context) error {
	p, err := b.pageFor(ctx)
	if err != nil {
		return err
	}
	if _, err := p.Eval(frameJS); err != nil {
		return fmt.Errorf("animation frame: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) DispatchMouse(ctx context.Context, h dom.Handle, ev entity.MouseEvent) error {
	_, err := b.evalHandle(ctx, mouseJS, h, string(ev.Type), ev.ClientX, ev.ClientY)
	return err
}

func (b *BrowserAdapter) Click(ctx context.Context, h dom.Handle) error {
	_, err := b.evalHandle(ctx, clickJS, h)
	return err
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	p, err := b.pageFor(ctx)
	if err != nil {
		return nil, err
	}

	imgBytes, err := p.Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > maxScreenshotW {
		img = imaging.Resize(img, maxScreenshotW, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

func (b *BrowserAdapter) CurrentURL() string {
	if !b.IsReady() {
		return ""
	}
	info, err := b.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (b *BrowserAdapter) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true

	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
	b.logger.Info("browser closed")
}

func (b *BrowserAdapter) pageFor(ctx context.Context) (*rod.Page, error) {
	if !b.IsReady() {
		return nil, ErrBrowserClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return b.page.Context(ctx).Timeout(b.timeout), nil
}

func (b *BrowserAdapter) evalHandle(ctx context.Context, js string, h dom.Handle, args ...any) (*proto.RuntimeRemoteObject, error) {
	p, err := b.pageFor(ctx)
	if err != nil {
		return nil, err
	}
	res, err := p.Eval(js, append([]any{int(h)}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("element %d: %w", h, err)
	}
	return res, nil
}

func validateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	switch u.Scheme {
	case "http", "https", "file":
		return nil
	case "about":
		if rawURL == "about:blank" {
			return nil
		}
	}
	return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
}

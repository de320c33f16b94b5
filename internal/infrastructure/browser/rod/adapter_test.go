package rod

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"behat-locator/internal/domain/dom"
	"behat-locator/internal/domain/entity"
	"behat-locator/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func requireBrowser(t *testing.T) {
	t.Helper()
	if os.Getenv("LOCATOR_BROWSER_TESTS") == "" {
		t.Skip("set LOCATOR_BROWSER_TESTS=1 to run tests against a real browser")
	}
}

func newTestAdapter(t *testing.T) *BrowserAdapter {
	t.Helper()
	requireBrowser(t)

	cfg := DefaultConfig()
	cfg.Headless = true
	cfg.NoSandbox = true

	adapter, err := NewBrowserAdapter(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(adapter.Close)
	return adapter
}

func serve(t *testing.T, page string) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, page)
	}))
	t.Cleanup(server.Close)
	return server.URL
}

func findByID(tree *dom.Tree, id string) *html.Node {
	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if v, ok := dom.Attr(n, "id"); ok && v == id {
			found = n
			return
		}
		if root := tree.ShadowRoot(n); root != nil {
			walk(root)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(tree.Document)
	return found
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Headless)
	assert.Equal(t, time.Duration(defaultSlowMotion), cfg.SlowMotion)
	assert.Equal(t, defaultTimeout, cfg.Timeout)
	assert.False(t, cfg.NoSandbox, "Should be secure by default")
	assert.False(t, cfg.DevTools)
	assert.False(t, cfg.DisableSecurityFeatures, "Should be secure by default")
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"http", "http://localhost:8100", false},
		{"https", "https://example.com/course", false},
		{"file", "file:///tmp/page.html", false},
		{"about blank", "about:blank", false},
		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"javascript", "javascript:alert(1)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateURL(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBrowserAdapter_IsReady(t *testing.T) {
	adapter := newTestAdapter(t)

	assert.True(t, adapter.IsReady())
	adapter.Close()
	assert.False(t, adapter.IsReady())

	_, err := adapter.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrBrowserClosed)
}

func TestBrowserAdapter_Navigate(t *testing.T) {
	adapter := newTestAdapter(t)
	url := serve(t, BasicHTML)

	require.NoError(t, adapter.Navigate(context.Background(), url))
	assert.Equal(t, url+"/", adapter.CurrentURL())
}

func TestBrowserAdapter_SnapshotIncludesShadowRoots(t *testing.T) {
	adapter := newTestAdapter(t)
	require.NoError(t, adapter.Navigate(context.Background(), serve(t, ShadowHTML)))

	tree, err := adapter.Snapshot(context.Background())
	require.NoError(t, err)

	host := findByID(tree, "host")
	require.NotNil(t, host)
	root := tree.ShadowRoot(host)
	require.NotNil(t, root, "shadow root should be captured")

	button := root.FirstChild
	require.NotNil(t, button)
	assert.Equal(t, "button", button.Data)
	label, _ := dom.Attr(button, "aria-label")
	assert.Equal(t, "Shadow action", label)
	assert.Equal(t, host, tree.Parent(button))

	hidden := findByID(tree, "hidden")
	require.NotNil(t, hidden)
	assert.True(t, tree.Hidden(hidden))
	assert.Equal(t, "Hidden text", tree.InnerText(hidden))
}

func TestBrowserAdapter_DispatchesMouseSequence(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()
	require.NoError(t, adapter.Navigate(ctx, serve(t, ClickHTML)))

	tree, err := adapter.Snapshot(ctx)
	require.NoError(t, err)
	h, ok := tree.Handle(findByID(tree, "btn"))
	require.True(t, ok)

	rect, err := adapter.BoundingRect(ctx, h)
	require.NoError(t, err)
	assert.Greater(t, rect.Width, 0.0)

	require.NoError(t, adapter.ScrollIntoView(ctx, h))
	require.NoError(t, adapter.AnimationFrame(ctx))
	x, y := rect.Center()
	require.NoError(t, adapter.DispatchMouse(ctx, h, entity.MouseEvent{Type: entity.MouseDown, ClientX: x, ClientY: y}))
	require.NoError(t, adapter.DispatchMouse(ctx, h, entity.MouseEvent{Type: entity.MouseUp, ClientX: x, ClientY: y}))
	require.NoError(t, adapter.Click(ctx, h))

	tree, err = adapter.Snapshot(ctx)
	require.NoError(t, err)
	log := findByID(tree, "log")
	require.NotNil(t, log)
	assert.Equal(t, "mousedown mouseup click", strings.TrimSpace(tree.InnerText(log)))
}

func TestBrowserAdapter_StaleHandle(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()
	require.NoError(t, adapter.Navigate(ctx, serve(t, BasicHTML)))

	err := adapter.Click(ctx, dom.Handle(100000))
	assert.Error(t, err)
}

func TestBrowserAdapter_HandlesSurviveNewSnapshots(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()
	require.NoError(t, adapter.Navigate(ctx, serve(t, OverlayHTML)))

	before, err := adapter.Snapshot(ctx)
	require.NoError(t, err)
	second, ok := before.Handle(findByID(before, "second"))
	require.True(t, ok)

	// New elements ahead of the target must not shift its handle.
	_, err = adapter.page.Eval(`() => {
		const list = document.getElementById('list');
		for (let i = 0; i < 3; i++) {
			const b = document.createElement('button');
			b.id = 'toast' + i;
			list.prepend(b);
		}
	}`)
	require.NoError(t, err)

	after, err := adapter.Snapshot(ctx)
	require.NoError(t, err)
	again, ok := after.Handle(findByID(after, "second"))
	require.True(t, ok)
	assert.Equal(t, second, again)

	require.NoError(t, adapter.Click(ctx, second))
	after, err = adapter.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", strings.TrimSpace(after.InnerText(findByID(after, "log"))))

	_, err = adapter.page.Eval(`() => document.getElementById('second').remove()`)
	require.NoError(t, err)
	_, err = adapter.Snapshot(ctx)
	require.NoError(t, err)
	assert.Error(t, adapter.Click(ctx, second), "a removed element is gone, not replaced")
}

func TestBrowserAdapter_HandlesDoNotCrossDocuments(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()
	url := serve(t, OverlayHTML)
	require.NoError(t, adapter.Navigate(ctx, url))

	tree, err := adapter.Snapshot(ctx)
	require.NoError(t, err)
	h, ok := tree.Handle(findByID(tree, "first"))
	require.True(t, ok)

	require.NoError(t, adapter.Navigate(ctx, url))
	_, err = adapter.Snapshot(ctx)
	require.NoError(t, err)

	assert.Error(t, adapter.Click(ctx, h))
}

func TestBrowserAdapter_Screenshot(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()
	require.NoError(t, adapter.Navigate(ctx, serve(t, BasicHTML)))

	shot, err := adapter.Screenshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", shot.Format)
	assert.LessOrEqual(t, shot.Width, maxScreenshotW)
	assert.NotEmpty(t, shot.Data)
}

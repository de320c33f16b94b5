package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"behat-locator/internal/application/service"
	"behat-locator/internal/domain/dom"
	"behat-locator/internal/domain/entity"
	"behat-locator/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBehat struct {
	err      error
	elements []entity.ElementInfo
	selected bool
	started  []string
	lastLoc  *entity.Locator
	lastCont entity.ContainerName
}

func (f *fakeBehat) FindElements(_ context.Context, loc *entity.Locator, c entity.ContainerName) ([]entity.ElementInfo, error) {
	f.lastLoc, f.lastCont = loc, c
	return f.elements, f.err
}

func (f *fakeBehat) Press(_ context.Context, loc *entity.Locator, c entity.ContainerName) error {
	f.lastLoc, f.lastCont = loc, c
	return f.err
}

func (f *fakeBehat) StartPress(_ context.Context, loc *entity.Locator, c entity.ContainerName) (<-chan error, error) {
	f.lastLoc, f.lastCont = loc, c
	if f.err != nil {
		return nil, f.err
	}
	f.started = append(f.started, loc.Text)
	done := make(chan error, 1)
	done <- nil
	return done, nil
}

func (f *fakeBehat) IsSelected(_ context.Context, loc *entity.Locator, c entity.ContainerName) (bool, error) {
	f.lastLoc, f.lastCont = loc, c
	return f.selected, f.err
}

func (f *fakeBehat) Dump(_ context.Context, c entity.ContainerName) (string, error) {
	f.lastCont = c
	if f.err != nil {
		return "", f.err
	}
	return `<ion-modal class="hydrated"><p>Hi</p></ion-modal>`, nil
}

type fakeNav struct {
	url string
	err error
}

func (n *fakeNav) Navigate(_ context.Context, url string) error {
	if n.err != nil {
		return n.err
	}
	n.url = url
	return nil
}

func (n *fakeNav) CurrentURL() string { return n.url }

func newTestServer(behat *fakeBehat, nav Navigator) (*Server, *service.Blocking) {
	busy := service.NewBlocking(logger.NewNop())
	return NewServer(behat, busy, nav, logger.NewNop()), busy
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestBusy(t *testing.T) {
	s, busy := newTestServer(&fakeBehat{}, nil)

	var resp busyResponse
	rec := do(t, s, http.MethodGet, "/busy", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	assert.False(t, resp.Busy)

	guard := busy.Delay("press")
	defer guard.Release()
	rec = do(t, s, http.MethodGet, "/busy", "")
	decode(t, rec, &resp)
	assert.True(t, resp.Busy)
	assert.Equal(t, 1, resp.Pending)
}

func TestWaitIdle(t *testing.T) {
	s, busy := newTestServer(&fakeBehat{}, nil)

	rec := do(t, s, http.MethodPost, "/wait-idle", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	guard := busy.Delay("press")
	rec = do(t, s, http.MethodPost, "/wait-idle?timeout=10ms", "")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)

	time.AfterFunc(10*time.Millisecond, guard.Release)
	rec = do(t, s, http.MethodPost, "/wait-idle?timeout=5s", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPost, "/wait-idle?timeout=soon", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFind(t *testing.T) {
	behat := &fakeBehat{elements: []entity.ElementInfo{{Handle: 7, Tag: "ion-button", Text: "Save"}}}
	s, _ := newTestServer(behat, nil)

	rec := do(t, s, http.MethodPost, "/find", `{"locator":{"text":"Save","within":{"text":"Settings"}},"container":"modal"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp findResponse
	decode(t, rec, &resp)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, dom.Handle(7), resp.Elements[0].Handle)
	assert.Equal(t, entity.ContainerModal, behat.lastCont)
	require.NotNil(t, behat.lastLoc.Within)
	assert.Equal(t, "Settings", behat.lastLoc.Within.Text)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("wrapped: %w", entity.ErrNoMatch), want: http.StatusNotFound},
		{err: entity.ErrAmbiguousMatch, want: http.StatusConflict},
		{err: entity.ErrLocatorTooDeep, want: http.StatusBadRequest},
		{err: dom.ErrInvalidSelector, want: http.StatusBadRequest},
		{err: errors.New("cdp: target closed"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			s, _ := newTestServer(&fakeBehat{err: tt.err}, nil)
			rec := do(t, s, http.MethodPost, "/find", `{"locator":{"text":"Save"}}`)
			assert.Equal(t, tt.want, rec.Code)

			var resp errorResponse
			decode(t, rec, &resp)
			assert.Contains(t, resp.Error, tt.err.Error())
		})
	}
}

func TestInvalidRequests(t *testing.T) {
	s, _ := newTestServer(&fakeBehat{}, nil)

	for _, body := range []string{`not json`, `{}`, `{"locator":{"text":""}}`, `{"locator":{"text":"a","near":{}}}`} {
		rec := do(t, s, http.MethodPost, "/find", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestPressAccepted(t *testing.T) {
	behat := &fakeBehat{}
	s, _ := newTestServer(behat, nil)

	rec := do(t, s, http.MethodPost, "/press", `{"locator":{"text":"Send"}}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{"Send"}, behat.started)

	behat.err = entity.ErrNoMatch
	rec = do(t, s, http.MethodPost, "/press", `{"locator":{"text":"Send"}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSelected(t *testing.T) {
	s, _ := newTestServer(&fakeBehat{selected: true}, nil)

	rec := do(t, s, http.MethodPost, "/selected", `{"locator":{"text":"Dashboard"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]bool
	decode(t, rec, &resp)
	assert.True(t, resp["selected"])
}

func TestDump(t *testing.T) {
	behat := &fakeBehat{}
	s, _ := newTestServer(behat, nil)

	rec := do(t, s, http.MethodGet, "/dump?container=modal", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<p>Hi</p>")
	assert.Equal(t, entity.ContainerModal, behat.lastCont)

	behat.err = entity.ErrNoContainer
	rec = do(t, s, http.MethodGet, "/dump?container=toast", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNavigate(t *testing.T) {
	s, _ := newTestServer(&fakeBehat{}, nil)
	rec := do(t, s, http.MethodPost, "/navigate", `{"url":"http://localhost:8100"}`)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	nav := &fakeNav{}
	s, _ = newTestServer(&fakeBehat{}, nav)
	rec = do(t, s, http.MethodPost, "/navigate", `{"url":"http://localhost:8100"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	decode(t, rec, &resp)
	assert.Equal(t, "http://localhost:8100", resp["url"])

	nav.err = errors.New("refused")
	rec = do(t, s, http.MethodPost, "/navigate", `{"url":"http://localhost:1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	s, _ := newTestServer(&fakeBehat{}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjmoggach/litigation-support-sub001/internal/apiclient"
	"github.com/rjmoggach/litigation-support-sub001/internal/session"
)

// authedGet invokes a handler directly with the session pre-set, the way the
// gate would hand it over.
func authedGet(srv *Server, sess *session.Session, target string, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	ec := srv.echo.NewContext(req, rec)
	ec.Set(ctxSessionKey, sess)
	_ = handler(ec)
	return rec
}

func TestHandlePeopleList_RendersBackendData(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/people", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]apiclient.Person{
			{ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
			{ID: 2, FirstName: "Grace", LastName: "Hopper"},
		})
	})
	backend := httptest.NewServer(mux)
	defer backend.Close()

	srv := newTestServer(t, backend.URL)
	sess := newTestSession(t, testUser(), time.Now().Add(time.Hour))

	rec := authedGet(srv, sess, "/people", srv.handlePeopleList)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ada Lovelace")
	assert.Contains(t, rec.Body.String(), "Grace Hopper")
}

func TestHandleGalleriesList_DuplicateRequestsShareOneFetch(t *testing.T) {
	var calls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/galleries", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode([]apiclient.Gallery{
			{ID: 1, Title: "Exhibits", Slug: "exhibits", ImageCount: 3},
		})
	})
	backend := httptest.NewServer(mux)
	defer backend.Close()

	srv := newTestServer(t, backend.URL)
	sess := newTestSession(t, testUser(), time.Now().Add(time.Hour))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := authedGet(srv, sess, "/galleries", srv.handleGalleriesList)
			assert.Equal(t, 200, rec.Code)
			assert.Contains(t, rec.Body.String(), "Exhibits")
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load(), "duplicate list requests must share one backend call")
}

func TestHandleGalleriesList_DifferentPagesFetchSeparately(t *testing.T) {
	var calls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/galleries", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode([]apiclient.Gallery{})
	})
	backend := httptest.NewServer(mux)
	defer backend.Close()

	srv := newTestServer(t, backend.URL)
	sess := newTestSession(t, testUser(), time.Now().Add(time.Hour))

	authedGet(srv, sess, "/galleries", srv.handleGalleriesList)
	authedGet(srv, sess, "/galleries?skip=50", srv.handleGalleriesList)

	assert.Equal(t, int64(2), calls.Load(), "distinct pages must not share a cache entry")
}

func TestHandleGalleryCreate_InvalidatesListCache(t *testing.T) {
	var listCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/galleries", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_ = json.NewEncoder(w).Encode(apiclient.Gallery{ID: 2, Title: "New"})
			return
		}
		listCalls.Add(1)
		_ = json.NewEncoder(w).Encode([]apiclient.Gallery{})
	})
	backend := httptest.NewServer(mux)
	defer backend.Close()

	srv := newTestServer(t, backend.URL)
	sess := newTestSession(t, testUser(), time.Now().Add(time.Hour))

	authedGet(srv, sess, "/galleries", srv.handleGalleriesList)
	require.Equal(t, int64(1), listCalls.Load())

	req := httptest.NewRequest(http.MethodPost, "/galleries", nil)
	req.Form = map[string][]string{"title": {"New"}}
	rec := httptest.NewRecorder()
	ec := srv.echo.NewContext(req, rec)
	ec.Set(ctxSessionKey, sess)
	require.NoError(t, srv.handleGalleryCreate(ec))

	authedGet(srv, sess, "/galleries", srv.handleGalleriesList)
	assert.Equal(t, int64(2), listCalls.Load(), "mutation must force a fresh fetch")
}

func TestHandleGalleryDetail_NotFound_RedirectsWithFlash(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/galleries/99", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "gallery not found"}`, 404)
	})
	backend := httptest.NewServer(mux)
	defer backend.Close()

	srv := newTestServer(t, backend.URL)
	sess := newTestSession(t, testUser(), time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/galleries/99", nil)
	rec := httptest.NewRecorder()
	ec := srv.echo.NewContext(req, rec)
	ec.SetParamNames("id")
	ec.SetParamValues("99")
	ec.Set(ctxSessionKey, sess)
	require.NoError(t, srv.handleGalleryDetail(ec))

	assert.Equal(t, 302, rec.Code)
	assert.Equal(t, "/galleries", rec.Header().Get("Location"))
}

func TestHandleUserDelete_RefusesSelfDeletion(t *testing.T) {
	srv := newTestServer(t, "http://backend.invalid")
	sess := newTestSession(t, testUser(), time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodPost, "/admin/users/42/delete", nil)
	rec := httptest.NewRecorder()
	ec := srv.echo.NewContext(req, rec)
	ec.SetParamNames("id")
	ec.SetParamValues("42")
	ec.Set(ctxSessionKey, sess)
	require.NoError(t, srv.handleUserDelete(ec))

	assert.Equal(t, 302, rec.Code)
	assert.Equal(t, "/admin/users", rec.Header().Get("Location"))
}

func TestListOptions(t *testing.T) {
	srv := newTestServer(t, "http://backend.invalid")

	req := httptest.NewRequest(http.MethodGet, "/people?skip=100", nil)
	ec := srv.echo.NewContext(req, httptest.NewRecorder())
	opts := listOptions(ec)
	assert.Equal(t, 100, opts.Skip)
	assert.Equal(t, defaultPageSize, opts.Limit)

	req = httptest.NewRequest(http.MethodGet, "/people?skip=junk", nil)
	ec = srv.echo.NewContext(req, httptest.NewRecorder())
	assert.Equal(t, 0, listOptions(ec).Skip)
}

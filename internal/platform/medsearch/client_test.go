package medsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rxdesk/rxdesk/internal/platform/auth"
	"github.com/rxdesk/rxdesk/internal/platform/middleware"
)

const rxtermsBody = `[2,["Paracetamol (Oral Pill)","Paracetamol (Oral Liquid)"],{"STRENGTHS_AND_FORMS":[["500 mg Tab","650 mg Tab"],["160 mg/5ml Susp"]],"RXCUIS":[["313782","198440"],["307668"]]},null]`

func newUpstream(t *testing.T, status int, body string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("ef") != "STRENGTHS_AND_FORMS,RXCUIS" {
			t.Errorf("unexpected ef %q", r.URL.Query().Get("ef"))
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSearch_MapsResponse(t *testing.T) {
	srv := newUpstream(t, http.StatusOK, rxtermsBody, nil)
	c := NewClient(zerolog.Nop(), WithBaseURL(srv.URL+"/"))

	got := c.Search(context.Background(), "para")
	want := []Suggestion{
		{ID: 0, Name: "Paracetamol (Oral Pill)", Strengths: []string{"500 mg Tab", "650 mg Tab"}, RxCUIs: []string{"313782", "198440"}},
		{ID: 1, Name: "Paracetamol (Oral Liquid)", Strengths: []string{"160 mg/5ml Susp"}, RxCUIs: []string{"307668"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Search = %+v, want %+v", got, want)
	}
}

func TestSearch_ShortQuerySkipsUpstream(t *testing.T) {
	var hits int32
	srv := newUpstream(t, http.StatusOK, rxtermsBody, &hits)
	c := NewClient(zerolog.Nop(), WithBaseURL(srv.URL))

	for _, q := range []string{"", "p", "é"} {
		if got := c.Search(context.Background(), q); got == nil || len(got) != 0 {
			t.Errorf("Search(%q) = %#v, want empty", q, got)
		}
	}
	if hits != 0 {
		t.Errorf("expected no upstream calls, got %d", hits)
	}
}

func TestSearch_FailuresAreEmpty(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, "oops"},
		{"not json", http.StatusOK, "<html>"},
		{"names not array", http.StatusOK, `[1,"x",{}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			srv := newUpstream(t, tt.status, tt.body, nil)
			c := NewClient(zerolog.New(&logs), WithBaseURL(srv.URL))

			if got := c.Search(context.Background(), "para"); got == nil || len(got) != 0 {
				t.Errorf("expected empty result, got %#v", got)
			}
			if !strings.Contains(logs.String(), `"level":"warn"`) {
				t.Errorf("expected a warn log, got %s", logs.String())
			}
		})
	}
}

func TestSearch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(zerolog.Nop(), WithBaseURL(url))
	if got := c.Search(context.Background(), "para"); len(got) != 0 {
		t.Errorf("expected empty result, got %#v", got)
	}
}

func TestParseResponse_MissingExtras(t *testing.T) {
	var raw []json.RawMessage
	_ = json.Unmarshal([]byte(`[1,["Ibuprofen"]]`), &raw)
	got, err := parseResponse(raw)
	if err != nil {
		t.Fatalf("parseResponse: %v", err)
	}
	if len(got) != 1 || got[0].Strengths == nil || len(got[0].Strengths) != 0 {
		t.Errorf("expected one suggestion with empty strengths, got %#v", got)
	}
}

func TestHandler_SearchIsCached(t *testing.T) {
	var hits int32
	srv := newUpstream(t, http.StatusOK, rxtermsBody, &hits)
	h := NewHandler(NewClient(zerolog.Nop(), WithBaseURL(srv.URL)), middleware.NewInMemoryCacheStore())
	e := echo.New()
	h.RegisterRoutes(e.Group("/api/v1", withDoctor))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/medicines/search?q=para", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var got []Suggestion
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil || len(got) != 2 {
			t.Fatalf("unexpected body %s (%v)", rec.Body.String(), err)
		}
	}
	if hits != 1 {
		t.Errorf("expected one upstream call, got %d", hits)
	}
}

func TestHandler_UpstreamFailureIsNotCached(t *testing.T) {
	var down atomic.Bool
	down.Store(true)
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(rxtermsBody))
	}))
	t.Cleanup(srv.Close)

	cache := middleware.NewInMemoryCacheStore()
	h := NewHandler(NewClient(zerolog.Nop(), WithBaseURL(srv.URL)), cache)
	e := echo.New()
	h.RegisterRoutes(e.Group("/api/v1", withDoctor))

	search := func() []Suggestion {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/medicines/search?q=para", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var got []Suggestion
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return got
	}

	if got := search(); len(got) != 0 {
		t.Fatalf("expected empty list while upstream is down, got %+v", got)
	}
	if cache.Len() != 0 {
		t.Fatalf("failure response was cached")
	}

	down.Store(false)
	if got := search(); len(got) != 2 {
		t.Errorf("expected suggestions after recovery, got %+v", got)
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Errorf("expected two upstream calls, got %d", hits)
	}
}

func TestLookup_ReportsUpstreamError(t *testing.T) {
	srv := newUpstream(t, http.StatusInternalServerError, "boom", nil)
	c := NewClient(zerolog.Nop(), WithBaseURL(srv.URL))

	out, err := c.Lookup(context.Background(), "para")
	if err == nil {
		t.Fatal("expected an error")
	}
	if out == nil || len(out) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", out)
	}

	out, err = c.Lookup(context.Background(), "p")
	if err != nil || out == nil || len(out) != 0 {
		t.Errorf("short query: got %#v, %v", out, err)
	}
}

func withDoctor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := auth.WithUser(c.Request().Context(), "dr_rahul", "Dr. Rahul TP", []string{"doctor"})
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// Package testutil holds helpers shared by package tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
)

// HandlerTransport serves every request in memory through Handler, whatever its host.
// Handlers dispatch on r.URL.Host and r.URL.Path.
type HandlerTransport struct {
	Handler http.Handler
}

// RoundTrip implements http.RoundTripper.
func (t HandlerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	rec := httptest.NewRecorder()
	t.Handler.ServeHTTP(rec, req)
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

// Client returns an *http.Client backed by a HandlerTransport.
func Client(h http.Handler) *http.Client {
	return &http.Client{Transport: HandlerTransport{Handler: h}}
}

// Hosts routes requests to per-host handlers; unknown hosts get 404.
type Hosts map[string]http.HandlerFunc

func (h Hosts) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if handler, ok := h[r.URL.Host]; ok {
		handler(w, r)
		return
	}
	http.NotFound(w, r)
}

// HTML writes body as an HTML response.
func HTML(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}
}

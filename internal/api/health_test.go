package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		ping func(context.Context) error
		path string
		want int
	}{
		{name: "healthz ok", ping: nil, path: "/healthz", want: 200},
		{name: "readyz without ping", ping: nil, path: "/readyz", want: 200},
		{name: "readyz ok", ping: func(context.Context) error { return nil }, path: "/readyz", want: 200},
		{name: "readyz degraded", ping: func(context.Context) error { return assertErr{} }, path: "/readyz", want: 503},
		{name: "healthz ignores store", ping: func(context.Context) error { return assertErr{} }, path: "/healthz", want: 200},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			NewHealthHandler(tc.ping).Register(r)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("want %d got %d", tc.want, w.Code)
			}
		})
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "err" }

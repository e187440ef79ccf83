package server

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_Routes(t *testing.T) {

	type status struct {
		Running bool   `json:"running"`
		Coin    string `json:"coin"`
	}

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "grid",
		Name:      "test_total",
		Help:      "test counter",
	})
	registry := prometheus.NewRegistry()
	registry.MustRegister(counter)
	counter.Inc()

	s := NewServer("test", 0).
		Add(Live()).
		Add(JSON("status", func() interface{} {
			return status{Running: true, Coin: "BTC"}
		})).
		AddRoute(POST, Api, "fail", func(r *http.Request) ([]byte, int, error) {
			return nil, 0, errors.New("failed")
		}).
		AddRoute(GET, Api, "missing", func(r *http.Request) ([]byte, int, error) {
			return []byte("not here"), http.StatusNotFound, nil
		}).
		WithMetrics(registry)

	srv := httptest.NewServer(s.Mux())
	defer srv.Close()

	type test struct {
		method string
		path   string
		code   int
		body   func(t *testing.T, body string)
	}

	tests := map[string]test{
		"live": {
			method: http.MethodGet,
			path:   "/data",
			code:   http.StatusOK,
		},
		"status": {
			method: http.MethodGet,
			path:   "/api/status",
			code:   http.StatusOK,
			body: func(t *testing.T, body string) {
				var s status
				require.NoError(t, json.Unmarshal([]byte(body), &s))
				assert.True(t, s.Running)
				assert.Equal(t, "BTC", s.Coin)
			},
		},
		"wrong-method": {
			method: http.MethodPost,
			path:   "/api/status",
			code:   http.StatusNotImplemented,
		},
		"error": {
			method: http.MethodPost,
			path:   "/api/fail",
			code:   http.StatusInternalServerError,
			body: func(t *testing.T, body string) {
				assert.Equal(t, "failed", body)
			},
		},
		"code": {
			method: http.MethodGet,
			path:   "/api/missing",
			code:   http.StatusNotFound,
			body: func(t *testing.T, body string) {
				assert.Equal(t, "not here", body)
			},
		},
		"metrics": {
			method: http.MethodGet,
			path:   "/metrics",
			code:   http.StatusOK,
			body: func(t *testing.T, body string) {
				assert.True(t, strings.Contains(body, "grid_test_total 1"))
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, nil)
			require.NoError(t, err)
			rsp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer rsp.Body.Close()
			assert.Equal(t, tt.code, rsp.StatusCode)
			b, err := ioutil.ReadAll(rsp.Body)
			require.NoError(t, err)
			if tt.body != nil {
				tt.body(t, string(b))
			}
		})
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func corsRequest(method, origin string) *http.Request {
	r := httptest.NewRequest(method, "/predict", nil)
	if origin != "" {
		r.Header.Set("Origin", origin)
	}
	return r
}

func TestCORS_PreflightRequest(t *testing.T) {
	config := DefaultCORSConfig()
	config.AllowedOrigins = []string{"https://lab.example.org"}
	handler := CORS(config)(okHandler())

	r := corsRequest(http.MethodOptions, "https://lab.example.org")
	r.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://lab.example.org", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, w.Body.String())
}

func TestCORS_SimpleRequest(t *testing.T) {
	config := DefaultCORSConfig()
	config.AllowedOrigins = []string{"https://lab.example.org"}
	handler := CORS(config)(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, corsRequest(http.MethodPost, "https://LAB.example.org"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://LAB.example.org", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), RequestIDHeader)
	assert.Equal(t, []string{"Origin"}, w.Header().Values("Vary"))
	assert.Equal(t, "ok", w.Body.String())
}

func TestCORS_Origins(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{"exact match", []string{"https://a.org", "https://b.org"}, "https://b.org", "https://b.org"},
		{"not listed", []string{"https://a.org"}, "https://evil.org", ""},
		{"wildcard", []string{"*"}, "https://any.org", "*"},
		{"subdomain pattern", []string{"*.example.org"}, "https://lab.example.org", "https://lab.example.org"},
		{"subdomain pattern miss", []string{"*.example.org"}, "https://example.com", ""},
		{"default denies", nil, "https://a.org", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultCORSConfig()
			config.AllowedOrigins = tt.allowed
			w := httptest.NewRecorder()
			CORS(config)(okHandler()).ServeHTTP(w, corsRequest(http.MethodGet, tt.origin))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORS_NoOriginHeader(t *testing.T) {
	config := DefaultCORSConfig()
	config.AllowedOrigins = []string{"*"}
	w := httptest.NewRecorder()
	CORS(config)(okHandler()).ServeHTTP(w, corsRequest(http.MethodGet, ""))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Values("Vary"))
}

func TestCORS_PlainOptionsPassesThrough(t *testing.T) {
	config := DefaultCORSConfig()
	config.AllowedOrigins = []string{"*"}
	w := httptest.NewRecorder()
	CORS(config)(okHandler()).ServeHTTP(w, corsRequest(http.MethodOptions, "https://a.org"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))
}

func TestDefaultCORSConfig(t *testing.T) {
	config := DefaultCORSConfig()
	assert.Empty(t, config.AllowedOrigins)
	assert.ElementsMatch(t, []string{http.MethodGet, http.MethodPost, http.MethodOptions}, config.AllowedMethods)
	assert.Contains(t, config.AllowedHeaders, RequestIDHeader)
	assert.Equal(t, 86400, config.MaxAge)
}

//Personal.AI order the ending

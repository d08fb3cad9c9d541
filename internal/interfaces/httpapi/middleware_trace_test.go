package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestShouldTraceRequest_HealthPaths(t *testing.T) {
	paths := []string{"/healthz", "/health", "/livez", "/readyz", " /healthz "}
	for _, path := range paths {
		if shouldTraceRequest(path) {
			t.Fatalf("expected no tracing for path %q", path)
		}
	}
}

func TestShouldTraceRequest_NonHealthPaths(t *testing.T) {
	paths := []string{"/v1/admin/rounds/3/settle", "/v1/admin/standings", "/", "/docs"}
	for _, path := range paths {
		if !shouldTraceRequest(path) {
			t.Fatalf("expected tracing for path %q", path)
		}
	}
}

func TestResolveClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded chain", headers: map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, remote: "10.0.0.1:5000", want: "203.0.113.9"},
		{name: "fly header wins", headers: map[string]string{"Fly-Client-IP": "198.51.100.2", "X-Real-IP": "10.0.0.2"}, want: "198.51.100.2"},
		{name: "remote addr", remote: "192.0.2.4:443", want: "192.0.2.4"},
		{name: "garbage", headers: map[string]string{"X-Real-IP": "nope"}, remote: "pipe", want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := resolveClientIP(req); got != tt.want {
				t.Fatalf("resolveClientIP()=%q want=%q", got, tt.want)
			}
		})
	}
}

func TestRequireAdminToken_OpenWhenUnset(t *testing.T) {
	var caller string
	handler := RequireAdminToken("", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller = callerFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/scheduler/run", nil)
	req.RemoteAddr = "192.0.2.4:443"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if caller != "ip:192.0.2.4" {
		t.Fatalf("unexpected caller %q", caller)
	}
}

package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-settlement/internal/usecase"
)

func TestEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w http.ResponseWriter)
		wantStatus int
		wantData   bool
		wantError  string
	}{
		{
			name: "success carries data",
			write: func(w http.ResponseWriter) {
				writeSuccess(context.Background(), w, http.StatusCreated, map[string]int{"round": 4})
			},
			wantStatus: http.StatusCreated,
			wantData:   true,
		},
		{
			name: "invalid input",
			write: func(w http.ResponseWriter) {
				writeError(context.Background(), w, fmt.Errorf("%w: round must be positive", usecase.ErrInvalidInput))
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "INVALID_ARGUMENT",
		},
		{
			name:       "internal",
			write:      func(w http.ResponseWriter) { writeInternalError(context.Background(), w) },
			wantStatus: http.StatusInternalServerError,
			wantError:  "INTERNAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status=%d want=%d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("unexpected content type %q", ct)
			}
			var body map[string]any
			if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal response body: %v", err)
			}
			if body["apiVersion"] != "2.0" {
				t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
			}
			if _, ok := body["data"]; ok != tt.wantData {
				t.Fatalf("data present=%v want=%v", ok, tt.wantData)
			}
			errObj, _ := body["error"].(map[string]any)
			if tt.wantError == "" {
				if errObj != nil {
					t.Fatalf("did not expect error object: %v", errObj)
				}
				return
			}
			if errObj == nil || errObj["status"] != tt.wantError {
				t.Fatalf("error status=%v want=%s", errObj, tt.wantError)
			}
		})
	}
}

func TestMapError_Statuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "round not found", err: fmt.Errorf("%w: number=9", usecase.ErrRoundNotFound), want: http.StatusNotFound},
		{name: "unauthorized", err: usecase.ErrUnauthorized, want: http.StatusUnauthorized},
		{name: "rate limited", err: usecase.ErrRateLimited, want: http.StatusTooManyRequests},
		{name: "conflict", err: fmt.Errorf("%w: already member", usecase.ErrConflict), want: http.StatusConflict},
		{name: "dependency", err: usecase.ErrDependencyUnavailable, want: http.StatusServiceUnavailable},
		{name: "unknown", err: fmt.Errorf("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapError(tt.err).HTTPStatus; got != tt.want {
				t.Fatalf("mapError(%v)=%d want=%d", tt.err, got, tt.want)
			}
		})
	}
}

func TestWriteError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("pq: relation \"round_points\" does not exist"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	var body googleResponseEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if body.Error == nil || body.Error.Message != "internal server error" {
		t.Fatalf("expected generic message, got %+v", body.Error)
	}
	if body.Error.Errors[0].Reason != "internalError" {
		t.Fatalf("unexpected reason %q", body.Error.Errors[0].Reason)
	}
}

package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestKeywordClassifier(t *testing.T) {
	k := NewKeywordClassifier()
	tests := []struct {
		name        string
		title       string
		description string
		want        int
	}{
		{"hardware", "Printer jammed", "the printer on floor 2 is broken", CategoryHardware},
		{"network", "VPN drops", "internet connection lost every hour", CategoryNetwork},
		{"account", "Locked out", "I forgot my password and cannot login", CategoryAccount},
		{"software", "Excel crash", "excel shows an error on start", CategorySoftware},
		{"no keywords", "Hello", "something is odd", CategorySoftware},
		{"title weighs double", "wifi", "password", CategoryNetwork},
		{"tie resolves to lower id", "", "vpn password", CategoryNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := k.Predict(context.Background(), tt.title, tt.description)
			if err != nil {
				t.Fatalf("Predict: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
			if !ValidCategory(got) {
				t.Fatalf("category %d out of range", got)
			}
		})
	}
}

func TestHTTPClassifier(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    int
		wantErr bool
	}{
		{
			name: "ok",
			handler: func(w http.ResponseWriter, r *http.Request) {
				var req predictRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title != "VPN down" || r.URL.Path != "/predict" {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				_ = json.NewEncoder(w).Encode(predictResponse{CategoryID: 3})
			},
			want: 3,
		},
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			wantErr: true,
		},
		{
			name:    "garbage body",
			handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("not json")) },
			wantErr: true,
		},
		{
			name: "unknown category",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(predictResponse{CategoryID: 9})
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewHTTPClassifier(srv.URL+"/", time.Second, zap.NewNop())
			got, err := c.Predict(context.Background(), "VPN down", "no tunnel")
			if tt.wantErr {
				if !errors.Is(err, ErrUnavailable) {
					t.Fatalf("expected ErrUnavailable, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Predict: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHTTPClassifierHonoursDeadline(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewHTTPClassifier(srv.URL, 5*time.Second, zap.NewNop())
	if _, err := c.Predict(ctx, "t", "d"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

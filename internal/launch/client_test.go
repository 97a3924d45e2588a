package launch

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBuildTransaction_EncodesRawBytes(t *testing.T) {
	rawTx := []byte{0x01, 0x00, 0xff, 0x7b}
	var gotBody string
	var gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotContentType = r.Header.Get("Content-Type")
		w.Write(rawTx)
	}))
	defer srv.Close()

	client := NewClient(WithTradeURL(srv.URL))
	reqBody := `{"action":"buy","mint":"abc","amount":0.1}`

	encoded, err := client.BuildTransaction(context.Background(), []byte(reqBody))
	if err != nil {
		t.Fatalf("BuildTransaction failed: %v", err)
	}
	if encoded != base64.StdEncoding.EncodeToString(rawTx) {
		t.Errorf("encoded = %q, want base64 of raw bytes", encoded)
	}
	if gotBody != reqBody {
		t.Errorf("request body altered: %q", gotBody)
	}
	if gotContentType != "application/json" {
		t.Errorf("content type = %q", gotContentType)
	}
}

func TestBuildTransaction_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "insufficient balance", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(WithTradeURL(srv.URL))
	_, err := client.BuildTransaction(context.Background(), []byte(`{}`))
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("error is not an UpstreamError: %v", err)
	}
	if upstream.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", upstream.Status)
	}
	if !strings.Contains(upstream.Body, "insufficient balance") {
		t.Errorf("body = %q, want upstream message", upstream.Body)
	}
}

func TestBuildTransaction_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(WithTradeURL(srv.URL))
	_, err := client.BuildTransaction(context.Background(), []byte(`{}`))
	if err == nil {
		t.Fatal("expected error for empty transaction body")
	}
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSignedURLRequestsShortLivedLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/object/sign/documents/case-1/contract.pdf" {
			t.Fatalf("unexpected sign path %q", r.URL.Path)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode sign payload: %v", err)
		}
		if payload["expiresIn"] != float64(300) {
			t.Fatalf("expected 300s expiry, got %v", payload["expiresIn"])
		}
		_, _ = w.Write([]byte(`{"signedURL":"/object/sign/documents/case-1/contract.pdf?token=abc"}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, ServiceKey: "service-key"})
	signedURL, err := client.SignedURL(context.Background(), "documents", "case-1/contract.pdf", 5*time.Minute)
	if err != nil {
		t.Fatalf("expected signed url, got err=%v", err)
	}
	if signedURL != server.URL+"/object/sign/documents/case-1/contract.pdf?token=abc" {
		t.Fatalf("unexpected signed url %q", signedURL)
	}
}

func TestUploadSendsObjectWithOverwriteHeader(t *testing.T) {
	var gotUpsert string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUpsert = r.Header.Get("x-upsert")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, ServiceKey: "service-key"})
	err := client.Upload(context.Background(), "generated-documents", "case-42/draft.txt",
		[]byte("document body"), "text/plain; charset=utf-8", true)
	if err != nil {
		t.Fatalf("expected upload success, got err=%v", err)
	}
	if gotUpsert != "true" {
		t.Fatalf("expected overwrite header, got %q", gotUpsert)
	}
	if string(gotBody) != "document body" {
		t.Fatalf("unexpected upload body %q", gotBody)
	}
}

func TestClientUnavailableWithoutConfiguration(t *testing.T) {
	client := NewClient(ClientConfig{})
	if client.Available() {
		t.Fatalf("unconfigured client must report unavailable")
	}
	if _, err := client.SignedURL(context.Background(), "b", "p", time.Minute); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

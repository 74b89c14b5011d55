package minio

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(Config{
		Endpoint:  "storage.local:9000",
		AccessKey: "access",
		SecretKey: "secret-secret",
		Bucket:    "documentos",
		Region:    "us-east-1",
	}, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return store
}

func TestNew_InvalidEndpoint(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{Endpoint: "http://storage.local:9000", Bucket: "b"}, nil); err == nil {
		t.Fatalf("expected error for endpoint with scheme")
	}
}

func TestStore_PresignedURL(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	key := "clients/c-1/f29/abc-F29_marzo.pdf"

	raw, err := store.PresignedURL(context.Background(), key, 15*time.Minute)
	if err != nil {
		t.Fatalf("PresignedURL returned error: %v", err)
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("invalid url %q: %v", raw, err)
	}
	if u.Scheme != "http" || u.Host != "storage.local:9000" {
		t.Fatalf("unexpected host in %q", raw)
	}
	if !strings.HasSuffix(u.Path, "/documentos/"+key) {
		t.Fatalf("unexpected path %q", u.Path)
	}
	q := u.Query()
	if q.Get("X-Amz-Expires") != "900" {
		t.Fatalf("expected 900s expiry, got %q", q.Get("X-Amz-Expires"))
	}
	if q.Get("X-Amz-Signature") == "" {
		t.Fatalf("expected signature in %q", raw)
	}
	if q.Get("response-content-disposition") != `attachment; filename="abc-F29_marzo.pdf"` {
		t.Fatalf("unexpected disposition %q", q.Get("response-content-disposition"))
	}
}

func TestContentDisposition(t *testing.T) {
	t.Parallel()

	if got := contentDisposition("plain.pdf"); got != `attachment; filename="plain.pdf"` {
		t.Fatalf("unexpected disposition %q", got)
	}
}

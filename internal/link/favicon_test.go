package link

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// favicon画像の代理取得が成功することを検証
func TestFaviconProxy_Fetch_ReturnsImage(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G'}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	}))
	defer server.Close()

	// ループバックへの接続を許可するためガード無しで取得する
	proxy := NewFaviconProxy(nil, 5*time.Second, 2*1024*1024)

	data, mimeType, err := proxy.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("data = %v, want %v", data, payload)
	}
	if mimeType != "image/png" {
		t.Errorf("mimeType = %q, want %q", mimeType, "image/png")
	}
}

// 画像以外のContent-Typeで取得失敗扱いになることを検証
func TestFaviconProxy_Fetch_RejectsNonImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	proxy := NewFaviconProxy(nil, 5*time.Second, 2*1024*1024)

	data, mimeType, err := proxy.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if data != nil || mimeType != "" {
		t.Errorf("expected nil data for non-image, got %d bytes, mime %q", len(data), mimeType)
	}
}

// HTTPエラーステータスで取得失敗扱いになることを検証
func TestFaviconProxy_Fetch_HandlesErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	proxy := NewFaviconProxy(nil, 5*time.Second, 2*1024*1024)

	data, _, err := proxy.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if data != nil {
		t.Errorf("expected nil data for 404, got %d bytes", len(data))
	}
}

// サイズ上限を超えるレスポンスが拒否されることを検証
func TestFaviconProxy_Fetch_RejectsOversized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(bytes.Repeat([]byte{0xFF}, 64))
	}))
	defer server.Close()

	proxy := NewFaviconProxy(nil, 5*time.Second, 16)

	data, _, err := proxy.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if data != nil {
		t.Errorf("expected nil data for oversized favicon, got %d bytes", len(data))
	}
}

// 空URLで即座にnilが返ることを検証
func TestFaviconProxy_Fetch_EmptyURL(t *testing.T) {
	proxy := NewFaviconProxy(nil, 5*time.Second, 2*1024*1024)

	data, mimeType, err := proxy.Fetch(context.Background(), "")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if data != nil || mimeType != "" {
		t.Error("expected nil data for empty URL")
	}
}

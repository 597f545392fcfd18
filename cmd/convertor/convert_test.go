package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// hostRewriteTransport sends every request to the test server regardless of
// the request host, so pipeline tests can use a URL that passes validation.
type hostRewriteTransport struct {
	target string
}

func (t hostRewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.URL.Scheme = "http"
	clone.URL.Host = t.target
	return http.DefaultTransport.RoundTrip(clone)
}

func testPipelineClient(server *httptest.Server) *http.Client {
	return &http.Client{Transport: hostRewriteTransport{target: strings.TrimPrefix(server.URL, "http://")}}
}

func TestRunConvertEndToEnd(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{
  "log": {"level": "info"},
  "inbounds": [
    {"type": "tun", "interface_name": "tun0"},
    {"type": "mixed", "listen": "127.0.0.1", "listen_port": 7890}
  ],
  "outbounds": [{"type": "direct", "tag": "direct"}]
}`))
	}))
	defer server.Close()

	workDir := t.TempDir()
	var out bytes.Buffer
	err := runConvert(context.Background(), &out, convertOptions{
		subscriptionURL: "https://example.com/api/sub?token=abc",
		clientType:      "sing-box",
		httpClient:      testPipelineClient(server),
		tools:           &fakeToolchain{pathBeforeInstall: "/fake/bin/sing-box"},
		workDir:         workDir,
	})
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if gotPath != "/api/sub" {
		t.Fatalf("unexpected request path: %q", gotPath)
	}

	output := out.String()
	wantOrder := []string{
		"✅ Target client type is: sing-box",
		"✅ Target subscription url is: https://example.com/api/sub?token=abc",
		"✅ Successfully fetched and parsed JSON.",
		"✅ Conver successfully, save to: config.json",
		"✅ Successfully convert subscription.",
		"✅ Target surge external config:",
		"[Proxy]",
	}
	last := -1
	for _, want := range wantOrder {
		idx := strings.Index(output, want)
		if idx < 0 {
			t.Fatalf("missing line %q in output:\n%s", want, output)
		}
		if idx < last {
			t.Fatalf("line %q out of order in output:\n%s", want, output)
		}
		last = idx
	}

	configPath := filepath.Join(workDir, configFileName)
	wantLine := `External = external, exec = "/fake/bin/sing-box", local-port = 7890, args = "run", args = "-c", args = "` + configPath + `", address = 127.0.0.1`
	if !strings.Contains(output, wantLine) {
		t.Fatalf("missing descriptor %q in output:\n%s", wantLine, output)
	}

	written, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	data, err := decodeSubscriptionObject(written)
	if err != nil {
		t.Fatalf("written config invalid: %v", err)
	}
	inbounds, ok := data["inbounds"].([]any)
	if !ok || len(inbounds) != 1 {
		t.Fatalf("unexpected written inbounds: %#v", data["inbounds"])
	}
}

func TestRunConvertFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	var out bytes.Buffer
	err := runConvert(context.Background(), &out, convertOptions{
		subscriptionURL: "https://example.com/sub",
		httpClient:      testPipelineClient(server),
		tools:           &fakeToolchain{pathBeforeInstall: "/fake/bin/sing-box"},
		workDir:         t.TempDir(),
	})
	var statusErr *fetchStatusError
	if !errors.As(err, &statusErr) || statusErr.status != http.StatusInternalServerError {
		t.Fatalf("expected status error, got %v", err)
	}
	if strings.Contains(out.String(), "Successfully fetched") {
		t.Fatalf("fetch success line printed on failure:\n%s", out.String())
	}
}

func TestRunConvertMissingInbounds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"outbounds": []}`))
	}))
	defer server.Close()

	var out bytes.Buffer
	err := runConvert(context.Background(), &out, convertOptions{
		subscriptionURL: "https://example.com/sub",
		httpClient:      testPipelineClient(server),
		tools:           &fakeToolchain{pathBeforeInstall: "/fake/bin/sing-box"},
		workDir:         t.TempDir(),
	})
	if !errors.Is(err, errMissingInbounds) {
		t.Fatalf("expected missing inbounds error, got %v", err)
	}
}

func TestRunConvertRejectsBadURL(t *testing.T) {
	var out bytes.Buffer
	err := runConvert(context.Background(), &out, convertOptions{
		subscriptionURL: "ftp://example.com/sub",
		httpClient:      &http.Client{},
		tools:           &fakeToolchain{},
		workDir:         t.TempDir(),
	})
	if !errors.Is(err, errUnsupportedScheme) {
		t.Fatalf("expected scheme error, got %v", err)
	}
}

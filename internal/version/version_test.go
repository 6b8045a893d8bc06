package version

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewInfo(t *testing.T) {
	info := NewInfo("1.2.3", "abc1234", "2026-08-24")

	if info.Version != "1.2.3" {
		t.Errorf("Version = %q", info.Version)
	}
	if info.GoVer == "" || info.OS == "" || info.Arch == "" {
		t.Error("expected runtime fields to be populated")
	}
}

func TestInfoString(t *testing.T) {
	info := NewInfo("1.2.3", "abc1234", "2026-08-24")

	s := info.String()
	for _, want := range []string{"fondsnet-import", "1.2.3", "abc1234", "2026-08-24"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q: %s", want, s)
		}
	}

	full := info.FullString()
	if !strings.Contains(full, "OS/Arch") {
		t.Errorf("FullString() missing OS/Arch: %s", full)
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.1", "1.0.0", 1},
		{"1.0.0", "1.0.1", -1},
		{"2.0.0", "1.9.9", 1},
		{"v1.2.3", "1.2.3", 0},
		{"1.2.3-rc1", "1.2.3", 0},
		{"1.10.0", "1.9.0", 1},
	}

	for _, tt := range tests {
		if got := CompareVersions(tt.a, tt.b); got != tt.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCheckForUpdate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/releases/latest") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"tag_name": "v1.1.0", "html_url": "https://example.com/release"}`)
	}))
	defer server.Close()

	checker := NewChecker()
	checker.BaseURL = server.URL

	release, err := checker.CheckForUpdate(context.Background(), "1.0.0")
	if err != nil {
		t.Fatalf("CheckForUpdate failed: %v", err)
	}
	if release == nil || release.TagName != "v1.1.0" {
		t.Errorf("release = %+v", release)
	}

	release, err = checker.CheckForUpdate(context.Background(), "1.1.0")
	if err != nil {
		t.Fatalf("CheckForUpdate failed: %v", err)
	}
	if release != nil {
		t.Errorf("expected nil release when current, got %+v", release)
	}
}

func TestGetLatestRelease_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	checker := NewChecker()
	checker.BaseURL = server.URL

	if _, err := checker.GetLatestRelease(context.Background()); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

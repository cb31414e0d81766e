package api

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/thesavant42/wayback-scraper/internal/models"
)

const threeRowCDX = `[["urlkey","timestamp","original","mimetype","statuscode","digest","length"],
["com,example)/","20200101120000","http://example.com/","text/html","200","AAAA","1234"],
["com,example)/","20201231235959","http://example.com/","text/html","200","BBBB","5678"]]`

// TestBuildCDXQuery verifies the query string carries every CDX parameter
func TestBuildCDXQuery(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		limit     int
		wantLimit string
	}{
		{name: "no limit", target: "example.com", limit: 0},
		{name: "negative limit ignored", target: "example.com", limit: -5},
		{name: "with limit", target: "example.com", limit: 25, wantLimit: "25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := BuildCDXQuery(tt.target, tt.limit)

			values, err := url.ParseQuery(query)
			if err != nil {
				t.Fatalf("ParseQuery(%q) error = %v", query, err)
			}
			want := map[string]string{
				"url":      tt.target,
				"output":   "json",
				"collapse": "timestamp:8",
				"filter":   "statuscode:200",
				"limit":    tt.wantLimit,
			}
			for key, wantValue := range want {
				if got := values.Get(key); got != wantValue {
					t.Errorf("BuildCDXQuery() %s = %q, want %q (query %q)", key, got, wantValue, query)
				}
			}
		})
	}
}

// TestBuildCDXQueryEscapesTarget verifies a target with its own query survives intact
func TestBuildCDXQueryEscapesTarget(t *testing.T) {
	target := "https://example.com/page?a=1&b=2"
	values, err := url.ParseQuery(BuildCDXQuery(target, 0))
	if err != nil {
		t.Fatalf("ParseQuery() error = %v", err)
	}
	if got := values.Get("url"); got != target {
		t.Errorf("url = %q, want %q", got, target)
	}
}

// TestExtractRootDomain tests domain extraction
func TestExtractRootDomain(t *testing.T) {
	tests := []struct {
		input    string
		wantRoot string
		wantErr  bool
	}{
		{"bfl.ai", "bfl.ai", false},
		{"playground.bfl.ai", "bfl.ai", false},
		{"https://playground.bfl.ai/", "bfl.ai", false},
		{"https://www.example.com/path?query=1", "example.com", false},
		{"example.co.uk/about", "example.co.uk", false},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ExtractRootDomain(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ExtractRootDomain(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.wantRoot {
				t.Errorf("ExtractRootDomain(%q) = %q, want %q", tt.input, got, tt.wantRoot)
			}
		})
	}
}

func TestParseCDXResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []models.SnapshotRecord
	}{
		{
			name: "header and two rows",
			body: `[["timestamp","original"],["20200101120000","http://a/"],["20200102120000","http://b/"]]`,
			want: []models.SnapshotRecord{
				{"timestamp": "20200101120000", "original": "http://a/"},
				{"timestamp": "20200102120000", "original": "http://b/"},
			},
		},
		{
			name: "header only",
			body: `[["timestamp","original"]]`,
			want: []models.SnapshotRecord{},
		},
		{
			name: "empty array",
			body: `[]`,
			want: []models.SnapshotRecord{},
		},
		{
			name: "empty body",
			body: "  \n",
			want: []models.SnapshotRecord{},
		},
		{
			name: "short and long rows",
			body: `[["timestamp","original","statuscode"],["20200101120000"],["20200102120000","http://b/","200","extra"]]`,
			want: []models.SnapshotRecord{
				{"timestamp": "20200101120000"},
				{"timestamp": "20200102120000", "original": "http://b/", "statuscode": "200"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCDXResponse([]byte(tt.body))
			if err != nil {
				t.Fatalf("parseCDXResponse() error = %v", err)
			}
			if got == nil {
				t.Fatal("parseCDXResponse() returned nil slice")
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseCDXResponse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseCDXResponseMalformed(t *testing.T) {
	got, err := parseCDXResponse([]byte(`{"error":"nope"}`))
	if err == nil {
		t.Fatal("expected error for non-tabular JSON")
	}
	if got == nil || len(got) != 0 {
		t.Errorf("malformed body should give an empty slice, got %v", got)
	}
}

func TestFetchSnapshots(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, threeRowCDX)
	}))
	defer srv.Close()

	client := NewWaybackClient(nil, WithCDXEndpoint(srv.URL), WithHTTPClient(srv.Client()))
	records, err := client.FetchSnapshots(context.Background(), "example.com", 10)
	if err != nil {
		t.Fatalf("FetchSnapshots() error = %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	want := models.SnapshotRecord{
		"urlkey":     "com,example)/",
		"timestamp":  "20201231235959",
		"original":   "http://example.com/",
		"mimetype":   "text/html",
		"statuscode": "200",
		"digest":     "BBBB",
		"length":     "5678",
	}
	if diff := cmp.Diff(want, records[1]); diff != "" {
		t.Errorf("records[1] mismatch (-want +got):\n%s", diff)
	}

	if gotQuery.Get("url") != "example.com" || gotQuery.Get("limit") != "10" {
		t.Errorf("unexpected query sent: %v", gotQuery)
	}
}

func TestFetchSnapshotsGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		gz.Write([]byte(threeRowCDX))
		gz.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	client := NewWaybackClient(nil, WithCDXEndpoint(srv.URL), WithHTTPClient(srv.Client()))
	records, err := client.FetchSnapshots(context.Background(), "example.com", 0)
	if err != nil {
		t.Fatalf("FetchSnapshots() error = %v", err)
	}
	if len(records) != 2 {
		t.Errorf("len(records) = %d, want 2", len(records))
	}
}

func TestFetchSnapshotsFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "overloaded", http.StatusServiceUnavailable)
			},
			wantErr: "status 503",
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `[["timestamp"],`)
			},
			wantErr: "failed to parse JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewWaybackClient(nil, WithCDXEndpoint(srv.URL), WithHTTPClient(srv.Client()))
			records, err := client.FetchSnapshots(context.Background(), "example.com", 0)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("FetchSnapshots() error = %v, want it to contain %q", err, tt.wantErr)
			}
			if records == nil || len(records) != 0 {
				t.Errorf("FetchSnapshots() records = %v, want empty slice", records)
			}
		})
	}
}

func TestFetchSnapshotsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	client := NewWaybackClient(nil, WithCDXEndpoint(endpoint))
	records, err := client.FetchSnapshots(context.Background(), "example.com", 0)
	if err == nil {
		t.Fatal("expected transport error against a closed server")
	}
	if records == nil || len(records) != 0 {
		t.Errorf("records = %v, want empty slice", records)
	}
}

// TestFetchSnapshotsIntegration is an integration test that actually calls the API
// Run with: go test -v -run TestFetchSnapshotsIntegration ./internal/api/
func TestFetchSnapshotsIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client := NewWaybackClient(nil)
	records, err := client.FetchSnapshots(context.Background(), "example.com", 3)
	if err != nil {
		t.Skipf("CDX API unavailable: %v", err)
	}

	fmt.Printf("Fetched %d records for example.com\n", len(records))
	for i, r := range records {
		ts, _ := r.Timestamp()
		orig, _ := r.Original()
		fmt.Printf("  %d: %s %s\n", i, ts, orig)
	}
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/famomatic/danmakudl/client"
	"github.com/famomatic/danmakudl/internal/dmseg"
	"github.com/famomatic/danmakudl/internal/webapi"
)

type fakeServer struct {
	*httptest.Server
	requests atomic.Int32
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{}
	mux := http.NewServeMux()
	mux.HandleFunc(webapi.PathView, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"data": map[string]any{
				"pages": []map[string]any{
					{"page": 1, "part": "Intro", "cid": 11, "duration": 65},
					{"page": 2, "part": "Main: part", "cid": 12, "duration": 30},
				},
			},
		})
	})
	mux.HandleFunc(webapi.PathNav, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": -101,
			"data": map[string]any{"wbi_img": map[string]any{
				"img_url": "https://i0.hdslb.com/bfs/wbi/7cd084941338484aae1ad9425b84077c.png",
				"sub_url": "https://i0.hdslb.com/bfs/wbi/4932caff0ff746eab6f01bf08b70ac45.png",
			}},
		})
	})
	mux.HandleFunc(webapi.PathSegmentSigned, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(dmseg.Encode([]dmseg.Elem{{ID: 1, Progress: 1500, Mode: 1, Content: "oid " + r.URL.Query().Get("oid")}}))
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.requests.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	fs.Server = srv
	return fs
}

func newTestRunner(srv *fakeServer, out *bytes.Buffer) *Runner {
	return &Runner{
		Out:    out,
		ErrOut: out,
		Now: func() time.Time {
			return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
		},
		Configure: func(cfg *client.Config) {
			cfg.HTTPClient = srv.Client()
			cfg.APIBaseURL = srv.URL
		},
	}
}

func TestRunnerDownloadPrintsProgress(t *testing.T) {
	srv := newFakeServer(t)
	var out bytes.Buffer
	r := newTestRunner(srv, &out)

	opts := DefaultOptions()
	opts.ResourceID = "av170001"
	opts.OutputDir = filepath.Join(t.TempDir(), "dl")
	opts.Format = "txt"
	opts.CookieFile = ""

	report, err := r.Download(context.Background(), opts)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if report.Succeeded != 2 || report.Failed != 0 {
		t.Fatalf("report=%+v", report)
	}

	text := out.String()
	for _, want := range []string{
		"Processing resource: av170001",
		"Fetching content metadata...",
		"Content of av170001",
		"1:05",
		"✓ Downloaded: Intro",
		"✓ Downloaded: Main: part",
		"Download completed! Files saved to: " + opts.OutputDir + " (2 succeeded, 0 failed)",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}

	data, err := os.ReadFile(filepath.Join(opts.OutputDir, "av170001_2_Main_ part.txt"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got := string(data); got != "[1.5s] oid 12" {
		t.Fatalf("file=%q", got)
	}
}

func TestRunnerRejectsBadInputWithoutNetwork(t *testing.T) {
	tests := []struct {
		name   string
		format string
		id     string
		want   string
	}{
		{name: "format", format: "ass", id: "av1", want: "Supported formats: xml, json, csv, txt"},
		{name: "id", format: "xml", id: "xyz", want: "Error: invalid resource id format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newFakeServer(t)
			var out bytes.Buffer
			opts := DefaultOptions()
			opts.Format = tt.format
			opts.ResourceID = tt.id
			if _, err := newTestRunner(srv, &out).Download(context.Background(), opts); err == nil {
				t.Fatalf("Download() error = nil")
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Fatalf("output=%q want substring %q", out.String(), tt.want)
			}
			if n := srv.requests.Load(); n != 0 {
				t.Fatalf("requests=%d want 0", n)
			}
		})
	}
}

func TestRunnerInvalidFilter(t *testing.T) {
	srv := newFakeServer(t)
	var out bytes.Buffer
	opts := DefaultOptions()
	opts.ResourceID = "av1"
	opts.Filter = "d.mode ==="
	if _, err := newTestRunner(srv, &out).Download(context.Background(), opts); err == nil {
		t.Fatalf("Download() error = nil")
	}
	if srv.requests.Load() != 0 {
		t.Fatalf("expected no requests")
	}
}

func TestInteractiveSession(t *testing.T) {
	srv := newFakeServer(t)
	var out bytes.Buffer
	r := newTestRunner(srv, &out)
	dir := filepath.Join(t.TempDir(), "session")
	cookie := filepath.Join(t.TempDir(), "cookie.txt")

	input := strings.Join([]string{
		"",
		"nonsense",
		"BV17x411w7KC",
		"9",
		dir,
		cookie,
		"quit",
	}, "\n") + "\n"

	if err := r.Interactive(context.Background(), strings.NewReader(input), DefaultOptions()); err != nil {
		t.Fatalf("Interactive() error = %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"Interactive Mode",
		"Please enter a valid resource ID or 'q' to quit:",
		"Valid resource ID: BV17x411w7KC (Type: BV)",
		"Invalid choice, using XML.",
		"Output directory [" + filepath.Join("output", "20260304_050607") + "] > ",
		"cookie file not found",
		"Enter another resource ID or 'q' to quit:",
		"Goodbye!",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "BV17x411w7KC_1_Intro.xml")); err != nil {
		t.Fatalf("expected xml output: %v", err)
	}
}

func TestInteractiveEndsOnEOF(t *testing.T) {
	var out bytes.Buffer
	r := &Runner{Out: &out}
	if err := r.Interactive(context.Background(), strings.NewReader(""), DefaultOptions()); err != nil {
		t.Fatalf("Interactive() error = %v", err)
	}
}

func TestInteractiveStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &Runner{}
	if err := r.Interactive(ctx, strings.NewReader("av1\n"), DefaultOptions()); err != context.Canceled {
		t.Fatalf("Interactive() error = %v, want context.Canceled", err)
	}
}

func TestFormatDownloadEvent(t *testing.T) {
	got := FormatDownloadEvent(client.DownloadEvent{
		Stage:   "export",
		Phase:   "complete",
		ItemKey: "3",
		Path:    "/tmp/av1_3_x.xml",
		Detail:  "format=xml comments=10",
	})
	want := "[export] complete item=3 path=/tmp/av1_3_x.xml detail=format=xml comments=10"
	if got != want {
		t.Fatalf("FormatDownloadEvent()=%q want=%q", got, want)
	}
}

func TestPrintContentTable(t *testing.T) {
	list := client.NewContentList()
	list.Set(client.ContentItem{Key: "10", Title: "Pilot", CID: "100", DurationSeconds: 1440})
	ref, _ := client.ParseReference("ss1")

	var out bytes.Buffer
	PrintContentTable(&out, ref, list)
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines=%q", lines)
	}
	if lines[0] != "Content of ss1" {
		t.Fatalf("title=%q", lines[0])
	}
	if fields := strings.Fields(lines[2]); len(fields) != 4 || fields[3] != "24:00" {
		t.Fatalf("row=%q", lines[2])
	}
}

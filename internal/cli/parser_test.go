package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/famomatic/danmakudl/client"
)

func TestParseNoArgsIsInteractive(t *testing.T) {
	opts, err := Parse(nil, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if opts.Command != CommandInteractive {
		t.Fatalf("Command=%q want=%q", opts.Command, CommandInteractive)
	}
	if opts.Format != "xml" || opts.OutputDir != "output" || opts.CookieFile != "cookie.txt" {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
	if opts.Timeout != 30*time.Second || opts.LogLevel != "warn" {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
}

func TestParseDownloadDefaults(t *testing.T) {
	opts, err := Parse([]string{"download", "av12345"}, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if opts.Command != CommandDownload || opts.ResourceID != "av12345" {
		t.Fatalf("Parse()=%+v", opts)
	}
	if opts.Segments != 0 || opts.Filter != "" || opts.ProxyURL != "" {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
}

func TestParseShortAndLongAliases(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Options
	}{
		{
			name: "short flags after id",
			args: []string{"download", "ss12345", "-o", "my_danmaku", "-f", "csv", "-c", "c.txt", "-s", "3"},
			want: Options{ResourceID: "ss12345", OutputDir: "my_danmaku", Format: "csv", CookieFile: "c.txt", Segments: 3},
		},
		{
			name: "long flags before id",
			args: []string{"download", "--format", "json", "--output", "out", "--cookie", "my_cookie.txt", "--segments", "2", "ep67890"},
			want: Options{ResourceID: "ep67890", OutputDir: "out", Format: "json", CookieFile: "my_cookie.txt", Segments: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.args, nil)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got.ResourceID != tt.want.ResourceID || got.OutputDir != tt.want.OutputDir ||
				got.Format != tt.want.Format || got.CookieFile != tt.want.CookieFile || got.Segments != tt.want.Segments {
				t.Fatalf("Parse()=%+v want=%+v", got, tt.want)
			}
		})
	}
}

func TestParseNetworkFlags(t *testing.T) {
	opts, err := Parse([]string{"download", "BV1xx411c7mD", "--proxy", "socks5://127.0.0.1:1080", "--timeout", "5s", "--filter", "d.mode === 1", "--log-level", "debug"}, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if opts.ProxyURL != "socks5://127.0.0.1:1080" || opts.Timeout != 5*time.Second {
		t.Fatalf("Parse()=%+v", opts)
	}
	if opts.Filter != "d.mode === 1" || opts.LogLevel != "debug" {
		t.Fatalf("Parse()=%+v", opts)
	}
}

func TestParseErrors(t *testing.T) {
	tests := [][]string{
		{"fetch", "av1"},
		{"download"},
		{"download", "av1", "av2"},
		{"download", "av1", "--segments", "-1"},
		{"download", "av1", "--bogus"},
		{"interactive", "av1"},
	}
	for _, args := range tests {
		var stderr bytes.Buffer
		_, err := Parse(args, &stderr)
		if !errors.Is(err, ErrUsage) {
			t.Fatalf("Parse(%q) error = %v, want ErrUsage", args, err)
		}
	}
}

func TestParseHelp(t *testing.T) {
	for _, args := range [][]string{{"--help"}, {"download", "-h"}} {
		var stderr bytes.Buffer
		opts, err := Parse(args, &stderr)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", args, err)
		}
		if !opts.Help {
			t.Fatalf("Parse(%q) Help=false", args)
		}
	}
}

func TestToClientConfigMissingCookieWarns(t *testing.T) {
	var warn bytes.Buffer
	opts := DefaultOptions()
	opts.CookieFile = filepath.Join(t.TempDir(), "nope.txt")
	opts.Segments = 4
	opts.ProxyURL = " http://127.0.0.1:8080 "

	cfg, err := ToClientConfig(opts, &warn)
	if err != nil {
		t.Fatalf("ToClientConfig() error = %v", err)
	}
	if cfg.Cookie != "" {
		t.Fatalf("Cookie=%q want empty", cfg.Cookie)
	}
	if !strings.Contains(warn.String(), "cookie file not found") {
		t.Fatalf("warning=%q", warn.String())
	}
	if cfg.MaxSegments != 4 || cfg.ProxyURL != "http://127.0.0.1:8080" || cfg.RequestTimeout != client.DefaultRequestTimeout {
		t.Fatalf("ToClientConfig()=%+v", cfg)
	}
}

func TestToClientConfigLoadsCookie(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookie.txt")
	if err := os.WriteFile(path, []byte("SESSDATA=abc; bili_jct=def\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.CookieFile = path

	cfg, err := ToClientConfig(opts, nil)
	if err != nil {
		t.Fatalf("ToClientConfig() error = %v", err)
	}
	if cfg.Cookie != "SESSDATA=abc; bili_jct=def" {
		t.Fatalf("Cookie=%q", cfg.Cookie)
	}
}

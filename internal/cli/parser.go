package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/famomatic/danmakudl/client"
	"github.com/famomatic/danmakudl/internal/cookies"
)

const (
	CommandDownload    = "download"
	CommandInteractive = "interactive"

	// DefaultOutputDir is where files land when -o is not given.
	DefaultOutputDir = "output"
	DefaultFormat    = "xml"
	DefaultLogLevel  = "warn"
)

// ErrUsage marks a malformed command line.
var ErrUsage = errors.New("usage error")

// Options holds all command-line options.
type Options struct {
	// Command is CommandDownload or CommandInteractive.
	Command    string
	ResourceID string

	Help bool

	// Output
	OutputDir string // -o, --output
	Format    string // -f, --format

	// Network
	CookieFile string        // -c, --cookie
	ProxyURL   string        // --proxy
	Timeout    time.Duration // --timeout

	// Fetching
	Segments int    // -s, --segments (0 derives from duration)
	Filter   string // --filter

	LogLevel string // --log-level
}

// DefaultOptions returns the options used when no flag overrides them.
func DefaultOptions() Options {
	return Options{
		OutputDir:  DefaultOutputDir,
		Format:     DefaultFormat,
		CookieFile: cookies.DefaultFile,
		Timeout:    client.DefaultRequestTimeout,
		LogLevel:   DefaultLogLevel,
	}
}

// Parse parses args (without the program name). No arguments selects
// interactive mode. Flags may appear before or after the resource id.
func Parse(args []string, stderr io.Writer) (Options, error) {
	opts := DefaultOptions()
	if stderr == nil {
		stderr = io.Discard
	}
	if len(args) == 0 {
		opts.Command = CommandInteractive
		return opts, nil
	}

	switch args[0] {
	case "-h", "-help", "--help", "help":
		opts.Help = true
		return opts, nil
	case CommandDownload, CommandInteractive:
		opts.Command = args[0]
	default:
		return opts, fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}

	fs := flag.NewFlagSet("danmakudl "+opts.Command, flag.ContinueOnError)
	fs.SetOutput(stderr)

	var outputShort, outputLong string
	var formatShort, formatLong string
	var cookieShort, cookieLong string
	var segmentsShort, segmentsLong int

	fs.StringVar(&outputShort, "o", DefaultOutputDir, "Output directory")
	fs.StringVar(&outputLong, "output", DefaultOutputDir, "Output directory")
	fs.StringVar(&formatShort, "f", DefaultFormat, "Output format (xml, json, csv, txt)")
	fs.StringVar(&formatLong, "format", DefaultFormat, "Output format (xml, json, csv, txt)")
	fs.StringVar(&cookieShort, "c", cookies.DefaultFile, "Path to the cookie file")
	fs.StringVar(&cookieLong, "cookie", cookies.DefaultFile, "Path to the cookie file")
	fs.IntVar(&segmentsShort, "s", 0, "Number of 6-minute segments to fetch (0 derives from duration)")
	fs.IntVar(&segmentsLong, "segments", 0, "Number of 6-minute segments to fetch (0 derives from duration)")

	fs.StringVar(&opts.ProxyURL, "proxy", "", "Use the specified HTTP/HTTPS/SOCKS proxy")
	fs.DurationVar(&opts.Timeout, "timeout", client.DefaultRequestTimeout, "Per-request timeout")
	fs.StringVar(&opts.Filter, "filter", "", "JavaScript expression over d (a comment); keep comments where it is truthy")
	fs.StringVar(&opts.LogLevel, "log-level", DefaultLogLevel, "Log level (debug, info, warn, error)")

	fs.Usage = func() {
		PrintUsage(stderr)
		fmt.Fprintln(stderr, "\nOptions:")
		fs.PrintDefaults()
	}

	var positional []string
	rest := args[1:]
	for {
		if err := fs.Parse(rest); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				opts.Help = true
				return opts, nil
			}
			return opts, fmt.Errorf("%w: %v", ErrUsage, err)
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		rest = fs.Args()[1:]
	}

	// Consolidate aliases
	opts.OutputDir = pickValue(outputShort, outputLong, DefaultOutputDir)
	opts.Format = pickValue(formatShort, formatLong, DefaultFormat)
	opts.CookieFile = pickValue(cookieShort, cookieLong, cookies.DefaultFile)
	opts.Segments = pickInt(segmentsShort, segmentsLong, 0)

	if opts.Segments < 0 {
		return opts, fmt.Errorf("%w: --segments must be >= 0, got %d", ErrUsage, opts.Segments)
	}

	switch opts.Command {
	case CommandDownload:
		if len(positional) != 1 {
			return opts, fmt.Errorf("%w: download expects exactly one resource id, got %d", ErrUsage, len(positional))
		}
		opts.ResourceID = positional[0]
	case CommandInteractive:
		if len(positional) != 0 {
			return opts, fmt.Errorf("%w: interactive takes no arguments", ErrUsage)
		}
	}
	return opts, nil
}

// PrintUsage writes the command synopsis.
func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: danmakudl download <id> [OPTIONS]")
	fmt.Fprintln(w, "       danmakudl interactive [OPTIONS]")
	fmt.Fprintln(w, "       danmakudl            (interactive mode)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "<id> is one of av<digits>, BV<alnum>, ep<digits>, ss<digits>, md<digits>.")
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  danmakudl download av12345")
	fmt.Fprintln(w, "  danmakudl download BV1xx411c7mD")
	fmt.Fprintln(w, "  danmakudl download ep67890 --format json")
	fmt.Fprintln(w, "  danmakudl download ss12345 -o my_danmaku -f csv")
	fmt.Fprintln(w, "  danmakudl download av12345 --cookie my_cookie.txt")
}

func pickValue(v1, v2, def string) string {
	if v1 != def {
		return v1
	}
	if v2 != def {
		return v2
	}
	return def
}

func pickInt(v1, v2, def int) int {
	if v1 != def {
		return v1
	}
	return v2
}

// ToClientConfig converts Options to client.Config. A missing cookie file is
// reported on warn and the client runs without cookies.
func ToClientConfig(opts Options, warn io.Writer) (client.Config, error) {
	cfg := client.Config{
		ProxyURL:       strings.TrimSpace(opts.ProxyURL),
		RequestTimeout: opts.Timeout,
		MaxSegments:    opts.Segments,
	}

	path := strings.TrimSpace(opts.CookieFile)
	if path == "" {
		return cfg, nil
	}
	cookie, err := cookies.Load(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if warn != nil {
			fmt.Fprintf(warn, "Warning: cookie file not found: %s (continuing without cookies)\n", path)
		}
	case err != nil:
		return cfg, err
	default:
		cfg.Cookie = cookie
	}
	return cfg, nil
}

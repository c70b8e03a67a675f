package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/famomatic/danmakudl/client"
	"github.com/famomatic/danmakudl/internal/cookies"
)

var formatChoices = map[string]client.OutputFormat{
	"":  client.FormatXML,
	"1": client.FormatXML,
	"2": client.FormatJSON,
	"3": client.FormatCSV,
	"4": client.FormatText,
}

// Interactive prompts for resource ids on in until the user quits or in is
// exhausted. base supplies the settings that are not prompted for.
func (r *Runner) Interactive(ctx context.Context, in io.Reader, base Options) error {
	out := r.out()
	scanner := bufio.NewScanner(in)
	prompt := func(label string) (string, bool) {
		fmt.Fprint(out, label)
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	fmt.Fprintln(out, "Bilibili Danmaku Downloader - Interactive Mode")
	fmt.Fprintln(out, "Enter resource ID (avid, bvid, epid, ssid, mdid) or 'q' to quit:")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		input, ok := prompt("> ")
		if !ok {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		switch strings.ToLower(input) {
		case "q", "quit", "exit":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		case "":
			continue
		}

		ref, err := client.ParseReference(input)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			fmt.Fprintln(out, "Please enter a valid resource ID or 'q' to quit:")
			continue
		}
		fmt.Fprintf(out, "Valid resource ID: %s (Type: %s)\n", ref.RawID, ref.Kind)

		fmt.Fprintln(out, "Select output format:")
		fmt.Fprintln(out, "1. XML (default, compatible with most players)")
		fmt.Fprintln(out, "2. JSON (for analysis)")
		fmt.Fprintln(out, "3. CSV (for spreadsheet)")
		fmt.Fprintln(out, "4. Plain text")
		choice, ok := prompt("Format [1-4] > ")
		if !ok {
			return scanner.Err()
		}
		format, known := formatChoices[choice]
		if !known {
			fmt.Fprintln(out, "Invalid choice, using XML.")
			format = client.FormatXML
		}

		defaultDir := filepath.Join(DefaultOutputDir, r.now().Format("20060102_150405"))
		outputDir, ok := prompt(fmt.Sprintf("Output directory [%s] > ", defaultDir))
		if !ok {
			return scanner.Err()
		}
		if outputDir == "" {
			outputDir = defaultDir
		}

		cookieFile, ok := prompt(fmt.Sprintf("Cookie file [%s] > ", cookies.DefaultFile))
		if !ok {
			return scanner.Err()
		}
		if cookieFile == "" {
			cookieFile = cookies.DefaultFile
		}

		opts := base
		opts.Command = CommandDownload
		opts.ResourceID = ref.RawID
		opts.Format = string(format)
		opts.OutputDir = outputDir
		opts.CookieFile = cookieFile
		if _, err := r.Download(ctx, opts); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}

		fmt.Fprintln(out, "\nEnter another resource ID or 'q' to quit:")
	}
}

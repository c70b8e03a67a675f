package client

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameReplacer = strings.NewReplacer(
	`\`, "_", "/", "_", "*", "_", "?", "_", ":", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_",
)

// SafeTitle returns title in NFC form with path-unsafe characters replaced
// by underscores.
func SafeTitle(title string) string {
	return unsafeFilenameReplacer.Replace(norm.NFC.String(title))
}

// OutputFilename builds "{rawID}_{itemKey}_{safeTitle}.{format}".
func OutputFilename(rawID string, item ContentItem, format OutputFormat) string {
	return rawID + "_" + item.Key + "_" + SafeTitle(item.Title) + "." + string(format)
}

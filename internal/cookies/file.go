package cookies

import (
	"fmt"
	"os"
	"strings"
)

// DefaultFile is the cookie file read when none is given.
const DefaultFile = "cookie.txt"

// Load reads a cookie file and returns the Cookie header value. A raw header
// blob is returned trimmed and otherwise verbatim; a Netscape cookies.txt is
// converted to name=value pairs. A missing file returns an error matching
// os.ErrNotExist.
func Load(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultFile
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read cookie file %s: %w", path, err)
	}
	content := strings.TrimSpace(strings.TrimPrefix(string(raw), "\ufeff"))
	if content == "" {
		return "", nil
	}
	if !isNetscape(content) {
		return content, nil
	}
	parsed, err := ParseNetscape(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse cookie file %s: %w", path, err)
	}
	return HeaderValue(parsed), nil
}

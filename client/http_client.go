package client

import (
	"net/http"
	"net/url"
	"strings"
)

// defaultHTTPClient returns http.DefaultClient unless a usable proxy URL is
// given, in which case the default transport is cloned with that proxy.
func defaultHTTPClient(proxyURL string) *http.Client {
	proxyURL = strings.TrimSpace(proxyURL)
	if proxyURL == "" {
		return http.DefaultClient
	}
	parsed, err := url.Parse(proxyURL)
	if err != nil || parsed.Host == "" {
		return http.DefaultClient
	}
	switch parsed.Scheme {
	case "http", "https", "socks5", "socks5h":
	default:
		return http.DefaultClient
	}
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return http.DefaultClient
	}
	transport := baseTransport.Clone()
	transport.Proxy = http.ProxyURL(parsed)
	return &http.Client{Transport: transport}
}

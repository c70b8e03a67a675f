package webapi

import "net/http"

// DefaultBaseURL is the public API host.
const DefaultBaseURL = "https://api.bilibili.com"

// Endpoint paths relative to the base URL.
const (
	PathView          = "/x/web-interface/view"
	PathSeason        = "/pgc/view/web/season"
	PathMediaReview   = "/pgc/review/user"
	PathNav           = "/x/web-interface/nav"
	PathSegmentSigned = "/x/v2/dm/wbi/web/seg.so"
	PathSegmentLegacy = "/x/v2/dm/web/seg.so"
)

// DefaultUserAgent is sent unless the caller overrides User-Agent.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36 Edg/136.0.0.0"

// DefaultHeaders returns the browser-like header set sent with every request.
func DefaultHeaders() http.Header {
	h := make(http.Header)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7")
	h.Set("Accept-Language", "en-CA,en-US;q=0.9,en;q=0.8,zh-CN;q=0.7,zh-TW;q=0.6,zh;q=0.5")
	h.Set("Cache-Control", "max-age=0")
	h.Set("Priority", "u=0, i")
	h.Set("Sec-Ch-Ua", `"Chromium";v="136", "Microsoft Edge";v="136", "Not.A/Brand";v="99"`)
	h.Set("Sec-Ch-Ua-Mobile", "?0")
	h.Set("Sec-Ch-Ua-Platform", `"Windows"`)
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "none")
	h.Set("Sec-Fetch-User", "?1")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("User-Agent", DefaultUserAgent)
	return h
}

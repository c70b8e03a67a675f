package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/famomatic/danmakudl/internal/dmseg"
	"github.com/famomatic/danmakudl/internal/webapi"
)

const (
	testImgKey = "7cd084941338484aae1ad9425b84077c"
	testSubKey = "4932caff0ff746eab6f01bf08b70ac45"
)

// fakeAPI serves the metadata, nav and segment endpoints from in-memory
// fixtures. Segment handlers run concurrently, so every counter is guarded.
type fakeAPI struct {
	mu sync.Mutex

	// json maps an endpoint path to a handler returning the JSON body.
	json map[string]func(r *http.Request) (int, any)
	// segments maps cid -> segment index -> comments.
	segments map[string]map[int][]Comment
	// signedFail and legacyFail force a 412 for the given cid/index.
	signedFail map[string]bool
	legacyFail map[string]bool
	navFail    bool

	hits        map[string]int
	unsignedWbi int
	// segmentCalls records requested indexes per tier ("signed", "legacy").
	segmentCalls map[string][]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		json:         make(map[string]func(r *http.Request) (int, any)),
		segments:     make(map[string]map[int][]Comment),
		signedFail:   make(map[string]bool),
		legacyFail:   make(map[string]bool),
		hits:         make(map[string]int),
		segmentCalls: make(map[string][]int),
	}
}

func segmentKey(cid string, index int) string {
	return cid + "/" + strconv.Itoa(index)
}

func (f *fakeAPI) setSegment(cid string, index int, comments ...Comment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.segments[cid] == nil {
		f.segments[cid] = make(map[int][]Comment)
	}
	f.segments[cid][index] = comments
}

func (f *fakeAPI) calls(tier string) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]int(nil), f.segmentCalls[tier]...)
	sort.Ints(out)
	return out
}

func (f *fakeAPI) hitCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits[r.URL.Path]++
	f.mu.Unlock()

	switch r.URL.Path {
	case webapi.PathNav:
		f.serveNav(w)
	case webapi.PathSegmentSigned:
		f.serveSegment(w, r, true)
	case webapi.PathSegmentLegacy:
		f.serveSegment(w, r, false)
	default:
		f.mu.Lock()
		handler := f.json[r.URL.Path]
		f.mu.Unlock()
		if handler == nil {
			http.NotFound(w, r)
			return
		}
		status, body := handler(r)
		writeJSON(w, status, body)
	}
}

func (f *fakeAPI) serveNav(w http.ResponseWriter) {
	if f.navFail {
		http.Error(w, "nav unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"code":    -101,
		"message": "账号未登录",
		"data": map[string]any{
			"isLogin": false,
			"wbi_img": map[string]any{
				"img_url": "https://i0.hdslb.com/bfs/wbi/" + testImgKey + ".png",
				"sub_url": "https://i0.hdslb.com/bfs/wbi/" + testSubKey + ".png",
			},
		},
	})
}

func (f *fakeAPI) serveSegment(w http.ResponseWriter, r *http.Request, signed bool) {
	q := r.URL.Query()
	cid := q.Get("oid")
	index, _ := strconv.Atoi(q.Get("segment_index"))
	key := segmentKey(cid, index)

	f.mu.Lock()
	tier := "legacy"
	if signed {
		tier = "signed"
	}
	f.segmentCalls[tier] = append(f.segmentCalls[tier], index)
	if signed && (q.Get("w_rid") == "" || q.Get("wts") == "") {
		f.unsignedWbi++
	}
	fail := f.legacyFail[key]
	if signed {
		fail = f.signedFail[key]
	}
	comments := f.segments[cid][index]
	f.mu.Unlock()

	if fail {
		http.Error(w, "precondition failed", http.StatusPreconditionFailed)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(dmseg.Encode(comments))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newFakeClient(t *testing.T, api *fakeAPI, mutate func(*Config)) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	cfg := Config{
		HTTPClient: srv.Client(),
		APIBaseURL: srv.URL,
		Now: func() time.Time {
			return time.Unix(1700000000, 0)
		},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewClient(cfg)
}

func okResult(result any) map[string]any {
	return map[string]any{"code": 0, "message": "0", "result": result}
}

func okData(data any) map[string]any {
	return map[string]any{"code": 0, "message": "0", "data": data}
}

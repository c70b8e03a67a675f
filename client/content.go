package client

import (
	"fmt"

	"github.com/famomatic/danmakudl/internal/dmseg"
)

// Comment is one decoded danmaku record. Progress is milliseconds into the
// video and CTime is unix seconds.
type Comment = dmseg.Elem

// ContentItem is one downloadable unit: a page of a video or an episode of a
// season.
type ContentItem struct {
	// Key is the page number or the episode's content id.
	Key   string
	Title string
	// CID is the comment stream handle.
	CID             string
	DurationSeconds int64
}

// DurationLabel renders the duration as M:SS.
func (i ContentItem) DurationLabel() string {
	d := i.DurationSeconds
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%d:%02d", d/60, d%60)
}

// ContentList is an insertion-ordered map of items by key. Setting an
// existing key replaces the item in place.
type ContentList struct {
	keys  []string
	items map[string]ContentItem
}

func NewContentList() *ContentList {
	return &ContentList{items: make(map[string]ContentItem)}
}

// Set inserts or replaces the item stored under item.Key.
func (l *ContentList) Set(item ContentItem) {
	if l.items == nil {
		l.items = make(map[string]ContentItem)
	}
	if _, ok := l.items[item.Key]; !ok {
		l.keys = append(l.keys, item.Key)
	}
	l.items[item.Key] = item
}

func (l *ContentList) Get(key string) (ContentItem, bool) {
	item, ok := l.items[key]
	return item, ok
}

func (l *ContentList) Len() int {
	return len(l.keys)
}

// Keys returns keys in first-insertion order.
func (l *ContentList) Keys() []string {
	return append([]string(nil), l.keys...)
}

// Items returns items in first-insertion order.
func (l *ContentList) Items() []ContentItem {
	out := make([]ContentItem, 0, len(l.keys))
	for _, k := range l.keys {
		out = append(out, l.items[k])
	}
	return out
}

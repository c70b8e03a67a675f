package client

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// OutputFormat is a danmaku serialization target.
type OutputFormat string

const (
	FormatXML  OutputFormat = "xml"
	FormatJSON OutputFormat = "json"
	FormatCSV  OutputFormat = "csv"
	FormatText OutputFormat = "txt"
)

// OutputFormats lists the supported formats in menu order.
var OutputFormats = []OutputFormat{FormatXML, FormatJSON, FormatCSV, FormatText}

// ParseOutputFormat validates a format name.
func ParseOutputFormat(raw string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range OutputFormats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (supported: xml, json, csv, txt)", ErrUnsupportedFormat, raw)
}

// WriteDanmaku renders comments and writes them to path, creating parent
// directories. Nothing is written when rendering fails.
func WriteDanmaku(path string, comments []Comment, format OutputFormat) error {
	data, err := RenderDanmaku(comments, format)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// RenderDanmaku serializes comments in the given format.
func RenderDanmaku(comments []Comment, format OutputFormat) ([]byte, error) {
	switch format {
	case FormatXML:
		return renderXML(comments)
	case FormatJSON:
		return renderJSON(comments)
	case FormatCSV:
		return renderCSV(comments), nil
	case FormatText:
		return renderText(comments), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

type xmlDocument struct {
	XMLName    xml.Name  `xml:"i"`
	ChatServer string    `xml:"chatserver"`
	ChatID     int       `xml:"chatid"`
	Mission    int       `xml:"mission"`
	MaxLimit   int       `xml:"maxlimit"`
	Source     string    `xml:"source"`
	Items      []xmlItem `xml:"d"`
}

type xmlItem struct {
	P       string `xml:"p,attr"`
	Content string `xml:",chardata"`
}

func renderXML(comments []Comment) ([]byte, error) {
	doc := xmlDocument{
		ChatServer: "chat.bilibili.com",
		MaxLimit:   len(comments),
		Source:     "k-v",
		Items:      make([]xmlItem, 0, len(comments)),
	}
	for _, c := range comments {
		// time,mode,fontsize,color,ctime,pool,midHash,id
		p := fmt.Sprintf("%s,%d,%d,%d,%d,0,%s,%d",
			formatSeconds(c.Progress), c.Mode, c.FontSize, c.Color, c.CTime, c.MidHash, c.ID)
		doc.Items = append(doc.Items, xmlItem{P: p, Content: c.Content})
	}

	body, err := xml.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

type jsonComment struct {
	ID        int64   `json:"id"`
	Progress  int32   `json:"progress"`
	Time      float64 `json:"time"`
	Mode      int32   `json:"mode"`
	FontSize  int32   `json:"fontsize"`
	Color     uint32  `json:"color"`
	MidHash   string  `json:"midHash"`
	Content   string  `json:"content"`
	CTime     int64   `json:"ctime"`
	Timestamp string  `json:"timestamp"`
	Weight    int32   `json:"weight"`
	Pool      int32   `json:"pool"`
	Attr      int32   `json:"attr"`
}

func renderJSON(comments []Comment) ([]byte, error) {
	out := make([]jsonComment, 0, len(comments))
	for _, c := range comments {
		out = append(out, jsonComment{
			ID:        c.ID,
			Progress:  c.Progress,
			Time:      float64(c.Progress) / 1000,
			Mode:      c.Mode,
			FontSize:  c.FontSize,
			Color:     c.Color,
			MidHash:   c.MidHash,
			Content:   c.Content,
			CTime:     c.CTime,
			Timestamp: formatTimestamp(c.CTime),
			Weight:    c.Weight,
			Pool:      c.Pool,
			Attr:      c.Attr,
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

const csvHeader = "id,progress,time_sec,mode,fontsize,color,midHash,content,ctime,timestamp,weight,pool,attr"

func renderCSV(comments []Comment) []byte {
	var buf bytes.Buffer
	buf.WriteString(csvHeader)
	buf.WriteByte('\n')
	for i, c := range comments {
		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "%d,%d,%s,%d,%d,%d,%s,%s,%d,%s,%d,%d,%d",
			c.ID, c.Progress, formatSeconds(c.Progress), c.Mode, c.FontSize, c.Color, c.MidHash,
			quoteCSV(c.Content), c.CTime, formatTimestamp(c.CTime), c.Weight, c.Pool, c.Attr)
	}
	return buf.Bytes()
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func renderText(comments []Comment) []byte {
	sorted := append([]Comment(nil), comments...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Progress < sorted[j].Progress
	})
	lines := make([]string, 0, len(sorted))
	for _, c := range sorted {
		lines = append(lines, fmt.Sprintf("[%.1fs] %s", float64(c.Progress)/1000, c.Content))
	}
	return []byte(strings.Join(lines, "\n"))
}

// formatSeconds renders milliseconds as seconds with at least one decimal
// place ("1.5", "2.0").
func formatSeconds(progressMS int32) string {
	s := strconv.FormatFloat(float64(progressMS)/1000, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatTimestamp(unix int64) string {
	return time.Unix(unix, 0).Format("2006-01-02T15:04:05")
}

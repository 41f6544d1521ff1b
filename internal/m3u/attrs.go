// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package m3u

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Well-known attribute keys.
const (
	KeyTvgID      = "tvg-id"
	KeyTvgName    = "tvg-name"
	KeyTvgLogo    = "tvg-logo"
	KeyGroupTitle = "group-title"

	KeyHTTPReferrer  = "http-referrer"
	KeyHTTPReferer   = "http-referer"
	KeyHTTPOrigin    = "http-origin"
	KeyHTTPUserAgent = "http-user-agent"

	// Synthesized by the builder.
	KeyRawURL     = "raw_url"
	KeyTitle      = "title"
	KeyM3U8       = "m3u8"
	KeyM3U8Player = "m3u8_player"
)

// Attribute is one key=value pair in source order.
type Attribute struct {
	Key   string
	Value string
}

// Attributes is the merged attribute map of one entry.
type Attributes map[string]string

// Merge copies pairs into a in order, so later pairs win.
func (a Attributes) Merge(pairs []Attribute) {
	for _, p := range pairs {
		a[p.Key] = p.Value
	}
}

// TvgID returns the entry identifier, "" when absent.
func (a Attributes) TvgID() string { return a[KeyTvgID] }

// GroupTitle reports the category and whether the entry has one.
func (a Attributes) GroupTitle() (string, bool) {
	v, ok := a[KeyGroupTitle]
	return v, ok
}

// Name is the display name: tvg-name, then the #EXTINF title, then tvg-id.
func (a Attributes) Name() string {
	if n := a[KeyTvgName]; n != "" {
		return n
	}
	if n := a[KeyTitle]; n != "" {
		return n
	}
	return a[KeyTvgID]
}

// ParseAttributes returns every key=value pair in line, in order.
//
// A key is a non-empty run of non-space characters ending at the first '='.
// A value is either double quoted, and may then contain spaces, or a run of
// non-space characters. An opening quote without a closing one is taken as
// part of an unquoted value. Fragments without a value are skipped. The scan
// is a single forward pass.
func ParseAttributes(line string) []Attribute {
	var out []Attribute
	i := 0
	for i < len(line) {
		i = skipSpace(line, i)
		if i >= len(line) {
			break
		}
		runEnd := i + nextSpace(line[i:])

		// The key needs at least one character, so search from i+1.
		eq := strings.IndexByte(line[i+1:runEnd], '=')
		if eq < 0 {
			i = runEnd
			continue
		}
		eq += i + 1
		valStart := eq + 1
		if valStart >= runEnd {
			// '=' is the last character of the run: no value.
			i = runEnd
			continue
		}

		key := line[i:eq]
		if line[valStart] == '"' {
			if closeIdx := strings.IndexByte(line[valStart+1:], '"'); closeIdx >= 0 {
				end := valStart + 1 + closeIdx
				out = append(out, Attribute{Key: key, Value: line[valStart+1 : end]})
				i = end + 1
				continue
			}
		}
		out = append(out, Attribute{Key: key, Value: line[valStart:runEnd]})
		i = runEnd
	}
	return out
}

func skipSpace(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			return i
		}
		i += size
	}
	return i
}

// nextSpace returns the offset of the first whitespace rune in s, or len(s).
func nextSpace(s string) int {
	if n := strings.IndexFunc(s, unicode.IsSpace); n >= 0 {
		return n
	}
	return len(s)
}

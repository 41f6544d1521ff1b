// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package m3u

import (
	"encoding/base64"
	"fmt"
	"iter"
	"net/url"
	"strings"
	"unicode"
)

const (
	// OptionPrefix introduces per-entry player options.
	OptionPrefix = "#EXTVLCOPT:"

	proxyPath  = "/playlist.m3u8"
	playerPath = "/play"
)

// Builder turns entry groups into attribute maps with derived playback URLs.
type Builder struct {
	proxyBase *url.URL
}

// NewBuilder returns a Builder that points m3u8 links at proxyBase. An empty
// proxyBase produces host-relative links.
func NewBuilder(proxyBase string) (*Builder, error) {
	b := &Builder{}
	if strings.TrimSpace(proxyBase) == "" {
		return b, nil
	}
	u, err := url.Parse(proxyBase)
	if err != nil {
		return nil, fmt.Errorf("parse proxy base: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("proxy base %q must be an absolute URL", proxyBase)
	}
	b.proxyBase = u
	return b, nil
}

// BuildEntry produces the attribute map of one group. It fails with a
// *MissingFieldError when raw_url or tvg-id is absent.
func (b *Builder) BuildEntry(g Group) (Attributes, error) {
	attrs := Attributes{}
	if len(g) == 0 {
		return nil, &MissingFieldError{Field: KeyRawURL}
	}

	attrs.Merge(ParseAttributes(primaryAttributes(g[0])))
	for _, line := range g[1:] {
		switch {
		case strings.HasPrefix(line, OptionPrefix):
			attrs.Merge(ParseAttributes(line[len(OptionPrefix):]))
		case strings.HasPrefix(line, "http"):
			attrs[KeyRawURL] = line
		}
	}
	if _, ok := attrs[KeyTitle]; !ok {
		if title := extinfTitle(g[0]); title != "" {
			attrs[KeyTitle] = title
		}
	}

	if _, ok := attrs[KeyRawURL]; !ok {
		return attrs, &MissingFieldError{Field: KeyRawURL}
	}
	if _, ok := attrs[KeyTvgID]; !ok {
		return attrs, &MissingFieldError{Field: KeyTvgID}
	}

	attrs[KeyM3U8] = b.ProxyURL(attrs)
	attrs[KeyM3U8Player] = PlayerURL(attrs[KeyTvgID])
	return attrs, nil
}

// extinfTitle returns the display title after the last comma that is not
// inside a quoted value, trimmed. It is "" when there is no such comma.
func extinfTitle(line string) string {
	cut := -1
	quoted := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			quoted = !quoted
		case ',':
			if !quoted {
				cut = i
			}
		}
	}
	if cut < 0 {
		return ""
	}
	return strings.TrimSpace(line[cut+1:])
}

// primaryAttributes drops the leading directive token ("#EXTINF:-1").
func primaryAttributes(line string) string {
	idx := strings.IndexFunc(line, unicode.IsSpace)
	if idx < 0 {
		return ""
	}
	return line[idx:]
}

// HeaderDirectives returns the header overrides the proxy applies, in the
// fixed order Referer (both spellings), Origin, User-Agent.
func HeaderDirectives(a Attributes) []string {
	var out []string
	for _, d := range []struct{ header, key string }{
		{"Referer", KeyHTTPReferrer},
		{"Referer", KeyHTTPReferer},
		{"Origin", KeyHTTPOrigin},
		{"User-Agent", KeyHTTPUserAgent},
	} {
		if v, ok := a[d.key]; ok {
			out = append(out, d.header+"="+v)
		}
	}
	return out
}

// ProxyURL derives the m3u8 link: <proxy base>/playlist.m3u8?url=<raw_url>&data=<b64>.
func (b *Builder) ProxyURL(a Attributes) string {
	data := base64.StdEncoding.EncodeToString([]byte(strings.Join(HeaderDirectives(a), "|")))
	query := "url=" + url.QueryEscape(a[KeyRawURL]) + "&data=" + url.QueryEscape(data)

	if b.proxyBase == nil {
		return proxyPath + "?" + query
	}
	return b.proxyBase.ResolveReference(&url.URL{Path: proxyPath, RawQuery: query}).String()
}

// PlayerURL is the same-origin detail page for an entry.
func PlayerURL(tvgID string) string {
	return playerPath + "?tvg-id=" + url.QueryEscape(tvgID)
}

// Metadata is the result of a build.
type Metadata struct {
	Entries  []Attributes
	Groups   *GroupIndex
	Failures []EntryError
}

// Build runs BuildEntry over every group. Failing entries are recorded and
// left out; they never abort the build.
func (b *Builder) Build(groups iter.Seq[Group]) Metadata {
	md := Metadata{Groups: NewGroupIndex()}
	idx := 0
	for g := range groups {
		attrs, err := b.BuildEntry(g)
		if err != nil {
			md.Failures = append(md.Failures, EntryError{Index: idx, TvgID: attrs.TvgID(), Err: err})
		} else {
			md.Entries = append(md.Entries, attrs)
			if title, ok := attrs.GroupTitle(); ok {
				md.Groups.Add(title, attrs)
			}
		}
		idx++
	}
	return md
}

// Find returns the first entry with the given tvg-id.
func (m Metadata) Find(tvgID string) (Attributes, bool) {
	for _, e := range m.Entries {
		if id, ok := e[KeyTvgID]; ok && id == tvgID {
			return e, true
		}
	}
	return nil, false
}

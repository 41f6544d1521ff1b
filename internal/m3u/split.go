// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package m3u turns extended M3U playlist text into per-entry attribute maps.
package m3u

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"strings"
)

// HeaderPrefix marks the playlist header line.
const HeaderPrefix = "#EXTM3U"

// Group is the lines of one playlist entry. The first line is the primary
// directive; later lines are option directives or the stream URL.
type Group []string

// Primary returns the first line, or "" for an empty group.
func (g Group) Primary() string {
	if len(g) == 0 {
		return ""
	}
	return g[0]
}

// Split lazily yields the blank-line separated entry groups of r.
//
// Lines may end in LF, CRLF or a lone CR. Header lines are dropped wherever
// they appear. A line containing only whitespace ends the current group.
// Empty groups are never yielded, so a trailing blank line or an empty
// document produce no extra entries. A read error other than io.EOF ends the
// sequence early.
func Split(r io.Reader) iter.Seq[Group] {
	return func(yield func(Group) bool) {
		br := bufio.NewReader(r)
		var cur Group
		push := func(line string) bool {
			switch {
			case strings.HasPrefix(line, HeaderPrefix):
			case strings.TrimSpace(line) == "":
				if len(cur) > 0 {
					if !yield(cur) {
						return false
					}
					cur = nil
				}
			default:
				cur = append(cur, line)
			}
			return true
		}
		for {
			chunk, err := br.ReadString('\n')
			if chunk != "" || err == nil {
				chunk = strings.TrimSuffix(chunk, "\n")
				chunk = strings.TrimSuffix(chunk, "\r")
				for line := range strings.SplitSeq(chunk, "\r") {
					if !push(line) {
						return
					}
				}
			}
			if err != nil {
				if errors.Is(err, io.EOF) && len(cur) > 0 {
					yield(cur)
				}
				return
			}
		}
	}
}

// SplitString is Split over an in-memory document.
func SplitString(s string) iter.Seq[Group] {
	return Split(strings.NewReader(s))
}

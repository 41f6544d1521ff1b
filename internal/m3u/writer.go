// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package m3u

import (
	"bufio"
	"io"
	"strings"
)

var extinfAttrs = []string{KeyTvgID, KeyTvgName, KeyTvgLogo, KeyGroupTitle}

var attrEscaper = strings.NewReplacer(`"`, `'`, "\r", " ", "\n", " ")

// WriteM3U renders entries as an extended M3U playlist whose stream URLs are
// the proxied m3u8 links. Entries without an m3u8 link are skipped.
func WriteM3U(w io.Writer, entries []Attributes) error {
	bw := bufio.NewWriter(w)
	_, _ = bw.WriteString(HeaderPrefix + "\n")
	for _, e := range entries {
		link, ok := e[KeyM3U8]
		if !ok {
			continue
		}
		_, _ = bw.WriteString("#EXTINF:-1")
		for _, k := range extinfAttrs {
			if v, ok := e[k]; ok {
				_, _ = bw.WriteString(" " + k + `="` + attrEscaper.Replace(v) + `"`)
			}
		}
		_, _ = bw.WriteString("," + attrEscaper.Replace(e.Name()) + "\n")
		_, _ = bw.WriteString(link + "\n")
	}
	return bw.Flush()
}

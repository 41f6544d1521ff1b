// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"cmp"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"slices"

	"github.com/ManuGH/m3uview/internal/m3u"
)

var (
	//go:embed templates/*.html
	templateFS embed.FS
	//go:embed static
	staticFS embed.FS
)

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err) // embedded path is fixed at build time
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}

const (
	indexTemplate = "index.html"
	playTemplate  = "play.html"
)

func parseTemplates() (*template.Template, error) {
	t, err := template.New("pages").Funcs(template.FuncMap{
		"attr": attr,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

// attr reads a key that is not a valid template identifier, e.g. tvg-logo.
func attr(a m3u.Attributes, key string) string {
	return a[key]
}

type indexPage struct {
	Version string
	Entries []m3u.Attributes
	Groups  []m3u.Bucket
	// Skipped counts entries left out of the build.
	Skipped int
}

type playPage struct {
	Version    string
	Entry      m3u.Attributes
	Attributes []m3u.Attribute
}

func newPlayPage(version string, entry m3u.Attributes) playPage {
	attrs := make([]m3u.Attribute, 0, len(entry))
	for k, v := range entry {
		attrs = append(attrs, m3u.Attribute{Key: k, Value: v})
	}
	slices.SortFunc(attrs, func(a, b m3u.Attribute) int { return cmp.Compare(a.Key, b.Key) })
	return playPage{Version: version, Entry: entry, Attributes: attrs}
}

package site

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed static/**
var staticFS embed.FS

const pageTemplate = "index.html.tmpl"

// FS returns an http.FileSystem for the embedded page assets.
func FS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return http.FS(staticFS)
	}
	return http.FS(sub)
}

// parsePage parses the embedded page template.
func parsePage() (*template.Template, error) {
	return template.ParseFS(staticFS, "static/"+pageTemplate)
}

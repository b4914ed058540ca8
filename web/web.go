// Package web embeds the dashboard's HTML templates and static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates static
var content embed.FS

// GetTemplatesFS returns the page templates; layout.html and login.html sit at the root
func GetTemplatesFS() fs.FS {
	return mustSub("templates")
}

// GetStaticFS returns the files served under /static/
func GetStaticFS() fs.FS {
	return mustSub("static")
}

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(content, dir)
	if err != nil {
		panic("web: " + err.Error())
	}
	return sub
}

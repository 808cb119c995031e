// Package static embeds the browser front-end served under /static.
package static

import (
	"embed"
	"io/fs"
)

//go:embed files
var files embed.FS

// FS returns the front-end files rooted at the directory served as /static.
func FS() fs.FS {
	sub, err := fs.Sub(files, "files")
	if err != nil {
		panic(err)
	}
	return sub
}

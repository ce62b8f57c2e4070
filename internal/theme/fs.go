// fs.go holds a tiny helper for walking an fs.FS when template glob
// patterns such as “**/*.html” are not available in the Go standard library.
// The key export is CollectHTML, which returns every .html file under the
// supplied directory as slash paths ready for template.ParseFS.
package theme

import (
	"io/fs"
	"path"
	"strings"
)

// CollectHTML walks dir in fsys recursively and returns a list of *.html
// paths in walk order (lexical within each directory).
//
// Callers typically pass:
//
//	files, _ := CollectHTML(themeFS, "templates")
//	tpl.ParseFS(themeFS, files...)
func CollectHTML(fsys fs.FS, dir string) ([]string, error) {
	var files []string

	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil { // propagate filesystem errors immediately
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(path.Ext(d.Name()), ".html") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

package theme

import (
	"fmt"
	"html/template"
	"io/fs"
	"path"
)

// Manager discovers and loads themes from one root FS laid out as
// themes/<name>/{templates,assets}/.
type Manager struct {
	FS fs.FS
}

// Load parses every template of the named theme.  funcs must carry every
// helper name the templates use; the view engine rebinds real closures per
// request, so placeholder implementations are fine here.
func (m *Manager) Load(name string, funcs template.FuncMap) (*Theme, error) {
	root := path.Join("themes", name)
	if info, err := fs.Stat(m.FS, root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("theme %s not found at %s", name, root)
	}
	sub, err := fs.Sub(m.FS, root)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", name, err)
	}

	files, err := CollectHTML(sub, "templates")
	if err != nil {
		return nil, fmt.Errorf("theme %s templates: %w", name, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("theme %s has no templates", name)
	}

	th := New(name, sub, nil)
	fm := template.FuncMap{}
	for k, f := range funcs {
		fm[k] = f
	}
	fm["asset"] = th.AssetFunc

	tpl, err := template.New(name).Funcs(fm).ParseFS(sub, files...)
	if err != nil {
		return nil, fmt.Errorf("parse theme %s: %w", name, err)
	}
	if tpl.Lookup("layout") == nil {
		return nil, fmt.Errorf("theme %s does not define a \"layout\" template", name)
	}
	th.Renderer = tpl
	return th, nil
}

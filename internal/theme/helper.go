//
//  internal/theme/helper.go
//
//  Theme functions that expose RequestInfo fields with short,
//  ergonomic names.  These helpers prevent HTML authors from poking
//  through nested structs repeatedly.  Every helper tolerates a nil
//  Context or a request that skipped the Enrich middleware.
//

package theme

import (
	"html/template"

	"github.com/yanizio/askform/internal/core"
	"github.com/yanizio/askform/internal/requestinfo"
)

// FuncMap returns the request-info helpers plus `asset`.
func FuncMap(asset func(string) string) template.FuncMap {
	if asset == nil {
		asset = func(s string) string { return AssetPrefix + s }
	}
	return template.FuncMap{
		"asset": asset,

		// Geo helpers
		"clientIP": func(c *core.Context) string {
			if i := info(c); i != nil && i.Geo.IP != nil {
				return i.Geo.IP.String()
			}
			return ""
		},
		"country": func(c *core.Context) string {
			if i := info(c); i != nil {
				return i.Geo.CountryISO
			}
			return ""
		},

		// UA helpers
		"browser": func(c *core.Context) string {
			if i := info(c); i != nil {
				return i.UA.Browser
			}
			return ""
		},
		"device": func(c *core.Context) string {
			if i := info(c); i != nil {
				return i.UA.Device
			}
			return ""
		},
		"isBot": func(c *core.Context) bool {
			i := info(c)
			return i != nil && i.UA.IsBot
		},
	}
}

func info(c *core.Context) *requestinfo.RequestInfo {
	if c == nil {
		return nil
	}
	return c.Info
}

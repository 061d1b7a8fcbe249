// internal/app/features/sitepublic/templates.go
package sitepublic

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "sitepublic",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}

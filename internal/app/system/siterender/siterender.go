// Package siterender turns a page's ordered section list into a displayable
// document. Rendering is a pure transform over the sections plus a small
// shared context (entity name, theme color): sections never reach back into
// live entity data, so a contact or hours block shows the snapshot stored on
// the page even when the directory record has since changed.
package siterender

import (
	"bytes"
	"html/template"

	"github.com/townlocal/minisite/internal/app/system/htmlsanitize"
	"github.com/townlocal/minisite/internal/domain/models"
	"go.uber.org/zap"
)

// Context carries the only entity data rendering may use: the entity name
// (alt-text fallback) and the accent color token.
type Context struct {
	EntityName string
	ThemeColor string
}

// Block is one rendered section.
type Block struct {
	Type models.SectionType
	HTML template.HTML
}

// Document is the rendered page body, blocks in section order.
type Document struct {
	Blocks []Block
}

// HTML concatenates the rendered blocks for insertion into page chrome.
func (d Document) HTML() template.HTML {
	var b bytes.Buffer
	for _, blk := range d.Blocks {
		b.WriteString(string(blk.HTML))
	}
	return template.HTML(b.String())
}

// Renderer renders sections with a fixed set of per-type templates.
type Renderer struct {
	tmpl   *template.Template
	logger *zap.Logger
}

// New creates a Renderer. The section templates are compiled once here;
// a parse failure is a programming error and panics at startup.
func New(logger *zap.Logger) *Renderer {
	return &Renderer{
		tmpl:   template.Must(template.New("sections").Parse(sectionTemplates)),
		logger: logger,
	}
}

// Render produces a Document from sections in list order. Sections with a
// type this build does not understand are logged and skipped, never fatal:
// pages and renderer deploy independently, and one new-schema section must
// not blank an entire page.
func (r *Renderer) Render(sections []models.Section, ctx Context) Document {
	doc := Document{Blocks: make([]Block, 0, len(sections))}

	for _, section := range sections {
		html, ok := r.renderSection(section, ctx)
		if !ok {
			continue
		}
		doc.Blocks = append(doc.Blocks, Block{Type: section.Type, HTML: html})
	}

	return doc
}

func (r *Renderer) renderSection(section models.Section, ctx Context) (template.HTML, bool) {
	name, data := r.templateData(section, ctx)
	if name == "" {
		r.logger.Warn("skipping section with unknown type",
			zap.String("section_id", section.ID),
			zap.String("type", string(section.Type)),
		)
		return "", false
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("section render failed",
			zap.String("section_id", section.ID),
			zap.String("type", string(section.Type)),
			zap.Error(err),
		)
		return "", false
	}
	return template.HTML(buf.String()), true
}

// templateData picks the template name and view data for one section.
// Derived values (alt-text fallback, sanitized markup) are computed here so
// the templates stay declarative.
func (r *Renderer) templateData(section models.Section, ctx Context) (string, any) {
	switch c := section.Content.(type) {
	case models.HeroContent:
		return "hero", heroView{C: c, Ctx: ctx, Alt: fallback(c.Title, ctx.EntityName)}
	case models.TextContent:
		return "text", contentView[models.TextContent]{C: c, Ctx: ctx}
	case models.ImageContent:
		return "image", imageView{C: c, Ctx: ctx, Alt: fallback(c.Alt, ctx.EntityName)}
	case models.GalleryContent:
		return "gallery", galleryView{C: c, Ctx: ctx, Columns: clampColumns(c.Columns)}
	case models.FeaturesContent:
		return "features", contentView[models.FeaturesContent]{C: c, Ctx: ctx}
	case models.MenuContent:
		return "menu", contentView[models.MenuContent]{C: c, Ctx: ctx}
	case models.HoursContent:
		return "hours", contentView[models.HoursContent]{C: c, Ctx: ctx}
	case models.ContactContent:
		return "contact", contentView[models.ContactContent]{C: c, Ctx: ctx}
	case models.CTAContent:
		return "cta", contentView[models.CTAContent]{C: c, Ctx: ctx}
	case models.HTMLContent:
		return "html", htmlView{Markup: htmlsanitize.SanitizeToHTML(c.HTML)}
	case models.DividerContent:
		return "divider", nil
	case models.SpacerContent:
		return "spacer", contentView[models.SpacerContent]{C: c, Ctx: ctx}
	default:
		return "", nil
	}
}

func fallback(s, alt string) string {
	if s != "" {
		return s
	}
	return alt
}

// clampColumns keeps gallery layouts sane when stored data is off.
func clampColumns(n int) int {
	if n < 1 {
		return 3
	}
	if n > 6 {
		return 6
	}
	return n
}

type contentView[T models.SectionContent] struct {
	C   T
	Ctx Context
}

type heroView struct {
	C   models.HeroContent
	Ctx Context
	Alt string
}

type imageView struct {
	C   models.ImageContent
	Ctx Context
	Alt string
}

type galleryView struct {
	C       models.GalleryContent
	Ctx     Context
	Columns int
}

type htmlView struct {
	Markup template.HTML
}

// sectionTemplates holds one named template per section type. Classes are
// prefixed ms- (mini-site) so host pages can scope styling.
const sectionTemplates = `
{{define "hero"}}<section class="ms-hero" style="background-color: {{.Ctx.ThemeColor}}">{{if .C.Image}}<img class="ms-hero-image" src="{{.C.Image}}" alt="{{.Alt}}">{{end}}<h1>{{.C.Title}}</h1>{{if .C.Subtitle}}<p class="ms-hero-subtitle">{{.C.Subtitle}}</p>{{end}}{{if .C.ButtonText}}<a class="ms-button" href="{{.C.ButtonURL}}">{{.C.ButtonText}}</a>{{end}}</section>{{end}}

{{define "text"}}<section class="ms-text">{{if .C.Heading}}<h2>{{.C.Heading}}</h2>{{end}}<p>{{.C.Body}}</p></section>{{end}}

{{define "image"}}<figure class="ms-image"><img src="{{.C.URL}}" alt="{{.Alt}}">{{if .C.Caption}}<figcaption>{{.C.Caption}}</figcaption>{{end}}</figure>{{end}}

{{define "gallery"}}<section class="ms-gallery">{{if .C.Title}}<h2>{{.C.Title}}</h2>{{end}}<div class="ms-gallery-grid ms-cols-{{.Columns}}">{{range .C.Images}}<figure><img src="{{.URL}}" alt="{{.Caption}}">{{if .Caption}}<figcaption>{{.Caption}}</figcaption>{{end}}</figure>{{end}}</div></section>{{end}}

{{define "features"}}<section class="ms-features">{{if .C.Title}}<h2>{{.C.Title}}</h2>{{end}}<ul>{{range .C.Features}}<li><h3>{{.Title}}</h3><p>{{.Description}}</p></li>{{end}}</ul></section>{{end}}

{{define "menu"}}<section class="ms-menu">{{if .C.Title}}<h2>{{.C.Title}}</h2>{{end}}{{range .C.Sections}}<div class="ms-menu-group"><h3>{{.Name}}</h3><ul>{{range .Items}}<li><span class="ms-menu-item">{{.Name}}</span>{{if .Description}}<span class="ms-menu-desc">{{.Description}}</span>{{end}}{{if .Price}}<span class="ms-menu-price">{{.Price}}</span>{{end}}</li>{{end}}</ul></div>{{end}}</section>{{end}}

{{define "hours"}}<section class="ms-hours">{{if .C.Title}}<h2>{{.C.Title}}</h2>{{end}}<table><tbody>{{range .C.Hours}}<tr><th>{{.Day}}</th><td>{{if .IsClosed}}Closed{{else}}{{.OpenTime}} &ndash; {{.CloseTime}}{{end}}</td></tr>{{end}}</tbody></table></section>{{end}}

{{define "contact"}}<section class="ms-contact">{{if .C.Title}}<h2>{{.C.Title}}</h2>{{end}}<address>{{if .C.Phone}}<div class="ms-contact-phone">{{.C.Phone}}</div>{{end}}{{if .C.Email}}<div class="ms-contact-email"><a href="mailto:{{.C.Email}}">{{.C.Email}}</a></div>{{end}}{{if .C.Address}}<div class="ms-contact-address">{{.C.Address}}{{if .C.City}}, {{.C.City}}{{end}}{{if .C.State}}, {{.C.State}}{{end}} {{.C.ZipCode}}</div>{{end}}</address></section>{{end}}

{{define "cta"}}<section class="ms-cta" style="border-color: {{.Ctx.ThemeColor}}"><h2>{{.C.Title}}</h2>{{if .C.Description}}<p>{{.C.Description}}</p>{{end}}{{if .C.ButtonText}}<a class="ms-button" href="{{.C.ButtonURL}}">{{.C.ButtonText}}</a>{{end}}</section>{{end}}

{{define "html"}}<section class="ms-html">{{.Markup}}</section>{{end}}

{{define "divider"}}<hr class="ms-divider">{{end}}

{{define "spacer"}}<div class="ms-spacer" style="height: {{.C.Size}}rem"></div>{{end}}
`

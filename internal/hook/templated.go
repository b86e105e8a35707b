package hook

import (
	"maps"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/paths"
	"git.home.luguber.info/inful/sitegen/internal/render"
)

// TemplateKey is the frontmatter custom key naming the template of a page.
const TemplateKey = "template"

// DefaultTemplate is used for pages that do not name a template.
const DefaultTemplate = "index"

// PageSummary describes one page in the site wide "pages" listing handed to
// templates.
type PageSummary struct {
	Title string
	// Href is slash separated and relative to the destination root.
	Href   string
	Custom map[string]any
}

// Templated returns a hook that renders every page with a named template and
// gives each template the full page listing.
//
// The template comes from the page's "template" custom key when it names a
// loaded template, else "index" when loaded, else none. Site data is a copy of
// site with two extra keys: "pages" ([]PageSummary in store order) and "root",
// the relative prefix leading from the page back to the destination root.
func Templated(templates render.Templates, site map[string]any, destRoot string) Func {
	siteTitle, _ := site["title"].(string)
	return func(p Params) []content.Content {
		summaries := make([]PageSummary, 0, len(p.Contents))
		for _, c := range p.Contents {
			summaries = append(summaries, summarize(c, destRoot, siteTitle))
		}

		for _, c := range p.Contents {
			data := maps.Clone(site)
			if data == nil {
				data = map[string]any{}
			}
			data["pages"] = summaries
			data["root"] = rootPrefix(destRoot, c.OutputPath)
			p.Emit(c, selectTemplate(templates, c), data)
		}
		return p.Contents
	}
}

func selectTemplate(templates render.Templates, c content.Content) string {
	if name, ok := c.Metadata.Custom[TemplateKey].(string); ok {
		if _, found := templates[name]; found {
			return name
		}
	}
	if _, found := templates[DefaultTemplate]; found {
		return DefaultTemplate
	}
	return ""
}

func summarize(c content.Content, destRoot, siteTitle string) PageSummary {
	title := c.Metadata.Title
	if siteTitle != "" {
		title = strings.TrimSuffix(title, " - "+siteTitle)
		if title == siteTitle {
			title = ""
		}
	}
	if title == "" {
		base := strings.TrimSuffix(filepath.Base(c.SourcePath), filepath.Ext(c.SourcePath))
		base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
		title = cases.Title(language.Und).String(base)
	}

	href := filepath.ToSlash(c.OutputPath)
	if rel, err := filepath.Rel(destRoot, c.OutputPath); err == nil {
		href = filepath.ToSlash(rel)
	}
	return PageSummary{Title: title, Href: href, Custom: c.Metadata.Custom}
}

func rootPrefix(destRoot, outputPath string) string {
	if !paths.Within(destRoot, outputPath) {
		return ""
	}
	rel, err := filepath.Rel(filepath.Dir(outputPath), destRoot)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel) + "/"
}

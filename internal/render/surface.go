// Package render composes renderable slides into HTML surfaces for the
// snapshot renderer. The surface is the single source of layout truth for
// both on-screen previews and export capture.
package render

import (
	"fmt"
	"html/template"
	"strings"

	"profiledeck/internal/deck"
)

// Surface canvas dimensions in CSS pixels, 16:9.
const (
	SurfaceWidth  = 1920
	SurfaceHeight = 1080
)

// PDF page geometry: width fixed, height derived from the surface aspect
// ratio so every page preserves the slide's proportions.
const (
	PageWidthMM  = 210.0
	PageHeightMM = PageWidthMM * float64(SurfaceHeight) / float64(SurfaceWidth)
)

const surfaceTemplateString = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
  html, body {
    margin: 0;
    padding: 0;
    background: white;
  }
  @page {
    size: {{pageSize}};
    margin: 0;
  }
  .slide {
    position: relative;
    width: {{surfaceWidth}}px;
    height: {{surfaceHeight}}px;
    overflow: hidden;
    background-color: white;
    background-size: cover;
    background-position: center;
    page-break-after: always;
  }
  .element {
    position: absolute;
    box-sizing: border-box;
    overflow: hidden;
  }
  .image-frame {
    width: 100%;
    height: 100%;
    overflow: hidden;
  }
  .image-frame img {
    width: 100%;
    height: 100%;
    object-fit: cover;
    transform-origin: center;
  }
  .image-placeholder {
    width: 100%;
    height: 100%;
    display: flex;
    align-items: center;
    justify-content: center;
    background: #e2e8f0;
    color: #64748b;
    font: 600 20px sans-serif;
  }
</style>
</head>
<body>
{{range .Slides}}
<div class="slide" id="slide-{{.Number}}" style="{{backgroundCSS .Background}}">
  {{- range .Elements}}
  <div class="element" style="{{elementCSS .}}">
    {{- if eq .Element.Type "image"}}
    {{- if .Content.ImageURL}}
    <div class="image-frame"><img src="{{safeURL .Content.ImageURL}}" style="{{placementCSS .Placement}}"></div>
    {{- else}}
    <div class="image-placeholder">Select image</div>
    {{- end}}
    {{- else if ne .Element.Type "container"}}
    {{- .Content.Text}}
    {{- end}}
  </div>
  {{- end}}
</div>
{{end}}
</body>
</html>
`

type surfaceData struct {
	Slides []deck.Slide
}

// Composer builds HTML surfaces from renderable slides. It implements
// deck.SurfaceComposer.
type Composer struct {
	tmpl *template.Template
}

// NewComposer parses the surface template once.
func NewComposer() (*Composer, error) {
	tmpl, err := template.New("surface").Funcs(template.FuncMap{
		"surfaceWidth":  func() int { return SurfaceWidth },
		"surfaceHeight": func() int { return SurfaceHeight },
		"pageSize": func() template.CSS {
			return template.CSS(fmt.Sprintf("%.2fmm %.2fmm", PageWidthMM, PageHeightMM))
		},
		"backgroundCSS": backgroundCSS,
		"elementCSS":    elementCSS,
		"placementCSS":  placementCSS,
		"safeURL":       safeURL,
	}).Parse(surfaceTemplateString)
	if err != nil {
		return nil, fmt.Errorf("parse surface template: %w", err)
	}
	return &Composer{tmpl: tmpl}, nil
}

// ComposeSurface renders one slide into a standalone HTML document.
func (c *Composer) ComposeSurface(slide deck.Slide) (string, error) {
	return c.execute(surfaceData{Slides: []deck.Slide{slide}})
}

// ComposeDocument renders the whole deck into one document, one slide per
// page in slide order, sized for PDF capture.
func (c *Composer) ComposeDocument(d deck.Deck) (string, error) {
	return c.execute(surfaceData{Slides: d.Slides[:]})
}

func (c *Composer) execute(data surfaceData) (string, error) {
	var b strings.Builder
	if err := c.tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("execute surface template: %w", err)
	}
	return b.String(), nil
}

// safeURL admits http(s), inlined data:image URIs and relative asset paths.
// Anything else renders as an empty source rather than reaching the browser.
func safeURL(raw string) template.URL {
	trimmed := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(trimmed, "http://"),
		strings.HasPrefix(trimmed, "https://"),
		strings.HasPrefix(trimmed, "data:image/"):
		return template.URL(trimmed)
	case strings.Contains(trimmed, ":"):
		return template.URL("")
	default:
		return template.URL(trimmed)
	}
}

func backgroundCSS(ref string) template.CSS {
	url := string(safeURL(ref))
	if url == "" || strings.ContainsAny(url, `'")`) {
		return ""
	}
	return template.CSS(fmt.Sprintf("background-image: url('%s');", url))
}

// elementCSS combines frame geometry with the element's inlined style bag.
func elementCSS(pe deck.PlacedElement) template.CSS {
	g := pe.Element.Geometry
	css := fmt.Sprintf("left: %gpx; top: %gpx; width: %gpx; height: %gpx;", g.X, g.Y, g.Width, g.Height)
	if inline := inlineStyle(pe.Element.Style); inline != "" {
		css += " " + inline
	}
	return template.CSS(css)
}

func placementCSS(p deck.Placement) template.CSS {
	if p == (deck.Placement{}) {
		p = deck.DefaultPlacement()
	}
	return template.CSS(fmt.Sprintf("transform: translate(%gpx, %gpx) scale(%g);", p.X, p.Y, p.Scale))
}

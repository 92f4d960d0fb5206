// Package preview serves the current deck as HTML in a browser and pushes
// every change over a websocket.
package preview

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ziadkadry99/slide/internal/render"
	"github.com/ziadkadry99/slide/internal/theme"
)

// fontSizes maps the plan's type scale to CSS sizes.
var fontSizes = map[render.Size]string{
	render.SizeLarge:   "2.4rem",
	render.SizeXLarge:  "3.2rem",
	render.SizeXXLarge: "4.2rem",
}

// cssColor accepts hex colors and named colors. Anything else is dropped
// rather than written into the style attribute.
var cssColor = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z-]+)$`)

// Renderer turns render plans into HTML fragments.
type Renderer struct {
	md   goldmark.Markdown
	tmpl *template.Template
}

// NewRenderer creates a Renderer with GFM and code highlighting.
func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("monokai"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)
	return &Renderer{
		md:   md,
		tmpl: template.Must(template.New("slide").Parse(slideTemplate)),
	}
}

type slideView struct {
	Background  template.CSS
	Panel       string
	HeadingSize string
	TextSize    string
	TextAlign   string
	Body        template.HTML
	Footer      template.HTML
}

// Slide renders one plan. Colors are resolved through palette.
func (r *Renderer) Slide(plan render.Plan, palette theme.Palette) (template.HTML, error) {
	var body bytes.Buffer
	if err := r.md.Convert([]byte(plan.Body), &body); err != nil {
		return "", fmt.Errorf("converting slide: %w", err)
	}

	view := slideView{
		Panel:       string(plan.Panel),
		HeadingSize: fontSizes[plan.HeadingSize],
		TextSize:    fontSizes[plan.TextSize],
		TextAlign:   string(plan.TextAlign),
		Body:        template.HTML(body.String()),
	}
	if plan.Background.IsImage() {
		view.Background = template.CSS(fmt.Sprintf("background-image: url(%q)", plan.Background.URL()))
	} else {
		if color := palette.Resolve(string(plan.Background)); cssColor.MatchString(color) {
			view.Background = template.CSS("background-color: " + color)
		}
	}

	if plan.HasFooter() {
		var footer bytes.Buffer
		if err := r.md.Convert([]byte(plan.Footer), &footer); err != nil {
			return "", fmt.Errorf("converting footer: %w", err)
		}
		view.Footer = template.HTML(footer.String())
	}

	var out bytes.Buffer
	if err := r.tmpl.Execute(&out, view); err != nil {
		return "", fmt.Errorf("rendering slide: %w", err)
	}
	return template.HTML(out.String()), nil
}

const slideTemplate = `<section class="slide{{if .Panel}} has-panel panel-{{.Panel}}{{end}}" style="{{.Background}}">
  <div class="content" style="text-align: {{.TextAlign}}; --heading-size: {{.HeadingSize}}; --text-size: {{.TextSize}}">
    {{.Body}}
  </div>
  {{- if .Footer}}
  <footer>{{.Footer}}</footer>
  {{- end}}
</section>`

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
  html, body { margin: 0; height: 100%; font-family: system-ui, sans-serif; background: #111; color: #fff; }
  .slide { position: absolute; inset: 0; display: flex; flex-direction: column; justify-content: center;
           background-size: cover; background-position: center; }
  .content { padding: 4rem; font-size: var(--text-size); }
  .content h1, .content h2, .content h3 { font-size: var(--heading-size); margin: 0 0 1rem; }
  .has-panel { align-items: center; }
  .has-panel .content { background: rgba(0, 0, 0, 0.6); border-radius: 8px; max-width: 60%; }
  .panel-start .content { align-self: flex-start; margin-left: 4rem; }
  .panel-end .content { align-self: flex-end; margin-right: 4rem; }
  footer { position: absolute; bottom: 0; left: 0; right: 0; padding: 1rem 4rem; background: rgba(0, 0, 0, 0.4); }
  .counter { position: fixed; right: 1rem; bottom: 1rem; opacity: 0.6; font-size: 0.9rem; }
</style>
</head>
<body>
<div id="slide">{{.Slide}}</div>
<div class="counter"><span id="cursor">{{.Number}}</span> / <span id="total">{{.Total}}</span></div>
<script>
(function () {
  var ws;
  function connect() {
    ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
    ws.onmessage = function (ev) {
      var msg = JSON.parse(ev.data);
      if (msg.type !== 'slide') return;
      document.getElementById('slide').innerHTML = msg.html;
      document.getElementById('cursor').textContent = msg.cursor + 1;
      document.getElementById('total').textContent = msg.total;
      document.title = msg.title;
    };
    ws.onclose = function () { setTimeout(connect, 1000); };
  }
  connect();
  document.addEventListener('keydown', function (ev) {
    var msg;
    if (ev.key === 'ArrowRight' || ev.key === ' ') msg = { type: 'next' };
    else if (ev.key === 'ArrowLeft') msg = { type: 'previous' };
    else if (/^[1-9]$/.test(ev.key)) msg = { type: 'goto', slide: parseInt(ev.key, 10) - 1 };
    if (msg && ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify(msg));
  });
})();
</script>
</body>
</html>`

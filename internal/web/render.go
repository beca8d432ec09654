package web

import (
	"bytes"
	"html/template"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	markdownOnce sync.Once
	markdownMD   goldmark.Markdown
	printer      = message.NewPrinter(language.Russian)
)

// markdown is built without html.WithUnsafe, so raw HTML and dangerous link
// targets in descriptions are dropped.
func markdownRenderer() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownMD = goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.Linkify))
	})
	return markdownMD
}

func renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdownRenderer().Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

// money formats a price with Russian digit grouping.
func money(v float64) string {
	if v == float64(int64(v)) {
		return printer.Sprintf("%d ₽", int64(v))
	}
	return printer.Sprintf("%.2f ₽", v)
}

var funcs = template.FuncMap{
	"markdown": renderMarkdown,
	"money":    money,
	"deref": func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	},
}

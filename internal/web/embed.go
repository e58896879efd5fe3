package web

import (
	_ "embed"
	"html/template"
	"io"

	"github.com/san-kum/physview/internal/formula"
	"github.com/san-kum/physview/internal/mathrender"
)

// indexTemplate is the formula list page; MathJax typesets it client-side.
//
//go:embed index.html.tmpl
var indexTemplate string

var page = template.Must(template.New("index").Funcs(template.FuncMap{
	"math": func(latex string) template.HTML {
		return template.HTML(mathrender.HTML{}.Render(mathrender.Inline(latex)))
	},
}).Parse(indexTemplate))

// PageData is what the index page renders: either Formulas or Error.
type PageData struct {
	Title    string
	Formulas []formula.Formula
	Error    string
}

func RenderIndex(w io.Writer, data PageData) error {
	return page.Execute(w, data)
}

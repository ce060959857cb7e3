// Package view renders the login, register and dashboard pages.
package view

import (
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mission-dashboard/internal/dashboard"
	"github.com/iliyamo/mission-dashboard/internal/model"
)

//go:embed templates/*.html
var files embed.FS

var funcs = template.FuncMap{
	"euros":  Euros,
	"number": Number,
	"date":   Date,
	"derefs": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"isYear": func(sel *int, y int) bool { return sel != nil && *sel == y },
	"add":    func(a, b int) int { return a + b },
	"editing": func(f *dashboard.Form) bool {
		return f != nil && f.Mode == dashboard.EditMode
	},
	"amount": func(f float64) string {
		if f == 0 {
			return ""
		}
		return model.FormatAmount(f)
	},
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() *Renderer {
	return &Renderer{
		tmpl: template.Must(template.New("").Funcs(funcs).ParseFS(files, "templates/*.html")),
	}
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}

// AuthPage is the data of the login and register pages.
type AuthPage struct {
	Error  string
	Notice string
	Email  string
	Nom    string
	Prenom string
}

// DashboardPage is the data of the dashboard page.
type DashboardPage struct {
	dashboard.View
	Notice string
}

// HasPrev reports whether a previous page exists.
func (p DashboardPage) HasPrev() bool { return p.PageNum > 1 }

// HasNext reports whether a next page exists.
func (p DashboardPage) HasNext() bool {
	return p.Page != nil && p.PageNum < p.Page.TotalPages
}

// Package web embeds the page templates.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
	"time"

	html "github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var files embed.FS

// Money renders an amount the same way on every page: "$" and two decimals.
func Money(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

// Engine returns the template engine over the embedded templates.
func Engine() *html.Engine {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("money", Money)
	engine.AddFunc("date", func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("Jan 2, 2006 15:04")
	})
	engine.AddFunc("title", func(s string) string {
		if s == "" {
			return s
		}
		s = strings.ToLower(strings.ReplaceAll(s, "_", " "))
		return strings.ToUpper(s[:1]) + s[1:]
	})
	return engine
}

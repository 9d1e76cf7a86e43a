// Package view turns planner state into screen models and printable HTML
// documents.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/XBigRoad/banquet-master/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

var tplCache = struct {
	sync.RWMutex
	m map[string]*template.Template
}{m: map[string]*template.Template{}}

// Money formats an amount the way the planner shows it: no trailing zeros.
func Money(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Funcs returns the template helpers bound to lang.
func Funcs(lang string) template.FuncMap {
	return template.FuncMap{
		"t":     func(code string) string { return i18n.T(lang, code) },
		"lang":  func() string { return lang },
		"money": Money,
		"inc":   func(i int) int { return i + 1 },
		"year":  func() int { return time.Now().Year() },
	}
}

// parsed returns the cached, never executed template for name. Callers
// execute clones so each render can bind its own funcs.
func parsed(name string) (*template.Template, error) {
	tplCache.RLock()
	t, ok := tplCache.m[name]
	tplCache.RUnlock()
	if ok {
		return t, nil
	}
	t, err := template.New(name).Funcs(Funcs(i18n.Default)).ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	tplCache.Lock()
	tplCache.m[name] = t
	tplCache.Unlock()
	return t, nil
}

// Execute renders the template name into a buffer using lang.
func Execute(name, lang string, data any) ([]byte, error) {
	base, err := parsed(name)
	if err != nil {
		return nil, err
	}
	t, err := base.Clone()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := t.Funcs(Funcs(lang)).Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render writes the HTML document name for r. Nothing is written when the
// template fails.
func Render(w http.ResponseWriter, r *http.Request, name string, data any) error {
	body, err := Execute(name, i18n.LangFromContext(r.Context()), data)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = w.Write(body)
	return err
}

// MenuDocument is the data of menu.html.
type MenuDocument struct {
	Guest   PrintCopy
	Kitchen PrintCopy
}

// OrderDocument is the data of order.html.
type OrderDocument struct {
	Sheet OrderSheet
}

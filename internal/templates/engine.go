// Package templates renders console output (the inspected outline and
// responses) from text templates. Embedded templates can be overridden by
// files of the same name in a custom directory.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	"github.com/kolah/apiconsole/internal/inspector"
	"github.com/kolah/apiconsole/internal/uritemplate"
)

//go:embed templates/*.tmpl
var embedded embed.FS

const (
	Outline  = "outline.tmpl"
	Response = "response.tmpl"
)

type TextTemplateEngine struct {
	templates *template.Template
	funcs     template.FuncMap
	fsys      fs.FS
	customDir string
}

// New returns an engine over the embedded templates, overridden by any
// *.tmpl files in customDir.
func New(customDir string) (*TextTemplateEngine, error) {
	return NewEngine(embedded, customDir, Funcs())
}

func NewEngine(fsys fs.FS, customDir string, funcs template.FuncMap) (*TextTemplateEngine, error) {
	e := &TextTemplateEngine{
		fsys:      fsys,
		customDir: customDir,
		funcs:     funcs,
	}
	if err := e.load(); err != nil {
		return nil, err
	}
	return e, nil
}

// Funcs returns the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"join":  strings.Join,
		"upper": strings.ToUpper,
		"schemeNames": func(m *inspector.Method) []string {
			return slices.Sorted(maps.Keys(m.SecuritySchemes()))
		},
		"placeholders": func(segments []*uritemplate.Template) []string {
			var names []string
			for _, s := range segments {
				names = append(names, s.Placeholders()...)
			}
			return names
		},
	}
}

func (e *TextTemplateEngine) load() error {
	e.templates = template.New("").Funcs(e.funcs)

	err := fs.WalkDir(e.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return nil
		}
		content, err := fs.ReadFile(e.fsys, path)
		if err != nil {
			return fmt.Errorf("reading embedded template %s: %w", path, err)
		}
		name := strings.TrimPrefix(path, "templates/")
		if _, err := e.templates.New(name).Parse(string(content)); err != nil {
			return fmt.Errorf("parsing embedded template %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("loading embedded templates: %w", err)
	}

	if e.customDir == "" {
		return nil
	}

	err = filepath.WalkDir(e.customDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading custom template %s: %w", path, err)
		}
		relPath, _ := filepath.Rel(e.customDir, path)
		if _, err := e.templates.New(filepath.ToSlash(relPath)).Parse(string(content)); err != nil {
			return fmt.Errorf("parsing custom template %s: %w", path, err)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading custom templates: %w", err)
	}

	return nil
}

func (e *TextTemplateEngine) Execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := e.Render(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render writes the named template to w.
func (e *TextTemplateEngine) Render(w io.Writer, name string, data any) error {
	tmpl := e.templates.Lookup(name)
	if tmpl == nil {
		return fmt.Errorf("template not found: %s", name)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}
	return nil
}

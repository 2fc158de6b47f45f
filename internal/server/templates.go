package server

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vesaa/effectlab/internal/mistakes"
	"github.com/vesaa/effectlab/internal/models"
	"github.com/vesaa/effectlab/internal/procstats"
	"github.com/vesaa/effectlab/webui"
)

const (
	siteTitle       = "6 Common useEffect Mistakes - React Tutorial"
	siteDescription = "Learn from common React useEffect mistakes with interactive examples and solutions. Practice MCQ rounds on MockExperts."
)

// loadTemplates parses every page against the shared base layout. It
// returns a map keyed by logical page name (e.g. "home", "mistake").
func loadTemplates() (map[string]*template.Template, error) {
	const base = "web/templates/base.tmpl"
	pages := []string{"home", "mistake", "mockexperts", "error"}

	templates := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		tmpl, err := template.New(name).ParseFS(webui.FS, base, "web/templates/"+name+".tmpl")
		if err != nil {
			return nil, fmt.Errorf("parse %s templates: %w", name, err)
		}
		templates[name] = tmpl
	}
	return templates, nil
}

// pageData is handed to every template. Page-specific fields are left
// zero by the pages that do not use them.
type pageData struct {
	Title       string
	Description string
	BackLink    bool
	Refresh     int
	PromoURL    string

	// home
	Mistakes []*mistakes.Mistake

	// demo pages
	Mistake      *mistakes.Mistake
	Variants     []variantData
	Console      []models.ConsoleEntry
	Names        []string
	Name         string
	Process      *procstats.Snapshot
	WindowTimers int

	// mockexperts
	Promo *promoContent

	// error
	Status int
	Error  string
}

func (s *Server) newPage(title string) *pageData {
	if title == "" {
		title = siteTitle
	}
	return &pageData{
		Title:       title,
		Description: siteDescription,
		BackLink:    true,
		PromoURL:    s.cfg.PromoURL,
	}
}

// render executes a page into a buffer first so template failures become
// a 500 instead of a half-written page.
func (s *Server) render(c *gin.Context, status int, name string, data *pageData) {
	tmpl, ok := s.templates[name]
	if !ok {
		s.log.Error("unknown template", zap.String("name", name))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		s.log.Error("render failed", zap.String("template", name), zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) renderError(c *gin.Context, status int, msg string) {
	data := s.newPage(fmt.Sprintf("%d - %s", status, siteTitle))
	data.Status = status
	data.Error = msg
	s.render(c, status, "error", data)
}

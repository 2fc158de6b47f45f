package server

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vesaa/effectlab/internal/hooks"
	"github.com/vesaa/effectlab/internal/mistakes"
	"github.com/vesaa/effectlab/internal/session"
)

// defaultSettleTimeout bounds how long a request waits for effects and
// in-flight fetches before rendering whatever the components show. Pages
// with fetches still running refresh until they finish.
const defaultSettleTimeout = 3 * time.Second

// variantData is one half of a demo page.
type variantData struct {
	Variant    mistakes.Variant
	Label      string
	Example    *mistakes.Example
	View       *mistakes.View
	DocTitle   string
	LiveTimers int
	Stats      hooks.Stats
}

// registerPageRoutes wires the HTML routes. Every page carries a session.
//
//	GET  /                          index
//	GET  /mockexperts               promotional page
//	GET  /mistake-N                 demo page
//	POST /mistake-N/:variant/:action  demo button
//	POST /mistake-6/name            page-level name buttons
func (s *Server) registerPageRoutes(r *gin.Engine) {
	pages := r.Group("/", session.Middleware(s.store, s.signer))

	pages.GET("/", s.handleHome)
	pages.GET("/mockexperts", s.handlePromo)

	for _, m := range mistakes.All() {
		pages.GET(m.Path(), s.handleMistake(m))
		pages.POST(m.Path()+"/:variant/:action", s.handleAction(m))
		if m.Names != nil {
			pages.POST(m.Path()+"/name", s.handleName(m))
		}
	}
}

func (s *Server) handleHome(c *gin.Context) {
	session.FromContext(c).Leave()

	data := s.newPage("")
	data.BackLink = false
	data.Mistakes = mistakes.All()
	s.render(c, http.StatusOK, "home", data)
}

func (s *Server) handlePromo(c *gin.Context) {
	session.FromContext(c).Leave()

	data := s.newPage("MockExperts - " + siteTitle)
	data.Promo = promo
	s.render(c, http.StatusOK, "mockexperts", data)
}

func (s *Server) handleMistake(m *mistakes.Mistake) gin.HandlerFunc {
	return func(c *gin.Context) {
		w := session.FromContext(c)
		page, err := w.Visit(m)
		if err != nil {
			s.log.Error("mount failed", zap.String("route", m.Slug()), zap.Error(err))
			s.renderError(c, http.StatusInternalServerError, "The demo could not be mounted.")
			return
		}
		s.settle(c.Request.Context(), page)

		data := s.newPage(m.Heading + " - " + siteTitle)
		data.Mistake = m
		data.Names = m.Names
		data.Name = page.Name()

		live := 0
		for _, v := range []mistakes.Variant{mistakes.Wrong, mistakes.Correct} {
			vd := variantData{Variant: v, Label: variantLabel(v), Example: m.Example(v)}
			if inst := page.Instance(v); inst != nil {
				vd.View = page.View(v)
				vd.DocTitle = inst.Title()
				vd.LiveTimers = inst.LiveTimers()
				vd.Stats = inst.Stats()
				live += vd.LiveTimers
			}
			data.Variants = append(data.Variants, vd)
		}
		if page.Running() || page.Busy() || live > 0 {
			data.Refresh = refreshSeconds(s.cfg.TickInterval())
		}

		entries, err := s.journal.Recent(w.ID, m.Slug(), s.cfg.ConsoleHistory)
		if err != nil {
			s.log.Warn("console history unavailable", zap.String("route", m.Slug()), zap.Error(err))
		}
		data.Console = entries

		if m.ID == 3 {
			data.Process = s.procs.Collect()
			data.WindowTimers = w.LiveTimers()
		}
		s.render(c, http.StatusOK, "mistake", data)
	}
}

func (s *Server) handleAction(m *mistakes.Mistake) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := mistakes.ParseVariant(c.Param("variant"))
		if err != nil {
			s.renderError(c, http.StatusNotFound, err.Error())
			return
		}
		page, err := session.FromContext(c).Visit(m)
		if err != nil {
			s.renderError(c, http.StatusInternalServerError, "The demo could not be mounted.")
			return
		}

		err = page.Dispatch(v, c.Param("action"))
		switch {
		case errors.Is(err, mistakes.ErrUnknownAction):
			s.renderError(c, http.StatusNotFound, err.Error())
			return
		case errors.Is(err, mistakes.ErrDisabled):
			s.renderError(c, http.StatusConflict, "This example is disabled to keep your browser responsive.")
			return
		case errors.Is(err, hooks.ErrUnmounted):
			// Navigated away in another tab; the redirect remounts.
		case err != nil:
			s.log.Warn("dispatch failed", zap.String("route", m.Slug()), zap.Error(err))
		}
		s.settle(c.Request.Context(), page)
		c.Redirect(http.StatusSeeOther, m.Path())
	}
}

func (s *Server) handleName(m *mistakes.Mistake) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := session.FromContext(c).Visit(m)
		if err != nil {
			s.renderError(c, http.StatusInternalServerError, "The demo could not be mounted.")
			return
		}
		if err := page.SetName(c.PostForm("name")); err != nil {
			if errors.Is(err, mistakes.ErrUnknownName) {
				s.renderError(c, http.StatusBadRequest, err.Error())
				return
			}
			s.log.Warn("set name failed", zap.Error(err))
		}
		s.settle(c.Request.Context(), page)
		c.Redirect(http.StatusSeeOther, m.Path())
	}
}

func (s *Server) settle(ctx context.Context, page *mistakes.Page) {
	ctx, cancel := context.WithTimeout(ctx, s.settleTimeout)
	defer cancel()
	if err := page.Settle(ctx); err != nil && !errors.Is(err, hooks.ErrUnmounted) {
		s.log.Debug("settle incomplete", zap.String("route", page.Mistake.Slug()), zap.Error(err))
	}
}

func variantLabel(v mistakes.Variant) string {
	if v == mistakes.Wrong {
		return "❌ Wrong Code"
	}
	return "✅ Correct Code"
}

func refreshSeconds(tick time.Duration) int {
	return max(1, int(math.Ceil(tick.Seconds())))
}

package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohammad-safakhou/regfaq/config"
	"github.com/mohammad-safakhou/regfaq/internal/agent"
	"github.com/mohammad-safakhou/regfaq/internal/assistant"
	"github.com/mohammad-safakhou/regfaq/internal/feedback"
	"github.com/mohammad-safakhou/regfaq/internal/ingest"
	"github.com/mohammad-safakhou/regfaq/internal/knowledge"
	"github.com/mohammad-safakhou/regfaq/internal/session"
	"github.com/mohammad-safakhou/regfaq/provider"
	"github.com/mohammad-safakhou/regfaq/tools/extract"
	"github.com/mohammad-safakhou/regfaq/tools/web_search"
)

// Run wires the full assistant and serves it until the listener stops.
func Run(cfg *config.Config, addr string) error {
	a, err := Build(cfg)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	httpLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		httpLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	h := &Handlers{Assistant: a}
	h.Register(e.Group("/api"))

	if addr == "" {
		addr = cfg.Server.Address
	}
	if addr == "" {
		addr = ":10020"
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// Build constructs the assistant with all of its dependencies from
// configuration. Shared by the serve and ingest commands.
func Build(cfg *config.Config) (*assistant.Assistant, error) {
	llm, err := provider.New(cfg.LLM)
	if err != nil {
		return nil, err
	}

	searchLogger := log.New(log.Writer(), "[SEARCH] ", log.LstdFlags)
	search, err := web_search.New(cfg.WebSearch, searchLogger)
	if err != nil {
		return nil, err
	}

	kbLogger := log.New(log.Writer(), "[KB] ", log.LstdFlags)
	kb, err := knowledge.NewStore(llm, kbLogger)
	if err != nil {
		return nil, fmt.Errorf("building knowledge store: %w", err)
	}

	sessions := session.NewStore()
	fb := feedback.NewStore(cfg.Feedback.RecentLimit)

	agentLogger := log.New(log.Writer(), "[AGENT] ", log.LstdFlags)
	generator := agent.NewFAQGenerator(llm, cfg.Knowledge.DocumentCharBudget, agentLogger)
	validator := agent.NewValidator(llm, agentLogger)
	responder := agent.NewResponder(llm, kb, search, agent.ResponderConfig{
		TopK:                cfg.Knowledge.TopK,
		ConfidenceThreshold: cfg.Knowledge.ConfidenceThreshold,
		HistoryWindow:       cfg.Knowledge.HistoryWindow,
		MaxAnswerTokens:     cfg.LLM.MaxTokens,
	}, agentLogger)

	ingestLogger := log.New(log.Writer(), "[INGEST] ", log.LstdFlags)
	pipeline := ingest.NewPipeline(generator, validator, kb, extract.Strategies(), llm, cfg.General.DefaultTimeout, ingestLogger)

	appLogger := log.New(log.Writer(), "[APP] ", log.LstdFlags)
	return assistant.New(sessions, fb, kb, responder, pipeline, appLogger), nil
}

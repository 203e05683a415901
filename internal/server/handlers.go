package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/regfaq/internal/assistant"
	"github.com/mohammad-safakhou/regfaq/internal/feedback"
	"github.com/mohammad-safakhou/regfaq/internal/ingest"
	"github.com/mohammad-safakhou/regfaq/internal/session"
)

// Handlers exposes the assistant operations over HTTP.
type Handlers struct {
	Assistant *assistant.Assistant
}

func (h *Handlers) Register(api *echo.Group) {
	api.POST("/chat", h.chat)
	api.POST("/process-regulation", h.processRegulation)
	api.GET("/sessions", h.listSessions)
	api.GET("/session/:id", h.getSession)
	api.DELETE("/session/:id", h.deleteSession)
	api.POST("/feedback", h.submitFeedback)
	api.GET("/analytics", h.analytics)
	api.GET("/system-status", h.systemStatus)
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

func (h *Handlers) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.Assistant.SubmitQuery(c.Request().Context(), req.Message, req.SessionID)
	if err != nil {
		queriesTotal.WithLabelValues("error").Inc()
		return mapError(err)
	}
	queriesTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, resp)
}

type processRequest struct {
	RegulatoryText string `json:"regulatory_text"`
	Context        string `json:"context"`
}

// processRegulation accepts either a multipart form with an optional
// pdf_file upload, or a plain JSON body with the regulatory text.
func (h *Handlers) processRegulation(c echo.Context) error {
	in, err := bindIngestInput(c)
	if err != nil {
		return err
	}

	result, err := h.Assistant.IngestDocument(c.Request().Context(), in)
	if err != nil {
		ingestionsTotal.WithLabelValues("error").Inc()
		return mapError(err)
	}
	ingestionsTotal.WithLabelValues("ok").Inc()
	knowledgeUnitsAccepted.Add(float64(result.AcceptedCount))
	return c.JSON(http.StatusOK, result)
}

func bindIngestInput(c echo.Context) (ingest.Input, error) {
	if form, err := c.MultipartForm(); err == nil && form != nil {
		in := ingest.Input{
			Text:    c.FormValue("regulatory_text"),
			Context: c.FormValue("context"),
		}
		if fh, err := c.FormFile("pdf_file"); err == nil && fh != nil {
			f, err := fh.Open()
			if err != nil {
				return ingest.Input{}, echo.NewHTTPError(http.StatusBadRequest, "could not read uploaded file")
			}
			defer f.Close()
			data, err := io.ReadAll(f)
			if err != nil {
				return ingest.Input{}, echo.NewHTTPError(http.StatusBadRequest, "could not read uploaded file")
			}
			in.Document = data
		}
		return in, nil
	}

	var req processRequest
	if err := c.Bind(&req); err != nil {
		return ingest.Input{}, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return ingest.Input{Text: req.RegulatoryText, Context: req.Context}, nil
}

func (h *Handlers) listSessions(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"sessions": h.Assistant.ListSessions()})
}

func (h *Handlers) getSession(c echo.Context) error {
	sess, err := h.Assistant.GetSession(c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *Handlers) deleteSession(c echo.Context) error {
	if err := h.Assistant.DeleteSession(c.Param("id")); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

type feedbackRequest struct {
	MessageID    string `json:"message_id"`
	SessionID    string `json:"session_id"`
	FeedbackType string `json:"feedback_type"`
}

func (h *Handlers) submitFeedback(c echo.Context) error {
	var req feedbackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.MessageID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message_id is required")
	}
	ftype := feedback.Type(req.FeedbackType)
	if !ftype.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "feedback_type must be positive or negative")
	}

	rec := h.Assistant.SubmitFeedback(req.MessageID, req.SessionID, ftype)
	feedbackTotal.WithLabelValues(string(ftype)).Inc()
	return c.JSON(http.StatusOK, rec)
}

func (h *Handlers) analytics(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Assistant.FeedbackSummary())
}

func (h *Handlers) systemStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Assistant.SystemStatus())
}

// mapError translates domain errors to HTTP status codes.
func mapError(err error) error {
	switch {
	case errors.Is(err, assistant.ErrEmptyMessage),
		errors.Is(err, ingest.ErrInvalidInput),
		errors.Is(err, ingest.ErrExtraction):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ingest.ErrGeneration):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return err
	}
}

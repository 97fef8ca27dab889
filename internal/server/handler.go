package server

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/earth-sol/onefilellm/config"
	"github.com/earth-sol/onefilellm/internal/artifact"
	"github.com/earth-sol/onefilellm/internal/classify"
	"github.com/earth-sol/onefilellm/internal/dispatch"
)

// Handler is the boundary between HTTP callers and the retrieval
// pipeline. It is the only place where collaborator errors become
// user-visible messages.
type Handler struct {
	dispatcher *dispatch.Dispatcher
	writer     *artifact.Writer
	gatekeeper *artifact.Gatekeeper
	output     config.OutputConfig
	tmpl       *template.Template
	logger     *log.Logger
}

func NewHandler(dispatcher *dispatch.Dispatcher, writer *artifact.Writer, gatekeeper *artifact.Gatekeeper, output config.OutputConfig) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		writer:     writer,
		gatekeeper: gatekeeper,
		output:     output,
		tmpl:       mustParseTemplate(),
		logger:     log.New(log.Writer(), "[HANDLER] ", log.LstdFlags),
	}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/", h.handleIndex)
	e.POST("/", h.handleProcess)
	e.GET("/download", h.handleDownload)
}

func (h *Handler) handleIndex(c echo.Context) error {
	return h.render(c, pageData{})
}

// handleProcess drives one submission end to end: classify, dispatch,
// write artifacts, render. Every error terminates the request with a
// displayable message; nothing is retried.
func (h *Handler) handleProcess(c echo.Context) error {
	input := strings.TrimSpace(c.FormValue("input_path"))
	reqID := uuid.NewString()
	start := time.Now()

	target := classify.Classify(input)
	requestsTotal.WithLabelValues(target.Kind.String()).Inc()
	h.logger.Printf("[%s] classified %q as %s", reqID, input, target.Kind)

	if target.Kind == classify.KindRejected {
		return h.render(c, pageData{Output: "Error: " + target.Reason})
	}

	content, err := h.dispatcher.Dispatch(c.Request().Context(), target)
	if err != nil {
		return h.render(c, pageData{Output: h.describeDispatchError(reqID, target, err)})
	}

	set, err := h.writer.Write(content)
	if err != nil {
		h.logger.Printf("[%s] artifact write failed: %v", reqID, err)
		return h.render(c, pageData{Output: "Error: " + err.Error()})
	}

	requestDuration.Observe(time.Since(start).Seconds())
	h.logger.Printf("[%s] done in %s (%d/%d tokens)", reqID, time.Since(start).Round(time.Millisecond), set.UncompressedTokens, set.CompressedTokens)

	return h.render(c, pageData{
		Output:             content.Text,
		HasResult:          true,
		UncompressedTokens: set.UncompressedTokens,
		CompressedTokens:   set.CompressedTokens,
		UncompressedFile:   h.output.UncompressedFile,
		CompressedFile:     h.output.CompressedFile,
	})
}

// describeDispatchError converts dispatcher failures into displayable
// messages. Security rejections stay generic; backend failures surface
// verbatim for diagnosability.
func (h *Handler) describeDispatchError(reqID string, target classify.Target, err error) string {
	var backendErr *dispatch.BackendError
	switch {
	case errors.Is(err, dispatch.ErrSecurityRejected):
		securityRejectionsTotal.Inc()
		h.logger.Printf("[%s] security rejection for %s input", reqID, target.Kind)
		return "Error: URL rejected by security policy."
	case errors.As(err, &backendErr):
		backendFailuresTotal.WithLabelValues(backendErr.Backend).Inc()
		h.logger.Printf("[%s] %s backend failed: %v", reqID, backendErr.Backend, backendErr.Err)
		return "Error: " + backendErr.Error()
	default:
		h.logger.Printf("[%s] dispatch failed: %v", reqID, err)
		return "Error: " + err.Error()
	}
}

// handleDownload serves a previously written artifact by identity only.
func (h *Handler) handleDownload(c echo.Context) error {
	path, err := h.gatekeeper.Resolve(c.QueryParam("filename"))
	switch {
	case errors.Is(err, artifact.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "filename not allowed")
	case errors.Is(err, artifact.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "artifact not found")
	case err != nil:
		return err
	}
	return c.Attachment(path, filepath.Base(path))
}

func (h *Handler) render(c echo.Context, data pageData) error {
	var sb strings.Builder
	if err := h.tmpl.Execute(&sb, data); err != nil {
		return err
	}
	return c.HTML(http.StatusOK, sb.String())
}

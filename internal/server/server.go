package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/earth-sol/onefilellm/config"
	"github.com/earth-sol/onefilellm/internal/artifact"
	"github.com/earth-sol/onefilellm/internal/crawl"
	"github.com/earth-sol/onefilellm/internal/dispatch"
	"github.com/earth-sol/onefilellm/internal/fetch"
	"github.com/earth-sol/onefilellm/internal/normalize"
	"github.com/earth-sol/onefilellm/internal/token"
)

// Run wires the retrieval pipeline and serves HTTP until the listener
// fails. The default bind address is loopback only.
func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
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
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	counter, err := token.NewCounter(cfg.Token.Encoding)
	if err != nil {
		return fmt.Errorf("init token counter: %w", err)
	}

	httpClient := fetch.NewHTTPClient(cfg.Fetch.Timeout, cfg.Fetch.UserAgent)
	github := fetch.NewGitHub(httpClient, cfg.Fetch.GithubToken)
	arxiv := fetch.NewArxiv(httpClient)
	youtube := fetch.NewYouTube(httpClient)
	biblio := fetch.NewBibliographic(httpClient)
	crawler := crawl.New(httpClient, cfg.Crawl.MaxDepth, cfg.Crawl.MaxPages, cfg.Crawl.IncludePDFs, cfg.Crawl.IgnoreEPUBs)

	dispatcher := dispatch.New(dispatch.Backends{
		Repository:    github.Repository,
		PullRequest:   github.PullRequest,
		Issue:         github.Issue,
		Document:      arxiv.Document,
		Transcript:    youtube.Transcript,
		Bibliographic: biblio.Resolve,
		Web:           crawler.Crawl,
	})

	writer := artifact.NewWriter(cfg.Output, normalize.File, counter.Count)
	gatekeeper := artifact.NewGatekeeper(cfg.Output)

	h := NewHandler(dispatcher, writer, gatekeeper, cfg.Output)
	h.Register(e)

	log.Printf("listening on %s", cfg.Server.Address)
	return e.Start(cfg.Server.Address)
}

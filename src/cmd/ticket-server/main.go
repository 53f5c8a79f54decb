// ticket-server exposes the ticket parsing core over HTTP, the way the
// teacher's receipt-pipeline binary exercises pkg/ocr from the CLI side.
package main

import (
	"context"
	"flag"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"ticket-ocr-core/src/pkg/config"
	echomw "ticket-ocr-core/src/pkg/echo-middleware"
	"ticket-ocr-core/src/pkg/ocr"
	"ticket-ocr-core/src/pkg/ticket"
)

type parseRequest struct {
	TicketID   string `json:"ticket_id"`
	FileName   string `json:"file_name"`
	ContentB64 string `json:"file_content_b64"`
	MimeHint   string `json:"mime_type"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func main() {
	envPath := flag.String("env", "", "Path to a .env file (optional).")
	flag.Parse()

	config.InitializeConfig(*envPath)
	echomw.InitializeConfig(&echomw.Config{MaxInFlightParses: config.Cfg.ParseWorkerCount})
	echomw.UpdateRateLimits(echomw.Cfg.MaxInFlightParses)

	recognizer := ocr.NewRecognizer(config.Cfg.OcrLanguages)
	pipeline := ticket.NewPipeline(recognizer, config.Cfg.OcrMaxImageSide, 300)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RouteAccessLoggerMiddleware)
	e.Use(echomw.RateLimiterMiddleware)

	e.GET("/healthz", handleHealth)
	e.POST("/v1/tickets:parse", handleParseTicket(pipeline), echomw.RequireBearerToken)

	address := echomw.Cfg.Address + ":" + strconv.Itoa(echomw.Cfg.Port)

	go func() {
		tl.Log(tl.Notice, palette.BlueBold, "%s listening on '%s'", config.GetPackageName(), address)
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			tl.Log(tl.Error, palette.RedBold, "server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(config.Cfg.GracefulShutdownSeconds)*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		tl.Log(tl.Error, palette.RedBold, "graceful shutdown failed: %v", err)
	}
}

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"service": config.GetPackageName(),
	})
}

func handleParseTicket(pipeline *ticket.Pipeline) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req parseRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: "cuerpo de la solicitud invalido"})
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), time.Duration(config.Cfg.OcrTimeoutSeconds)*time.Second)
		defer cancel()

		payload := ticket.RawPayload{
			TicketID:   req.TicketID,
			FileName:   req.FileName,
			ContentB64: req.ContentB64,
			MimeHint:   req.MimeHint,
		}

		parsed, parseErr := pipeline.ParseTicket(ctx, payload)
		if parseErr != nil {
			return c.JSON(statusForError(parseErr), errorResponse{Detail: parseErr.Message})
		}

		return c.JSON(http.StatusOK, parsed)
	}
}

// statusForError maps the domain error taxonomy to HTTP status codes per
// spec §6/§7: the four client-input failures are 422, everything else 500.
func statusForError(err *ticket.Error) int {
	switch err.Code {
	case ticket.ErrInvalidEncoding, ticket.ErrUnsupportedFormat, ticket.ErrCorruptPdf, ticket.ErrTicketNotDetected:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Package api exposes the perception pipeline over HTTP: label counts,
// per-label positions, ad-hoc region OCR, and the annotated MJPEG stream.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	app "screen-vision/internal/application"
	"screen-vision/internal/domain/entity"
)

const streamBoundary = "frame"

// Server wires the query service and stream hub onto an echo instance.
type Server struct {
	echo  *echo.Echo
	query *app.QueryService
	hub   *app.Hub
	log   *slog.Logger
}

// NewServer registers all routes.
func NewServer(query *app.QueryService, hub *app.Hub, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, query: query, hub: hub, log: log.With("service", "api")}

	e.GET("/labels", s.handleLabels)
	e.GET("/positions/:label", s.handlePositions)
	e.POST("/read_image", s.handleReadImage)
	e.GET("/text", s.handleText)
	e.GET("/video_feed", s.handleVideoFeed)
	e.GET("/healthz", s.handleHealthz)
	return s
}

// Start blocks serving on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.log.Info("http server listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleLabels(c echo.Context) error {
	return c.JSON(http.StatusOK, s.query.Labels())
}

func (s *Server) handlePositions(c echo.Context) error {
	return c.JSON(http.StatusOK, s.query.Positions(c.Param("label")))
}

type readImageRequest struct {
	Coords []float64 `json:"coords"`
}

type readImageResponse struct {
	Text string `json:"text"`
}

func (s *Server) handleReadImage(c echo.Context) error {
	var req readImageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Coords) != 4 {
		return echo.NewHTTPError(http.StatusBadRequest, "coords must be [x1,y1,x2,y2]")
	}
	box, err := entity.NewBox(req.Coords[0], req.Coords[1], req.Coords[2], req.Coords[3])
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	text, err := s.query.ReadRegion(c.Request().Context(), box)
	if err != nil {
		s.log.Warn("read_image failed", "box", box, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "text recognition failed")
	}
	return c.JSON(http.StatusOK, readImageResponse{Text: text})
}

func (s *Server) handleText(c echo.Context) error {
	return c.JSON(http.StatusOK, s.query.Texts())
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":     "ok",
		"generation": s.query.Generation(),
	})
}

// handleVideoFeed streams annotated frames as multipart/x-mixed-replace
// until the client disconnects.
func (s *Server) handleVideoFeed(c echo.Context) error {
	id, frames := s.hub.Subscribe()
	defer s.hub.Unsubscribe(id)
	s.log.Info("stream client connected", "id", id)
	defer s.log.Info("stream client disconnected", "id", id)

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "multipart/x-mixed-replace; boundary="+streamBoundary)
	resp.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			if _, err := fmt.Fprintf(resp, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", streamBoundary, len(frame)); err != nil {
				return nil
			}
			if _, err := resp.Write(frame); err != nil {
				return nil
			}
			if _, err := fmt.Fprint(resp, "\r\n"); err != nil {
				return nil
			}
			resp.Flush()
		}
	}
}

package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"tweetwatch/internal/line"
	"tweetwatch/internal/metrics"
	"tweetwatch/internal/model"
	"tweetwatch/worker"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Runner executes a single dispatch cycle.
type Runner interface {
	RunOnce(ctx context.Context, trigger string) (model.DispatchResult, error)
}

// Replier answers LINE webhook events.
type Replier interface {
	Reply(ctx context.Context, replyToken, text string) error
}

// Server exposes the single-shot triggers, the LINE webhook and metrics.
type Server struct {
	Addr          string
	Runner        Runner
	Replier       Replier // optional; /callback is registered only with a channel secret
	ChannelSecret string
	Status        func() any // optional payload for /healthz
	ShutdownGrace time.Duration
}

// Handler builds the echo router.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		slog.Warn("http: request failed", "status", code, "method", req.Method, "path", req.URL.Path, "error", msg)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]any{"error": msg})
		}
	}

	e.GET("/healthz", s.healthz)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.Match([]string{http.MethodGet, http.MethodPost}, "/run", s.run)
	e.POST("/events", s.event)
	if s.ChannelSecret != "" {
		e.POST("/callback", s.callback)
	}
	return e
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	e := s.Handler()
	errc := make(chan error, 1)
	go func() {
		slog.Info("http: listening", "addr", s.Addr)
		if err := e.Start(s.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	grace := s.ShutdownGrace
	if grace <= 0 {
		grace = 10 * time.Second
	}
	sctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return e.Shutdown(sctx)
}

func (s *Server) healthz(c echo.Context) error {
	if s.Status == nil {
		return c.String(http.StatusOK, "ok")
	}
	return c.JSON(http.StatusOK, s.Status())
}

// run is the HTTP trigger: failures come back as a 500 with the message embedded.
func (s *Server) run(c echo.Context) error {
	ctx := context.WithoutCancel(c.Request().Context())
	resp := worker.NewResponse(s.Runner.RunOnce(ctx, worker.TriggerHTTP))
	return c.JSON(resp.StatusCode, resp)
}

// event is the event trigger: a failure is surfaced as an error status so the
// caller's own retry policy applies.
func (s *Server) event(c echo.Context) error {
	ctx := context.WithoutCancel(c.Request().Context())
	res, err := s.Runner.RunOnce(ctx, worker.TriggerEvent)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

// callback answers LINE webhooks with the group id, for initial setup.
func (s *Server) callback(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	events, err := line.ParseWebhook(s.ChannelSecret, c.Request().Header.Get("X-Line-Signature"), body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	for _, ev := range events {
		text, ok := line.GroupIDReply(ev)
		if !ok {
			continue
		}
		if ev.Source.GroupID != "" {
			slog.Info("http: group message received", "group_id", ev.Source.GroupID)
		}
		if s.Replier == nil {
			continue
		}
		if err := s.Replier.Reply(c.Request().Context(), ev.ReplyToken, text); err != nil {
			slog.Error("http: reply failed", "error", err)
		}
	}
	return c.String(http.StatusOK, "OK")
}

// Package web serves the dashboard and its APIs: the rendered page, the
// partitioned events JSON, the 1-second ticker snapshots, the ICS feed, the
// PNG preview, prometheus metrics and health.
package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/template/html/v2"
	"github.com/google/uuid"

	"econboard/internal/capture"
	"econboard/internal/config"
	"econboard/internal/icsfeed"
	appLog "econboard/internal/log"
	"econboard/internal/metrics"
	"econboard/internal/model"
	"econboard/internal/store"
	"econboard/internal/window"
)

//go:embed views
var viewsFS embed.FS

// captureTokenParam carries the per-process token the headless capture uses
// to pass basic auth, since the browser it launches has no credentials.
const captureTokenParam = "capture_token"

// Refresher triggers a full fetch-parse-replace cycle on demand.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Server hosts the dashboard over a Fiber app.
type Server struct {
	cfg       *config.Config
	store     *store.Store
	refresher Refresher
	loc       *time.Location
	app       *fiber.App

	// captureToken authenticates the preview capture's navigation to "/"
	// when basic auth is enabled. Regenerated on every process start.
	captureToken string

	// TTL cache for the chromium preview snapshot; capturing is expensive
	// and the board only changes once per refresh.
	previewMu  sync.Mutex
	previewPNG []byte
	previewAt  time.Time
}

// NewServer constructs the Server and registers all routes.
func NewServer(cfg *config.Config, st *store.Store, refresher Refresher) *Server {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		// The views directory is compiled in; this cannot fail at runtime.
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")

	s := &Server{
		cfg:          cfg,
		store:        st,
		refresher:    refresher,
		loc:          cfg.Location(),
		captureToken: uuid.NewString(),
	}

	s.app = fiber.New(fiber.Config{
		Views:                 engine,
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.app.Use(logger.New())
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+cfg.Listen)
		s.app.Use(s.basicAuthMiddleware)
	}
	s.registerRoutes()

	return s
}

// Listen blocks serving HTTP until Shutdown is called.
func (s *Server) Listen() error {
	appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
	return s.app.Listen(s.cfg.Listen)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying Fiber app (used by tests).
func (s *Server) App() *fiber.App {
	return s.app
}

// errorHandler renders API errors as JSON and page errors as the error view.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	if len(c.Path()) >= 4 && c.Path()[:4] == "/api" {
		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
			"code":  code,
		})
	}
	return c.Status(code).SendString(err.Error())
}

func (s *Server) basicAuthEnabled() bool {
	ba := s.cfg.BasicAuth
	return ba != nil && ba.Username != "" && ba.Password != ""
}

// basicAuthMiddleware guards every route except /health. The dashboard page
// additionally accepts the per-process capture token, so the preview's
// headless browser can load it without credentials.
func (s *Server) basicAuthMiddleware(c *fiber.Ctx) error {
	if c.Path() == "/health" {
		return c.Next()
	}
	if c.Path() == "/" && secureCompare(c.Query(captureTokenParam), s.captureToken) {
		return c.Next()
	}

	u, p, ok := parseBasicAuth(c.Get(fiber.HeaderAuthorization))
	if !ok || !secureCompare(u, s.cfg.BasicAuth.Username) || !secureCompare(p, s.cfg.BasicAuth.Password) {
		c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="econboard", charset="UTF-8"`)
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	return c.Next()
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/", s.handleDashboard)
	s.app.Get("/api/events", s.handleEvents)
	s.app.Get("/api/ticker", s.handleTicker)
	s.app.Post("/api/refresh", s.handleRefresh)
	s.app.Get("/calendar.ics", s.handleICS)
	s.app.Get("/preview.png", s.handlePreview)
	s.app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.SendString("OK")
}

// activeWindow resolves the window filter from the request, falling back to
// the configured default. The filter is per-request state, never a server
// global.
func (s *Server) activeWindow(c *fiber.Ctx) (window.Window, error) {
	tok := c.Query("window")
	if tok == "" {
		tok = s.cfg.DefaultWindow
	}
	return window.Parse(tok)
}

func (s *Server) handleDashboard(c *fiber.Ctx) error {
	w, err := s.activeWindow(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	events, refreshedAt := s.store.Snapshot()
	loadErr := s.store.LoadError()
	if loadErr != nil && s.store.Empty() {
		// Total fetch failure with nothing to show: explicit error view,
		// no partial rendering.
		return c.Status(fiber.StatusServiceUnavailable).Render("error", fiber.Map{
			"Error": loadErr.Error(),
		})
	}

	now := time.Now()
	part := window.Partition(events, now, w, s.loc)

	return c.Render("dashboard", fiber.Map{
		"Window":      string(w),
		"TimeZone":    s.loc.String(),
		"Clock":       now.In(s.loc).Format("Mon Jan 2 15:04:05 MST"),
		"RefreshedAt": refreshedAt.In(s.loc).Format("15:04:05"),
		"Upcoming":    s.groupedDTO(part.Upcoming, now),
		"Past":        s.groupedDTO(part.Past, now),
	})
}

func (s *Server) handleEvents(c *fiber.Ctx) error {
	w, err := s.activeWindow(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	events, refreshedAt := s.store.Snapshot()
	if loadErr := s.store.LoadError(); loadErr != nil && s.store.Empty() {
		return fiber.NewError(fiber.StatusServiceUnavailable, loadErr.Error())
	}

	now := time.Now()
	part := window.Partition(events, now, w, s.loc)

	return c.JSON(eventsResponse{
		Window:      string(w),
		Now:         now,
		RefreshedAt: refreshedAt,
		TimeZone:    s.loc.String(),
		Upcoming:    s.groupedDTO(part.Upcoming, now),
		Past:        s.groupedDTO(part.Past, now),
	})
}

func (s *Server) handleTicker(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"clock":      s.store.Clock(),
		"countdowns": s.store.Countdowns(),
	})
}

func (s *Server) handleRefresh(c *fiber.Ctx) error {
	if s.refresher == nil {
		return fiber.NewError(fiber.StatusNotImplemented, "refresh not wired")
	}
	if err := s.refresher.Refresh(c.Context()); err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	events, refreshedAt := s.store.Snapshot()
	return c.JSON(fiber.Map{
		"events":       len(events),
		"refreshed_at": refreshedAt,
	})
}

func (s *Server) handleICS(c *fiber.Ctx) error {
	w, err := s.activeWindow(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	events, _ := s.store.Snapshot()
	cal := icsfeed.Upcoming(events, time.Now(), w)

	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	return c.SendString(cal.Serialize())
}

func (s *Server) handlePreview(c *fiber.Ctx) error {
	ttl := time.Duration(s.cfg.PreviewTTLSeconds) * time.Second

	s.previewMu.Lock()
	defer s.previewMu.Unlock()

	if s.previewPNG == nil || time.Since(s.previewAt) > ttl {
		png, err := capture.DashboardPNG(c.Context(), capture.Options{
			URL: s.captureURL(),
		})
		if err != nil {
			appLog.Error("preview capture failed", err)
			return fiber.NewError(fiber.StatusInternalServerError, "preview capture failed")
		}
		s.previewPNG = png
		s.previewAt = time.Now()
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(s.previewPNG)
}

// captureURL is the dashboard address the headless capture navigates to.
// With basic auth on, the capture token is appended so the page loads
// without credentials.
func (s *Server) captureURL() string {
	u := "http://" + s.cfg.Listen + "/"
	if s.basicAuthEnabled() {
		u += "?" + captureTokenParam + "=" + s.captureToken
	}
	return u
}

// eventDTO carries one event plus its derived display fields.
type eventDTO struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Timestamp   time.Time `json:"timestamp"`
	Precision   string    `json:"precision"`
	Session     string    `json:"session,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Source      string    `json:"source,omitempty"`

	Impact            string `json:"impact,omitempty"`
	Actual            string `json:"actual,omitempty"`
	Forecast          string `json:"forecast,omitempty"`
	Previous          string `json:"previous,omitempty"`
	Sentiment         string `json:"sentiment,omitempty"`
	SentimentColor    string `json:"sentiment_color,omitempty"`
	InfoType          string `json:"info_type,omitempty"`
	AnalystPrediction string `json:"analyst_prediction,omitempty"`

	DisplayTime string `json:"display_time"`
	Countdown   string `json:"countdown,omitempty"`
	Historical  bool   `json:"historical"`
}

type dayGroupDTO struct {
	Key    string     `json:"key"`
	Label  string     `json:"label"`
	Events []eventDTO `json:"events"`
}

type groupedDTO struct {
	Macro     []dayGroupDTO `json:"macro"`
	Corporate []dayGroupDTO `json:"corporate"`
}

type eventsResponse struct {
	Window      string     `json:"window"`
	Now         time.Time  `json:"now"`
	RefreshedAt time.Time  `json:"refreshed_at"`
	TimeZone    string     `json:"timezone"`
	Upcoming    groupedDTO `json:"upcoming"`
	Past        groupedDTO `json:"past"`
}

func (s *Server) groupedDTO(g window.Grouped, now time.Time) groupedDTO {
	return groupedDTO{
		Macro:     s.dayGroupDTOs(g.Macro, now),
		Corporate: s.dayGroupDTOs(g.Corporate, now),
	}
}

func (s *Server) dayGroupDTOs(groups []window.DayGroup, now time.Time) []dayGroupDTO {
	out := make([]dayGroupDTO, 0, len(groups))
	for _, g := range groups {
		dg := dayGroupDTO{Key: g.Key, Label: g.Label}
		for _, ev := range g.Events {
			dg.Events = append(dg.Events, s.eventDTO(ev, now))
		}
		out = append(out, dg)
	}
	return out
}

func (s *Server) eventDTO(ev model.Event, now time.Time) eventDTO {
	return eventDTO{
		ID:          ev.ID,
		Category:    string(ev.Category),
		Timestamp:   ev.Timestamp,
		Precision:   string(ev.Precision),
		Session:     ev.Session.Label(),
		Name:        ev.Name,
		Description: ev.Description,
		Source:      ev.Source,

		Impact:            string(ev.Impact),
		Actual:            ev.Actual,
		Forecast:          ev.Forecast,
		Previous:          ev.Previous,
		Sentiment:         string(ev.Sentiment),
		SentimentColor:    ev.Sentiment.Color(),
		InfoType:          ev.InfoType,
		AnalystPrediction: ev.AnalystPrediction,

		DisplayTime: ev.DisplayTime(s.loc),
		Countdown:   window.EventCountdown(ev, now),
		Historical:  ev.Historical(now),
	}
}

func parseBasicAuth(header string) (user, pass string, ok bool) {
	// Reuse net/http's parsing by wrapping the header in a throwaway request.
	r := &http.Request{Header: http.Header{"Authorization": {header}}}
	return r.BasicAuth()
}

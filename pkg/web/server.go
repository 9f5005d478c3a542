// Package web serves the public site and the back office as server-rendered
// HTML.
package web

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/Declyn50s/Traine-Savates/pkg/admin"
	"github.com/Declyn50s/Traine-Savates/pkg/content"
	"github.com/Declyn50s/Traine-Savates/pkg/logger"
	"github.com/Declyn50s/Traine-Savates/pkg/metrics"
	"github.com/Declyn50s/Traine-Savates/pkg/session"
)

// Maximum size of an uploaded image.
const maxUploadBytes = 5 << 20

type Server struct {
	content  *content.Service
	admin    *admin.Service
	sessions *session.Manager
	assets   http.Handler
	stats    http.Handler
	pages    *renderer
}

type Option func(*Server)

// WithAssets serves locally stored uploads under /assets/.
func WithAssets(h http.Handler) Option {
	return func(s *Server) { s.assets = h }
}

// WithStats replaces the admin stats handler.
func WithStats(h http.Handler) Option {
	return func(s *Server) { s.stats = h }
}

func New(c *content.Service, a *admin.Service, sessions *session.Manager, opts ...Option) (*Server, error) {
	pages, err := newRenderer()
	if err != nil {
		return nil, err
	}
	s := &Server{
		content:  c,
		admin:    a,
		sessions: sessions,
		stats:    http.HandlerFunc(metrics.StatsHandler),
		pages:    pages,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the full route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /course", s.handleCourse)
	mux.HandleFunc("GET /course/{slug}", s.handleCourse)
	mux.HandleFunc("GET /club", s.handleClub)
	mux.HandleFunc("GET /adhesion", s.handleMembership)
	mux.HandleFunc("POST /adhesion", s.handleMembershipSubmit)
	mux.HandleFunc("GET /infos-pratiques", s.handlePractical)
	mux.HandleFunc("GET /sponsors", s.handleSponsors)
	mux.HandleFunc("GET /contact", s.handleContact)
	mux.HandleFunc("POST /contact", s.handleContactSubmit)
	if s.assets != nil {
		mux.Handle("GET /assets/", s.assets)
	}

	mux.HandleFunc("GET /admin/login", s.handleLoginPage)
	mux.HandleFunc("POST /admin/login", s.handleLogin)
	mux.HandleFunc("POST /admin/logout", s.handleLogout)
	s.adminRoutes(mux)

	mux.HandleFunc("/", s.handleNotFound)

	return metrics.Instrument(logRequests(recoverPanics(mux)))
}

func (s *Server) adminRoutes(mux *http.ServeMux) {
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.requireAdmin(h))
	}

	handle("GET /admin", s.handleDashboard)
	handle("GET /admin/stats", s.stats.ServeHTTP)

	handle("GET /admin/editions", s.handleEditions)
	handle("GET /admin/editions/new", s.handleEditionNew)
	handle("POST /admin/editions", s.handleEditionCreate)
	handle("GET /admin/editions/{id}", s.handleEditionEdit)
	handle("POST /admin/editions/{id}", s.handleEditionUpdate)
	handle("POST /admin/editions/{id}/activate", s.handleEditionActivate)
	handle("POST /admin/editions/{id}/duplicate", s.handleEditionDuplicate)

	handle("POST /admin/editions/{id}/races", s.handleRaceCreate)
	handle("POST /admin/races/{id}", s.handleRaceUpdate)
	handle("POST /admin/races/{id}/delete", s.handleRaceDelete)
	handle("POST /admin/races/{id}/route-map", s.handleRouteMapUpload)
	handle("POST /admin/editions/{id}/program", s.handleProgramCreate)
	handle("POST /admin/program/{id}", s.handleProgramUpdate)
	handle("POST /admin/program/{id}/delete", s.handleProgramDelete)

	handle("GET /admin/club", s.handleClubAdmin)
	handle("POST /admin/club", s.handleClubSave)
	handle("POST /admin/trainings", s.handleTrainingCreate)
	handle("POST /admin/trainings/{id}", s.handleTrainingUpdate)
	handle("POST /admin/trainings/{id}/delete", s.handleTrainingDelete)
	handle("POST /admin/committee", s.handleMemberCreate)
	handle("POST /admin/committee/{id}", s.handleMemberUpdate)
	handle("POST /admin/committee/{id}/delete", s.handleMemberDelete)
	handle("POST /admin/committee/{id}/photo", s.handleMemberPhoto)

	handle("GET /admin/practical", s.handlePracticalAdmin)
	handle("POST /admin/practical", s.handlePracticalSave)
	handle("POST /admin/faq", s.handleFaqCreate)
	handle("POST /admin/faq/{id}", s.handleFaqUpdate)
	handle("POST /admin/faq/{id}/delete", s.handleFaqDelete)

	handle("GET /admin/sponsors", s.handleSponsorsAdmin)
	handle("POST /admin/sponsors", s.handleSponsorCreate)
	handle("POST /admin/sponsors/section", s.handleSponsorsSection)
	handle("POST /admin/sponsors/{id}", s.handleSponsorUpdate)
	handle("POST /admin/sponsors/{id}/delete", s.handleSponsorDelete)
	handle("POST /admin/sponsors/{id}/logo", s.handleSponsorLogo)
	handle("POST /admin/sponsors/{id}/visibility", s.handleSponsorVisibility)

	handle("GET /admin/inbox", s.handleInbox)
	handle("POST /admin/messages/{id}/status", s.handleMessageStatus)
	handle("POST /admin/memberships/{id}/status", s.handleMembershipStatus)

	handle("POST /admin/reorder/{kind}", s.handleReorder)
}

// requireAdmin redirects anonymous visitors to the login page.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.sessions.Current(r); !ok {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

type loggingWriter struct {
	http.ResponseWriter
	status int
}

func (w *loggingWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *loggingWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lw := &loggingWriter{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(lw, r)
		if lw.status == 0 {
			lw.status = http.StatusOK
		}
		logger.Info("%s %s %d %s", r.Method, r.URL.Path, lw.status, time.Since(start).Round(time.Microsecond))
	})
}

func recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				logger.Error("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, v, debug.Stack())
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

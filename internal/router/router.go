package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/thehashrocket/issue-portal-sub000/internal/authz"
	"github.com/thehashrocket/issue-portal-sub000/internal/config"
	"github.com/thehashrocket/issue-portal-sub000/internal/handlers"
	"github.com/thehashrocket/issue-portal-sub000/internal/middleware"
	"github.com/thehashrocket/issue-portal-sub000/internal/notify"
	"github.com/thehashrocket/issue-portal-sub000/internal/repository"
	"github.com/thehashrocket/issue-portal-sub000/internal/service"
	"github.com/thehashrocket/issue-portal-sub000/internal/storage"
)

// Deps carries the storage-backed collaborators the routes need. main
// builds it once for whichever backend is configured.
type Deps struct {
	Issues        repository.IssueRepository
	Clients       repository.ClientRepository
	Users         repository.UserRepository
	Files         repository.FileRepository
	Notifications repository.NotificationRepository

	Blobs    storage.BlobStore
	Notifier *notify.Service
	DB       handlers.Pinger // nil with in-memory storage
}

func New(log zerolog.Logger, cfg config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(httprate.LimitByIP(cfg.RateLimitRPM, time.Minute))
	r.Use(middleware.WithAuth(log, cfg))

	az := authz.New(log)

	authSvc := service.NewAuthService(d.Users, cfg.SessionSecret, cfg.SessionTTL)
	ah := handlers.NewAuthHTTP(authSvc, d.Users, cfg, log)
	ih := handlers.NewIssueHTTP(d.Issues, az, d.Notifier, log)
	fh := handlers.NewFileHTTP(d.Files, d.Issues, d.Blobs, az, log)
	ch := handlers.NewClientHTTP(d.Clients, log)
	uh := handlers.NewUserHTTP(d.Users, az, log)
	nh := handlers.NewNotificationHTTP(d.Notifications, az, log)
	rh := handlers.NewReportHTTP(d.Issues, log)

	r.Get("/healthz", handlers.Health())
	r.Get("/readyz", handlers.Ready(d.DB))

	// Credential endpoints get a much tighter per-IP budget than the rest
	// of the API.
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(10, time.Minute))
			r.Post("/register", ah.Register())
			r.Post("/login", ah.Login())
		})
		r.Post("/logout", ah.Logout())
		r.With(middleware.RequireAuth).Get("/me", ah.Me())
	})

	r.Route("/api/issues", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.Authorize(az, authz.ResourceIssue, authz.ActionList)).Get("/", ih.List())
		r.With(middleware.Authorize(az, authz.ResourceIssue, authz.ActionCreate)).Post("/", ih.Create())
		r.Route("/{id}", func(r chi.Router) {
			// Record-level rules (ownership, assignment) run inside the
			// handlers after the row is loaded.
			r.Get("/", ih.Get())
			r.Patch("/", ih.Update())
			r.Delete("/", ih.Delete())
			r.Patch("/status", ih.UpdateStatus())
			r.Get("/statuses", ih.Statuses())
			r.Get("/comments", ih.ListComments())
			r.Post("/comments", ih.AddComment())
			r.Delete("/comments/{commentID}", ih.DeleteComment())
			r.Get("/files", fh.List())
			r.Post("/files", fh.Upload())
		})
	})

	r.Route("/api/files/{fileID}", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", fh.Download())
		r.Delete("/", fh.Delete())
	})

	r.Route("/api/clients", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.Authorize(az, authz.ResourceClient, authz.ActionList)).Get("/", ch.List())
		r.With(middleware.Authorize(az, authz.ResourceClient, authz.ActionCreate)).Post("/", ch.Create())
		r.Route("/{id}", func(r chi.Router) {
			r.With(middleware.Authorize(az, authz.ResourceClient, authz.ActionView)).Get("/", ch.Get())
			r.With(middleware.Authorize(az, authz.ResourceClient, authz.ActionUpdate)).Patch("/", ch.Update())
			r.With(middleware.Authorize(az, authz.ResourceClient, authz.ActionDelete)).Delete("/", ch.Delete())
		})
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.Authorize(az, authz.ResourceUser, authz.ActionList)).Get("/", uh.List())
		r.With(middleware.Authorize(az, authz.ResourceUser, authz.ActionCreate)).Post("/", uh.Create())
		r.Route("/{id}", func(r chi.Router) {
			r.With(middleware.Authorize(az, authz.ResourceUser, authz.ActionView)).Get("/", uh.Get())
			r.Patch("/", uh.Update()) // admin or self, checked in-handler
			r.Patch("/password", uh.UpdatePassword())
			r.With(middleware.Authorize(az, authz.ResourceUser, authz.ActionDelete)).Delete("/", uh.Delete())
		})
	})

	r.Route("/api/notifications", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", nh.List())
		r.Patch("/{id}/read", nh.MarkRead())
		r.Post("/read-all", nh.MarkAllRead())
	})

	r.With(middleware.RequireAuth, middleware.Authorize(az, authz.ResourceReport, authz.ActionView)).
		Get("/api/reports/summary", rh.Summary())

	return r
}

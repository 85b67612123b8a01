package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/peoplecore/leave-backend-go/internal/config"
	"github.com/peoplecore/leave-backend-go/internal/handler/http/middleware"
	"github.com/peoplecore/leave-backend-go/internal/pkg/jwt"
)

func NewRouter(
	cfg *config.Config,
	jwtService jwt.Service,
	authHandler AuthHandler,
	leaveHandler LeaveHandler,
	notificationHandler NotificationHandler,
	reportHandler ReportHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "leave-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/logout", authHandler.Logout)
			r.Route("/oauth/callback", func(r chi.Router) {
				r.Get("/google", authHandler.OAuthCallbackGoogle)
			})

			r.Route("/login", func(r chi.Router) {
				r.Post("/", authHandler.Login)
				r.Route("/oauth", func(r chi.Router) {
					r.Get("/google", authHandler.LoginWithGoogle)
				})
			})
		})

		// SSE stream authenticates via its own short-lived token
		r.Get("/notifications/stream", notificationHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/leaves", func(r chi.Router) {
				r.Post("/", leaveHandler.Submit)
				r.Get("/my", leaveHandler.ListMyRequests)
				r.Post("/certificates", leaveHandler.UploadCertificate)

				// Approver views and decisions
				r.Group(func(r chi.Router) {
					r.Use(middleware.ApproverOnly)
					r.Get("/", leaveHandler.ListRequests)
					r.Get("/pending", leaveHandler.ListPending)
					r.Post("/{id}/approve", leaveHandler.Approve)
					r.Post("/{id}/reject", leaveHandler.Reject)
					r.Post("/{id}/return", leaveHandler.Return)
					r.Post("/{id}/recall", leaveHandler.Recall)
					r.Post("/{id}/cancellation/decide", leaveHandler.DecideCancellation)
				})

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", leaveHandler.GetRequest)
					r.Get("/versions", leaveHandler.GetVersions)
					r.Get("/comments", leaveHandler.GetComments)

					r.Post("/resubmit", leaveHandler.Resubmit)
					r.Post("/extend", leaveHandler.Extend)
					r.Post("/shorten", leaveHandler.Shorten)
					r.Post("/partial-cancel", leaveHandler.PartialCancel)
					r.Post("/cancel", leaveHandler.Cancel)
					r.Post("/cancellation", leaveHandler.RequestCancellation)
				})
			})

			r.Route("/balances", func(r chi.Router) {
				r.Get("/my", leaveHandler.GetMyBalances)

				r.Group(func(r chi.Router) {
					r.Use(middleware.HRAdminOnly)
					r.Post("/adjust", leaveHandler.AdjustBalance)
				})
			})

			r.Route("/holidays", func(r chi.Router) {
				r.Get("/", leaveHandler.ListHolidays)

				r.Group(func(r chi.Router) {
					r.Use(middleware.HRAdminOnly)
					r.Post("/", leaveHandler.CreateHoliday)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Post("/{id}/read", notificationHandler.MarkAsRead)
				r.Get("/sse-token", notificationHandler.GetSSEToken)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.HRAdminOnly)
				r.Get("/leave-register", reportHandler.LeaveRegister)
				r.Get("/balance-summary", reportHandler.BalanceSummary)
			})
		})
	})

	// Local storage files are served directly in development
	if cfg.Storage.Type == "local" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Storage.BasePath)))
		r.Get("/uploads/*", fileServer.ServeHTTP)
	}

	return r
}

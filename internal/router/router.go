package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"qurba-backend/internal/handlers"
	"qurba-backend/internal/middleware"
	"qurba-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	courseHandler *handlers.CourseHandler,
	contentHandler *handlers.ContentHandler,
	adminHandler *handlers.AdminHandler,
	publicHandler *handlers.PublicHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	applyLimiter := middleware.NewRateLimiter(5, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
			r.Post("/reset-password", authHandler.ResetPassword)
		})

		// ──── Public Routes ────
		r.With(applyLimiter.Middleware).Post("/applications", publicHandler.Apply)
		r.Get("/hero-slides", publicHandler.HeroSlides)
		r.Get("/support/whatsapp-link", publicHandler.WhatsAppLink)

		// ──── Learner Routes ────
		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/me", authHandler.Me)

			r.Route("/course", func(r chi.Router) {
				r.Get("/progress", courseHandler.Progress)
				r.Get("/days/{day}", courseHandler.Day)
			})

			r.Route("/materials/{id}", func(r chi.Router) {
				r.Get("/form", courseHandler.Form)
				r.Get("/quiz", courseHandler.Quiz)
				r.Post("/complete", courseHandler.Complete)
				r.Get("/submission", courseHandler.Submission)
			})

			r.Put("/form-submissions/{id}", courseHandler.EditSubmission)
			r.Get("/leaderboard", courseHandler.Leaderboard)
		})

		// ──── Admin Routes ────
		r.Route("/admin", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Use(middleware.RequireAdmin)

			r.Get("/stats", adminHandler.Stats)
			r.Get("/settings/total-days", adminHandler.GetTotalDays)
			r.Put("/settings/total-days", adminHandler.SetTotalDays)

			r.Route("/materials", func(r chi.Router) {
				r.Get("/", contentHandler.ListMaterials)
				r.Post("/", contentHandler.CreateMaterial)
				r.Put("/{id}", contentHandler.UpdateMaterial)
				r.Delete("/{id}", contentHandler.DeleteMaterial)
			})

			r.Route("/forms", func(r chi.Router) {
				r.Get("/", contentHandler.ListForms)
				r.Post("/", contentHandler.CreateForm)
				r.Get("/{id}", contentHandler.GetForm)
				r.Put("/{id}", contentHandler.UpdateForm)
				r.Delete("/{id}", contentHandler.DeleteForm)
			})

			r.Route("/quizzes", func(r chi.Router) {
				r.Get("/", contentHandler.ListQuizzes)
				r.Post("/", contentHandler.CreateQuiz)
				r.Get("/{id}", contentHandler.GetQuiz)
				r.Put("/{id}", contentHandler.UpdateQuiz)
				r.Delete("/{id}", contentHandler.DeleteQuiz)
			})

			r.Route("/hero-slides", func(r chi.Router) {
				r.Get("/", contentHandler.ListSlides)
				r.Post("/", contentHandler.CreateSlide)
				r.Put("/{id}", contentHandler.UpdateSlide)
				r.Put("/{id}/active", contentHandler.SetSlideActive)
				r.Delete("/{id}", contentHandler.DeleteSlide)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", adminHandler.ListUsers)
				r.Put("/{id}/block", adminHandler.SetBlocked)
				r.Get("/{id}/submissions", adminHandler.UserSubmissions)
			})
			r.Get("/batches", adminHandler.Batches)
			r.Get("/attendance", adminHandler.Attendance)
			r.Get("/toppers", adminHandler.Toppers)

			r.Route("/whitelist", func(r chi.Router) {
				r.Get("/", adminHandler.ListWhitelist)
				r.Post("/", adminHandler.AddWhitelist)
				r.Post("/bulk", adminHandler.BulkWhitelist)
				r.Delete("/{id}", adminHandler.RemoveWhitelist)
				r.Put("/{id}/password-reset", adminHandler.SetPasswordReset)
			})

			r.Get("/applications", adminHandler.ListApplications)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}

package routes

import (
	"github.com/Sarsen13/event-management/handlers"
	"github.com/Sarsen13/event-management/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	authenticator *middleware.Authenticator,
	authLimiter *middleware.RateLimiter,
	authHandler *handlers.AuthHandler,
	eventHandler *handlers.EventHandler,
	dashboardHandler *handlers.DashboardHandler,
	seedHandler *handlers.SeedHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Сессия обновляется на каждом запросе; обязательность решают группы.
	router.Use(authenticator.Authenticate)

	router.Route("/auth", func(r chi.Router) {
		r.Use(authLimiter.Middleware)

		r.Post("/signup", authHandler.SignUp)
		r.Post("/login", authHandler.SignIn)
		r.Post("/logout", authHandler.SignOut)
		r.Get("/me", authHandler.CurrentUser)
		r.Get("/confirm", authHandler.ConfirmEmail)
		r.Get("/google", authHandler.GoogleSignIn)
		r.Get("/callback", authHandler.GoogleCallback)
	})

	router.Get("/sports", eventHandler.SportTypes)

	router.Route("/events", func(r chi.Router) {
		// Публичный просмотр события по ID — без проверки владельца.
		r.Get("/{eventID}", eventHandler.GetByID)

		// Защищённые маршруты: список и все мутации только с сессией.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Get("/", eventHandler.List)
			r.Post("/", eventHandler.Create)
			r.Get("/{eventID}/manage", eventHandler.GetOwned)
			r.Put("/{eventID}", eventHandler.Update)
			r.Delete("/{eventID}", eventHandler.Delete)
			r.Post("/{eventID}/banner", eventHandler.UploadBanner)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Get("/dashboard", dashboardHandler.Dashboard)
		r.Get("/profile", authHandler.CurrentUser)
	})

	// Наполнение тестовыми данными; включается флагом SEED_TEST_DATA.
	router.Post("/testdata/seed", seedHandler.Seed)
}

package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/matchforge/registration-system/handlers"
	"github.com/matchforge/registration-system/middleware"
	"github.com/matchforge/registration-system/models"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Tournament *handlers.TournamentHandler
	SportEvent *handlers.SportEventHandler
	Intake     *handlers.IntakeHandler
	Review     *handlers.ReviewHandler
	Bracket    *handlers.BracketHandler
	WebSocket  *handlers.WebSocketHandler
}

func InitRoutes(h Handlers, jwtSecret string) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))
	organizerOnly := middleware.Authorize(string(models.RoleOrganizer), string(models.RoleAdmin))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Post("/auth/register", h.Auth.Register)
	router.Post("/auth/login", h.Auth.Login)

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты просмотра
		r.Get("/", h.Tournament.ListHandler)
		r.Get("/{tournamentID}", h.Tournament.GetByIDHandler)
		r.Get("/{tournamentID}/events", h.SportEvent.ListHandler)

		// Управление турниром — только организаторы
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)

			r.Post("/", h.Tournament.CreateHandler)
			r.Put("/{tournamentID}", h.Tournament.UpdateHandler)
			r.Delete("/{tournamentID}", h.Tournament.DeleteHandler)
			r.Post("/{tournamentID}/events", h.SportEvent.CreateHandler)

			// Консоль рассмотрения заявок
			r.Get("/{tournamentID}/requests", h.Review.ListHandler)
		})

		// Мастер регистрации — любой аутентифицированный пользователь
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/{tournamentID}/intake", h.Intake.StartHandler)
			r.Get("/{tournamentID}/intake", h.Intake.SessionHandler)
			r.Post("/{tournamentID}/intake/event", h.Intake.SelectEventHandler)
			r.Post("/{tournamentID}/intake/details", h.Intake.SubmitDetailsHandler)
			r.Post("/{tournamentID}/intake/photo", h.Intake.AttachTeamPhotoHandler)
			r.Get("/{tournamentID}/intake/payment", h.Intake.PaymentInfoHandler)
			r.Post("/{tournamentID}/intake/evidence", h.Intake.SubmitEvidenceHandler)
			r.Post("/{tournamentID}/intake/back", h.Intake.BackHandler)
		})
	})

	router.Route("/requests", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(organizerOnly)

		r.Post("/{requestID}/approve", h.Review.ApproveHandler)
		r.Post("/{requestID}/reject", h.Review.RejectHandler)
		r.Post("/{requestID}/retry-record", h.Review.RetryRecordHandler)
	})

	router.Route("/events", func(r chi.Router) {
		r.Get("/{sportEventID}/bracket", h.Bracket.GetHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)
			r.Post("/{sportEventID}/bracket", h.Bracket.FormHandler)
		})
	})

	router.Route("/organizer", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(organizerOnly)
		r.Post("/qr-code", h.SportEvent.UploadQRCodeHandler)
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	return router
}

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"pet-diary/internal/config"
	"pet-diary/internal/transport/httpserver/handler"
	authmw "pet-diary/internal/transport/httpserver/middleware"
	"pet-diary/pkg/logger"
)

// Observer instruments requests and exposes the collected metrics.
type Observer interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

func NewRouter(cfg config.Config, handlers *handler.Handlers, auth *authmw.Auth, observer Observer, log logger.Logger) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(authmw.RequestLogger(log))
	r.Use(chimw.Recoverer)
	if observer != nil {
		r.Use(observer.Middleware)
	}
	r.Use(chimw.Timeout(timeout))
	r.Use(authmw.NewCORS(cfg.CORSOrigins, "Idempotency-Key", cfg.Auth.DebugUserHeader))

	if observer != nil && cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, observer.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Common.Health)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.Common.AuthMe)
			r.Get("/today", handlers.Today.GetToday)

			r.Get("/animals", handlers.Animals.ListAnimals)
			r.Post("/animals", handlers.Animals.CreateAnimal)
			r.Get("/animals/{animal_id}", handlers.Animals.GetAnimal)
			r.Patch("/animals/{animal_id}", handlers.Animals.UpdateAnimal)
			r.Delete("/animals/{animal_id}", handlers.Animals.DeleteAnimal)
			r.Get("/animals/{animal_id}/alerts", handlers.Animals.ListAlerts)

			r.Post("/records/daily", handlers.Records.SaveDailyBatch)
			r.Get("/animals/{animal_id}/records/{date}", handlers.Records.GetDailyRecords)
			r.Get("/animals/{animal_id}/records", handlers.Records.GetRecentRecords)
			r.Get("/animals/{animal_id}/weights", handlers.Records.GetWeightHistory)

			r.Get("/reminders", handlers.Reminders.ListReminders)
			r.Get("/reminders/today", handlers.Reminders.ListTodayReminders)
			r.Post("/reminders", handlers.Reminders.CreateReminder)
			r.Put("/reminders/{id}", handlers.Reminders.UpdateReminder)
			r.Delete("/reminders/{id}", handlers.Reminders.DeleteReminder)
			r.Post("/reminders/{id}/complete", handlers.Reminders.CompleteReminder)
		})
	})

	return r
}

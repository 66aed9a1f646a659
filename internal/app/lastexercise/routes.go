// Package lastexercise собирает HTTP-приложение учёта упражнений.
package lastexercise

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/magabrotheeeer/last-exercise/docs"
	"github.com/magabrotheeeer/last-exercise/internal/config"
	"github.com/magabrotheeeer/last-exercise/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/last-exercise/internal/http/handlers/auth/register"
	excreate "github.com/magabrotheeeer/last-exercise/internal/http/handlers/exercises/create"
	exlist "github.com/magabrotheeeer/last-exercise/internal/http/handlers/exercises/list"
	exread "github.com/magabrotheeeer/last-exercise/internal/http/handlers/exercises/read"
	exremove "github.com/magabrotheeeer/last-exercise/internal/http/handlers/exercises/remove"
	exupdate "github.com/magabrotheeeer/last-exercise/internal/http/handlers/exercises/update"
	typeremove "github.com/magabrotheeeer/last-exercise/internal/http/handlers/exercisetypes/remove"
	"github.com/magabrotheeeer/last-exercise/internal/http/handlers/health"
	"github.com/magabrotheeeer/last-exercise/internal/http/handlers/users/history"
	"github.com/magabrotheeeer/last-exercise/internal/http/handlers/users/lastexercise"
	"github.com/magabrotheeeer/last-exercise/internal/http/handlers/users/me"
	"github.com/magabrotheeeer/last-exercise/internal/http/handlers/users/password"
	userread "github.com/magabrotheeeer/last-exercise/internal/http/handlers/users/read"
	userremove "github.com/magabrotheeeer/last-exercise/internal/http/handlers/users/remove"
	userupdate "github.com/magabrotheeeer/last-exercise/internal/http/handlers/users/update"
	"github.com/magabrotheeeer/last-exercise/internal/http/middlewarectx"
	"github.com/magabrotheeeer/last-exercise/internal/lib/metrics"
	"github.com/magabrotheeeer/last-exercise/internal/services/exercises"
	"github.com/magabrotheeeer/last-exercise/internal/services/tracker"
	"github.com/magabrotheeeer/last-exercise/internal/services/users"
)

// Deps — зависимости HTTP-маршрутов.
type Deps struct {
	Tracker   *tracker.Service
	Users     *users.Service
	Exercises *exercises.Service
	// Validator проверяет токены. Если nil, используется Tracker.
	Validator middlewarectx.TokenValidator
	Pinger    health.Pinger
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer

	RateLimit       config.RateLimit
	CORS            config.CORS
	StrictOwnership bool
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	validator := d.Validator
	if validator == nil {
		validator = d.Tracker
	}

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)
	if d.Metrics != nil {
		r.Use(middlewarectx.Metrics(d.Metrics))
	}
	if len(d.CORS.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: d.CORS.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", middlewarectx.TokenHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/health", health.New(logger, d.Pinger).ServeHTTP)

	// Открытые конечные точки
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, d.RateLimit.RPS, d.RateLimit.Burst))
		r.Post("/register", register.New(logger, d.Tracker).ServeHTTP)
		r.Post("/login", login.New(logger, d.Tracker).ServeHTTP)
	})

	// Группа с проверкой токена
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.Auth(validator, logger))

		r.Get("/me", me.New(logger, d.Users).ServeHTTP)

		r.Route("/users/{id}", func(r chi.Router) {
			if d.StrictOwnership {
				r.Use(middlewarectx.SelfOnly(logger))
			}
			r.Get("/", userread.New(logger, d.Users).ServeHTTP)
			r.Put("/", userupdate.New(logger, d.Users).ServeHTTP)
			r.Delete("/", userremove.New(logger, d.Users).ServeHTTP)
			r.Put("/password/update", password.New(logger, d.Tracker).ServeHTTP)
			r.Put("/lastexercise", lastexercise.New(logger, d.Tracker).ServeHTTP)
			r.Get("/history", history.New(logger, d.Users).ServeHTTP)
		})

		r.Post("/exercises", excreate.New(logger, d.Exercises).ServeHTTP)
		r.Get("/exercises", exlist.New(logger, d.Exercises).ServeHTTP)
		r.Get("/exercises/{id}", exread.New(logger, d.Exercises).ServeHTTP)
		r.Put("/exercises/{id}", exupdate.New(logger, d.Exercises).ServeHTTP)
		r.Delete("/exercises/{id}", exremove.New(logger, d.Exercises).ServeHTTP)
		r.Delete("/exercisetypes/{id}", typeremove.New(logger, d.Exercises).ServeHTTP)
	})

	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

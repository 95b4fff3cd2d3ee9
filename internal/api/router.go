// Package api — router.go собирает маршруты и middleware.
//
// Мини-приложение ходит на один эндпоинт и выбирает операцию query-параметром
// ?path= (форма, которую ждёт фронтенд), поэтому маршрутизация по методам
// и healthz — на chi, а выбор операции — внутри Dispatch.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
)

// NewRouter собирает HTTP-роутер API.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	// Фронтенд живёт на другом домене: CORS разрешаем всем.
	// Preflight OPTIONS должен отвечать 200, а не 204 — так ждёт клиент.
	c := cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:       []string{"Content-Type", "X-User-Id"},
		MaxAge:               86400,
		OptionsSuccessStatus: http.StatusOK,
	})
	r.Use(c.Handler)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", h.Dispatch)
	r.Post("/", h.Dispatch)

	return r
}

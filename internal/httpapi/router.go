package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"demoreel/internal/httpapi/handlers"
	"demoreel/internal/pkg/middleware"
)

func NewRouter(d handlers.Deps) http.Handler {
	h := handlers.New(d)
	log := h.Log()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recovery(log))

	r.Get("/health", h.Health)

	r.Post("/jobs", middleware.WrapHandler(log, h.PostJob))
	r.Get("/jobs", middleware.WrapHandler(log, h.ListJobs))
	r.Get("/jobs/{jobId}", middleware.WrapHandler(log, h.GetJob))
	r.Get("/jobs/{jobId}/video", middleware.WrapHandler(log, h.GetVideo))

	return r
}

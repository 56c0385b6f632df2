package main

import (
	"net/http"
	"time"
)

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// healthcheckHandler godoc
//
//	@Summary		Healthcheck
//	@Description	Reports the health of the database and both Kafka clients
//	@Tags			ops
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Failure		503	{object}	HealthResponse
//	@Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	services := map[string]string{
		"database":  "ok",
		"consumer":  "ok",
		"publisher": "ok",
	}

	if app.storage != nil {
		if err := app.storage.Ping(r.Context()); err != nil {
			services["database"] = "error"
		}
	}
	if app.consumer != nil {
		if err := app.consumer.Ping(r.Context()); err != nil {
			services["consumer"] = "error"
		}
	}
	if app.publisher != nil {
		if err := app.publisher.Ping(r.Context()); err != nil {
			services["publisher"] = "error"
		}
	}

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Services:  services,
	}

	status := http.StatusOK
	for _, state := range services {
		if state != "ok" {
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			break
		}
	}

	if err := writeJson(w, status, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

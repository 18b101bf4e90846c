package controller

import (
	"log/slog"
	"net/http"

	"climate-server/internal/modules/climate/service"
)

const apiPrefix = "/api/v1.0"

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type climateControllerImpl struct {
	service service.ClimateService
	logger  *slog.Logger
}

func NewClimateController(service service.ClimateService, logger *slog.Logger) ClimateController {
	if logger == nil {
		logger = slog.Default()
	}
	return &climateControllerImpl{service: service, logger: logger}
}

func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleIndex)
	mux.HandleFunc("GET "+apiPrefix+"/precipitation", c.handlePrecipitation)
	mux.HandleFunc("GET "+apiPrefix+"/stations", c.handleStations)
	mux.HandleFunc("GET "+apiPrefix+"/tobs", c.handleTobs)
	mux.HandleFunc("GET "+apiPrefix+"/{start}", c.handleTemperatureStats)
	mux.HandleFunc("GET "+apiPrefix+"/{start}/{end}", c.handleTemperatureStats)
}

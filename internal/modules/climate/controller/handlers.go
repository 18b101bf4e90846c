package controller

import (
	"bytes"
	"errors"
	"net/http"

	"climate-server/internal/modules/climate/types"
	"climate-server/internal/modules/climate/views"
	"climate-server/internal/utils"
)

var indexRoutes = []views.Route{
	{Path: apiPrefix + "/precipitation", Description: "precipitation by date for the last year of data"},
	{Path: apiPrefix + "/stations", Description: "all weather stations"},
	{Path: apiPrefix + "/tobs", Description: "last year of temperatures at the most active station"},
	{Path: apiPrefix + "/<start>", Description: "min, avg and max temperature from start (YYYY-MM-DD) to the latest date"},
	{Path: apiPrefix + "/<start>/<end>", Description: "min, avg and max temperature from start to end, inclusive"},
}

func (c *climateControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	data := &views.IndexData{Title: "Hawaii Climate API", Routes: indexRoutes}
	if err := views.RenderIndex(&buf, data); err != nil {
		c.logger.Error("index template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		c.logger.Error("index: write response failed", "error", err)
	}
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	out, err := c.service.PrecipitationByDate(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := c.service.Stations(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stations)
}

func (c *climateControllerImpl) handleTobs(w http.ResponseWriter, r *http.Request) {
	temps, err := c.service.MostActiveTemperatures(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, temps)
}

// handleTemperatureStats serves both /{start} and /{start}/{end}.
func (c *climateControllerImpl) handleTemperatureStats(w http.ResponseWriter, r *http.Request) {
	start := r.PathValue("start")
	var end *string
	if v := r.PathValue("end"); v != "" {
		end = &v
	}

	stats, err := c.service.TemperatureStats(r.Context(), start, end)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

func (c *climateControllerImpl) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *types.InvalidDateError
	switch {
	case errors.As(err, &invalid):
		utils.WriteError(w, http.StatusBadRequest, invalid.Error())
	case errors.Is(err, types.ErrEmptyDataset):
		c.logger.Warn("no observations available", "path", r.URL.Path)
		utils.WriteError(w, http.StatusInternalServerError, "no observations available in the dataset")
	default:
		c.logger.Error("request failed", "path", r.URL.Path, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

package climate

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"climate-server/internal/modules/climate/controller"
	"climate-server/internal/modules/climate/repository"
	"climate-server/internal/modules/climate/service"
)

// RegisterFeature wires the climate routes onto mux. It fails when db does
// not hold the measurement and station tables.
func RegisterFeature(ctx context.Context, mux *http.ServeMux, db *sql.DB, logger *slog.Logger) error {
	climateRepository := repository.NewRepository(db)
	if err := climateRepository.Ping(ctx); err != nil {
		return fmt.Errorf("climate database: %w", err)
	}
	if err := climateRepository.VerifySchema(ctx); err != nil {
		return fmt.Errorf("climate schema: %w", err)
	}
	climateService := service.NewService(climateRepository, logger)
	climateController := controller.NewClimateController(climateService, logger)
	climateController.RegisterRoutes(mux)
	return nil
}

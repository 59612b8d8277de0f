package controller

import (
	"maintenance-marketplace-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

func SetupRoutesHandlers(handler *echo.Echo, services *service.Services) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	api := handler.Group("/api")
	newDiagnosticRoutesHandler(api, services)
	newCaseRoutesHandler(api, services, validate)
	newQuoteRoutesHandler(api, services, validate)
	newCounterProposalRoutesHandler(api, services, validate)
}

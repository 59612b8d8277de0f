package controller

import (
	"errors"
	"net/http"

	"maintenance-marketplace-api/internal/entity"
	"maintenance-marketplace-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type caseRoutesHandler struct {
	caseService       service.Cases
	rankingService    service.Ranking
	projectionService service.Projection
	validate          *validator.Validate
}

func newCaseRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *caseRoutesHandler {
	h := &caseRoutesHandler{
		caseService:       services.Cases,
		rankingService:    services.Ranking,
		projectionService: services.Projection,
		validate:          v,
	}
	outer.POST("/cases/new", h.PostCase)
	outer.GET("/cases/:caseId", h.GetCase)
	outer.GET("/cases/:caseId/contractors", h.GetCaseContractors)

	return h
}

type postCaseInput struct {
	OrganizationId string `json:"organizationId" validate:"required,uuid"`
	Title          string `json:"title" validate:"required,max=200"`
	Category       string `json:"category" validate:"max=100"`
}

// /cases/new
func (h *caseRoutesHandler) PostCase(c echo.Context) error {
	var input postCaseInput
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	model := &entity.CreateCaseInput{
		OrganizationId: input.OrganizationId, Title: input.Title, Category: input.Category,
	}

	created, err := h.caseService.CreateCase(c.Request().Context(), model)
	if err == nil {
		if e := c.JSON(http.StatusOK, created); e != nil {
			return e
		}

		return nil
	}

	if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
		return e
	}

	return err
}

type getCaseInput struct {
	CaseId string `param:"caseId" validate:"required,max=100"`
}

// /cases/:caseId
func (h *caseRoutesHandler) GetCase(c echo.Context) error {
	input := getCaseInput{CaseId: c.Param("caseId")}
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	projection, err := h.projectionService.GetCaseProjection(c.Request().Context(), input.CaseId)
	if err == nil {
		if e := c.JSON(http.StatusOK, projection); e != nil {
			return e
		}

		return nil
	}

	switch {
	case errors.Is(err, service.ErrCaseNotFound):
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no case with given id"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}

type getCaseContractorsInput struct {
	CaseId   string `param:"caseId" validate:"required,max=100"`
	Category string `query:"category" validate:"max=100"`
}

// /cases/:caseId/contractors
func (h *caseRoutesHandler) GetCaseContractors(c echo.Context) error {
	input := getCaseContractorsInput{CaseId: c.Param("caseId"), Category: c.QueryParam("category")}
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	ranking, err := h.rankingService.RankCandidates(c.Request().Context(), input.CaseId, input.Category)
	if err == nil {
		if e := c.JSON(http.StatusOK, ranking); e != nil {
			return e
		}

		return nil
	}

	switch {
	case errors.Is(err, service.ErrCaseNotFound):
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no case with given id"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}

package controller

import (
	"errors"
	"net/http"
	"strings"

	"maintenance-marketplace-api/internal/entity"
	"maintenance-marketplace-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
	"github.com/shopspring/decimal"
)

type quoteRoutesHandler struct {
	negotiationService service.Negotiation
	validate           *validator.Validate
}

func newQuoteRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *quoteRoutesHandler {
	h := &quoteRoutesHandler{negotiationService: services.Negotiation, validate: v}
	outer.POST("/quotes/new", h.PostQuote)
	outer.PUT("/quotes/:quoteId/send", h.SendQuote)
	outer.PUT("/quotes/:quoteId/expire", h.ExpireQuote)

	outer.PUT("/cases/:caseId/quotes/:quoteId/accept", h.AcceptQuote)
	outer.PUT("/cases/:caseId/quotes/:quoteId/decline", h.DeclineQuote)
	outer.PUT("/cases/:caseId/quotes/:quoteId/cancel_approval", h.CancelApproval)

	return h
}

type postQuoteInput struct {
	CaseId       string `json:"caseId" validate:"required,uuid"`
	ContractorId string `json:"contractorId" validate:"required,uuid"`
	Total        string `json:"total" validate:"required,max=30"`
	StartDate    string `json:"startDate" validate:"max=40"`
	EndDate      string `json:"endDate" validate:"max=40"`
	ExpiresAt    string `json:"expiresAt" validate:"max=40"`
}

// /quotes/new
func (h *quoteRoutesHandler) PostQuote(c echo.Context) error {
	var input postQuoteInput
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

	total, err := decimal.NewFromString(input.Total)
	if err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"'total': should be a decimal amount"}); e != nil {
			return e
		}

		return err
	}

	model := &entity.CreateQuoteInput{CaseId: input.CaseId, ContractorId: input.ContractorId, Total: total}
	if model.StartDate, err = parseOptionalTime(input.StartDate); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"'startDate': should be an RFC3339 timestamp"}); e != nil {
			return e
		}

		return err
	}
	if model.EndDate, err = parseOptionalTime(input.EndDate); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"'endDate': should be an RFC3339 timestamp"}); e != nil {
			return e
		}

		return err
	}
	if model.ExpiresAt, err = parseOptionalTime(input.ExpiresAt); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"'expiresAt': should be an RFC3339 timestamp"}); e != nil {
			return e
		}

		return err
	}

	quote, err := h.negotiationService.CreateQuote(c.Request().Context(), model)
	if err == nil {
		if e := c.JSON(http.StatusOK, quote); e != nil {
			return e
		}

		return nil
	}

	return h.writeQuoteError(c, err)
}

type quoteIdInput struct {
	QuoteId string `param:"quoteId" validate:"required,max=100"`
}

// /quotes/:quoteId/send
func (h *quoteRoutesHandler) SendQuote(c echo.Context) error {
	input := quoteIdInput{QuoteId: c.Param("quoteId")}
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	quote, err := h.negotiationService.SendQuote(c.Request().Context(), input.QuoteId)
	if err == nil {
		if e := c.JSON(http.StatusOK, quote); e != nil {
			return e
		}

		return nil
	}

	return h.writeQuoteError(c, err)
}

// /quotes/:quoteId/expire
func (h *quoteRoutesHandler) ExpireQuote(c echo.Context) error {
	input := quoteIdInput{QuoteId: c.Param("quoteId")}
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	quote, err := h.negotiationService.ExpireQuote(c.Request().Context(), input.QuoteId)
	if err == nil {
		if e := c.JSON(http.StatusOK, quote); e != nil {
			return e
		}

		return nil
	}

	return h.writeQuoteError(c, err)
}

type caseQuoteInput struct {
	CaseId  string `param:"caseId" validate:"required,max=100"`
	QuoteId string `param:"quoteId" validate:"required,max=100"`
}

// /cases/:caseId/quotes/:quoteId/accept
func (h *quoteRoutesHandler) AcceptQuote(c echo.Context) error {
	input := caseQuoteInput{CaseId: c.Param("caseId"), QuoteId: c.Param("quoteId")}
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	quote, err := h.negotiationService.AcceptQuote(c.Request().Context(), input.CaseId, input.QuoteId)
	if err == nil {
		if e := c.JSON(http.StatusOK, quote); e != nil {
			return e
		}

		return nil
	}

	return h.writeQuoteError(c, err)
}

type declineQuoteInput struct {
	CaseId  string `param:"caseId" validate:"required,max=100"`
	QuoteId string `param:"quoteId" validate:"required,max=100"`
	Reason  string `query:"reason" validate:"max=500"`
}

// /cases/:caseId/quotes/:quoteId/decline
func (h *quoteRoutesHandler) DeclineQuote(c echo.Context) error {
	input := declineQuoteInput{
		CaseId: c.Param("caseId"), QuoteId: c.Param("quoteId"), Reason: c.QueryParam("reason"),
	}
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	quote, err := h.negotiationService.DeclineQuote(c.Request().Context(), input.CaseId, input.QuoteId, input.Reason)
	if err == nil {
		if e := c.JSON(http.StatusOK, quote); e != nil {
			return e
		}

		return nil
	}

	return h.writeQuoteError(c, err)
}

// /cases/:caseId/quotes/:quoteId/cancel_approval
func (h *quoteRoutesHandler) CancelApproval(c echo.Context) error {
	input := caseQuoteInput{CaseId: c.Param("caseId"), QuoteId: c.Param("quoteId")}
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	quote, err := h.negotiationService.CancelApproval(c.Request().Context(), input.CaseId, input.QuoteId)
	if err == nil {
		if e := c.JSON(http.StatusOK, quote); e != nil {
			return e
		}

		return nil
	}

	return h.writeQuoteError(c, err)
}

func (h *quoteRoutesHandler) writeQuoteError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrCaseNotFound):
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no case with given id"}); e != nil {
			return e
		}
	case errors.Is(err, service.ErrQuoteNotFound):
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no quote with given id"}); e != nil {
			return e
		}
	case errors.Is(err, service.ErrInvalidTransition):
		if e := c.JSON(http.StatusConflict, errorResponse{upperFirst(err.Error())}); e != nil {
			return e
		}
	case errors.Is(err, service.ErrConflict):
		if e := c.JSON(http.StatusConflict, errorResponse{"Case was modified concurrently, refresh and retry"}); e != nil {
			return e
		}
	case errors.Is(err, service.ErrInvalidTotal),
		errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrInvalidExpiry):
		if e := c.JSON(http.StatusBadRequest, errorResponse{upperFirst(err.Error())}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}

package controller

import (
	"errors"
	"net/http"

	"maintenance-marketplace-api/internal/entity"
	"maintenance-marketplace-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
	"github.com/shopspring/decimal"
)

type counterProposalRoutesHandler struct {
	negotiationService service.Negotiation
	validate           *validator.Validate
}

func newCounterProposalRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *counterProposalRoutesHandler {
	h := &counterProposalRoutesHandler{negotiationService: services.Negotiation, validate: v}
	outer.POST("/quotes/:quoteId/counters/new", h.PostCounterProposal)
	outer.PUT("/counters/:counterId/accept", h.AcceptCounterProposal)
	outer.PUT("/counters/:counterId/decline", h.DeclineCounterProposal)
	outer.POST("/counters/:counterId/counter", h.CounterTheCounter)

	return h
}

type postCounterProposalInput struct {
	ProposedBy        string `json:"proposedBy" validate:"required,uuid"`
	ProposerParty     string `json:"proposerParty" validate:"required,oneof=Owner Contractor"`
	ProposedTotal     string `json:"proposedTotal" validate:"max=30"`
	ProposedStartDate string `json:"proposedStartDate" validate:"max=40"`
	ProposedEndDate   string `json:"proposedEndDate" validate:"max=40"`
	Message           string `json:"message" validate:"max=1000"`
}

func (h *counterProposalRoutesHandler) bindCounterProposalInput(c echo.Context, input *postCounterProposalInput) (*entity.ProposeCounterInput, error) {
	if err := c.Bind(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return nil, e
		}

		return nil, err
	}

	if err := h.validate.Struct(*input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return nil, e
		}

		return nil, err
	}

	model := &entity.ProposeCounterInput{
		ProposedBy:    input.ProposedBy,
		ProposerParty: input.ProposerParty,
		Message:       input.Message,
	}

	if input.ProposedTotal != "" {
		total, err := decimal.NewFromString(input.ProposedTotal)
		if err != nil {
			if e := c.JSON(http.StatusBadRequest, errorResponse{"'proposedTotal': should be a decimal amount"}); e != nil {
				return nil, e
			}

			return nil, err
		}
		model.ProposedTotal = &total
	}

	var err error
	if model.ProposedStartDate, err = parseOptionalTime(input.ProposedStartDate); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"'proposedStartDate': should be an RFC3339 timestamp"}); e != nil {
			return nil, e
		}

		return nil, err
	}
	if model.ProposedEndDate, err = parseOptionalTime(input.ProposedEndDate); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"'proposedEndDate': should be an RFC3339 timestamp"}); e != nil {
			return nil, e
		}

		return nil, err
	}

	return model, nil
}

// /quotes/:quoteId/counters/new
func (h *counterProposalRoutesHandler) PostCounterProposal(c echo.Context) error {
	var input postCounterProposalInput
	model, err := h.bindCounterProposalInput(c, &input)
	if model == nil {
		return err
	}
	model.QuoteId = c.Param("quoteId")

	counter, err := h.negotiationService.ProposeCounter(c.Request().Context(), model)
	if err == nil {
		if e := c.JSON(http.StatusOK, counter); e != nil {
			return e
		}

		return nil
	}

	return h.writeCounterError(c, err)
}

type counterIdInput struct {
	CounterId string `param:"counterId" validate:"required,max=100"`
}

// /counters/:counterId/accept
func (h *counterProposalRoutesHandler) AcceptCounterProposal(c echo.Context) error {
	input := counterIdInput{CounterId: c.Param("counterId")}
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	quote, err := h.negotiationService.AcceptCounter(c.Request().Context(), input.CounterId)
	if err == nil {
		if e := c.JSON(http.StatusOK, quote); e != nil {
			return e
		}

		return nil
	}

	return h.writeCounterError(c, err)
}

type declineCounterInput struct {
	CounterId string `param:"counterId" validate:"required,max=100"`
	Reason    string `query:"reason" validate:"max=500"`
}

// /counters/:counterId/decline
func (h *counterProposalRoutesHandler) DeclineCounterProposal(c echo.Context) error {
	input := declineCounterInput{CounterId: c.Param("counterId"), Reason: c.QueryParam("reason")}
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	counter, err := h.negotiationService.DeclineCounter(c.Request().Context(), input.CounterId, input.Reason)
	if err == nil {
		if e := c.JSON(http.StatusOK, counter); e != nil {
			return e
		}

		return nil
	}

	return h.writeCounterError(c, err)
}

// /counters/:counterId/counter
func (h *counterProposalRoutesHandler) CounterTheCounter(c echo.Context) error {
	counterId := c.Param("counterId")
	if err := h.validate.Struct(counterIdInput{CounterId: counterId}); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	// The quote id is resolved from the counter being answered.
	var input postCounterProposalInput
	model, err := h.bindCounterProposalInput(c, &input)
	if model == nil {
		return err
	}

	counter, err := h.negotiationService.CounterTheCounter(c.Request().Context(), counterId, model)
	if err == nil {
		if e := c.JSON(http.StatusOK, counter); e != nil {
			return e
		}

		return nil
	}

	return h.writeCounterError(c, err)
}

func (h *counterProposalRoutesHandler) writeCounterError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrQuoteNotFound):
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no quote with given id"}); e != nil {
			return e
		}
	case errors.Is(err, service.ErrCounterNotFound):
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no counter-proposal with given id"}); e != nil {
			return e
		}
	case errors.Is(err, service.ErrInvalidTransition):
		if e := c.JSON(http.StatusConflict, errorResponse{upperFirst(err.Error())}); e != nil {
			return e
		}
	case errors.Is(err, service.ErrConflict):
		if e := c.JSON(http.StatusConflict, errorResponse{"Quote was modified concurrently, refresh and retry"}); e != nil {
			return e
		}
	case errors.Is(err, service.ErrEmptyCounterTerms),
		errors.Is(err, service.ErrInvalidTotal),
		errors.Is(err, service.ErrInvalidDateRange):
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

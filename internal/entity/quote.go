package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// db model
type Quote struct {
	Id           uuid.UUID
	CaseId       uuid.UUID
	ContractorId uuid.UUID
	Total        decimal.Decimal
	StartDate    *time.Time
	EndDate      *time.Time
	ExpiresAt    *time.Time
	Status       string
	// DeclinedBySystem marks declines applied as a side effect of a sibling's
	// acceptance; only those are reverted when the approval is cancelled.
	DeclinedBySystem bool
	DeclineReason    string
	ApprovedAt       *time.Time
	DeclinedAt       *time.Time
	CreatedAt        time.Time
}

// service + repo input model
type CreateQuoteInput struct {
	CaseId       string // given
	ContractorId string // given
	Total        decimal.Decimal
	StartDate    *time.Time
	EndDate      *time.Time
	ExpiresAt    *time.Time
	Status       string // should be set: "Draft"
	// Id UUID sets automatically
	// CreatedAt sets automatically
}

// controller model
type QuoteOutputModel struct {
	Id               string                       `json:"id"`
	CaseId           string                       `json:"caseId"`
	ContractorId     string                       `json:"contractorId"`
	Total            string                       `json:"total"`
	StartDate        string                       `json:"startDate,omitempty"`
	EndDate          string                       `json:"endDate,omitempty"`
	ExpiresAt        string                       `json:"expiresAt,omitempty"`
	Status           string                       `json:"status"`
	DeclineReason    string                       `json:"declineReason,omitempty"`
	ApprovedAt       string                       `json:"approvedAt,omitempty"`
	DeclinedAt       string                       `json:"declinedAt,omitempty"`
	CreatedAt        string                       `json:"createdAt"`
	CounterProposals []CounterProposalOutputModel `json:"counterProposals,omitempty"`
}

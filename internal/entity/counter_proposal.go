package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// db model
type CounterProposal struct {
	Id            uuid.UUID
	QuoteId       uuid.UUID
	ProposedBy    uuid.UUID
	ProposerParty string
	// Nil proposed fields mean "no change" to the corresponding quote term.
	ProposedTotal     *decimal.Decimal
	ProposedStartDate *time.Time
	ProposedEndDate   *time.Time
	Message           string
	Status            string
	DeclineReason     string
	CreatedAt         time.Time
	ResolvedAt        *time.Time
}

// service + repo input model
type ProposeCounterInput struct {
	QuoteId           string // given
	ProposedBy        string // given
	ProposerParty     string // given: "Owner" or "Contractor"
	ProposedTotal     *decimal.Decimal
	ProposedStartDate *time.Time
	ProposedEndDate   *time.Time
	Message           string
	Status            string // should be set: "Pending"
	// Id UUID sets automatically
	// CreatedAt sets automatically
}

// controller model
type CounterProposalOutputModel struct {
	Id                string `json:"id"`
	QuoteId           string `json:"quoteId"`
	ProposedBy        string `json:"proposedBy"`
	ProposerParty     string `json:"proposerParty"`
	ProposedTotal     string `json:"proposedTotal,omitempty"`
	ProposedStartDate string `json:"proposedStartDate,omitempty"`
	ProposedEndDate   string `json:"proposedEndDate,omitempty"`
	Message           string `json:"message,omitempty"`
	Status            string `json:"status"`
	DeclineReason     string `json:"declineReason,omitempty"`
	CreatedAt         string `json:"createdAt"`
	ResolvedAt        string `json:"resolvedAt,omitempty"`
}

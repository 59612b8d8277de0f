package entity

import (
	"time"

	"github.com/google/uuid"
)

// db model
type Case struct {
	Id                   uuid.UUID
	OrganizationId       uuid.UUID
	Title                string
	Category             string
	Status               string
	AssignedContractorId *uuid.UUID
	CreatedAt            time.Time
}

// service + repo input model, used by external case-creation collaborators and fixtures
type CreateCaseInput struct {
	OrganizationId string // given
	Title          string // given
	Category       string // given
	Status         string // should be set: "New"
	// Id UUID sets automatically
	// CreatedAt sets automatically
}

// controller model
type CaseOutputModel struct {
	Id                   string `json:"id"`
	OrganizationId       string `json:"organizationId"`
	Title                string `json:"title"`
	Category             string `json:"category"`
	Status               string `json:"status"`
	AssignedContractorId string `json:"assignedContractorId,omitempty"`
	CreatedAt            string `json:"createdAt"`
}

// controller model: the case combined with its quotes
type CaseProjectionOutputModel struct {
	Case   CaseOutputModel    `json:"case"`
	Quotes []QuoteOutputModel `json:"quotes"`
}

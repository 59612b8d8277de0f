package entity

import "github.com/google/uuid"

// Organization-level approval configuration. Read-only input to ranking,
// never mutated by this service.
type ApprovalPolicy struct {
	OrganizationId       uuid.UUID
	InvolvementMode      string
	TrustedContractorIds []uuid.UUID
}

func (p *ApprovalPolicy) IsTrusted(contractorId uuid.UUID) bool {
	for _, id := range p.TrustedContractorIds {
		if id == contractorId {
			return true
		}
	}

	return false
}

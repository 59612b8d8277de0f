package service

import (
	"time"

	"maintenance-marketplace-api/internal/entity"
)

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.Format(time.RFC3339)
}

func mapCase(c *entity.Case) *entity.CaseOutputModel {
	out := &entity.CaseOutputModel{
		Id:             c.Id.String(),
		OrganizationId: c.OrganizationId.String(),
		Title:          c.Title,
		Category:       c.Category,
		Status:         c.Status,
		CreatedAt:      c.CreatedAt.Format(time.RFC3339),
	}
	if c.AssignedContractorId != nil {
		out.AssignedContractorId = c.AssignedContractorId.String()
	}

	return out
}

func mapQuote(q *entity.Quote, counters []entity.CounterProposal) *entity.QuoteOutputModel {
	return &entity.QuoteOutputModel{
		Id:               q.Id.String(),
		CaseId:           q.CaseId.String(),
		ContractorId:     q.ContractorId.String(),
		Total:            q.Total.String(),
		StartDate:        formatTime(q.StartDate),
		EndDate:          formatTime(q.EndDate),
		ExpiresAt:        formatTime(q.ExpiresAt),
		Status:           q.Status,
		DeclineReason:    q.DeclineReason,
		ApprovedAt:       formatTime(q.ApprovedAt),
		DeclinedAt:       formatTime(q.DeclinedAt),
		CreatedAt:        q.CreatedAt.Format(time.RFC3339),
		CounterProposals: mapCounterProposals(counters),
	}
}

func mapCounterProposal(cp *entity.CounterProposal) *entity.CounterProposalOutputModel {
	out := &entity.CounterProposalOutputModel{
		Id:                cp.Id.String(),
		QuoteId:           cp.QuoteId.String(),
		ProposedBy:        cp.ProposedBy.String(),
		ProposerParty:     cp.ProposerParty,
		ProposedStartDate: formatTime(cp.ProposedStartDate),
		ProposedEndDate:   formatTime(cp.ProposedEndDate),
		Message:           cp.Message,
		Status:            cp.Status,
		DeclineReason:     cp.DeclineReason,
		CreatedAt:         cp.CreatedAt.Format(time.RFC3339),
		ResolvedAt:        formatTime(cp.ResolvedAt),
	}
	if cp.ProposedTotal != nil {
		out.ProposedTotal = cp.ProposedTotal.String()
	}

	return out
}

func mapCounterProposals(counters []entity.CounterProposal) []entity.CounterProposalOutputModel {
	if len(counters) == 0 {
		return nil
	}

	s := make([]entity.CounterProposalOutputModel, 0, len(counters))
	for _, cp := range counters {
		s = append(s, *mapCounterProposal(&cp))
	}

	return s
}

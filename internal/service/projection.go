package service

import (
	"context"
	"errors"

	"maintenance-marketplace-api/internal/entity"
	"maintenance-marketplace-api/internal/repo"
	"maintenance-marketplace-api/internal/repo/repo_errors"
)

// ProjectionService is the read-only view of a case together with its quotes.
// The negotiation engine validates state against it before every mutation and
// the controller exposes it as the case detail read model.
type ProjectionService struct {
	caseRepo    repo.Case
	quoteRepo   repo.Quote
	counterRepo repo.CounterProposal
}

func NewProjectionService(repos *repo.Repositories) *ProjectionService {
	return &ProjectionService{
		caseRepo:    repos.Case,
		quoteRepo:   repos.Quote,
		counterRepo: repos.CounterProposal,
	}
}

func (s *ProjectionService) Load(ctx context.Context, caseId string) (*entity.Case, []entity.Quote, error) {
	c, err := s.caseRepo.GetCaseById(ctx, caseId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, nil, ErrCaseNotFound
		}

		return nil, nil, err
	}

	quotes, err := s.quoteRepo.GetCaseQuotes(ctx, caseId)
	if err != nil {
		return nil, nil, err
	}

	return c, quotes, nil
}

func (s *ProjectionService) GetCaseProjection(ctx context.Context, caseId string) (*entity.CaseProjectionOutputModel, error) {
	c, quotes, err := s.Load(ctx, caseId)
	if err != nil {
		return nil, err
	}

	out := &entity.CaseProjectionOutputModel{
		Case:   *mapCase(c),
		Quotes: make([]entity.QuoteOutputModel, 0, len(quotes)),
	}

	for i := range quotes {
		counters, err := s.counterRepo.GetQuoteCounterProposals(ctx, quotes[i].Id.String())
		if err != nil {
			return nil, err
		}
		out.Quotes = append(out.Quotes, *mapQuote(&quotes[i], counters))
	}

	return out, nil
}

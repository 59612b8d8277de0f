package service

import (
	"context"
	"errors"

	"maintenance-marketplace-api/internal/common"
	"maintenance-marketplace-api/internal/entity"
	"maintenance-marketplace-api/internal/repo"
	"maintenance-marketplace-api/internal/repo/repo_errors"
)

// CaseService handles case intake. Lifecycle transitions past New happen
// through the negotiation engine, never here.
type CaseService struct {
	caseRepo repo.Case
	notifier Notifier
}

func NewCaseService(repos *repo.Repositories, notifier Notifier) *CaseService {
	return &CaseService{caseRepo: repos.Case, notifier: notifier}
}

func (s *CaseService) CreateCase(ctx context.Context, input *entity.CreateCaseInput) (*entity.CaseOutputModel, error) {
	input.Status = common.CaseNew
	id, err := s.caseRepo.CreateCase(ctx, input)
	if err != nil {
		return nil, err
	}

	c, err := s.caseRepo.GetCaseById(ctx, id.String())
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrCaseNotFound
		}

		return nil, err
	}
	s.notifier.CaseCreated(ctx, c, "new maintenance case: "+c.Title)

	return mapCase(c), nil
}

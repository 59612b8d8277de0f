package service

import (
	"context"
	"errors"

	"maintenance-marketplace-api/internal/common"
	"maintenance-marketplace-api/internal/entity"
	"maintenance-marketplace-api/internal/repo"
	"maintenance-marketplace-api/internal/repo/repo_errors"

	"github.com/google/uuid"
)

// PolicyService resolves an organization's involvement mode and trusted
// contractor set. Pure lookup, no side effects.
type PolicyService struct {
	policyRepo repo.Policy
}

func NewPolicyService(repos *repo.Repositories) *PolicyService {
	return &PolicyService{policyRepo: repos.Policy}
}

func (s *PolicyService) Resolve(ctx context.Context, organizationId uuid.UUID) (*entity.ApprovalPolicy, error) {
	policy, err := s.policyRepo.GetApprovalPolicy(ctx, organizationId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			// Organizations without explicit configuration negotiate balanced.
			return &entity.ApprovalPolicy{
				OrganizationId:       organizationId,
				InvolvementMode:      common.ModeBalanced,
				TrustedContractorIds: []uuid.UUID{},
			}, nil
		}

		return nil, err
	}

	if policy.InvolvementMode == "" {
		policy.InvolvementMode = common.ModeBalanced
	}

	return policy, nil
}

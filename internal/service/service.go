package service

import (
	"context"

	"maintenance-marketplace-api/internal/entity"
	"maintenance-marketplace-api/internal/repo"

	"github.com/google/uuid"
)

type Diagnostics interface {
	Ping() error
}

type Cases interface {
	CreateCase(ctx context.Context, input *entity.CreateCaseInput) (*entity.CaseOutputModel, error)
}

type Ranking interface {
	RankCandidates(ctx context.Context, caseId string, category string) (*entity.RankingOutputModel, error)
}

type Negotiation interface {
	CreateQuote(ctx context.Context, input *entity.CreateQuoteInput) (*entity.QuoteOutputModel, error)
	SendQuote(ctx context.Context, quoteId string) (*entity.QuoteOutputModel, error)

	ProposeCounter(ctx context.Context, input *entity.ProposeCounterInput) (*entity.CounterProposalOutputModel, error)
	AcceptCounter(ctx context.Context, counterId string) (*entity.QuoteOutputModel, error)
	DeclineCounter(ctx context.Context, counterId string, reason string) (*entity.CounterProposalOutputModel, error)
	CounterTheCounter(ctx context.Context, counterId string, input *entity.ProposeCounterInput) (*entity.CounterProposalOutputModel, error)

	AcceptQuote(ctx context.Context, caseId string, quoteId string) (*entity.QuoteOutputModel, error)
	DeclineQuote(ctx context.Context, caseId string, quoteId string, reason string) (*entity.QuoteOutputModel, error)
	CancelApproval(ctx context.Context, caseId string, quoteId string) (*entity.QuoteOutputModel, error)
	ExpireQuote(ctx context.Context, quoteId string) (*entity.QuoteOutputModel, error)
}

type Projection interface {
	GetCaseProjection(ctx context.Context, caseId string) (*entity.CaseProjectionOutputModel, error)
}

type PolicyResolver interface {
	Resolve(ctx context.Context, organizationId uuid.UUID) (*entity.ApprovalPolicy, error)
}

type Services struct {
	Diagnostics Diagnostics
	Cases       Cases
	Ranking     Ranking
	Negotiation Negotiation
	Projection  Projection
	Policy      PolicyResolver
}

func NewServices(repos *repo.Repositories, notifier Notifier) *Services {
	policy := NewPolicyService(repos)
	projection := NewProjectionService(repos)

	return &Services{
		Diagnostics: NewDiagnosticsService(repos),
		Cases:       NewCaseService(repos, notifier),
		Ranking:     NewRankingService(repos, policy),
		Negotiation: NewNegotiationService(repos, projection, notifier),
		Projection:  projection,
		Policy:      policy,
	}
}

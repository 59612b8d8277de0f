package repo

import (
	"context"
	"time"

	"maintenance-marketplace-api/internal/entity"
	"maintenance-marketplace-api/internal/repo/pgdb"
	"maintenance-marketplace-api/pkg/postgres"

	"github.com/google/uuid"
)

type Diagnostics interface {
	Ping() error
}

type Case interface {
	CreateCase(ctx context.Context, input *entity.CreateCaseInput) (uuid.UUID, error)
	GetCaseById(ctx context.Context, id string) (*entity.Case, error)
}

type Quote interface {
	CreateQuote(ctx context.Context, input *entity.CreateQuoteInput) (uuid.UUID, error)
	GetQuoteById(ctx context.Context, id string) (*entity.Quote, error)
	GetCaseQuotes(ctx context.Context, caseId string) ([]entity.Quote, error)

	// SendQuote flips Draft to Sent; zero matched rows yield ErrConflict.
	SendQuote(ctx context.Context, id string) error

	// AcceptQuote is the transactional acceptance command: approve the target
	// quote (guarded on Sent and not past expiry), decline every other Sent
	// quote on the case marking it declined-by-system, assign the contractor
	// and move the case to InReview (guarded on New). Any guard that matches
	// zero rows rolls the whole unit back with ErrConflict.
	AcceptQuote(ctx context.Context, caseId string, quoteId string, now time.Time) error

	// CancelApproval is the transactional inverse: cancel the approved quote,
	// revert declined-by-system siblings to Sent, reset the case to New and
	// clear the assignment.
	CancelApproval(ctx context.Context, caseId string, quoteId string) error

	DeclineQuote(ctx context.Context, id string, reason string, now time.Time) error
	ExpireQuote(ctx context.Context, id string, now time.Time) error
}

type CounterProposal interface {
	// CreateCounterProposal inserts a new Pending counter and supersedes any
	// previously Pending counter on the same quote in one transaction.
	CreateCounterProposal(ctx context.Context, input *entity.ProposeCounterInput) (uuid.UUID, error)
	GetCounterProposalById(ctx context.Context, id string) (*entity.CounterProposal, error)
	GetQuoteCounterProposals(ctx context.Context, quoteId string) ([]entity.CounterProposal, error)

	// AcceptCounterProposal resolves the counter and amends the parent
	// quote's terms with the counter's non-null fields in one transaction.
	// The quote's own status is left untouched.
	AcceptCounterProposal(ctx context.Context, id string, now time.Time) error
	DeclineCounterProposal(ctx context.Context, id string, reason string, now time.Time) error
}

type Policy interface {
	GetApprovalPolicy(ctx context.Context, organizationId uuid.UUID) (*entity.ApprovalPolicy, error)
	GetOrganizationContractorIds(ctx context.Context, organizationId uuid.UUID) ([]uuid.UUID, error)
	GetFavoriteContractorIds(ctx context.Context, organizationId uuid.UUID) ([]uuid.UUID, error)
	GetContractorProfiles(ctx context.Context, ids []uuid.UUID) ([]entity.ContractorProfile, error)
}

type Repositories struct {
	Diagnostics
	Case
	Quote
	CounterProposal
	Policy
}

func NewRepositories(p *postgres.Postgres) *Repositories {
	return &Repositories{
		Diagnostics:     pgdb.NewDiagnosticsRepo(p),
		Case:            pgdb.NewCaseRepo(p),
		Quote:           pgdb.NewQuoteRepo(p),
		CounterProposal: pgdb.NewCounterProposalRepo(p),
		Policy:          pgdb.NewPolicyRepo(p),
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maintenance-marketplace-api/internal/common"
	"maintenance-marketplace-api/internal/entity"
	"maintenance-marketplace-api/internal/repo"
	"maintenance-marketplace-api/internal/repo/repo_errors"
)

// NegotiationService drives the quote lifecycle. State guards run twice: a
// readable pre-check here that produces a precise error, and the repository's
// own guarded writes that keep concurrent callers from racing past each other.
type NegotiationService struct {
	caseRepo    repo.Case
	quoteRepo   repo.Quote
	counterRepo repo.CounterProposal

	projection *ProjectionService
	notifier   Notifier
}

func NewNegotiationService(repos *repo.Repositories, projection *ProjectionService, notifier Notifier) *NegotiationService {
	return &NegotiationService{
		caseRepo:    repos.Case,
		quoteRepo:   repos.Quote,
		counterRepo: repos.CounterProposal,
		projection:  projection,
		notifier:    notifier,
	}
}

func (s *NegotiationService) CreateQuote(ctx context.Context, input *entity.CreateQuoteInput) (*entity.QuoteOutputModel, error) {
	c, err := s.caseRepo.GetCaseById(ctx, input.CaseId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrCaseNotFound
		}

		return nil, err
	}
	if c.Status != common.CaseNew {
		return nil, fmt.Errorf("%w: case is %s", ErrInvalidTransition, c.Status)
	}

	if err := validateQuoteTerms(input.Total.IsPositive(), input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(time.Now()) {
		return nil, ErrInvalidExpiry
	}

	input.Status = common.QuoteDraft
	id, err := s.quoteRepo.CreateQuote(ctx, input)
	if err != nil {
		return nil, err
	}

	return s.quoteOutput(ctx, id.String())
}

func (s *NegotiationService) SendQuote(ctx context.Context, quoteId string) (*entity.QuoteOutputModel, error) {
	q, err := s.getQuote(ctx, quoteId)
	if err != nil {
		return nil, err
	}
	if q.Status != common.QuoteDraft {
		return nil, fmt.Errorf("%w: quote is %s", ErrInvalidTransition, q.Status)
	}

	if err := s.quoteRepo.SendQuote(ctx, quoteId); err != nil {
		return nil, translateWriteError(err, ErrQuoteNotFound)
	}

	return s.quoteOutput(ctx, quoteId)
}

func (s *NegotiationService) ProposeCounter(ctx context.Context, input *entity.ProposeCounterInput) (*entity.CounterProposalOutputModel, error) {
	q, err := s.getQuote(ctx, input.QuoteId)
	if err != nil {
		return nil, err
	}
	if q.Status != common.QuoteSent {
		return nil, fmt.Errorf("%w: quote is %s", ErrInvalidTransition, q.Status)
	}

	if err := validateCounterTerms(input); err != nil {
		return nil, err
	}

	input.Status = common.CounterPending
	id, err := s.counterRepo.CreateCounterProposal(ctx, input)
	if err != nil {
		return nil, translateWriteError(err, ErrQuoteNotFound)
	}

	cp, err := s.getCounter(ctx, id.String())
	if err != nil {
		return nil, err
	}
	s.notifier.CounterProposalReceived(ctx, cp, "new counter-proposal on quote "+input.QuoteId)

	return mapCounterProposal(cp), nil
}

// AcceptCounter amends the parent quote's terms with the counter's proposed
// values. The quote stays Sent: agreed terms still need a formal acceptance.
func (s *NegotiationService) AcceptCounter(ctx context.Context, counterId string) (*entity.QuoteOutputModel, error) {
	cp, err := s.getCounter(ctx, counterId)
	if err != nil {
		return nil, err
	}
	if cp.Status != common.CounterPending {
		return nil, fmt.Errorf("%w: counter-proposal is %s", ErrInvalidTransition, cp.Status)
	}

	q, err := s.getQuote(ctx, cp.QuoteId.String())
	if err != nil {
		return nil, err
	}
	if q.Status != common.QuoteSent {
		return nil, fmt.Errorf("%w: quote is %s", ErrInvalidTransition, q.Status)
	}

	if err := s.counterRepo.AcceptCounterProposal(ctx, counterId, time.Now()); err != nil {
		return nil, translateWriteError(err, ErrCounterNotFound)
	}

	return s.quoteOutput(ctx, cp.QuoteId.String())
}

func (s *NegotiationService) DeclineCounter(ctx context.Context, counterId string, reason string) (*entity.CounterProposalOutputModel, error) {
	cp, err := s.getCounter(ctx, counterId)
	if err != nil {
		return nil, err
	}
	if cp.Status != common.CounterPending {
		return nil, fmt.Errorf("%w: counter-proposal is %s", ErrInvalidTransition, cp.Status)
	}

	if err := s.counterRepo.DeclineCounterProposal(ctx, counterId, reason, time.Now()); err != nil {
		return nil, translateWriteError(err, ErrCounterNotFound)
	}

	cp, err = s.getCounter(ctx, counterId)
	if err != nil {
		return nil, err
	}

	return mapCounterProposal(cp), nil
}

// CounterTheCounter answers a pending counter with a counter of one's own on
// the same quote; creating it supersedes the one being answered.
func (s *NegotiationService) CounterTheCounter(ctx context.Context, counterId string, input *entity.ProposeCounterInput) (*entity.CounterProposalOutputModel, error) {
	cp, err := s.getCounter(ctx, counterId)
	if err != nil {
		return nil, err
	}
	if cp.Status != common.CounterPending {
		return nil, fmt.Errorf("%w: counter-proposal is %s", ErrInvalidTransition, cp.Status)
	}

	input.QuoteId = cp.QuoteId.String()

	return s.ProposeCounter(ctx, input)
}

func (s *NegotiationService) AcceptQuote(ctx context.Context, caseId string, quoteId string) (*entity.QuoteOutputModel, error) {
	c, quotes, err := s.projection.Load(ctx, caseId)
	if err != nil {
		return nil, err
	}
	q := findQuote(quotes, quoteId)
	if q == nil {
		return nil, ErrQuoteNotFound
	}

	now := time.Now()
	if q.Status == common.QuoteSent && q.ExpiresAt != nil && !q.ExpiresAt.After(now) {
		// Past-due quotes expire on touch.
		if err := s.quoteRepo.ExpireQuote(ctx, quoteId, now); err != nil && !errors.Is(err, repo_errors.ErrConflict) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: quote is %s", ErrInvalidTransition, common.QuoteExpired)
	}
	if q.Status != common.QuoteSent {
		return nil, fmt.Errorf("%w: quote is %s", ErrInvalidTransition, q.Status)
	}
	if c.Status != common.CaseNew {
		return nil, fmt.Errorf("%w: case is %s", ErrInvalidTransition, c.Status)
	}

	if err := s.quoteRepo.AcceptQuote(ctx, caseId, quoteId, now); err != nil {
		return nil, translateWriteError(err, ErrQuoteNotFound)
	}

	_, quotes, err = s.projection.Load(ctx, caseId)
	if err != nil {
		return nil, err
	}
	for i := range quotes {
		switch {
		case quotes[i].Id.String() == quoteId:
			s.notifier.QuoteAccepted(ctx, &quotes[i], "quote accepted for case "+caseId)
		case quotes[i].DeclinedBySystem:
			s.notifier.QuoteDeclined(ctx, &quotes[i], "quote declined: another quote was accepted")
		}
	}

	return s.quoteOutput(ctx, quoteId)
}

func (s *NegotiationService) DeclineQuote(ctx context.Context, caseId string, quoteId string, reason string) (*entity.QuoteOutputModel, error) {
	_, quotes, err := s.projection.Load(ctx, caseId)
	if err != nil {
		return nil, err
	}
	q := findQuote(quotes, quoteId)
	if q == nil {
		return nil, ErrQuoteNotFound
	}
	if q.Status != common.QuoteSent {
		return nil, fmt.Errorf("%w: quote is %s", ErrInvalidTransition, q.Status)
	}

	if err := s.quoteRepo.DeclineQuote(ctx, quoteId, reason, time.Now()); err != nil {
		return nil, translateWriteError(err, ErrQuoteNotFound)
	}

	q, err = s.getQuote(ctx, quoteId)
	if err != nil {
		return nil, err
	}
	s.notifier.QuoteDeclined(ctx, q, "quote declined for case "+caseId)

	counters, err := s.counterRepo.GetQuoteCounterProposals(ctx, quoteId)
	if err != nil {
		return nil, err
	}

	return mapQuote(q, counters), nil
}

func (s *NegotiationService) CancelApproval(ctx context.Context, caseId string, quoteId string) (*entity.QuoteOutputModel, error) {
	c, quotes, err := s.projection.Load(ctx, caseId)
	if err != nil {
		return nil, err
	}
	q := findQuote(quotes, quoteId)
	if q == nil {
		return nil, ErrQuoteNotFound
	}
	if q.Status != common.QuoteApproved {
		return nil, fmt.Errorf("%w: quote is %s", ErrInvalidTransition, q.Status)
	}
	if c.Status != common.CaseInReview {
		return nil, fmt.Errorf("%w: case is %s", ErrInvalidTransition, c.Status)
	}

	if err := s.quoteRepo.CancelApproval(ctx, caseId, quoteId); err != nil {
		return nil, translateWriteError(err, ErrQuoteNotFound)
	}

	return s.quoteOutput(ctx, quoteId)
}

func (s *NegotiationService) ExpireQuote(ctx context.Context, quoteId string) (*entity.QuoteOutputModel, error) {
	q, err := s.getQuote(ctx, quoteId)
	if err != nil {
		return nil, err
	}
	if q.Status != common.QuoteSent {
		return nil, fmt.Errorf("%w: quote is %s", ErrInvalidTransition, q.Status)
	}
	if q.ExpiresAt == nil || q.ExpiresAt.After(time.Now()) {
		return nil, fmt.Errorf("%w: quote has not reached its expiration", ErrInvalidTransition)
	}

	if err := s.quoteRepo.ExpireQuote(ctx, quoteId, time.Now()); err != nil {
		return nil, translateWriteError(err, ErrQuoteNotFound)
	}

	return s.quoteOutput(ctx, quoteId)
}

func (s *NegotiationService) getQuote(ctx context.Context, quoteId string) (*entity.Quote, error) {
	q, err := s.quoteRepo.GetQuoteById(ctx, quoteId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrQuoteNotFound
		}

		return nil, err
	}

	return q, nil
}

func (s *NegotiationService) getCounter(ctx context.Context, counterId string) (*entity.CounterProposal, error) {
	cp, err := s.counterRepo.GetCounterProposalById(ctx, counterId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrCounterNotFound
		}

		return nil, err
	}

	return cp, nil
}

func (s *NegotiationService) quoteOutput(ctx context.Context, quoteId string) (*entity.QuoteOutputModel, error) {
	q, err := s.getQuote(ctx, quoteId)
	if err != nil {
		return nil, err
	}

	counters, err := s.counterRepo.GetQuoteCounterProposals(ctx, quoteId)
	if err != nil {
		return nil, err
	}

	return mapQuote(q, counters), nil
}

func findQuote(quotes []entity.Quote, quoteId string) *entity.Quote {
	for i := range quotes {
		if quotes[i].Id.String() == quoteId {
			return &quotes[i]
		}
	}

	return nil
}

func translateWriteError(err error, notFound error) error {
	switch {
	case errors.Is(err, repo_errors.ErrNotFound):
		return notFound
	case errors.Is(err, repo_errors.ErrConflict):
		return ErrConflict
	default:
		return err
	}
}

func validateQuoteTerms(totalPositive bool, start, end *time.Time) error {
	if !totalPositive {
		return ErrInvalidTotal
	}
	if start != nil && end != nil && start.After(*end) {
		return ErrInvalidDateRange
	}

	return nil
}

func validateCounterTerms(input *entity.ProposeCounterInput) error {
	if input.ProposedTotal == nil && input.ProposedStartDate == nil && input.ProposedEndDate == nil {
		return ErrEmptyCounterTerms
	}
	if input.ProposedTotal != nil && !input.ProposedTotal.IsPositive() {
		return ErrInvalidTotal
	}
	if input.ProposedStartDate != nil && input.ProposedEndDate != nil &&
		input.ProposedStartDate.After(*input.ProposedEndDate) {
		return ErrInvalidDateRange
	}

	return nil
}

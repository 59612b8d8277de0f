// Package memory holds an in-memory implementation of the repository
// interfaces with the same guarded-update semantics as the pgdb layer.
// Service tests, including the concurrent-acceptance ones, run against it.
package memory

import (
	"context"
	"sync"
	"time"

	"maintenance-marketplace-api/internal/common"
	"maintenance-marketplace-api/internal/entity"
	"maintenance-marketplace-api/internal/repo"
	"maintenance-marketplace-api/internal/repo/repo_errors"

	"github.com/google/uuid"
)

type Store struct {
	mu           sync.Mutex
	cases        map[uuid.UUID]*entity.Case
	quotes       map[uuid.UUID]*entity.Quote
	quoteOrder   []uuid.UUID
	counters     map[uuid.UUID]*entity.CounterProposal
	counterOrder []uuid.UUID
	policies     map[uuid.UUID]*entity.ApprovalPolicy
	contractors  map[uuid.UUID]*entity.ContractorProfile
	linkOrder    map[uuid.UUID][]uuid.UUID
	favorites    map[uuid.UUID][]uuid.UUID
}

func NewStore() *Store {
	return &Store{
		cases:       map[uuid.UUID]*entity.Case{},
		quotes:      map[uuid.UUID]*entity.Quote{},
		counters:    map[uuid.UUID]*entity.CounterProposal{},
		policies:    map[uuid.UUID]*entity.ApprovalPolicy{},
		contractors: map[uuid.UUID]*entity.ContractorProfile{},
		linkOrder:   map[uuid.UUID][]uuid.UUID{},
		favorites:   map[uuid.UUID][]uuid.UUID{},
	}
}

func (s *Store) Repositories() *repo.Repositories {
	return &repo.Repositories{
		Diagnostics:     s,
		Case:            s,
		Quote:           s,
		CounterProposal: s,
		Policy:          s,
	}
}

func (s *Store) Ping() error {
	return nil
}

// seeding helpers

func (s *Store) SeedCase(c entity.Case) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := c
	s.cases[c.Id] = &stored
}

func (s *Store) SeedQuote(q entity.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := q
	s.quotes[q.Id] = &stored
	s.quoteOrder = append(s.quoteOrder, q.Id)
}

func (s *Store) SeedPolicy(p entity.ApprovalPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := p
	s.policies[p.OrganizationId] = &stored
}

func (s *Store) SeedContractor(p entity.ContractorProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := p
	s.contractors[p.Id] = &stored
	s.linkOrder[p.OrganizationId] = append(s.linkOrder[p.OrganizationId], p.Id)
}

func (s *Store) SeedFavorite(organizationId uuid.UUID, contractorId uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favorites[organizationId] = append(s.favorites[organizationId], contractorId)
}

// repo.Case

func (s *Store) CreateCase(ctx context.Context, input *entity.CreateCaseInput) (uuid.UUID, error) {
	_ = ctx
	orgId, err := uuid.Parse(input.OrganizationId)
	if err != nil {
		return uuid.Nil, err
	}

	status := input.Status
	if status == "" {
		status = common.CaseNew
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.cases[id] = &entity.Case{
		Id:             id,
		OrganizationId: orgId,
		Title:          input.Title,
		Category:       input.Category,
		Status:         status,
		CreatedAt:      time.Now().UTC(),
	}

	return id, nil
}

func (s *Store) GetCaseById(ctx context.Context, id string) (*entity.Case, error) {
	_ = ctx
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[uuidForm]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	out := *c
	return &out, nil
}

// repo.Quote

func (s *Store) CreateQuote(ctx context.Context, input *entity.CreateQuoteInput) (uuid.UUID, error) {
	_ = ctx
	caseUuid, err := uuid.Parse(input.CaseId)
	if err != nil {
		return uuid.Nil, err
	}

	contractorUuid, err := uuid.Parse(input.ContractorId)
	if err != nil {
		return uuid.Nil, err
	}

	status := input.Status
	if status == "" {
		status = common.QuoteDraft
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.quotes[id] = &entity.Quote{
		Id:           id,
		CaseId:       caseUuid,
		ContractorId: contractorUuid,
		Total:        input.Total,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		ExpiresAt:    input.ExpiresAt,
		Status:       status,
		CreatedAt:    time.Now().UTC(),
	}
	s.quoteOrder = append(s.quoteOrder, id)

	return id, nil
}

func (s *Store) GetQuoteById(ctx context.Context, id string) (*entity.Quote, error) {
	_ = ctx
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[uuidForm]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	out := *q
	return &out, nil
}

func (s *Store) GetCaseQuotes(ctx context.Context, caseId string) ([]entity.Quote, error) {
	_ = ctx
	uuidForm, err := uuid.Parse(caseId)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	quotes := make([]entity.Quote, 0)
	for _, id := range s.quoteOrder {
		q := s.quotes[id]
		if q.CaseId == uuidForm {
			quotes = append(quotes, *q)
		}
	}

	return quotes, nil
}

func (s *Store) SendQuote(ctx context.Context, id string) error {
	_ = ctx
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[uuidForm]
	if !ok || q.Status != common.QuoteDraft {
		return repo_errors.ErrConflict
	}
	q.Status = common.QuoteSent

	return nil
}

func (s *Store) AcceptQuote(ctx context.Context, caseId string, quoteId string, now time.Time) error {
	_ = ctx
	caseUuid, err := uuid.Parse(caseId)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	quoteUuid, err := uuid.Parse(quoteId)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quotes[quoteUuid]
	if !ok || q.CaseId != caseUuid || q.Status != common.QuoteSent {
		return repo_errors.ErrConflict
	}
	if q.ExpiresAt != nil && !q.ExpiresAt.After(now) {
		return repo_errors.ErrConflict
	}

	c, ok := s.cases[caseUuid]
	if !ok || c.Status != common.CaseNew {
		return repo_errors.ErrConflict
	}

	approvedAt := now
	q.Status = common.QuoteApproved
	q.ApprovedAt = &approvedAt

	for _, id := range s.quoteOrder {
		sibling := s.quotes[id]
		if sibling.CaseId != caseUuid || sibling.Id == quoteUuid || sibling.Status != common.QuoteSent {
			continue
		}
		declinedAt := now
		sibling.Status = common.QuoteDeclined
		sibling.DeclinedAt = &declinedAt
		sibling.DeclinedBySystem = true
	}

	contractorId := q.ContractorId
	c.Status = common.CaseInReview
	c.AssignedContractorId = &contractorId

	return nil
}

func (s *Store) CancelApproval(ctx context.Context, caseId string, quoteId string) error {
	_ = ctx
	caseUuid, err := uuid.Parse(caseId)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	quoteUuid, err := uuid.Parse(quoteId)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quotes[quoteUuid]
	if !ok || q.CaseId != caseUuid || q.Status != common.QuoteApproved {
		return repo_errors.ErrConflict
	}
	q.Status = common.QuoteCancelled

	for _, id := range s.quoteOrder {
		sibling := s.quotes[id]
		if sibling.CaseId != caseUuid || sibling.Status != common.QuoteDeclined || !sibling.DeclinedBySystem {
			continue
		}
		sibling.Status = common.QuoteSent
		sibling.DeclinedAt = nil
		sibling.DeclinedBySystem = false
		sibling.DeclineReason = ""
	}

	if c, ok := s.cases[caseUuid]; ok {
		c.Status = common.CaseNew
		c.AssignedContractorId = nil
	}

	return nil
}

func (s *Store) DeclineQuote(ctx context.Context, id string, reason string, now time.Time) error {
	_ = ctx
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[uuidForm]
	if !ok || q.Status != common.QuoteSent {
		return repo_errors.ErrConflict
	}

	declinedAt := now
	q.Status = common.QuoteDeclined
	q.DeclinedAt = &declinedAt
	q.DeclinedBySystem = false
	q.DeclineReason = reason

	return nil
}

func (s *Store) ExpireQuote(ctx context.Context, id string, now time.Time) error {
	_ = ctx
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[uuidForm]
	if !ok || q.Status != common.QuoteSent || q.ExpiresAt == nil || q.ExpiresAt.After(now) {
		return repo_errors.ErrConflict
	}
	q.Status = common.QuoteExpired

	return nil
}

// repo.CounterProposal

func (s *Store) CreateCounterProposal(ctx context.Context, input *entity.ProposeCounterInput) (uuid.UUID, error) {
	_ = ctx
	quoteUuid, err := uuid.Parse(input.QuoteId)
	if err != nil {
		return uuid.Nil, repo_errors.ErrNotFound
	}

	proposedByUuid, err := uuid.Parse(input.ProposedBy)
	if err != nil {
		return uuid.Nil, err
	}

	status := input.Status
	if status == "" {
		status = common.CounterPending
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, id := range s.counterOrder {
		cp := s.counters[id]
		if cp.QuoteId == quoteUuid && cp.Status == common.CounterPending {
			resolvedAt := now
			cp.Status = common.CounterSuperseded
			cp.ResolvedAt = &resolvedAt
		}
	}

	id := uuid.New()
	s.counters[id] = &entity.CounterProposal{
		Id:                id,
		QuoteId:           quoteUuid,
		ProposedBy:        proposedByUuid,
		ProposerParty:     input.ProposerParty,
		ProposedTotal:     input.ProposedTotal,
		ProposedStartDate: input.ProposedStartDate,
		ProposedEndDate:   input.ProposedEndDate,
		Message:           input.Message,
		Status:            status,
		CreatedAt:         now,
	}
	s.counterOrder = append(s.counterOrder, id)

	return id, nil
}

func (s *Store) GetCounterProposalById(ctx context.Context, id string) (*entity.CounterProposal, error) {
	_ = ctx
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cp, ok := s.counters[uuidForm]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	out := *cp
	return &out, nil
}

func (s *Store) GetQuoteCounterProposals(ctx context.Context, quoteId string) ([]entity.CounterProposal, error) {
	_ = ctx
	uuidForm, err := uuid.Parse(quoteId)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	counters := make([]entity.CounterProposal, 0)
	// newest first, matching the pgdb ordering
	for i := len(s.counterOrder) - 1; i >= 0; i-- {
		cp := s.counters[s.counterOrder[i]]
		if cp.QuoteId == uuidForm {
			counters = append(counters, *cp)
		}
	}

	return counters, nil
}

func (s *Store) AcceptCounterProposal(ctx context.Context, id string, now time.Time) error {
	_ = ctx
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp, ok := s.counters[uuidForm]
	if !ok || cp.Status != common.CounterPending {
		return repo_errors.ErrConflict
	}

	q, ok := s.quotes[cp.QuoteId]
	if !ok || q.Status != common.QuoteSent {
		return repo_errors.ErrConflict
	}

	resolvedAt := now
	cp.Status = common.CounterAccepted
	cp.ResolvedAt = &resolvedAt

	if cp.ProposedTotal != nil {
		q.Total = *cp.ProposedTotal
	}
	if cp.ProposedStartDate != nil {
		start := *cp.ProposedStartDate
		q.StartDate = &start
	}
	if cp.ProposedEndDate != nil {
		end := *cp.ProposedEndDate
		q.EndDate = &end
	}

	return nil
}

func (s *Store) DeclineCounterProposal(ctx context.Context, id string, reason string, now time.Time) error {
	_ = ctx
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cp, ok := s.counters[uuidForm]
	if !ok || cp.Status != common.CounterPending {
		return repo_errors.ErrConflict
	}

	resolvedAt := now
	cp.Status = common.CounterDeclined
	cp.DeclineReason = reason
	cp.ResolvedAt = &resolvedAt

	return nil
}

// repo.Policy

func (s *Store) GetApprovalPolicy(ctx context.Context, organizationId uuid.UUID) (*entity.ApprovalPolicy, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.policies[organizationId]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	out := *p
	out.TrustedContractorIds = append([]uuid.UUID(nil), p.TrustedContractorIds...)
	return &out, nil
}

func (s *Store) GetOrganizationContractorIds(ctx context.Context, organizationId uuid.UUID) ([]uuid.UUID, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uuid.UUID, 0)
	for _, id := range s.linkOrder[organizationId] {
		if s.contractors[id].Active {
			ids = append(ids, id)
		}
	}

	return ids, nil
}

func (s *Store) GetFavoriteContractorIds(ctx context.Context, organizationId uuid.UUID) ([]uuid.UUID, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]uuid.UUID(nil), s.favorites[organizationId]...), nil
}

func (s *Store) GetContractorProfiles(ctx context.Context, ids []uuid.UUID) ([]entity.ContractorProfile, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	profiles := make([]entity.ContractorProfile, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.contractors[id]; ok {
			out := *p
			out.Specialties = append([]string(nil), p.Specialties...)
			profiles = append(profiles, out)
		}
	}

	return profiles, nil
}

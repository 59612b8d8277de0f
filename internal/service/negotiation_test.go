package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"maintenance-marketplace-api/internal/common"
	"maintenance-marketplace-api/internal/entity"
	"maintenance-marketplace-api/internal/repo/memory"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type negotiationFixture struct {
	store          *memory.Store
	services       *Services
	organizationId uuid.UUID
	caseId         uuid.UUID
}

func newNegotiationFixture() *negotiationFixture {
	store := memory.NewStore()
	f := &negotiationFixture{
		store:          store,
		services:       NewServices(store.Repositories(), NewLogNotifier(zerolog.Nop())),
		organizationId: uuid.New(),
		caseId:         uuid.New(),
	}
	store.SeedCase(entity.Case{
		Id:             f.caseId,
		OrganizationId: f.organizationId,
		Title:          "Broken water heater",
		Category:       "Plumbing",
		Status:         common.CaseNew,
	})

	return f
}

func (f *negotiationFixture) seedSentQuote(total int64) uuid.UUID {
	id := uuid.New()
	f.store.SeedQuote(entity.Quote{
		Id:           id,
		CaseId:       f.caseId,
		ContractorId: uuid.New(),
		Total:        decimal.NewFromInt(total),
		Status:       common.QuoteSent,
		CreatedAt:    time.Now().UTC(),
	})

	return id
}

func (f *negotiationFixture) storedQuote(t *testing.T, id uuid.UUID) *entity.Quote {
	t.Helper()
	q, err := f.store.GetQuoteById(context.Background(), id.String())
	require.NoError(t, err)

	return q
}

func (f *negotiationFixture) storedCase(t *testing.T) *entity.Case {
	t.Helper()
	c, err := f.store.GetCaseById(context.Background(), f.caseId.String())
	require.NoError(t, err)

	return c
}

func (f *negotiationFixture) proposeCounter(t *testing.T, quoteId uuid.UUID, total int64) string {
	t.Helper()
	amount := decimal.NewFromInt(total)
	counter, err := f.services.Negotiation.ProposeCounter(context.Background(), &entity.ProposeCounterInput{
		QuoteId:       quoteId.String(),
		ProposedBy:    uuid.NewString(),
		ProposerParty: common.PartyOwner,
		ProposedTotal: &amount,
	})
	require.NoError(t, err)

	return counter.Id
}

func TestCreateQuote(t *testing.T) {
	f := newNegotiationFixture()

	quote, err := f.services.Negotiation.CreateQuote(context.Background(), &entity.CreateQuoteInput{
		CaseId:       f.caseId.String(),
		ContractorId: uuid.NewString(),
		Total:        decimal.NewFromInt(900),
	})
	require.NoError(t, err)

	assert.Equal(t, common.QuoteDraft, quote.Status)
	assert.Equal(t, "900", quote.Total)
	assert.Equal(t, f.caseId.String(), quote.CaseId)
}

func TestCreateQuote_Validation(t *testing.T) {
	f := newNegotiationFixture()
	start := time.Now().Add(48 * time.Hour)
	end := start.Add(-24 * time.Hour)
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name  string
		input entity.CreateQuoteInput
		want  error
	}{
		{
			"unknown case",
			entity.CreateQuoteInput{CaseId: uuid.NewString(), ContractorId: uuid.NewString(), Total: decimal.NewFromInt(1)},
			ErrCaseNotFound,
		},
		{
			"zero total",
			entity.CreateQuoteInput{CaseId: f.caseId.String(), ContractorId: uuid.NewString(), Total: decimal.Zero},
			ErrInvalidTotal,
		},
		{
			"negative total",
			entity.CreateQuoteInput{CaseId: f.caseId.String(), ContractorId: uuid.NewString(), Total: decimal.NewFromInt(-5)},
			ErrInvalidTotal,
		},
		{
			"start after end",
			entity.CreateQuoteInput{
				CaseId: f.caseId.String(), ContractorId: uuid.NewString(),
				Total: decimal.NewFromInt(1), StartDate: &start, EndDate: &end,
			},
			ErrInvalidDateRange,
		},
		{
			"expiry in the past",
			entity.CreateQuoteInput{
				CaseId: f.caseId.String(), ContractorId: uuid.NewString(),
				Total: decimal.NewFromInt(1), ExpiresAt: &past,
			},
			ErrInvalidExpiry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := f.services.Negotiation.CreateQuote(context.Background(), &input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateQuote_RejectedWhileCaseInReview(t *testing.T) {
	f := newNegotiationFixture()
	quoteId := f.seedSentQuote(900)
	_, err := f.services.Negotiation.AcceptQuote(context.Background(), f.caseId.String(), quoteId.String())
	require.NoError(t, err)

	_, err = f.services.Negotiation.CreateQuote(context.Background(), &entity.CreateQuoteInput{
		CaseId: f.caseId.String(), ContractorId: uuid.NewString(), Total: decimal.NewFromInt(1),
	})

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSendQuote(t *testing.T) {
	f := newNegotiationFixture()
	draft, err := f.services.Negotiation.CreateQuote(context.Background(), &entity.CreateQuoteInput{
		CaseId: f.caseId.String(), ContractorId: uuid.NewString(), Total: decimal.NewFromInt(900),
	})
	require.NoError(t, err)

	sent, err := f.services.Negotiation.SendQuote(context.Background(), draft.Id)
	require.NoError(t, err)
	assert.Equal(t, common.QuoteSent, sent.Status)

	_, err = f.services.Negotiation.SendQuote(context.Background(), draft.Id)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAcceptQuote_DeclinesSiblingsAndAssignsContractor(t *testing.T) {
	f := newNegotiationFixture()
	expensive := f.seedSentQuote(918)
	cheap := f.seedSentQuote(842)

	accepted, err := f.services.Negotiation.AcceptQuote(context.Background(), f.caseId.String(), cheap.String())
	require.NoError(t, err)

	assert.Equal(t, common.QuoteApproved, accepted.Status)
	assert.NotEmpty(t, accepted.ApprovedAt)

	sibling := f.storedQuote(t, expensive)
	assert.Equal(t, common.QuoteDeclined, sibling.Status)
	assert.True(t, sibling.DeclinedBySystem)

	c := f.storedCase(t)
	assert.Equal(t, common.CaseInReview, c.Status)
	require.NotNil(t, c.AssignedContractorId)
	assert.Equal(t, f.storedQuote(t, cheap).ContractorId, *c.AssignedContractorId)
}

func TestAcceptQuote_RejectsSecondAcceptance(t *testing.T) {
	f := newNegotiationFixture()
	first := f.seedSentQuote(918)
	second := f.seedSentQuote(842)

	_, err := f.services.Negotiation.AcceptQuote(context.Background(), f.caseId.String(), first.String())
	require.NoError(t, err)

	_, err = f.services.Negotiation.AcceptQuote(context.Background(), f.caseId.String(), second.String())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAcceptQuote_ExpiredQuoteExpiresOnTouch(t *testing.T) {
	f := newNegotiationFixture()
	expired := time.Now().Add(-time.Minute)
	quoteId := uuid.New()
	f.store.SeedQuote(entity.Quote{
		Id: quoteId, CaseId: f.caseId, ContractorId: uuid.New(),
		Total: decimal.NewFromInt(900), Status: common.QuoteSent, ExpiresAt: &expired,
	})

	_, err := f.services.Negotiation.AcceptQuote(context.Background(), f.caseId.String(), quoteId.String())

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, common.QuoteExpired, f.storedQuote(t, quoteId).Status)
	assert.Equal(t, common.CaseNew, f.storedCase(t).Status)
}

func TestAcceptQuote_ConcurrentAcceptsHaveOneWinner(t *testing.T) {
	f := newNegotiationFixture()
	first := f.seedSentQuote(918)
	second := f.seedSentQuote(842)

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i, id := range []uuid.UUID{first, second} {
		wg.Add(1)
		go func(i int, quoteId uuid.UUID) {
			defer wg.Done()
			_, err := f.services.Negotiation.AcceptQuote(context.Background(), f.caseId.String(), quoteId.String())
			results[i] = err
		}(i, id)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		if !errors.Is(err, ErrConflict) && !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, common.CaseInReview, f.storedCase(t).Status)
}

func TestDeclineQuote(t *testing.T) {
	f := newNegotiationFixture()
	quoteId := f.seedSentQuote(900)

	declined, err := f.services.Negotiation.DeclineQuote(context.Background(), f.caseId.String(), quoteId.String(), "too expensive")
	require.NoError(t, err)

	assert.Equal(t, common.QuoteDeclined, declined.Status)
	assert.Equal(t, "too expensive", declined.DeclineReason)
	assert.False(t, f.storedQuote(t, quoteId).DeclinedBySystem)

	_, err = f.services.Negotiation.DeclineQuote(context.Background(), f.caseId.String(), quoteId.String(), "again")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelApproval_RevertsSystemDeclinesOnly(t *testing.T) {
	f := newNegotiationFixture()
	accepted := f.seedSentQuote(918)
	systemDeclined := f.seedSentQuote(842)
	manuallyDeclined := f.seedSentQuote(1100)

	_, err := f.services.Negotiation.DeclineQuote(context.Background(), f.caseId.String(), manuallyDeclined.String(), "too expensive")
	require.NoError(t, err)
	_, err = f.services.Negotiation.AcceptQuote(context.Background(), f.caseId.String(), accepted.String())
	require.NoError(t, err)

	cancelled, err := f.services.Negotiation.CancelApproval(context.Background(), f.caseId.String(), accepted.String())
	require.NoError(t, err)

	assert.Equal(t, common.QuoteCancelled, cancelled.Status)
	assert.Equal(t, common.QuoteSent, f.storedQuote(t, systemDeclined).Status)
	assert.Equal(t, common.QuoteDeclined, f.storedQuote(t, manuallyDeclined).Status)

	c := f.storedCase(t)
	assert.Equal(t, common.CaseNew, c.Status)
	assert.Nil(t, c.AssignedContractorId)
}

func TestCancelApproval_ThenAcceptAnother(t *testing.T) {
	f := newNegotiationFixture()
	first := f.seedSentQuote(918)
	second := f.seedSentQuote(842)

	_, err := f.services.Negotiation.AcceptQuote(context.Background(), f.caseId.String(), first.String())
	require.NoError(t, err)
	_, err = f.services.Negotiation.CancelApproval(context.Background(), f.caseId.String(), first.String())
	require.NoError(t, err)

	accepted, err := f.services.Negotiation.AcceptQuote(context.Background(), f.caseId.String(), second.String())
	require.NoError(t, err)

	assert.Equal(t, common.QuoteApproved, accepted.Status)
	assert.Equal(t, common.QuoteCancelled, f.storedQuote(t, first).Status)
}

func TestCancelApproval_RequiresApprovedQuote(t *testing.T) {
	f := newNegotiationFixture()
	quoteId := f.seedSentQuote(900)

	_, err := f.services.Negotiation.CancelApproval(context.Background(), f.caseId.String(), quoteId.String())

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestProposeCounter_SupersedesPending(t *testing.T) {
	f := newNegotiationFixture()
	quoteId := f.seedSentQuote(918)

	firstId := f.proposeCounter(t, quoteId, 850)
	secondId := f.proposeCounter(t, quoteId, 880)

	first, err := f.store.GetCounterProposalById(context.Background(), firstId)
	require.NoError(t, err)
	assert.Equal(t, common.CounterSuperseded, first.Status)

	second, err := f.store.GetCounterProposalById(context.Background(), secondId)
	require.NoError(t, err)
	assert.Equal(t, common.CounterPending, second.Status)
}

func TestProposeCounter_Validation(t *testing.T) {
	f := newNegotiationFixture()
	quoteId := f.seedSentQuote(918)
	negative := decimal.NewFromInt(-1)

	_, err := f.services.Negotiation.ProposeCounter(context.Background(), &entity.ProposeCounterInput{
		QuoteId: quoteId.String(), ProposedBy: uuid.NewString(), ProposerParty: common.PartyOwner,
	})
	assert.ErrorIs(t, err, ErrEmptyCounterTerms)

	_, err = f.services.Negotiation.ProposeCounter(context.Background(), &entity.ProposeCounterInput{
		QuoteId: quoteId.String(), ProposedBy: uuid.NewString(), ProposerParty: common.PartyOwner,
		ProposedTotal: &negative,
	})
	assert.ErrorIs(t, err, ErrInvalidTotal)
}

func TestProposeCounter_RequiresSentQuote(t *testing.T) {
	f := newNegotiationFixture()
	draft, err := f.services.Negotiation.CreateQuote(context.Background(), &entity.CreateQuoteInput{
		CaseId: f.caseId.String(), ContractorId: uuid.NewString(), Total: decimal.NewFromInt(900),
	})
	require.NoError(t, err)
	amount := decimal.NewFromInt(850)

	_, err = f.services.Negotiation.ProposeCounter(context.Background(), &entity.ProposeCounterInput{
		QuoteId: draft.Id, ProposedBy: uuid.NewString(), ProposerParty: common.PartyOwner,
		ProposedTotal: &amount,
	})

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAcceptCounter_AmendsQuoteTerms(t *testing.T) {
	f := newNegotiationFixture()
	quoteId := f.seedSentQuote(918)
	counterId := f.proposeCounter(t, quoteId, 850)

	quote, err := f.services.Negotiation.AcceptCounter(context.Background(), counterId)
	require.NoError(t, err)

	assert.Equal(t, "850", quote.Total)
	assert.Equal(t, common.QuoteSent, quote.Status)
	require.NotEmpty(t, quote.CounterProposals)
	assert.Equal(t, common.CounterAccepted, quote.CounterProposals[0].Status)

	accepted, err := f.services.Negotiation.AcceptQuote(context.Background(), f.caseId.String(), quoteId.String())
	require.NoError(t, err)
	assert.Equal(t, "850", accepted.Total)
}

func TestAcceptCounter_RequiresPendingCounter(t *testing.T) {
	f := newNegotiationFixture()
	quoteId := f.seedSentQuote(918)
	counterId := f.proposeCounter(t, quoteId, 850)

	_, err := f.services.Negotiation.DeclineCounter(context.Background(), counterId, "no")
	require.NoError(t, err)

	_, err = f.services.Negotiation.AcceptCounter(context.Background(), counterId)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDeclineCounter(t *testing.T) {
	f := newNegotiationFixture()
	quoteId := f.seedSentQuote(918)
	counterId := f.proposeCounter(t, quoteId, 850)

	declined, err := f.services.Negotiation.DeclineCounter(context.Background(), counterId, "too low")
	require.NoError(t, err)

	assert.Equal(t, common.CounterDeclined, declined.Status)
	assert.Equal(t, "too low", declined.DeclineReason)
	assert.NotEmpty(t, declined.ResolvedAt)

	assert.Equal(t, "918", f.storedQuote(t, quoteId).Total.String())
}

func TestCounterTheCounter(t *testing.T) {
	f := newNegotiationFixture()
	quoteId := f.seedSentQuote(918)
	firstId := f.proposeCounter(t, quoteId, 850)
	amount := decimal.NewFromInt(880)

	second, err := f.services.Negotiation.CounterTheCounter(context.Background(), firstId, &entity.ProposeCounterInput{
		ProposedBy: uuid.NewString(), ProposerParty: common.PartyContractor,
		ProposedTotal: &amount,
	})
	require.NoError(t, err)

	assert.Equal(t, quoteId.String(), second.QuoteId)
	assert.Equal(t, common.CounterPending, second.Status)
	assert.Equal(t, "880", second.ProposedTotal)

	first, err := f.store.GetCounterProposalById(context.Background(), firstId)
	require.NoError(t, err)
	assert.Equal(t, common.CounterSuperseded, first.Status)
}

func TestCounterTheCounter_RequiresPendingCounter(t *testing.T) {
	f := newNegotiationFixture()
	quoteId := f.seedSentQuote(918)
	firstId := f.proposeCounter(t, quoteId, 850)
	f.proposeCounter(t, quoteId, 880) // supersedes the first
	amount := decimal.NewFromInt(900)

	_, err := f.services.Negotiation.CounterTheCounter(context.Background(), firstId, &entity.ProposeCounterInput{
		ProposedBy: uuid.NewString(), ProposerParty: common.PartyContractor,
		ProposedTotal: &amount,
	})

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestExpireQuote(t *testing.T) {
	f := newNegotiationFixture()
	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	dueId := uuid.New()
	f.store.SeedQuote(entity.Quote{
		Id: dueId, CaseId: f.caseId, ContractorId: uuid.New(),
		Total: decimal.NewFromInt(900), Status: common.QuoteSent, ExpiresAt: &past,
	})
	notDueId := uuid.New()
	f.store.SeedQuote(entity.Quote{
		Id: notDueId, CaseId: f.caseId, ContractorId: uuid.New(),
		Total: decimal.NewFromInt(900), Status: common.QuoteSent, ExpiresAt: &future,
	})

	expired, err := f.services.Negotiation.ExpireQuote(context.Background(), dueId.String())
	require.NoError(t, err)
	assert.Equal(t, common.QuoteExpired, expired.Status)

	_, err = f.services.Negotiation.ExpireQuote(context.Background(), notDueId.String())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestGetCaseProjection(t *testing.T) {
	f := newNegotiationFixture()
	quoteId := f.seedSentQuote(918)
	f.proposeCounter(t, quoteId, 850)

	projection, err := f.services.Projection.GetCaseProjection(context.Background(), f.caseId.String())
	require.NoError(t, err)

	assert.Equal(t, f.caseId.String(), projection.Case.Id)
	require.Len(t, projection.Quotes, 1)
	assert.Len(t, projection.Quotes[0].CounterProposals, 1)

	_, err = f.services.Projection.GetCaseProjection(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestCreateCase(t *testing.T) {
	store := memory.NewStore()
	services := NewServices(store.Repositories(), NewLogNotifier(zerolog.Nop()))

	created, err := services.Cases.CreateCase(context.Background(), &entity.CreateCaseInput{
		OrganizationId: uuid.NewString(),
		Title:          "Broken gate",
		Category:       "Carpentry",
	})
	require.NoError(t, err)

	assert.Equal(t, common.CaseNew, created.Status)
	assert.Equal(t, "Broken gate", created.Title)
}

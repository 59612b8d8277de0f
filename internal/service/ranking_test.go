package service

import (
	"context"
	"testing"

	"maintenance-marketplace-api/internal/common"
	"maintenance-marketplace-api/internal/entity"
	"maintenance-marketplace-api/internal/repo/memory"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rankingFixture struct {
	store          *memory.Store
	services       *Services
	organizationId uuid.UUID
	caseId         uuid.UUID
}

func newRankingFixture(category string) *rankingFixture {
	store := memory.NewStore()
	f := &rankingFixture{
		store:          store,
		services:       NewServices(store.Repositories(), NewLogNotifier(zerolog.Nop())),
		organizationId: uuid.New(),
		caseId:         uuid.New(),
	}
	store.SeedCase(entity.Case{
		Id:             f.caseId,
		OrganizationId: f.organizationId,
		Title:          "Leaking kitchen pipe",
		Category:       category,
		Status:         common.CaseNew,
	})

	return f
}

func (f *rankingFixture) seedContractor(name string, specialties []string, rating float64, jobs int, available bool) uuid.UUID {
	id := uuid.New()
	f.store.SeedContractor(entity.ContractorProfile{
		Id:             id,
		OrganizationId: f.organizationId,
		Name:           name,
		Specialties:    specialties,
		Rating:         rating,
		JobsCompleted:  jobs,
		IsAvailable:    available,
		Active:         true,
	})

	return id
}

func (f *rankingFixture) seedPolicy(mode string, trusted ...uuid.UUID) {
	f.store.SeedPolicy(entity.ApprovalPolicy{
		OrganizationId:       f.organizationId,
		InvolvementMode:      mode,
		TrustedContractorIds: trusted,
	})
}

func (f *rankingFixture) rank(t *testing.T) *entity.RankingOutputModel {
	t.Helper()
	out, err := f.services.Ranking.RankCandidates(context.Background(), f.caseId.String(), "")
	require.NoError(t, err)

	return out
}

func TestWeightsForMode(t *testing.T) {
	tests := []struct {
		mode string
		want rankWeights
	}{
		{common.ModeHandsOff, rankWeights{Trusted: 50, Favorite: 40, CategoryMatch: 10, Availability: 5}},
		{common.ModeBalanced, rankWeights{Trusted: 30, Favorite: 25, CategoryMatch: 25, Availability: 10}},
		{common.ModeHandsOn, rankWeights{Trusted: 10, Favorite: 5, CategoryMatch: 40, Availability: 25}},
		{"", rankWeights{Trusted: 30, Favorite: 25, CategoryMatch: 25, Availability: 10}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, weightsForMode(tt.mode), "mode %q", tt.mode)
	}
}

func TestRankCandidates_HandsOffShortlistsKnownContractors(t *testing.T) {
	f := newRankingFixture("Plumbing")
	trusted := f.seedContractor("Reliable Rooters", []string{"HVAC"}, 4.8, 10, true)
	f.seedContractor("Quick Fix", []string{"Electrical"}, 4.9, 30, true)
	f.seedContractor("Handy Help", []string{"Carpentry"}, 4.5, 12, true)
	f.seedContractor("All Trades", []string{"Roofing"}, 4.7, 8, true)
	f.seedContractor("City Repairs", []string{"Painting"}, 4.6, 20, true)
	f.seedPolicy(common.ModeHandsOff, trusted)

	out := f.rank(t)

	require.Len(t, out.Contractors, 1)
	assert.Equal(t, common.ModeHandsOff, out.InvolvementMode)
	assert.Equal(t, 5, out.TotalCandidates)
	assert.Equal(t, 1, out.Contractors[0].Rank)
	assert.Equal(t, trusted.String(), out.Contractors[0].Id)
	assert.True(t, out.Contractors[0].IsTrusted)
	assert.Equal(t, common.RationaleTrusted, out.Contractors[0].MayaNote)
}

func TestRankCandidates_ExcludesUnavailable(t *testing.T) {
	f := newRankingFixture("Plumbing")
	f.seedContractor("Busy Plumbers", []string{"Plumbing"}, 5.0, 50, false)
	available := f.seedContractor("Open Plumbers", []string{"Plumbing"}, 4.0, 5, true)
	f.seedPolicy(common.ModeBalanced)

	out := f.rank(t)

	require.Len(t, out.Contractors, 1)
	assert.Equal(t, 1, out.TotalCandidates)
	assert.Equal(t, available.String(), out.Contractors[0].Id)
}

func TestRankCandidates_CategoryFilterPrefersSpecialists(t *testing.T) {
	f := newRankingFixture("Plumbing")
	f.seedContractor("Sparks Electric", []string{"Electrical"}, 4.9, 40, true)
	plumber := f.seedContractor("Pipe Pros", []string{"Plumbing"}, 4.0, 5, true)
	f.seedPolicy(common.ModeBalanced)

	out := f.rank(t)

	require.Len(t, out.Contractors, 1)
	assert.Equal(t, plumber.String(), out.Contractors[0].Id)
	assert.Equal(t, common.RationaleSpecialist, out.Contractors[0].MayaNote)
}

func TestRankCandidates_CategoryFilterFallsBackWhenNothingMatches(t *testing.T) {
	f := newRankingFixture("Masonry")
	f.seedContractor("Sparks Electric", []string{"Electrical"}, 4.9, 40, true)
	f.seedContractor("Pipe Pros", []string{"Plumbing"}, 4.0, 5, true)
	f.seedPolicy(common.ModeBalanced)

	out := f.rank(t)

	assert.Len(t, out.Contractors, 2)
}

func TestRankCandidates_ShortlistCappedAtThree(t *testing.T) {
	f := newRankingFixture("Plumbing")
	for i := 0; i < 5; i++ {
		f.seedContractor("Plumber", []string{"Plumbing"}, 4.0+float64(i)/10, i*5, true)
	}
	f.seedPolicy(common.ModeBalanced)

	out := f.rank(t)

	require.Len(t, out.Contractors, 3)
	assert.Equal(t, 5, out.TotalCandidates)
	for i, contractor := range out.Contractors {
		assert.Equal(t, i+1, contractor.Rank)
	}
}

func TestRankCandidates_RationalePrecedence(t *testing.T) {
	f := newRankingFixture("Plumbing")
	trusted := f.seedContractor("Trusted Plumbers", []string{"Plumbing"}, 4.0, 10, true)
	favorite := f.seedContractor("Favorite Plumbers", []string{"Plumbing"}, 4.0, 10, true)
	specialist := f.seedContractor("Specialist Plumbers", []string{"Plumbing"}, 4.0, 10, true)
	f.store.SeedFavorite(f.organizationId, trusted)
	f.store.SeedFavorite(f.organizationId, favorite)
	f.seedPolicy(common.ModeBalanced, trusted)

	out := f.rank(t)

	require.Len(t, out.Contractors, 3)
	notes := map[string]string{}
	for _, contractor := range out.Contractors {
		notes[contractor.Id] = contractor.MayaNote
	}
	assert.Equal(t, common.RationaleTrusted, notes[trusted.String()])
	assert.Equal(t, common.RationalePreferred, notes[favorite.String()])
	assert.Equal(t, common.RationaleSpecialist, notes[specialist.String()])
}

func TestRankCandidates_HigherScoreRanksFirst(t *testing.T) {
	f := newRankingFixture("Plumbing")
	weak := f.seedContractor("New Plumbers", []string{"Plumbing"}, 3.0, 1, true)
	strong := f.seedContractor("Veteran Plumbers", []string{"Plumbing"}, 4.9, 40, true)
	f.seedPolicy(common.ModeBalanced)

	out := f.rank(t)

	require.Len(t, out.Contractors, 2)
	assert.Equal(t, strong.String(), out.Contractors[0].Id)
	assert.Equal(t, weak.String(), out.Contractors[1].Id)
}

func TestRankCandidates_Deterministic(t *testing.T) {
	f := newRankingFixture("Plumbing")
	for i := 0; i < 4; i++ {
		f.seedContractor("Tied Plumbers", []string{"Plumbing"}, 4.0, 10, true)
	}
	f.seedPolicy(common.ModeBalanced)

	first := f.rank(t)
	second := f.rank(t)

	assert.Equal(t, first, second)
}

func TestRankCandidates_DefaultPolicyIsBalanced(t *testing.T) {
	f := newRankingFixture("Plumbing")
	f.seedContractor("Pipe Pros", []string{"Plumbing"}, 4.0, 5, true)

	out := f.rank(t)

	assert.Equal(t, common.ModeBalanced, out.InvolvementMode)
	assert.Len(t, out.Contractors, 1)
}

func TestRankCandidates_EmptyPool(t *testing.T) {
	f := newRankingFixture("Plumbing")
	f.seedPolicy(common.ModeBalanced)

	out := f.rank(t)

	assert.Empty(t, out.Contractors)
	assert.Equal(t, 0, out.TotalCandidates)
}

func TestRankCandidates_CaseNotFound(t *testing.T) {
	f := newRankingFixture("Plumbing")

	_, err := f.services.Ranking.RankCandidates(context.Background(), uuid.NewString(), "")

	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestRankCandidates_ExplicitCategoryOverridesCase(t *testing.T) {
	f := newRankingFixture("Plumbing")
	f.seedContractor("Pipe Pros", []string{"Plumbing"}, 4.0, 5, true)
	electric := f.seedContractor("Sparks Electric", []string{"Electrical"}, 4.0, 5, true)
	f.seedPolicy(common.ModeBalanced)

	out, err := f.services.Ranking.RankCandidates(context.Background(), f.caseId.String(), "Electrical")
	require.NoError(t, err)

	require.Len(t, out.Contractors, 1)
	assert.Equal(t, electric.String(), out.Contractors[0].Id)
}

func TestMatchesCategory(t *testing.T) {
	tests := []struct {
		name        string
		specialties []string
		category    string
		want        bool
	}{
		{"exact", []string{"Plumbing"}, "Plumbing", true},
		{"case insensitive", []string{"plumbing"}, "PLUMBING", true},
		{"specialty contains category", []string{"Emergency Plumbing"}, "Plumbing", true},
		{"category contains specialty", []string{"Plumbing"}, "Plumbing Repair", true},
		{"no overlap", []string{"Electrical"}, "Plumbing", false},
		{"empty category matches", []string{"Electrical"}, "", true},
		{"empty specialties", nil, "Plumbing", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesCategory(tt.specialties, tt.category))
		})
	}
}

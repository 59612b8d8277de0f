package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"maintenance-marketplace-api/internal/common"
	"maintenance-marketplace-api/internal/entity"
	"maintenance-marketplace-api/internal/repo"
	"maintenance-marketplace-api/internal/repo/repo_errors"

	"github.com/google/uuid"
)

const shortlistSize = 3

// rankWeights is the per-mode scoring policy. Hands-off leans on who the
// organization already knows; hands-on leans on who fits the job right now.
type rankWeights struct {
	Trusted       float64
	Favorite      float64
	CategoryMatch float64
	Availability  float64
}

func weightsForMode(mode string) rankWeights {
	switch mode {
	case common.ModeHandsOff:
		return rankWeights{Trusted: 50, Favorite: 40, CategoryMatch: 10, Availability: 5}
	case common.ModeHandsOn:
		return rankWeights{Trusted: 10, Favorite: 5, CategoryMatch: 40, Availability: 25}
	default:
		return rankWeights{Trusted: 30, Favorite: 25, CategoryMatch: 25, Availability: 10}
	}
}

type RankingService struct {
	caseRepo   repo.Case
	policyRepo repo.Policy
	policy     PolicyResolver
}

func NewRankingService(repos *repo.Repositories, policy PolicyResolver) *RankingService {
	return &RankingService{
		caseRepo:   repos.Case,
		policyRepo: repos.Policy,
		policy:     policy,
	}
}

func (s *RankingService) RankCandidates(ctx context.Context, caseId string, category string) (*entity.RankingOutputModel, error) {
	c, err := s.caseRepo.GetCaseById(ctx, caseId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrCaseNotFound
		}

		return nil, err
	}

	policy, err := s.policy.Resolve(ctx, c.OrganizationId)
	if err != nil {
		return nil, err
	}

	if category == "" {
		category = c.Category
	}

	candidates, err := s.buildCandidates(ctx, c.OrganizationId, policy, category)
	if err != nil {
		return nil, err
	}

	out := &entity.RankingOutputModel{
		Contractors:     []entity.RankedContractorOutputModel{},
		InvolvementMode: policy.InvolvementMode,
		TotalCandidates: len(candidates),
	}
	if len(candidates) == 0 {
		return out, nil
	}

	// Category match is a preference, never a hard requirement: if it would
	// eliminate everyone, skip the filter.
	if category != "" {
		matched := make([]entity.ContractorCandidate, 0, len(candidates))
		for _, candidate := range candidates {
			if candidate.MatchesCategory {
				matched = append(matched, candidate)
			}
		}
		if len(matched) > 0 {
			candidates = matched
		}
	}

	// Hands-off negotiation defaults to known-good contractors: when any
	// trusted or favorited candidate survives, only those are shortlisted.
	if policy.InvolvementMode == common.ModeHandsOff {
		known := make([]entity.ContractorCandidate, 0, len(candidates))
		for _, candidate := range candidates {
			if candidate.IsTrusted || candidate.IsFavorite {
				known = append(known, candidate)
			}
		}
		if len(known) > 0 {
			candidates = known
		}
	}

	weights := weightsForMode(policy.InvolvementMode)
	for i := range candidates {
		candidates[i].Score = scoreCandidate(&candidates[i], weights)
	}

	// Descending score; equal scores keep candidate-pool insertion order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > shortlistSize {
		candidates = candidates[:shortlistSize]
	}

	for i := range candidates {
		out.Contractors = append(out.Contractors, mapRankedContractor(&candidates[i], i+1))
	}

	return out, nil
}

// buildCandidates unions the organization-linked, favorite and trusted id sets
// in that order, deduplicates, hydrates profiles and drops unavailable
// contractors entirely. Trust and favorite flags come from set membership.
func (s *RankingService) buildCandidates(ctx context.Context, organizationId uuid.UUID, policy *entity.ApprovalPolicy, category string) ([]entity.ContractorCandidate, error) {
	linked, err := s.policyRepo.GetOrganizationContractorIds(ctx, organizationId)
	if err != nil {
		return nil, err
	}

	favorites, err := s.policyRepo.GetFavoriteContractorIds(ctx, organizationId)
	if err != nil {
		return nil, err
	}

	pool := make([]uuid.UUID, 0, len(linked)+len(favorites)+len(policy.TrustedContractorIds))
	seen := make(map[uuid.UUID]bool)
	for _, set := range [][]uuid.UUID{linked, favorites, policy.TrustedContractorIds} {
		for _, id := range set {
			if !seen[id] {
				seen[id] = true
				pool = append(pool, id)
			}
		}
	}

	if len(pool) == 0 {
		return []entity.ContractorCandidate{}, nil
	}

	profiles, err := s.policyRepo.GetContractorProfiles(ctx, pool)
	if err != nil {
		return nil, err
	}

	byId := make(map[uuid.UUID]*entity.ContractorProfile, len(profiles))
	for i := range profiles {
		byId[profiles[i].Id] = &profiles[i]
	}

	favoriteSet := make(map[uuid.UUID]bool, len(favorites))
	for _, id := range favorites {
		favoriteSet[id] = true
	}

	candidates := make([]entity.ContractorCandidate, 0, len(pool))
	for _, id := range pool {
		profile, ok := byId[id]
		if !ok || !profile.IsAvailable {
			continue
		}
		candidates = append(candidates, entity.ContractorCandidate{
			Profile:         *profile,
			IsTrusted:       policy.IsTrusted(id),
			IsFavorite:      favoriteSet[id],
			MatchesCategory: matchesCategory(profile.Specialties, category),
		})
	}

	return candidates, nil
}

// matchesCategory is a soft match: case-insensitive substring in either
// direction, and an empty category matches everything.
func matchesCategory(specialties []string, category string) bool {
	if category == "" {
		return true
	}

	wanted := strings.ToLower(strings.TrimSpace(category))
	for _, specialty := range specialties {
		have := strings.ToLower(strings.TrimSpace(specialty))
		if have == "" {
			continue
		}
		if strings.Contains(have, wanted) || strings.Contains(wanted, have) {
			return true
		}
	}

	return false
}

func scoreCandidate(candidate *entity.ContractorCandidate, weights rankWeights) float64 {
	score := 0.0
	if candidate.IsTrusted {
		score += weights.Trusted
	}
	if candidate.IsFavorite {
		score += weights.Favorite
	}
	if candidate.MatchesCategory {
		score += weights.CategoryMatch
	}
	if candidate.Profile.IsAvailable {
		score += weights.Availability
	}

	score += candidate.Profile.Rating * 5
	jobs := candidate.Profile.JobsCompleted
	if jobs > 10 {
		jobs = 10
	}
	score += float64(jobs)

	return score
}

// rationale precedence: trusted > favorite > category match > default
func rationaleFor(candidate *entity.ContractorCandidate) string {
	switch {
	case candidate.IsTrusted:
		return common.RationaleTrusted
	case candidate.IsFavorite:
		return common.RationalePreferred
	case candidate.MatchesCategory:
		return common.RationaleSpecialist
	default:
		return common.RationaleAvailable
	}
}

// mapRankedContractor sanitizes the candidate: the internal score and any
// pricing data never leave the service.
func mapRankedContractor(candidate *entity.ContractorCandidate, rank int) entity.RankedContractorOutputModel {
	return entity.RankedContractorOutputModel{
		Rank:               rank,
		Id:                 candidate.Profile.Id.String(),
		Name:               candidate.Profile.Name,
		Specialties:        candidate.Profile.Specialties,
		Rating:             candidate.Profile.Rating,
		ResponseTimeHours:  candidate.Profile.ResponseTimeHours,
		EmergencyAvailable: candidate.Profile.EmergencyAvailable,
		IsTrusted:          candidate.IsTrusted,
		IsFavorite:         candidate.IsFavorite,
		JobsCompleted:      candidate.Profile.JobsCompleted,
		MayaNote:           rationaleFor(candidate),
	}
}

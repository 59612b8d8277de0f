package entity

import (
	"github.com/google/uuid"
)

// db model
type ContractorProfile struct {
	Id                 uuid.UUID
	OrganizationId     uuid.UUID
	Name               string
	Specialties        []string
	Rating             float64
	JobsCompleted      int
	ResponseTimeHours  float64
	EmergencyAvailable bool
	IsAvailable        bool
	Active             bool
}

// Ranking-time record. Built fresh per ranking call from a profile plus
// policy set membership, discarded after the response.
type ContractorCandidate struct {
	Profile         ContractorProfile
	IsTrusted       bool
	IsFavorite      bool
	MatchesCategory bool
	Score           float64
}

// controller model; the internal score and any pricing data are never exposed
type RankedContractorOutputModel struct {
	Rank               int      `json:"rank"`
	Id                 string   `json:"id"`
	Name               string   `json:"name"`
	Specialties        []string `json:"specialties"`
	Rating             float64  `json:"rating"`
	ResponseTimeHours  float64  `json:"responseTimeHours"`
	EmergencyAvailable bool     `json:"emergencyAvailable"`
	IsTrusted          bool     `json:"isTrusted"`
	IsFavorite         bool     `json:"isFavorite"`
	JobsCompleted      int      `json:"jobsCompleted"`
	MayaNote           string   `json:"mayaNote"`
}

// controller model
type RankingOutputModel struct {
	Contractors     []RankedContractorOutputModel `json:"contractors"`
	InvolvementMode string                        `json:"involvementMode"`
	TotalCandidates int                           `json:"totalCandidates"`
}

package common

// Case statuses relevant to negotiation. Cases come back to New when an
// approval is cancelled and move to InReview once a quote is accepted.
const (
	CaseNew      = "New"
	CaseInReview = "InReview"
)

// Quote statuses.
const (
	QuoteDraft     = "Draft"
	QuoteSent      = "Sent"
	QuoteApproved  = "Approved"
	QuoteDeclined  = "Declined"
	QuoteCancelled = "Cancelled"
	QuoteExpired   = "Expired"
)

// Counter-proposal statuses. Only the newest Pending counter on a quote is
// actionable; an older Pending one becomes Superseded.
const (
	CounterPending    = "Pending"
	CounterAccepted   = "Accepted"
	CounterDeclined   = "Declined"
	CounterSuperseded = "Superseded"
)

// Organization involvement modes.
const (
	ModeHandsOff = "hands-off"
	ModeBalanced = "balanced"
	ModeHandsOn  = "hands-on"
)

// Counter-proposal proposer parties.
const (
	PartyOwner      = "Owner"
	PartyContractor = "Contractor"
)

// Shortlist rationale tags, precedence: trusted > preferred > specialist > available.
const (
	RationaleTrusted    = "trusted"
	RationalePreferred  = "preferred"
	RationaleSpecialist = "specialist"
	RationaleAvailable  = "available"
)

func IsTerminalQuoteStatus(status string) bool {
	switch status {
	case QuoteApproved, QuoteDeclined, QuoteCancelled, QuoteExpired:
		return true
	}

	return false
}

func IsResolvedCounterStatus(status string) bool {
	switch status {
	case CounterAccepted, CounterDeclined, CounterSuperseded:
		return true
	}

	return false
}

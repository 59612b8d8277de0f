package service

import (
	"context"

	"maintenance-marketplace-api/internal/entity"

	"github.com/rs/zerolog"
)

// Notifier is the seam to the external notification collaborator. Payloads
// carry entity ids and a short human-readable summary; delivery (email, push,
// websocket) happens outside this service.
type Notifier interface {
	CaseCreated(ctx context.Context, c *entity.Case, summary string)
	QuoteAccepted(ctx context.Context, q *entity.Quote, summary string)
	QuoteDeclined(ctx context.Context, q *entity.Quote, summary string)
	CounterProposalReceived(ctx context.Context, cp *entity.CounterProposal, summary string)
}

type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) CaseCreated(ctx context.Context, c *entity.Case, summary string) {
	n.log.Info().
		Str("event", "case-created").
		Str("case_id", c.Id.String()).
		Str("organization_id", c.OrganizationId.String()).
		Msg(summary)
}

func (n *LogNotifier) QuoteAccepted(ctx context.Context, q *entity.Quote, summary string) {
	n.log.Info().
		Str("event", "quote-accepted").
		Str("quote_id", q.Id.String()).
		Str("case_id", q.CaseId.String()).
		Str("contractor_id", q.ContractorId.String()).
		Msg(summary)
}

func (n *LogNotifier) QuoteDeclined(ctx context.Context, q *entity.Quote, summary string) {
	n.log.Info().
		Str("event", "quote-declined").
		Str("quote_id", q.Id.String()).
		Str("case_id", q.CaseId.String()).
		Str("contractor_id", q.ContractorId.String()).
		Msg(summary)
}

func (n *LogNotifier) CounterProposalReceived(ctx context.Context, cp *entity.CounterProposal, summary string) {
	n.log.Info().
		Str("event", "counter-proposal-received").
		Str("counter_id", cp.Id.String()).
		Str("quote_id", cp.QuoteId.String()).
		Str("proposer_party", cp.ProposerParty).
		Msg(summary)
}

package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"maintenance-marketplace-api/internal/common"
	"maintenance-marketplace-api/internal/entity"
	"maintenance-marketplace-api/internal/repo/repo_errors"
	"maintenance-marketplace-api/pkg/postgres"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CounterProposalRepo struct {
	*postgres.Postgres
}

func NewCounterProposalRepo(pgdb *postgres.Postgres) *CounterProposalRepo {
	return &CounterProposalRepo{pgdb}
}

const counterColumns = "id, quote_id, proposed_by, proposer_party, proposed_total, " +
	"proposed_start_date, proposed_end_date, message, status, decline_reason, created_at, resolved_at"

func scanCounterProposal(row quoteRowScanner) (*entity.CounterProposal, error) {
	var cp entity.CounterProposal
	var proposedTotal decimal.NullDecimal
	var proposedStart, proposedEnd, resolvedAt sql.NullTime
	var createdAt time.Time

	err := row.Scan(&cp.Id, &cp.QuoteId, &cp.ProposedBy, &cp.ProposerParty, &proposedTotal,
		&proposedStart, &proposedEnd, &cp.Message, &cp.Status, &cp.DeclineReason, &createdAt, &resolvedAt)
	if err != nil {
		return nil, err
	}

	cp.CreatedAt = createdAt
	if proposedTotal.Valid {
		cp.ProposedTotal = &proposedTotal.Decimal
	}
	if proposedStart.Valid {
		cp.ProposedStartDate = &proposedStart.Time
	}
	if proposedEnd.Valid {
		cp.ProposedEndDate = &proposedEnd.Time
	}
	if resolvedAt.Valid {
		cp.ResolvedAt = &resolvedAt.Time
	}

	return &cp, nil
}

func (r *CounterProposalRepo) CreateCounterProposal(ctx context.Context, input *entity.ProposeCounterInput) (uuid.UUID, error) {
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

	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}

	supersedeSql, args, _ := r.SqlBuilder.
		Update("counter_proposal").
		Set("status", common.CounterSuperseded).
		Set("resolved_at", time.Now().UTC()).
		Where("quote_id = ?", quoteUuid).
		Where("status = ?", common.CounterPending).
		RunWith(tx).
		ToSql()

	if _, err := tx.Exec(supersedeSql, args...); err != nil {
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, e
		}

		return uuid.Nil, err
	}

	var proposedTotal interface{}
	if input.ProposedTotal != nil {
		proposedTotal = *input.ProposedTotal
	}

	createCounterSql, args, _ := r.SqlBuilder.
		Insert("counter_proposal").
		Columns("quote_id", "proposed_by", "proposer_party", "proposed_total",
			"proposed_start_date", "proposed_end_date", "message", "status").
		Values(quoteUuid, proposedByUuid, input.ProposerParty, proposedTotal,
			input.ProposedStartDate, input.ProposedEndDate, input.Message, status).
		Suffix("RETURNING id").
		RunWith(tx).
		ToSql()

	var counterId uuid.UUID
	if err := tx.QueryRow(createCounterSql, args...).Scan(&counterId); err != nil {
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, e
		}

		return uuid.Nil, err
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, err
	}

	return counterId, nil
}

func (r *CounterProposalRepo) GetCounterProposalById(ctx context.Context, id string) (*entity.CounterProposal, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	getCounterReq, args, _ := r.SqlBuilder.
		Select(counterColumns).
		From("counter_proposal").
		Where("id = ?", uuidForm).
		ToSql()

	counter, err := scanCounterProposal(r.Database.QueryRowContext(ctx, getCounterReq, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return counter, nil
}

func (r *CounterProposalRepo) GetQuoteCounterProposals(ctx context.Context, quoteId string) ([]entity.CounterProposal, error) {
	uuidForm, err := uuid.Parse(quoteId)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	getCountersReq, args, _ := r.SqlBuilder.
		Select(counterColumns).
		From("counter_proposal").
		Where("quote_id = ?", uuidForm).
		OrderBy("created_at DESC").
		ToSql()

	rows, err := r.Database.QueryContext(ctx, getCountersReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counters := make([]entity.CounterProposal, 0)
	for rows.Next() {
		counter, err := scanCounterProposal(rows)
		if err != nil {
			return counters, err
		}
		counters = append(counters, *counter)
	}
	if err = rows.Err(); err != nil {
		return counters, err
	}

	return counters, nil
}

func (r *CounterProposalRepo) AcceptCounterProposal(ctx context.Context, id string, now time.Time) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	acceptSql, args, _ := r.SqlBuilder.
		Update("counter_proposal").
		Set("status", common.CounterAccepted).
		Set("resolved_at", now).
		Where("id = ?", uuidForm).
		Where("status = ?", common.CounterPending).
		Suffix("RETURNING quote_id, proposed_total, proposed_start_date, proposed_end_date").
		RunWith(tx).
		ToSql()

	var quoteId uuid.UUID
	var proposedTotal decimal.NullDecimal
	var proposedStart, proposedEnd sql.NullTime
	if err := tx.QueryRow(acceptSql, args...).Scan(&quoteId, &proposedTotal, &proposedStart, &proposedEnd); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}
		if errors.Is(err, sql.ErrNoRows) {
			return repo_errors.ErrConflict
		}

		return err
	}

	// Terms amendment only. Null proposed fields leave the quote unchanged and
	// the quote status is untouched: approval remains a separate explicit step.
	if proposedTotal.Valid || proposedStart.Valid || proposedEnd.Valid {
		amend := r.SqlBuilder.Update("quote")
		if proposedTotal.Valid {
			amend = amend.Set("total", proposedTotal.Decimal)
		}
		if proposedStart.Valid {
			amend = amend.Set("start_date", proposedStart.Time)
		}
		if proposedEnd.Valid {
			amend = amend.Set("end_date", proposedEnd.Time)
		}

		amendSql, args, _ := amend.
			Where("id = ?", quoteId).
			Where("status = ?", common.QuoteSent).
			RunWith(tx).
			ToSql()

		result, err := tx.Exec(amendSql, args...)
		if err != nil {
			if e := tx.Rollback(); e != nil {
				return e
			}

			return err
		}

		affected, err := result.RowsAffected()
		if err != nil {
			if e := tx.Rollback(); e != nil {
				return e
			}

			return err
		}
		if affected == 0 {
			if e := tx.Rollback(); e != nil {
				return e
			}

			return repo_errors.ErrConflict
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *CounterProposalRepo) DeclineCounterProposal(ctx context.Context, id string, reason string, now time.Time) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	declineSql, args, _ := r.SqlBuilder.
		Update("counter_proposal").
		Set("status", common.CounterDeclined).
		Set("decline_reason", reason).
		Set("resolved_at", now).
		Where("id = ?", uuidForm).
		Where("status = ?", common.CounterPending).
		ToSql()

	result, err := r.Database.ExecContext(ctx, declineSql, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repo_errors.ErrConflict
	}

	return nil
}

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
)

type QuoteRepo struct {
	*postgres.Postgres
}

func NewQuoteRepo(pgdb *postgres.Postgres) *QuoteRepo {
	return &QuoteRepo{pgdb}
}

const quoteColumns = "id, case_id, contractor_id, total, start_date, end_date, expires_at, " +
	"status, declined_by_system, decline_reason, approved_at, declined_at, created_at"

type quoteRowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuote(row quoteRowScanner) (*entity.Quote, error) {
	var q entity.Quote
	var startDate, endDate, expiresAt, approvedAt, declinedAt sql.NullTime
	var createdAt time.Time

	err := row.Scan(&q.Id, &q.CaseId, &q.ContractorId, &q.Total, &startDate, &endDate,
		&expiresAt, &q.Status, &q.DeclinedBySystem, &q.DeclineReason, &approvedAt, &declinedAt, &createdAt)
	if err != nil {
		return nil, err
	}

	q.CreatedAt = createdAt
	if startDate.Valid {
		q.StartDate = &startDate.Time
	}
	if endDate.Valid {
		q.EndDate = &endDate.Time
	}
	if expiresAt.Valid {
		q.ExpiresAt = &expiresAt.Time
	}
	if approvedAt.Valid {
		q.ApprovedAt = &approvedAt.Time
	}
	if declinedAt.Valid {
		q.DeclinedAt = &declinedAt.Time
	}

	return &q, nil
}

func (r *QuoteRepo) CreateQuote(ctx context.Context, input *entity.CreateQuoteInput) (uuid.UUID, error) {
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

	createQuoteReq, args, _ := r.SqlBuilder.
		Insert("quote").
		Columns("case_id", "contractor_id", "total", "start_date", "end_date", "expires_at", "status").
		Values(caseUuid, contractorUuid, input.Total, input.StartDate, input.EndDate, input.ExpiresAt, status).
		Suffix("RETURNING id").
		ToSql()

	var quoteId uuid.UUID
	if err := r.Database.QueryRowContext(ctx, createQuoteReq, args...).Scan(&quoteId); err != nil {
		return uuid.Nil, err
	}

	return quoteId, nil
}

func (r *QuoteRepo) GetQuoteById(ctx context.Context, id string) (*entity.Quote, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	getQuoteReq, args, _ := r.SqlBuilder.
		Select(quoteColumns).
		From("quote").
		Where("id = ?", uuidForm).
		ToSql()

	quote, err := scanQuote(r.Database.QueryRowContext(ctx, getQuoteReq, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return quote, nil
}

func (r *QuoteRepo) GetCaseQuotes(ctx context.Context, caseId string) ([]entity.Quote, error) {
	uuidForm, err := uuid.Parse(caseId)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	getCaseQuotesReq, args, _ := r.SqlBuilder.
		Select(quoteColumns).
		From("quote").
		Where("case_id = ?", uuidForm).
		OrderBy("created_at ASC").
		ToSql()

	rows, err := r.Database.QueryContext(ctx, getCaseQuotesReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotes := make([]entity.Quote, 0)
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return quotes, err
		}
		quotes = append(quotes, *quote)
	}
	if err = rows.Err(); err != nil {
		return quotes, err
	}

	return quotes, nil
}

func (r *QuoteRepo) SendQuote(ctx context.Context, id string) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	sendQuoteSql, args, _ := r.SqlBuilder.
		Update("quote").
		Set("status", common.QuoteSent).
		Where("id = ?", uuidForm).
		Where("status = ?", common.QuoteDraft).
		ToSql()

	result, err := r.Database.ExecContext(ctx, sendQuoteSql, args...)
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

func (r *QuoteRepo) AcceptQuote(ctx context.Context, caseId string, quoteId string, now time.Time) error {
	caseUuid, err := uuid.Parse(caseId)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	quoteUuid, err := uuid.Parse(quoteId)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// Guarded on Sent and not past expiry: the state is re-checked inside the
	// transaction, so a racing acceptance loses here instead of double-approving.
	approveSql, args, _ := r.SqlBuilder.
		Update("quote").
		Set("status", common.QuoteApproved).
		Set("approved_at", now).
		Where("id = ?", quoteUuid).
		Where("case_id = ?", caseUuid).
		Where("status = ?", common.QuoteSent).
		Where("(expires_at IS NULL OR expires_at > ?)", now).
		Suffix("RETURNING contractor_id").
		RunWith(tx).
		ToSql()

	var contractorId uuid.UUID
	if err := tx.QueryRow(approveSql, args...).Scan(&contractorId); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}
		if errors.Is(err, sql.ErrNoRows) {
			return repo_errors.ErrConflict
		}

		return err
	}

	declineSiblingsSql, args, _ := r.SqlBuilder.
		Update("quote").
		Set("status", common.QuoteDeclined).
		Set("declined_at", now).
		Set("declined_by_system", true).
		Where("case_id = ?", caseUuid).
		Where("id <> ?", quoteUuid).
		Where("status = ?", common.QuoteSent).
		RunWith(tx).
		ToSql()

	if _, err := tx.Exec(declineSiblingsSql, args...); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}

	assignCaseSql, args, _ := r.SqlBuilder.
		Update("maintenance_case").
		Set("status", common.CaseInReview).
		Set("assigned_contractor_id", contractorId).
		Where("id = ?", caseUuid).
		Where("status = ?", common.CaseNew).
		RunWith(tx).
		ToSql()

	result, err := tx.Exec(assignCaseSql, args...)
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

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *QuoteRepo) CancelApproval(ctx context.Context, caseId string, quoteId string) error {
	caseUuid, err := uuid.Parse(caseId)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	quoteUuid, err := uuid.Parse(quoteId)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	cancelSql, args, _ := r.SqlBuilder.
		Update("quote").
		Set("status", common.QuoteCancelled).
		Where("id = ?", quoteUuid).
		Where("case_id = ?", caseUuid).
		Where("status = ?", common.QuoteApproved).
		RunWith(tx).
		ToSql()

	result, err := tx.Exec(cancelSql, args...)
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

	// Only declines applied as acceptance side effects are reverted;
	// independently declined quotes stay declined.
	revertSiblingsSql, args, _ := r.SqlBuilder.
		Update("quote").
		Set("status", common.QuoteSent).
		Set("declined_at", nil).
		Set("declined_by_system", false).
		Set("decline_reason", "").
		Where("case_id = ?", caseUuid).
		Where("status = ?", common.QuoteDeclined).
		Where("declined_by_system = ?", true).
		RunWith(tx).
		ToSql()

	if _, err := tx.Exec(revertSiblingsSql, args...); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}

	resetCaseSql, args, _ := r.SqlBuilder.
		Update("maintenance_case").
		Set("status", common.CaseNew).
		Set("assigned_contractor_id", nil).
		Where("id = ?", caseUuid).
		RunWith(tx).
		ToSql()

	if _, err := tx.Exec(resetCaseSql, args...); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *QuoteRepo) DeclineQuote(ctx context.Context, id string, reason string, now time.Time) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	declineQuoteSql, args, _ := r.SqlBuilder.
		Update("quote").
		Set("status", common.QuoteDeclined).
		Set("declined_at", now).
		Set("declined_by_system", false).
		Set("decline_reason", reason).
		Where("id = ?", uuidForm).
		Where("status = ?", common.QuoteSent).
		ToSql()

	result, err := r.Database.ExecContext(ctx, declineQuoteSql, args...)
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

func (r *QuoteRepo) ExpireQuote(ctx context.Context, id string, now time.Time) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	expireQuoteSql, args, _ := r.SqlBuilder.
		Update("quote").
		Set("status", common.QuoteExpired).
		Where("id = ?", uuidForm).
		Where("status = ?", common.QuoteSent).
		Where("expires_at IS NOT NULL").
		Where("expires_at <= ?", now).
		ToSql()

	result, err := r.Database.ExecContext(ctx, expireQuoteSql, args...)
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

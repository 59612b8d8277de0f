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

type CaseRepo struct {
	*postgres.Postgres
}

func NewCaseRepo(pgdb *postgres.Postgres) *CaseRepo {
	return &CaseRepo{pgdb}
}

func (r *CaseRepo) CreateCase(ctx context.Context, input *entity.CreateCaseInput) (uuid.UUID, error) {
	orgId, err := uuid.Parse(input.OrganizationId)
	if err != nil {
		return uuid.Nil, err
	}

	status := input.Status
	if status == "" {
		status = common.CaseNew
	}

	createCaseReq, args, _ := r.SqlBuilder.
		Insert("maintenance_case").
		Columns("organization_id", "title", "category", "status").
		Values(orgId, input.Title, input.Category, status).
		Suffix("RETURNING id").
		ToSql()

	var caseId uuid.UUID
	if err := r.Database.QueryRowContext(ctx, createCaseReq, args...).Scan(&caseId); err != nil {
		return uuid.Nil, err
	}

	return caseId, nil
}

func (r *CaseRepo) GetCaseById(ctx context.Context, id string) (*entity.Case, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	getCaseReq, args, _ := r.SqlBuilder.
		Select("id, organization_id, title, category, status, assigned_contractor_id, created_at").
		From("maintenance_case").
		Where("id = ?", uuidForm).
		ToSql()

	var c entity.Case
	var assigned uuid.NullUUID
	var createdAt time.Time
	row := r.Database.QueryRowContext(ctx, getCaseReq, args...)
	err = row.Scan(&c.Id, &c.OrganizationId, &c.Title, &c.Category, &c.Status, &assigned, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	c.CreatedAt = createdAt
	if assigned.Valid {
		c.AssignedContractorId = &assigned.UUID
	}

	return &c, nil
}

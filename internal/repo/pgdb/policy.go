package pgdb

import (
	"context"
	"database/sql"
	"errors"

	"maintenance-marketplace-api/internal/entity"
	"maintenance-marketplace-api/internal/repo/repo_errors"
	"maintenance-marketplace-api/pkg/postgres"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PolicyRepo struct {
	*postgres.Postgres
}

func NewPolicyRepo(pgdb *postgres.Postgres) *PolicyRepo {
	return &PolicyRepo{pgdb}
}

func (r *PolicyRepo) GetApprovalPolicy(ctx context.Context, organizationId uuid.UUID) (*entity.ApprovalPolicy, error) {
	getPolicyReq, args, _ := r.SqlBuilder.
		Select("involvement_mode").
		From("organization_policy").
		Where("organization_id = ?", organizationId).
		ToSql()

	policy := entity.ApprovalPolicy{OrganizationId: organizationId}
	err := r.Database.QueryRowContext(ctx, getPolicyReq, args...).Scan(&policy.InvolvementMode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	trusted, err := r.contractorIds(ctx, "trusted_contractor", organizationId)
	if err != nil {
		return nil, err
	}
	policy.TrustedContractorIds = trusted

	return &policy, nil
}

func (r *PolicyRepo) GetOrganizationContractorIds(ctx context.Context, organizationId uuid.UUID) ([]uuid.UUID, error) {
	getLinkedReq, args, _ := r.SqlBuilder.
		Select("id").
		From("contractor").
		Where("organization_id = ?", organizationId).
		Where("active = ?", true).
		OrderBy("created_at ASC").
		ToSql()

	return r.queryIds(ctx, getLinkedReq, args)
}

func (r *PolicyRepo) GetFavoriteContractorIds(ctx context.Context, organizationId uuid.UUID) ([]uuid.UUID, error) {
	return r.contractorIds(ctx, "favorite_contractor", organizationId)
}

func (r *PolicyRepo) GetContractorProfiles(ctx context.Context, ids []uuid.UUID) ([]entity.ContractorProfile, error) {
	if len(ids) == 0 {
		return []entity.ContractorProfile{}, nil
	}

	getProfilesReq, args, _ := r.SqlBuilder.
		Select("id, organization_id, name, specialties, rating, jobs_completed, " +
			"response_time_hours, emergency_available, is_available, active").
		From("contractor").
		Where("id = any(?)", pq.Array(ids)).
		ToSql()

	rows, err := r.Database.QueryContext(ctx, getProfilesReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]entity.ContractorProfile, 0)
	for rows.Next() {
		var p entity.ContractorProfile
		if err := rows.Scan(&p.Id, &p.OrganizationId, &p.Name, pq.Array(&p.Specialties), &p.Rating,
			&p.JobsCompleted, &p.ResponseTimeHours, &p.EmergencyAvailable, &p.IsAvailable, &p.Active); err != nil {
			return profiles, err
		}
		profiles = append(profiles, p)
	}
	if err = rows.Err(); err != nil {
		return profiles, err
	}

	return profiles, nil
}

func (r *PolicyRepo) contractorIds(ctx context.Context, table string, organizationId uuid.UUID) ([]uuid.UUID, error) {
	idsReq, args, _ := r.SqlBuilder.
		Select("contractor_id").
		From(table).
		Where("organization_id = ?", organizationId).
		OrderBy("created_at ASC").
		ToSql()

	return r.queryIds(ctx, idsReq, args)
}

func (r *PolicyRepo) queryIds(ctx context.Context, query string, args []interface{}) ([]uuid.UUID, error) {
	rows, err := r.Database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return ids, err
	}

	return ids, nil
}

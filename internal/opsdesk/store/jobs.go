package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/opsdeskhq/opsdesk/internal/opsdesk/domain"
)

// CreateJob validates and inserts a job, then fills in the store-assigned
// creation-order Seq.
func (s *Store) CreateJob(ctx context.Context, j *domain.Job) error {
	if err := j.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	techIDs, err := marshalJSON(j.TechnicianIDs)
	if err != nil {
		return fmt.Errorf("failed to encode technician ids: %w", err)
	}
	lineItems, err := marshalJSON(j.LineItems)
	if err != nil {
		return fmt.Errorf("failed to encode line items: %w", err)
	}
	checklist, err := marshalJSON(j.Checklist)
	if err != nil {
		return fmt.Errorf("failed to encode checklist: %w", err)
	}
	photos, err := marshalJSON(j.Photos)
	if err != nil {
		return fmt.Errorf("failed to encode photos: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, client_id, property_id, title, description, status,
			priority, start_at, end_at, technician_ids, line_items, checklist,
			photos, cancellation_reason, on_my_way_tech_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, j.ID, j.ClientID, j.PropertyID, j.Title, j.Description, string(j.Status),
		j.Priority, j.StartAt, j.EndAt, techIDs, lineItems, checklist,
		photos, j.CancellationReason, j.OnMyWayTechID, j.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read job seq: %w", err)
	}
	j.Seq = seq
	return nil
}

// GetJob returns the job with the given id, or nil when absent.
func (s *Store) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	row := s.db.QueryRowContext(ctx, jobSelect+` WHERE id = ?`, id)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return j, err
}

// ListJobs returns all jobs in creation order.
func (s *Store) ListJobs(ctx context.Context) ([]*domain.Job, error) {
	rows, err := s.db.QueryContext(ctx, jobSelect+` ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// CancelJob marks a job cancelled with the given reason. Jobs already in a
// terminal state are left untouched.
func (s *Store) CancelJob(ctx context.Context, jobID, reason string) error {
	j, err := s.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if j == nil {
		return fmt.Errorf("job %s not found", jobID)
	}
	if j.Status.Terminal() {
		return nil
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, cancellation_reason = ? WHERE id = ?
	`, string(domain.JobCancelled), reason, jobID)
	if err != nil {
		return fmt.Errorf("failed to cancel job: %w", err)
	}
	return nil
}

// AssignTechnician adds a technician to a job's crew. Assigning a technician
// who is already on the crew is a no-op.
func (s *Store) AssignTechnician(ctx context.Context, jobID, techID string) error {
	j, err := s.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if j == nil {
		return fmt.Errorf("job %s not found", jobID)
	}
	if j.Assigned(techID) {
		return nil
	}

	techIDs, err := marshalJSON(append(j.TechnicianIDs, techID))
	if err != nil {
		return fmt.Errorf("failed to encode technician ids: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET technician_ids = ? WHERE id = ?
	`, techIDs, jobID); err != nil {
		return fmt.Errorf("failed to assign technician: %w", err)
	}
	return nil
}

const jobSelect = `
	SELECT seq, id, client_id, property_id, title, description, status,
		priority, start_at, end_at, technician_ids, line_items, checklist,
		photos, cancellation_reason, on_my_way_tech_id, created_at
	FROM jobs`

func scanJob(row rowScanner) (*domain.Job, error) {
	var j domain.Job
	var status, techIDs, lineItems, checklist, photos string
	err := row.Scan(&j.Seq, &j.ID, &j.ClientID, &j.PropertyID, &j.Title,
		&j.Description, &status, &j.Priority, &j.StartAt, &j.EndAt,
		&techIDs, &lineItems, &checklist, &photos,
		&j.CancellationReason, &j.OnMyWayTechID, &j.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}
	j.Status = domain.JobStatus(status)
	if err := unmarshalJSON(techIDs, &j.TechnicianIDs); err != nil {
		return nil, fmt.Errorf("failed to decode technician ids: %w", err)
	}
	if err := unmarshalJSON(lineItems, &j.LineItems); err != nil {
		return nil, fmt.Errorf("failed to decode line items: %w", err)
	}
	if err := unmarshalJSON(checklist, &j.Checklist); err != nil {
		return nil, fmt.Errorf("failed to decode checklist: %w", err)
	}
	if err := unmarshalJSON(photos, &j.Photos); err != nil {
		return nil, fmt.Errorf("failed to decode photos: %w", err)
	}
	return &j, nil
}

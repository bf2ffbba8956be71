package repo

import (
	"context"
	"time"

	"adforge-server/internal/domain"
	"adforge-server/internal/infra"
	"adforge-server/internal/sqlinline"

	"github.com/jackc/pgx/v5"
)

// JobsPG implements domain.JobRepository on PostgreSQL.
type JobsPG struct {
	sql infra.SQLExecutor
}

// NewJobRepository creates a job repository bound to the given executor.
func NewJobRepository(sql infra.SQLExecutor) *JobsPG {
	return &JobsPG{sql: sql}
}

// Create inserts a new job record.
func (r *JobsPG) Create(ctx context.Context, job *domain.Job) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertJob,
		job.ID,
		job.OwnerID,
		job.Type,
		job.Status,
		job.Provider,
		job.ProviderTaskID,
		nullableBytes(job.InputParams),
		job.CreditsUsed,
	)
	return err
}

// GetByID fetches a job by its identifier.
func (r *JobsPG) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectJobByID, jobID)
	return scanJob(row)
}

// GetByTaskRef fetches the job that owns a vendor task reference.
func (r *JobsPG) GetByTaskRef(ctx context.Context, ref domain.TaskRef) (*domain.Job, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectJobByTaskRef, ref.Provider, ref.TaskID)
	return scanJob(row)
}

// ListByOwner returns the owner's jobs, newest first.
func (r *JobsPG) ListByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Job, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectJobsByOwner, ownerID, limit)
	if err != nil {
		return nil, err
	}
	return scanJobs(rows)
}

// ListResolvable returns non-terminal jobs with a vendor task id assigned.
func (r *JobsPG) ListResolvable(ctx context.Context, limit int) ([]domain.Job, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectResolvableJobs, limit)
	if err != nil {
		return nil, err
	}
	return scanJobs(rows)
}

// ListStale returns non-terminal jobs created before the given cutoff.
func (r *JobsPG) ListStale(ctx context.Context, olderThan time.Time, limit int) ([]domain.Job, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectStaleJobs, olderThan, limit)
	if err != nil {
		return nil, err
	}
	return scanJobs(rows)
}

// SetTaskRef records the vendor task id and moves the job to IN_QUEUE.
func (r *JobsPG) SetTaskRef(ctx context.Context, jobID string, ref domain.TaskRef) error {
	_, err := r.sql.Exec(ctx, sqlinline.QSetJobTaskRef, jobID, ref.Provider, ref.TaskID)
	return err
}

// Transition advances status only when the row is still in the from state.
func (r *JobsPG) Transition(ctx context.Context, jobID string, from, to domain.JobStatus, errMsg *string) (bool, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QTransitionJobStatus, jobID, from, to, errMsg)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkCompleted finalizes a job with its result URLs.
func (r *JobsPG) MarkCompleted(ctx context.Context, jobID, resultURL, thumbnailURL string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QMarkJobCompleted, jobID, resultURL, thumbnailURL)
	return err
}

// MarkFailed moves a non-terminal job to FAILED with the error recorded.
func (r *JobsPG) MarkFailed(ctx context.Context, jobID, errMsg string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QMarkJobFailed, jobID, errMsg)
	return err
}

// MarkRefunded claims the refund marker; only one caller ever wins it.
func (r *JobsPG) MarkRefunded(ctx context.Context, jobID string) (bool, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QMarkJobRefunded, jobID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes the job when it belongs to the given owner.
func (r *JobsPG) Delete(ctx context.Context, jobID, ownerID string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteJob, jobID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var job domain.Job
	if err := row.Scan(
		&job.ID,
		&job.OwnerID,
		&job.Type,
		&job.Status,
		&job.Provider,
		&job.ProviderTaskID,
		&job.InputParams,
		&job.ResultURL,
		&job.ThumbnailURL,
		&job.ErrorMessage,
		&job.CreditsUsed,
		&job.RefundedAt,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.CompletedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

func scanJobs(rows pgx.Rows) ([]domain.Job, error) {
	defer rows.Close()
	var jobs []domain.Job
	for rows.Next() {
		var job domain.Job
		if err := rows.Scan(
			&job.ID,
			&job.OwnerID,
			&job.Type,
			&job.Status,
			&job.Provider,
			&job.ProviderTaskID,
			&job.InputParams,
			&job.ResultURL,
			&job.ThumbnailURL,
			&job.ErrorMessage,
			&job.CreditsUsed,
			&job.RefundedAt,
			&job.CreatedAt,
			&job.UpdatedAt,
			&job.CompletedAt,
		); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func nullableBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

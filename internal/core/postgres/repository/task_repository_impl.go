package repository

import (
	"context"
	"errors"
	"time"

	"fieldflow/internal/apperrors"
	"fieldflow/internal/core/ports"
	"fieldflow/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new instance of TaskRepository
func NewTaskRepository(db *gorm.DB) ports.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) ListByJob(ctx context.Context, jobID uuid.UUID, includeDiscarded bool) ([]domain.Task, error) {
	var tasks []domain.Task
	q := r.db.WithContext(ctx).Where("job_id = ?", jobID)
	if !includeDiscarded {
		q = q.Where("discarded_at IS NULL")
	}
	err := q.Order("position asc").Find(&tasks).Error
	return tasks, err
}

// ApplyPlan commits every write of the plan inside one transaction. Each
// UPDATE carries its expected version in the WHERE clause, so no other
// mutation can slip between a version check and its write: RowsAffected == 0
// means a stale stamp (or a row discarded mid-flight) and aborts the whole
// plan. First writer wins.
func (r *taskRepository) ApplyPlan(ctx context.Context, plan ports.MutationPlan) (int, error) {
	newJobVersion := 0

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The job stamp goes first: it catches cross-task races that
		// per-task versions cannot, e.g. a concurrent batch touching
		// siblings this request never referenced. Only structural plans
		// bump it; a status-only or discard plan leaves it alone so
		// non-overlapping mutations never conflict through the job row.
		if plan.Structural() {
			jobQuery := tx.Model(&domain.Job{}).Where("id = ?", plan.JobID)
			if plan.ExpectedJobVersion != nil {
				jobQuery = jobQuery.Where("version = ?", *plan.ExpectedJobVersion)
			}
			res := jobQuery.Update("version", gorm.Expr("version + 1"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperrors.ErrVersionConflict
			}
		} else if plan.ExpectedJobVersion != nil {
			var job domain.Job
			if err := tx.Where("id = ?", plan.JobID).First(&job).Error; err != nil {
				return err
			}
			if job.Version != *plan.ExpectedJobVersion {
				return apperrors.ErrVersionConflict
			}
		}

		now := time.Now()
		for _, w := range plan.Writes {
			updates := map[string]interface{}{
				"parent_id": w.ParentID,
				"position":  w.Position,
				"version":   gorm.Expr("version + 1"),
			}
			if w.Repositioned {
				updates["reordered_at"] = now
			}
			if w.Status != nil {
				updates["status"] = *w.Status
			}
			if w.Discard != nil {
				if *w.Discard {
					updates["discarded_at"] = now
				} else {
					updates["discarded_at"] = nil
				}
			}

			q := tx.Model(&domain.Task{}).
				Where("id = ? AND job_id = ?", w.TaskID, plan.JobID)
			if w.ExpectedVersion != nil {
				q = q.Where("version = ?", *w.ExpectedVersion)
			}
			// A restore targets a discarded row; everything else must hit
			// an active one.
			if w.Discard != nil && !*w.Discard {
				q = q.Where("discarded_at IS NOT NULL")
			} else {
				q = q.Where("discarded_at IS NULL")
			}

			res := q.Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperrors.ErrVersionConflict
			}
		}

		var job domain.Job
		if err := tx.Where("id = ?", plan.JobID).First(&job).Error; err != nil {
			return err
		}
		newJobVersion = job.Version
		return nil
	})

	return newJobVersion, err
}

package repository

import (
	"context"
	"errors"

	"acadia.dev/studentrecords/internal/model"
	"acadia.dev/studentrecords/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) (*model.Student, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Student, error)
	FindAll(ctx context.Context, page, limit int) ([]*model.Student, int64, error)
	Update(ctx context.Context, student *model.Student, replaceGrades bool) (*model.Student, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
}

type studentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

// Create persists the student and its owned grade collection as one atomic
// write. Ownership is enforced in code: the children are inserted
// explicitly inside the same transaction, not via ORM cascade.
func (r *studentRepository) Create(ctx context.Context, student *model.Student) (*model.Student, error) {
	student.Email = NormalizeEmail(student.Email)

	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Student{}).
		Where("email = ?", student.Email).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperror.ErrDuplicateEmail
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		grades := student.Grades
		student.Grades = nil

		if err := tx.Omit(clause.Associations).Create(student).Error; err != nil {
			return err
		}

		for i := range grades {
			grades[i].StudentID = student.ID
		}
		if len(grades) > 0 {
			if err := tx.Create(&grades).Error; err != nil {
				return err
			}
		}

		student.Grades = grades
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.ErrDuplicateEmail
		}
		return nil, err
	}

	return r.FindByID(ctx, student.ID)
}

func (r *studentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	var student model.Student
	if err := r.db.WithContext(ctx).
		Preload("Grades").
		Where("id = ?", id).
		First(&student).Error; err != nil {
		return nil, err
	}

	return &student, nil
}

func (r *studentRepository) FindAll(ctx context.Context, page, limit int) ([]*model.Student, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Student{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var students []*model.Student
	if err := r.db.WithContext(ctx).
		Preload("Grades").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

// Update persists a merged student inside one transaction. When
// replaceGrades is set, every existing grade row owned by the student is
// deleted first and the attached collection is inserted fresh; either both
// steps become durable or neither does. gorm.DB.Transaction rolls back and
// releases the scope on every exit path, panics included. The returned
// record is reloaded post-commit so the caller observes the authoritative
// joined state.
func (r *studentRepository) Update(ctx context.Context, student *model.Student, replaceGrades bool) (*model.Student, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		grades := student.Grades
		student.Grades = nil

		if replaceGrades {
			if err := tx.Where("student_id = ?", student.ID).Delete(&model.Grade{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Omit(clause.Associations).Save(student).Error; err != nil {
			return err
		}

		if replaceGrades && len(grades) > 0 {
			for i := range grades {
				grades[i].StudentID = student.ID
			}
			if err := tx.Create(&grades).Error; err != nil {
				return err
			}
		}

		student.Grades = grades
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.ErrDuplicateEmail
		}
		return nil, err
	}

	return r.FindByID(ctx, student.ID)
}

// Delete is load-then-remove so that a missing id reports not-found
// instead of silently succeeding. The grade rows go first, inside the same
// transaction as the parent.
func (r *studentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var student model.Student
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&student).Error; err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", id).Delete(&model.Grade{}).Error; err != nil {
			return err
		}
		return tx.Delete(&student).Error
	})
}

// DeleteAll wipes every student and grade row. Seed/test scenarios only;
// the route layer keeps it behind the admin role.
func (r *studentRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Grade{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Student{}).Error
	})
}

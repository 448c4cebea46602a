package service

import (
	"context"
	"errors"
	"log"

	"acadia.dev/studentrecords/internal/bootstrap"
	"acadia.dev/studentrecords/internal/dto"
	"acadia.dev/studentrecords/internal/model"
	"acadia.dev/studentrecords/internal/repository"
	"acadia.dev/studentrecords/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudentService interface {
	Create(ctx context.Context, req dto.CreateStudentRequest) (*model.Student, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Student, error)
	GetAll(ctx context.Context, filter dto.StudentFilter) (*dto.PaginatedStudentResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateStudentRequest) (*model.Student, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
	SeedSample(ctx context.Context) (int, error)
}

type studentService struct {
	repo repository.StudentRepository
}

func NewStudentService(repo repository.StudentRepository) StudentService {
	return &studentService{repo: repo}
}

func (s *studentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*model.Student, error) {
	student := &model.Student{
		Name:     req.Name,
		Age:      req.Age,
		Email:    req.Email,
		Nickname: model.DeriveNickname(req.Name, req.Age),
		Gender:   model.Gender(req.Gender),
		Subjects: req.Subjects,
		Grades:   buildGrades(req.Grades),
	}

	created, err := s.repo.Create(ctx, student)
	if err != nil {
		if errors.Is(err, apperror.ErrDuplicateEmail) {
			log.Printf("[student] create rejected, email already taken: %s", student.Email)
			return nil, apperror.ErrDuplicateEmail
		}
		return nil, err
	}

	return created, nil
}

func (s *studentService) GetByID(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return student, nil
}

func (s *studentService) GetAll(ctx context.Context, filter dto.StudentFilter) (*dto.PaginatedStudentResponse, error) {
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 10
	}

	students, total, err := s.repo.FindAll(ctx, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		totalPages++
	}

	return &dto.PaginatedStudentResponse{
		Data: students,
		Meta: dto.PaginationMeta{
			CurrentPage: filter.Page,
			TotalPages:  totalPages,
			TotalItems:  total,
			Limit:       filter.Limit,
		},
	}, nil
}

// Update merges the partial input into the stored record, recomputes the
// nickname from the merged name and age, and hands the repository the
// replace-grades decision. Concurrent updates to the same id are
// last-writer-wins; there is no application-level lock.
func (s *studentService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateStudentRequest) (*model.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.Age != nil {
		student.Age = req.Age
	}
	if req.Email != nil {
		student.Email = repository.NormalizeEmail(*req.Email)
	}
	if req.Gender != nil {
		student.Gender = model.Gender(*req.Gender)
	}
	if req.Subjects != nil {
		student.Subjects = *req.Subjects
	}
	student.Nickname = model.DeriveNickname(student.Name, student.Age)

	replaceGrades := req.Grades != nil
	if replaceGrades {
		student.Grades = buildGrades(*req.Grades)
	}

	updated, err := s.repo.Update(ctx, student, replaceGrades)
	if err != nil {
		if errors.Is(err, apperror.ErrDuplicateEmail) {
			log.Printf("[student] update rejected, email already taken: %s", student.Email)
			return nil, apperror.ErrDuplicateEmail
		}
		log.Printf("[student] update transaction failed for %s, rolled back: %v", id, err)
		return nil, apperror.ErrTransaction
	}

	return updated, nil
}

func (s *studentService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *studentService) DeleteAll(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}

// SeedSample replays the bundled sample dataset through the create
// operation. Records whose email is already taken are skipped so the
// endpoint stays idempotent.
func (s *studentService) SeedSample(ctx context.Context) (int, error) {
	created := 0
	for _, req := range bootstrap.SampleStudents() {
		if _, err := s.Create(ctx, req); err != nil {
			if errors.Is(err, apperror.ErrDuplicateEmail) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}

func buildGrades(inputs []dto.GradeInput) []model.Grade {
	grades := make([]model.Grade, 0, len(inputs))
	for _, in := range inputs {
		grades = append(grades, model.Grade{
			Subject: in.Subject,
			Value:   in.Value,
		})
	}
	return grades
}

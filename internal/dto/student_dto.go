package dto

import (
	"acadia.dev/studentrecords/internal/model"
)

type GradeInput struct {
	Subject string  `json:"subject" binding:"required,max=100"`
	Value   float64 `json:"value" binding:"gte=0,lte=5"`
}

type CreateStudentRequest struct {
	Name     string       `json:"name" binding:"required,max=100"`
	Age      *int         `json:"age" binding:"omitempty,gt=0"`
	Email    string       `json:"email" binding:"required,email"`
	Gender   string       `json:"gender" binding:"required,oneof=male female other"`
	Subjects []string     `json:"subjects"`
	Grades   []GradeInput `json:"grades" binding:"omitempty,dive"`
}

// UpdateStudentRequest carries a partial update: nil fields are left
// unchanged. A non-nil Grades pointer (including a pointer to an empty
// list) replaces the student's entire grade collection.
type UpdateStudentRequest struct {
	Name     *string       `json:"name" binding:"omitempty,max=100"`
	Age      *int          `json:"age" binding:"omitempty,gt=0"`
	Email    *string       `json:"email" binding:"omitempty,email"`
	Gender   *string       `json:"gender" binding:"omitempty,oneof=male female other"`
	Subjects *[]string     `json:"subjects"`
	Grades   *[]GradeInput `json:"grades" binding:"omitempty,dive"`
}

type StudentFilter struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

type PaginatedStudentResponse struct {
	Data []*model.Student `json:"data"`
	Meta PaginationMeta   `json:"meta"`
}

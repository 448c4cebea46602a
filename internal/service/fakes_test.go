package service

import (
	"context"

	"acadia.dev/studentrecords/internal/model"
	"acadia.dev/studentrecords/internal/repository"
	"acadia.dev/studentrecords/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users map[string]*model.User // keyed by normalized email
	roles map[string]*model.Role
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: make(map[string]*model.User),
		roles: map[string]*model.Role{
			model.RoleAdmin:   {ID: 1, Name: model.RoleAdmin},
			model.RoleTeacher: {ID: 2, Name: model.RoleTeacher},
			model.RoleUser:    {ID: 3, Name: model.RoleUser},
		},
	}
}

func cloneUser(u *model.User) *model.User {
	cp := *u
	cp.Roles = append([]model.Role(nil), u.Roles...)
	return &cp
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	user.Email = repository.NormalizeEmail(user.Email)
	if _, exists := f.users[user.Email]; exists {
		return apperror.ErrDuplicateEmail
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.Email] = cloneUser(user)
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	for _, u := range f.users {
		if u.ID.String() == id {
			cp := cloneUser(u)
			cp.PasswordHash = ""
			return cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := f.FindByEmailWithSecret(ctx, email)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (f *fakeUserRepo) FindByEmailWithSecret(ctx context.Context, email string) (*model.User, error) {
	user, exists := f.users[repository.NormalizeEmail(email)]
	if !exists {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneUser(user), nil
}

func (f *fakeUserRepo) FindRoleByName(ctx context.Context, name string) (*model.Role, error) {
	role, exists := f.roles[name]
	if !exists {
		return nil, gorm.ErrRecordNotFound
	}
	return role, nil
}

type fakeStudentRepo struct {
	students map[uuid.UUID]*model.Student

	updateErr       error
	lastReplaceFlag bool
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[uuid.UUID]*model.Student)}
}

func cloneStudent(s *model.Student) *model.Student {
	cp := *s
	cp.Subjects = append(cp.Subjects[:0:0], s.Subjects...)
	cp.Grades = append([]model.Grade(nil), s.Grades...)
	return &cp
}

func (f *fakeStudentRepo) Create(ctx context.Context, student *model.Student) (*model.Student, error) {
	student.Email = repository.NormalizeEmail(student.Email)
	for _, existing := range f.students {
		if existing.Email == student.Email {
			return nil, apperror.ErrDuplicateEmail
		}
	}
	if student.ID == uuid.Nil {
		student.ID = uuid.New()
	}
	for i := range student.Grades {
		student.Grades[i].ID = uuid.New()
		student.Grades[i].StudentID = student.ID
	}
	f.students[student.ID] = cloneStudent(student)
	return cloneStudent(student), nil
}

func (f *fakeStudentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	student, exists := f.students[id]
	if !exists {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneStudent(student), nil
}

func (f *fakeStudentRepo) FindAll(ctx context.Context, page, limit int) ([]*model.Student, int64, error) {
	all := make([]*model.Student, 0, len(f.students))
	for _, s := range f.students {
		all = append(all, cloneStudent(s))
	}
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return []*model.Student{}, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (f *fakeStudentRepo) Update(ctx context.Context, student *model.Student, replaceGrades bool) (*model.Student, error) {
	f.lastReplaceFlag = replaceGrades
	if f.updateErr != nil {
		return nil, f.updateErr
	}

	existing, exists := f.students[student.ID]
	if !exists {
		return nil, gorm.ErrRecordNotFound
	}

	merged := cloneStudent(student)
	if !replaceGrades {
		merged.Grades = append([]model.Grade(nil), existing.Grades...)
	} else {
		for i := range merged.Grades {
			merged.Grades[i].ID = uuid.New()
			merged.Grades[i].StudentID = merged.ID
		}
	}
	f.students[student.ID] = merged
	return cloneStudent(merged), nil
}

func (f *fakeStudentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := f.students[id]; !exists {
		return gorm.ErrRecordNotFound
	}
	delete(f.students, id)
	return nil
}

func (f *fakeStudentRepo) DeleteAll(ctx context.Context) error {
	f.students = make(map[uuid.UUID]*model.Student)
	return nil
}

package bootstrap

import (
	"log"

	"acadia.dev/studentrecords/internal/dto"
	"acadia.dev/studentrecords/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Student{},
		&model.Grade{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []model.Role{
		{Name: model.RoleAdmin, Description: "Super administrator"},
		{Name: model.RoleTeacher, Description: "Teacher"},
		{Name: model.RoleUser, Description: "Regular user"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&model.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func SeedAdminUser(db *gorm.DB) error {
	var adminRole model.Role
	if err := db.Where("name = ?", model.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&model.User{}).
		Where("email = ?", "admin@acadia.dev").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	password := "admin123"
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := model.User{
		Email:        "admin@acadia.dev",
		FullName:     "Administrator",
		PasswordHash: string(hashedPasswordBytes),
		Active:       true,
		Roles:        []model.Role{adminRole},
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Println("✅ Admin user seeded successfully")
	log.Println("   Email: admin@acadia.dev")
	log.Println("   Password: admin123")

	return nil
}

// SampleStudents is the fixed dataset the seed endpoint replays through
// the regular create operation.
func SampleStudents() []dto.CreateStudentRequest {
	return []dto.CreateStudentRequest{
		{
			Name:     "Juan Perez",
			Age:      intPtr(20),
			Email:    "juan.perez@example.com",
			Gender:   "male",
			Subjects: []string{"Math", "Science"},
			Grades: []dto.GradeInput{
				{Subject: "Math", Value: 4.5},
				{Subject: "Science", Value: 4.0},
			},
		},
		{
			Name:     "Maria Lopez",
			Age:      intPtr(22),
			Email:    "maria.lopez@example.com",
			Gender:   "female",
			Subjects: []string{"Art", "History", "Art"},
			Grades: []dto.GradeInput{
				{Subject: "Art", Value: 4.8},
			},
		},
		{
			Name:     "Carlos Gomez",
			Email:    "carlos.gomez@example.com",
			Gender:   "male",
			Subjects: []string{"Physics"},
			Grades: []dto.GradeInput{
				{Subject: "Physics", Value: 3.9},
				{Subject: "Math", Value: 3.2},
			},
		},
		{
			Name:     "Ana Rodriguez",
			Age:      intPtr(19),
			Email:    "ana.rodriguez@example.com",
			Gender:   "female",
			Subjects: []string{"Chemistry", "Biology"},
		},
		{
			Name:   "Sam Rivera",
			Age:    intPtr(21),
			Email:  "sam.rivera@example.com",
			Gender: "other",
			Grades: []dto.GradeInput{
				{Subject: "Literature", Value: 4.2},
			},
		},
	}
}

func intPtr(i int) *int {
	return &i
}

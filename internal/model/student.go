package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Student owns its Grades exclusively: a grade row never outlives its
// student, and an update that supplies a grades list replaces the whole
// collection rather than merging into it.
type Student struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Age       *int           `json:"age,omitempty"`
	Email     string         `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Nickname  string         `gorm:"size:120;not null" json:"nickname"`
	Gender    Gender         `gorm:"size:10;not null" json:"gender"`
	Subjects  pq.StringArray `gorm:"type:text[]" json:"subjects"`
	Grades    []Grade        `gorm:"constraint:OnDelete:CASCADE" json:"grades"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type Grade struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Subject   string    `gorm:"size:100;not null" json:"subject"`
	Value     float64   `gorm:"type:decimal(5,2);not null" json:"value"`
	StudentID uuid.UUID `gorm:"type:uuid;index;not null" json:"student_id"`
}

func (g *Grade) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// DeriveNickname computes the display nickname from name and age: the name
// lowercased and trimmed with spaces replaced by underscores, and the age
// appended when present ("Juan Perez", 20 -> "juan_perez20"). Callers never
// supply the nickname directly; it is recomputed on every create and update.
func DeriveNickname(name string, age *int) string {
	nickname := strings.ToLower(strings.TrimSpace(name))
	nickname = strings.ReplaceAll(nickname, " ", "_")
	if age != nil {
		nickname += strconv.Itoa(*age)
	}
	return nickname
}

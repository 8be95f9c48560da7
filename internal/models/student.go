package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Student struct {
	ID           string         `json:"id" gorm:"primaryKey;size:36"`
	Name         string         `json:"name" gorm:"not null;size:200"`
	DateOfBirth  datatypes.Date `json:"dateofbirth" gorm:"column:date_of_birth;not null"`
	AadharNumber string         `json:"aadharNumber" gorm:"uniqueIndex;not null;size:32"`
	ProctorID    *string        `json:"proctorId" gorm:"size:36;index"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Proctor           *Professor         `json:"proctor" gorm:"foreignKey:ProctorID"`
	LibraryMembership *LibraryMembership `json:"libraryMembership" gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Student) TableName() string {
	return "students"
}

func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

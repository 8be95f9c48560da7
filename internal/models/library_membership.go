package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LibraryMembership struct {
	ID         string         `json:"id" gorm:"primaryKey;size:36"`
	StudentID  string         `json:"studentId" gorm:"uniqueIndex;not null;size:36"`
	IssueDate  datatypes.Date `json:"issueDate" gorm:"not null"`
	ExpiryDate datatypes.Date `json:"expiryDate" gorm:"not null"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (LibraryMembership) TableName() string {
	return "library_memberships"
}

func (m *LibraryMembership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Professor struct {
	ID           string `json:"id" gorm:"primaryKey;size:36"`
	Name         string `json:"name" gorm:"not null;size:200"`
	Seniority    string `json:"seniority" gorm:"not null;size:50"`
	AadharNumber string `json:"aadharNumber" gorm:"uniqueIndex;not null;size:32"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Students proctored by this professor. Removing the professor clears their proctor_id.
	Students []Student `json:"students,omitempty" gorm:"foreignKey:ProctorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (Professor) TableName() string {
	return "professors"
}

func (p *Professor) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

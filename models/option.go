package models

import (
	"time"
)

type QuestionOption struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	QuestionID uint      `json:"questionId" gorm:"not null;index"`
	Text       string    `json:"text" gorm:"not null"`
	Value      string    `json:"value" gorm:"type:varchar(32);not null"`
	IsCorrect  bool      `json:"isCorrect" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"createdAt"`
}

package models

import (
	"strconv"
	"time"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type Question struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description" gorm:"type:text;not null;default:''"`
	Category    string     `json:"category" gorm:"not null;index"`
	Difficulty  Difficulty `json:"difficulty" gorm:"type:varchar(16);not null;index"`
	CreatedBy   uint       `json:"createdBy" gorm:"not null;index"`
	Explanation string     `json:"explanation" gorm:"type:text;not null;default:''"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// Relationships
	Options []QuestionOption `json:"options" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`

	// Id of the option flagged correct, "" when none is.
	CorrectAnswerID string `json:"correctAnswerId" gorm:"-"`
}

// ResolveCorrectAnswer normalizes Options to a non-nil slice and fills
// CorrectAnswerID from the flagged option.
func (q *Question) ResolveCorrectAnswer() {
	if q.Options == nil {
		q.Options = []QuestionOption{}
	}
	q.CorrectAnswerID = ""
	for _, opt := range q.Options {
		if opt.IsCorrect {
			q.CorrectAnswerID = strconv.FormatUint(uint64(opt.ID), 10)
			return
		}
	}
}

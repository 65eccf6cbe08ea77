package services

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"practicetests/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type QuestionService struct {
	db       *gorm.DB
	redis    *redis.Client
	cacheTTL time.Duration

	// staleCache is set when a write could not bump the cache generation.
	staleCache atomic.Bool
}

// NewQuestionService builds the question repository. A nil redis client
// disables read caching.
func NewQuestionService(db *gorm.DB, redis *redis.Client, cacheTTL time.Duration) *QuestionService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &QuestionService{
		db:       db,
		redis:    redis,
		cacheTTL: cacheTTL,
	}
}

type OptionInput struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

type QuestionInput struct {
	Title              string            `json:"title"`
	Description        string            `json:"description"`
	Category           string            `json:"category"`
	Difficulty         models.Difficulty `json:"difficulty"`
	Options            []OptionInput     `json:"options"`
	CorrectAnswerValue string            `json:"correctAnswerValue"`
	Explanation        string            `json:"explanation"`
}

type QuestionFilter struct {
	Category   string            `form:"category"`
	Difficulty models.Difficulty `form:"difficulty"`
}

func (f QuestionFilter) IsZero() bool {
	return f.Category == "" && f.Difficulty == ""
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Validate checks the required fields and that a supplied correct answer
// value selects exactly one option.
func (in *QuestionInput) Validate() error {
	switch {
	case blank(in.Title):
		return validationError("title is required")
	case blank(in.Category):
		return validationError("category is required")
	case in.Difficulty == "":
		return validationError("difficulty is required")
	case !in.Difficulty.Valid():
		return validationError("difficulty must be one of easy, medium, hard")
	case len(in.Options) == 0:
		return validationError("at least one option is required")
	}

	matches := 0
	for i, opt := range in.Options {
		if blank(opt.Text) {
			return validationError("option %d: text is required", i+1)
		}
		if blank(opt.Value) {
			return validationError("option %d: value is required", i+1)
		}
		if in.CorrectAnswerValue != "" && opt.Value == in.CorrectAnswerValue {
			matches++
		}
	}

	if in.CorrectAnswerValue != "" && matches != 1 {
		return validationError("correctAnswerValue %q must match exactly one option, matched %d", in.CorrectAnswerValue, matches)
	}

	return nil
}

func (s *QuestionService) CreateQuestion(ctx context.Context, userID uint, in *QuestionInput) (*models.Question, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	// Start transaction
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, internalError("begin transaction", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	question := models.Question{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Difficulty:  in.Difficulty,
		CreatedBy:   userID,
		Explanation: in.Explanation,
	}

	if err := tx.Create(&question).Error; err != nil {
		tx.Rollback()
		return nil, internalError("create question", err)
	}

	options, err := insertOptions(tx, question.ID, in)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// Commit transaction
	if err := tx.Commit().Error; err != nil {
		return nil, internalError("commit question", err)
	}

	question.Options = options
	question.ResolveCorrectAnswer()

	s.invalidateQuestionCache(ctx)

	return &question, nil
}

func (s *QuestionService) UpdateQuestion(ctx context.Context, questionID uint, in *QuestionInput) (*models.Question, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	// Start transaction
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, internalError("begin transaction", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	res := tx.Model(&models.Question{}).Where("id = ?", questionID).Updates(map[string]interface{}{
		"title":       in.Title,
		"description": in.Description,
		"category":    in.Category,
		"difficulty":  string(in.Difficulty),
		"explanation": in.Explanation,
		"updated_at":  time.Now(),
	})
	if res.Error != nil {
		tx.Rollback()
		return nil, internalError("update question", res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, ErrQuestionNotFound
	}

	// Replace all options
	if err := tx.Where("question_id = ?", questionID).Delete(&models.QuestionOption{}).Error; err != nil {
		tx.Rollback()
		return nil, internalError("delete options", err)
	}

	options, err := insertOptions(tx, questionID, in)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var question models.Question
	if err := tx.First(&question, questionID).Error; err != nil {
		tx.Rollback()
		return nil, internalError("reload question", err)
	}

	// Commit transaction
	if err := tx.Commit().Error; err != nil {
		return nil, internalError("commit question", err)
	}

	question.Options = options
	question.ResolveCorrectAnswer()

	s.invalidateQuestionCache(ctx)

	return &question, nil
}

// insertOptions writes the options in submission order, flagging the one
// whose value equals the correct answer value.
func insertOptions(tx *gorm.DB, questionID uint, in *QuestionInput) ([]models.QuestionOption, error) {
	options := make([]models.QuestionOption, 0, len(in.Options))
	for _, optIn := range in.Options {
		option := models.QuestionOption{
			QuestionID: questionID,
			Text:       optIn.Text,
			Value:      optIn.Value,
			IsCorrect:  in.CorrectAnswerValue != "" && optIn.Value == in.CorrectAnswerValue,
		}

		if err := tx.Create(&option).Error; err != nil {
			return nil, internalError("create option", err)
		}
		options = append(options, option)
	}
	return options, nil
}

func preloadOptions(db *gorm.DB) *gorm.DB {
	return db.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("question_options.id")
	})
}

func (s *QuestionService) GetQuestion(ctx context.Context, questionID uint) (*models.Question, error) {
	gen, useCache := s.cacheGeneration(ctx)
	if useCache {
		if cached := s.cachedQuestion(ctx, gen, questionID); cached != nil {
			return cached, nil
		}
	}

	var question models.Question
	err := preloadOptions(s.db.WithContext(ctx)).First(&question, questionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, internalError("get question", err)
	}
	question.ResolveCorrectAnswer()

	if useCache {
		s.storeQuestion(ctx, gen, &question)
	}

	return &question, nil
}

// ListQuestions returns questions newest first. Unfiltered listings are served
// from the cache when one is configured.
func (s *QuestionService) ListQuestions(ctx context.Context, filter QuestionFilter) ([]models.Question, error) {
	if filter.Difficulty != "" && !filter.Difficulty.Valid() {
		return nil, validationError("difficulty must be one of easy, medium, hard")
	}

	var gen int64
	useCache := false
	if filter.IsZero() {
		gen, useCache = s.cacheGeneration(ctx)
	}
	if useCache {
		if cached := s.cachedQuestionList(ctx, gen); cached != nil {
			return cached, nil
		}
	}

	query := preloadOptions(s.db.WithContext(ctx))
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", string(filter.Difficulty))
	}

	questions := []models.Question{}
	if err := query.Order("created_at DESC").Order("id DESC").Find(&questions).Error; err != nil {
		return nil, internalError("list questions", err)
	}
	for i := range questions {
		questions[i].ResolveCorrectAnswer()
	}

	if useCache {
		s.storeQuestionList(ctx, gen, questions)
	}

	return questions, nil
}

func (s *QuestionService) DeleteQuestion(ctx context.Context, questionID uint) (uint, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return 0, internalError("begin transaction", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := tx.Where("question_id = ?", questionID).Delete(&models.QuestionOption{}).Error; err != nil {
		tx.Rollback()
		return 0, internalError("delete options", err)
	}

	res := tx.Delete(&models.Question{}, questionID)
	if res.Error != nil {
		tx.Rollback()
		return 0, internalError("delete question", res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return 0, ErrQuestionNotFound
	}

	if err := tx.Commit().Error; err != nil {
		return 0, internalError("commit delete", err)
	}

	s.invalidateQuestionCache(ctx)

	return questionID, nil
}

func (s *QuestionService) QuestionExistsByTitle(ctx context.Context, title string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Question{}).Where("title = ?", title).Count(&count).Error; err != nil {
		return false, internalError("count questions", err)
	}
	return count > 0, nil
}

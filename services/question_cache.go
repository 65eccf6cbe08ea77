package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"practicetests/models"

	"github.com/redis/go-redis/v9"
)

// Cache entries are keyed by a generation number that every committed write
// bumps. A reader captures the generation before it queries the database, so
// a result loaded before a write is stored under a generation nobody reads.
const questionGenerationKey = "questions:generation"

func questionListKey(gen int64) string {
	return fmt.Sprintf("questions:g%d:all", gen)
}

func questionKey(gen int64, id uint) string {
	return fmt.Sprintf("questions:g%d:%d", gen, id)
}

// cacheGeneration returns the generation reads should use. ok is false when
// the cache must be bypassed: no Redis, an unreadable counter, or a write
// whose invalidation has not reached Redis yet.
func (s *QuestionService) cacheGeneration(ctx context.Context) (gen int64, ok bool) {
	if s.redis == nil {
		return 0, false
	}

	if s.staleCache.Load() {
		// Retry the missed bump before trusting anything Redis holds.
		if !s.bumpGeneration(ctx) {
			return 0, false
		}
	}

	gen, err := s.redis.Get(ctx, questionGenerationKey).Int64()
	if err == redis.Nil {
		return 0, true
	}
	if err != nil {
		log.Printf("Failed to read question cache generation: %v", err)
		return 0, false
	}
	return gen, true
}

// bumpGeneration retires every cached entry. On failure cached reads stay
// disabled until a later bump succeeds.
func (s *QuestionService) bumpGeneration(ctx context.Context) bool {
	if err := s.redis.Incr(ctx, questionGenerationKey).Err(); err != nil {
		s.staleCache.Store(true)
		log.Printf("Failed to bump question cache generation: %v", err)
		return false
	}
	s.staleCache.Store(false)
	return true
}

func (s *QuestionService) storeCached(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("Failed to marshal cache entry %s: %v", key, err)
		return
	}

	if err := s.redis.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
		log.Printf("Failed to store cache entry %s in Redis: %v", key, err)
	}
}

// loadCached reports whether key was found and decoded into dest.
func (s *QuestionService) loadCached(ctx context.Context, key string, dest interface{}) bool {
	data, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Failed to get cache entry %s from Redis: %v", key, err)
		}
		return false
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		log.Printf("Failed to unmarshal cache entry %s: %v", key, err)
		return false
	}
	return true
}

func (s *QuestionService) cachedQuestion(ctx context.Context, gen int64, id uint) *models.Question {
	var question models.Question
	if !s.loadCached(ctx, questionKey(gen, id), &question) {
		return nil
	}
	question.ResolveCorrectAnswer()
	return &question
}

func (s *QuestionService) storeQuestion(ctx context.Context, gen int64, question *models.Question) {
	s.storeCached(ctx, questionKey(gen, question.ID), question)
}

func (s *QuestionService) cachedQuestionList(ctx context.Context, gen int64) []models.Question {
	var questions []models.Question
	if !s.loadCached(ctx, questionListKey(gen), &questions) || questions == nil {
		return nil
	}
	for i := range questions {
		questions[i].ResolveCorrectAnswer()
	}
	return questions
}

func (s *QuestionService) storeQuestionList(ctx context.Context, gen int64, questions []models.Question) {
	s.storeCached(ctx, questionListKey(gen), questions)
}

// invalidateQuestionCache runs after a committed write.
func (s *QuestionService) invalidateQuestionCache(ctx context.Context) {
	if s.redis == nil {
		return
	}
	s.bumpGeneration(ctx)
}

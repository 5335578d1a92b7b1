package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LLMCacheEntry memoizes one generated response keyed by a content
// fingerprint. Rows are shared across learners; the unique index on
// CacheKey is what makes concurrent inserts converge on a single row.
type LLMCacheEntry struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CacheKey        string    `gorm:"column:cache_key;uniqueIndex;not null" json:"cache_key"`
	ModelUsed       string    `gorm:"column:model_used;not null" json:"model_used"`
	PromptTemplate  string    `gorm:"column:prompt_template" json:"prompt_template,omitempty"`
	ResponseContent string    `gorm:"column:response_content;not null" json:"response_content"`
	ContentType     string    `gorm:"column:content_type" json:"content_type,omitempty"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	LastAccessed    time.Time `gorm:"column:last_accessed;not null" json:"last_accessed"`
	AccessCount     int       `gorm:"column:access_count;not null;default:1" json:"access_count"`
}

func (LLMCacheEntry) TableName() string { return "llm_cache" }

func (e *LLMCacheEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

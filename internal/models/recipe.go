package models

import (
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// Recipe is one recognized dish extracted from a photographed or scanned
// recipe document. Fingerprint identifies the exact image set and order of
// the submission; it is unique across non-deleted recipes.
type Recipe struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Title       string         `gorm:"type:text" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Ingredients *string        `gorm:"type:text" json:"ingredients,omitempty"`
	Steps       *string        `gorm:"type:text" json:"steps,omitempty"`
	Equipment   *string        `gorm:"type:text" json:"equipment,omitempty"`
	Author      *string        `gorm:"type:text" json:"author,omitempty"`
	// TimeMinutes is the total preparation time. NULL when the extraction
	// output could not be parsed as an integer.
	TimeMinutes *int `json:"time_minutes,omitempty"`
	// ServingsMin/ServingsMax form a half-open range [min, max), so a recipe
	// serving "2-4" stores min=2, max=5.
	ServingsMin *int   `json:"servings_min,omitempty"`
	ServingsMax *int   `json:"servings_max,omitempty"`
	// Fingerprint is unique among live rows only, so deleting a recipe
	// frees its fingerprint for resubmission.
	Fingerprint string `gorm:"type:text;index:idx_recipes_fingerprint,unique,where:deleted_at IS NULL" json:"fingerprint"`
}

// DescriptionEmbedding holds the vector for a recipe's description field.
// At most one per recipe; it never outlives its recipe.
type DescriptionEmbedding struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	RecipeID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"recipe_id"`
	Embedding pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
	Model     string          `gorm:"size:100" json:"model"`
}

// IngredientsEmbedding holds the vector for a recipe's ingredients field.
type IngredientsEmbedding struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	RecipeID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"recipe_id"`
	Embedding pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
	Model     string          `gorm:"size:100" json:"model"`
}

// BeforeCreate assigns IDs client-side so the models work on both the
// postgres and sqlite dialects.
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (e *DescriptionEmbedding) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *IngredientsEmbedding) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// RecipeSummary is the shape returned by similarity search: enough to rank
// and display a hit without shipping the full recipe payload.
type RecipeSummary struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Author      *string   `json:"author,omitempty"`
	Description string    `json:"description"`
}

// Summary converts a full recipe into its search-result form.
func (r *Recipe) Summary() RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		Author:      r.Author,
		Description: r.Description,
	}
}

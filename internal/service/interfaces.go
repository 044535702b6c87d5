package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/snapdish/snapdish-api/internal/models"
)

// Recognizer turns an image into raw recognized text.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Generator runs one synchronous text completion.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Embedder produces fixed-dimension vectors. EmbeddingModel names the model,
// which must match between indexing and querying.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbeddingModel() string
}

// TextAgent is the full capability bundle the ingestion pipeline consumes.
type TextAgent interface {
	Recognizer
	Generator
	Embedder
}

// Archiver stores the original submission images for audit.
type Archiver interface {
	ArchiveSubmission(ctx context.Context, fingerprint string, images [][]byte) error
}

// Cache is the key-value surface the dedup path uses. Get returns an error
// on a miss; implementations decide which one.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// IIngestService defines the ingestion coordinator operations.
type IIngestService interface {
	Ingest(ctx context.Context, images [][]byte) (*models.Recipe, error)
	Modify(ctx context.Context, id uuid.UUID, images [][]byte) (*models.Recipe, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ISearchService defines similarity search over stored recipes.
type ISearchService interface {
	Search(ctx context.Context, query string, k int) ([]models.RecipeSummary, error)
}

package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/snapdish/snapdish-api/internal/models"
)

// DefaultSearchLimit is the k used when the caller does not pick one.
const DefaultSearchLimit = 5

// SearchService ranks stored recipes by vector distance between a query
// embedding and each recipe's description embedding.
type SearchService struct {
	db       *gorm.DB
	embedder Embedder
}

// NewSearchService creates a searcher. The embedder must be the same
// capability used at indexing time; mixed embedding spaces make the
// distances meaningless.
func NewSearchService(db *gorm.DB, embedder Embedder) *SearchService {
	return &SearchService{db: db, embedder: embedder}
}

// Search embeds the query and returns up to k summaries of the nearest
// recipes in ascending distance order. Soft-deleted recipes are excluded and
// an empty store yields an empty slice, not an error.
func (s *SearchService) Search(ctx context.Context, query string, k int) ([]models.RecipeSummary, error) {
	if k <= 0 {
		k = DefaultSearchLimit
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, markCapability(fmt.Errorf("embedding query: %w", err))
	}

	if s.db.Dialector.Name() == "postgres" {
		return s.searchPgvector(ctx, queryVec, k)
	}
	return s.searchExact(ctx, queryVec, k)
}

// searchPgvector lets postgres order by the `<->` distance operator.
func (s *SearchService) searchPgvector(ctx context.Context, queryVec []float32, k int) ([]models.RecipeSummary, error) {
	vec := pgvector.NewVector(queryVec)

	summaries := make([]models.RecipeSummary, 0, k)
	err := s.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Select("recipes.id, recipes.title, recipes.author, recipes.description").
		Joins("JOIN description_embeddings ON description_embeddings.recipe_id = recipes.id").
		Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "description_embeddings.embedding <-> ?", Vars: []interface{}{vec}},
		}).
		Limit(k).
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// searchExact is the non-postgres fallback: load every description embedding
// and rank in process. Exact rather than approximate, and only sensible for
// small stores, which is all the sqlite dialect is used for.
func (s *SearchService) searchExact(ctx context.Context, queryVec []float32, k int) ([]models.RecipeSummary, error) {
	var recipes []models.Recipe
	if err := s.db.WithContext(ctx).Find(&recipes).Error; err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return []models.RecipeSummary{}, nil
	}

	var embeddings []models.DescriptionEmbedding
	if err := s.db.WithContext(ctx).Find(&embeddings).Error; err != nil {
		return nil, err
	}
	vecByRecipe := make(map[string][]float32, len(embeddings))
	for _, e := range embeddings {
		vecByRecipe[e.RecipeID.String()] = e.Embedding.Slice()
	}

	type scored struct {
		summary  models.RecipeSummary
		distance float64
	}
	ranked := make([]scored, 0, len(recipes))
	for i := range recipes {
		vec, ok := vecByRecipe[recipes[i].ID.String()]
		if !ok {
			continue
		}
		ranked = append(ranked, scored{
			summary:  recipes[i].Summary(),
			distance: euclideanDistance(queryVec, vec),
		})
	}

	sort.Slice(ranked, func(i, j int) bool { return ranked[i].distance < ranked[j].distance })

	if k > len(ranked) {
		k = len(ranked)
	}
	summaries := make([]models.RecipeSummary, 0, k)
	for _, r := range ranked[:k] {
		summaries = append(summaries, r.summary)
	}
	return summaries, nil
}

func euclideanDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/snapdish/snapdish-api/internal/extract"
	"github.com/snapdish/snapdish-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Recipe{},
		&models.DescriptionEmbedding{},
		&models.IngredientsEmbedding{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// fakeAgent is a scripted TextAgent: recognition returns canned text,
// generation answers by instruction keyword, embedding derives a small
// deterministic vector from the input text.
type fakeAgent struct {
	mu             sync.Mutex
	recognized     string
	answers        map[string]string
	embedErr       error
	recognizeCalls int
	generateCalls  int
	embedCalls     int
}

func (a *fakeAgent) Recognize(ctx context.Context, image []byte) (string, error) {
	a.mu.Lock()
	a.recognizeCalls++
	a.mu.Unlock()
	return a.recognized, nil
}

func (a *fakeAgent) Generate(ctx context.Context, system, user string) (string, error) {
	a.mu.Lock()
	a.generateCalls++
	a.mu.Unlock()

	for keyword, answer := range a.answers {
		if strings.Contains(system, keyword) {
			return answer, nil
		}
	}
	return extract.RefusalSentinel, nil
}

func (a *fakeAgent) Embed(ctx context.Context, text string) ([]float32, error) {
	a.mu.Lock()
	a.embedCalls++
	a.mu.Unlock()

	if a.embedErr != nil {
		return nil, a.embedErr
	}
	vec := make([]float32, 4)
	for i, r := range text {
		vec[i%4] += float32(r) / 1000
	}
	return vec, nil
}

func (a *fakeAgent) EmbeddingModel() string {
	return "fake-embedding-001"
}

func shrimpPastaAnswers() map[string]string {
	return map[string]string{
		"ingredients extraction": "- 1 lb shrimp\n- 8 oz linguine\n- 4 cloves garlic\n- 1 lemon",
		"steps extraction":       "- Boil the linguine\n- Saute garlic and shrimp\n- Toss with lemon",
		"equipment extraction":   "- Large pot\n- Skillet",
		"time extraction":        "45",
		"servings extraction":    "2-4",
		"description agent":      "Bright, garlicky Italian shrimp pasta with lemon, quick enough for a weeknight and fancy enough for guests.",
		"titling agent":          "Lemon Garlic Shrimp Pasta",
		"author or writer":       "Chef Maria Rossi",
	}
}

func shrimpPastaAgent() *fakeAgent {
	return &fakeAgent{
		recognized: "Lemon Garlic Shrimp Pasta... 45 minutes... serves 2-4",
		answers:    shrimpPastaAnswers(),
	}
}

var errCacheMiss = errors.New("cache miss")

// mapCache is an in-memory Cache; TTLs are ignored.
type mapCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]string)}
}

func (c *mapCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.entries[key]; ok {
		return v, nil
	}
	return "", errCacheMiss
}

func (c *mapCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *mapCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// fixedEmbedder returns the same vector for every text; used where only the
// query embedding matters.
type fixedEmbedder struct {
	vec []float32
}

func (e *fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.vec, nil
}

func (e *fixedEmbedder) EmbeddingModel() string { return "fake-embedding-001" }

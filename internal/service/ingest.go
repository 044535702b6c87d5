package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/snapdish/snapdish-api/internal/extract"
	"github.com/snapdish/snapdish-api/internal/fingerprint"
	"github.com/snapdish/snapdish-api/internal/models"
)

const fingerprintCacheTTL = 24 * time.Hour

// IngestService coordinates the submission pipeline: fingerprint, dedup
// check, recognition, field extraction, embedding and transactional persist.
type IngestService struct {
	db      *gorm.DB
	agent   TextAgent
	cache   Cache    // optional fingerprint -> recipe id read-through cache
	archive Archiver // optional original-image audit store
	log     *logrus.Entry
}

// NewIngestService creates the coordinator. cache and archive may be nil.
func NewIngestService(db *gorm.DB, agent TextAgent, cache Cache, archive Archiver, log *logrus.Entry) *IngestService {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &IngestService{
		db:      db,
		agent:   agent,
		cache:   cache,
		archive: archive,
		log:     log,
	}
}

// Ingest runs the full pipeline for an ordered image submission. Resubmitting
// an identical submission returns the already-stored recipe unchanged.
func (s *IngestService) Ingest(ctx context.Context, images [][]byte) (*models.Recipe, error) {
	fp, err := fingerprint.Compute(images)
	if err != nil {
		return nil, err
	}

	if existing, err := s.findByFingerprint(ctx, fp); err == nil {
		s.log.WithFields(logrus.Fields{"fingerprint": fp, "recipe_id": existing.ID}).
			Info("duplicate submission, returning existing recipe")
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	recipe, descVec, ingVec, err := s.extractPipeline(ctx, images)
	if err != nil {
		return nil, err
	}
	recipe.Fingerprint = fp

	persisted, err := s.persist(ctx, recipe, descVec, ingVec)
	if err != nil {
		return nil, err
	}

	s.cacheFingerprint(ctx, fp, persisted.ID)
	s.archiveSubmission(ctx, fp, images)

	return persisted, nil
}

// Modify re-runs recognition, extraction and embedding against a new image
// set and replaces the recipe's fields and both embedding rows in place,
// preserving its identifier.
func (s *IngestService) Modify(ctx context.Context, id uuid.UUID, images [][]byte) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	fp, err := fingerprint.Compute(images)
	if err != nil {
		return nil, err
	}

	fresh, descVec, ingVec, err := s.extractPipeline(ctx, images)
	if err != nil {
		return nil, err
	}

	oldFP := recipe.Fingerprint
	recipe.Title = fresh.Title
	recipe.Description = fresh.Description
	recipe.Ingredients = fresh.Ingredients
	recipe.Steps = fresh.Steps
	recipe.Equipment = fresh.Equipment
	recipe.Author = fresh.Author
	recipe.TimeMinutes = fresh.TimeMinutes
	recipe.ServingsMin = fresh.ServingsMin
	recipe.ServingsMax = fresh.ServingsMax
	recipe.Fingerprint = fp

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.DescriptionEmbedding{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.IngredientsEmbedding{}).Error; err != nil {
			return err
		}
		return s.createEmbeddings(tx, recipe.ID, descVec, ingVec)
	})
	if err != nil {
		return nil, err
	}

	if oldFP != fp {
		s.uncacheFingerprint(ctx, oldFP)
	}
	s.cacheFingerprint(ctx, fp, recipe.ID)
	s.archiveSubmission(ctx, fp, images)

	return &recipe, nil
}

// Get returns a recipe by id; soft-deleted recipes are not found.
func (s *IngestService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// Delete soft-deletes the recipe and removes its embedding rows in the same
// transaction, so no embedding outlives its recipe.
func (s *IngestService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.DescriptionEmbedding{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.IngredientsEmbedding{}).Error; err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

// extractPipeline runs recognition, field extraction and embedding for one
// image set. Nothing is persisted here; any failure leaves no trace.
func (s *IngestService) extractPipeline(ctx context.Context, images [][]byte) (*models.Recipe, []float32, []float32, error) {
	sourceText, err := s.recognizeAll(ctx, images)
	if err != nil {
		return nil, nil, nil, markCapability(err)
	}

	fields, err := extract.Run(ctx, s.agent, sourceText)
	if err != nil {
		if errors.Is(err, extract.ErrRefused) {
			return nil, nil, nil, err
		}
		return nil, nil, nil, markCapability(err)
	}

	descVec, ingVec, err := s.embedFields(ctx, fields)
	if err != nil {
		return nil, nil, nil, markCapability(err)
	}

	title := ""
	if fields.Title != nil {
		title = *fields.Title
	}

	recipe := &models.Recipe{
		Title:       title,
		Description: fields.Description,
		Ingredients: fields.Ingredients,
		Steps:       fields.Steps,
		Equipment:   fields.Equipment,
		Author:      fields.Author,
		TimeMinutes: fields.TimeMinutes,
		ServingsMin: fields.ServingsMin,
		ServingsMax: fields.ServingsMax,
	}
	return recipe, descVec, ingVec, nil
}

// recognizeAll runs per-image recognition concurrently and joins the texts
// in input order with newline boundaries.
func (s *IngestService) recognizeAll(ctx context.Context, images [][]byte) (string, error) {
	texts := make([]string, len(images))

	g, ctx := errgroup.WithContext(ctx)
	for i := range images {
		g.Go(func() error {
			text, err := s.agent.Recognize(ctx, images[i])
			if err != nil {
				return fmt.Errorf("recognizing image %d: %w", i, err)
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	return strings.Join(texts, "\n"), nil
}

// embedFields embeds description and ingredients concurrently. A refused
// ingredients field yields no ingredients vector.
func (s *IngestService) embedFields(ctx context.Context, fields *extract.RecipeFields) ([]float32, []float32, error) {
	var descVec, ingVec []float32

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vec, err := s.agent.Embed(ctx, fields.Description)
		if err != nil {
			return fmt.Errorf("embedding description: %w", err)
		}
		descVec = vec
		return nil
	})
	if fields.Ingredients != nil {
		g.Go(func() error {
			vec, err := s.agent.Embed(ctx, *fields.Ingredients)
			if err != nil {
				return fmt.Errorf("embedding ingredients: %w", err)
			}
			ingVec = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return descVec, ingVec, nil
}

// persist writes the recipe and its embedding rows atomically. A concurrent
// identical submission may win the fingerprint unique constraint first; the
// loser falls back to reading the winner's record. The winner can itself be
// deleted between the conflict and the re-read, which frees the fingerprint
// again, so a not-found re-read retries the insert once.
func (s *IngestService) persist(ctx context.Context, recipe *models.Recipe, descVec, ingVec []float32) (*models.Recipe, error) {
	for attempt := 0; attempt < 2; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(recipe).Error; err != nil {
				return err
			}
			return s.createEmbeddings(tx, recipe.ID, descVec, ingVec)
		})
		if err == nil {
			return recipe, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}

		winner, readErr := s.readByFingerprint(ctx, recipe.Fingerprint)
		if readErr == nil {
			s.log.WithField("fingerprint", recipe.Fingerprint).
				Info("lost fingerprint insert race, returning winner")
			return winner, nil
		}
		if !errors.Is(readErr, gorm.ErrRecordNotFound) {
			return nil, readErr
		}
	}

	return nil, fmt.Errorf("fingerprint %s: insert kept conflicting with no readable winner", recipe.Fingerprint)
}

func (s *IngestService) createEmbeddings(tx *gorm.DB, recipeID uuid.UUID, descVec, ingVec []float32) error {
	de := &models.DescriptionEmbedding{
		RecipeID:  recipeID,
		Embedding: pgvector.NewVector(descVec),
		Model:     s.agent.EmbeddingModel(),
	}
	if err := tx.Create(de).Error; err != nil {
		return err
	}
	if ingVec != nil {
		ie := &models.IngredientsEmbedding{
			RecipeID:  recipeID,
			Embedding: pgvector.NewVector(ingVec),
			Model:     s.agent.EmbeddingModel(),
		}
		if err := tx.Create(ie).Error; err != nil {
			return err
		}
	}
	return nil
}

// findByFingerprint consults the cache before the database. A cached id is
// only trusted when the loaded recipe still carries the looked-up
// fingerprint; a modify may have moved the recipe to a new fingerprint and
// left this entry behind.
func (s *IngestService) findByFingerprint(ctx context.Context, fp string) (*models.Recipe, error) {
	if s.cache != nil {
		if idText, err := s.cache.Get(ctx, fingerprintCacheKey(fp)); err == nil {
			if id, parseErr := uuid.Parse(idText); parseErr == nil {
				var recipe models.Recipe
				if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err == nil {
					if recipe.Fingerprint == fp {
						return &recipe, nil
					}
				}
			}
			s.uncacheFingerprint(ctx, fp)
		}
	}
	return s.readByFingerprint(ctx, fp)
}

func (s *IngestService) readByFingerprint(ctx context.Context, fp string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "fingerprint = ?", fp).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (s *IngestService) cacheFingerprint(ctx context.Context, fp string, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, fingerprintCacheKey(fp), id.String(), fingerprintCacheTTL); err != nil {
		s.log.WithError(err).Warn("failed to cache fingerprint")
	}
}

func (s *IngestService) uncacheFingerprint(ctx context.Context, fp string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, fingerprintCacheKey(fp)); err != nil {
		s.log.WithError(err).Warn("failed to drop stale fingerprint cache entry")
	}
}

func (s *IngestService) archiveSubmission(ctx context.Context, fp string, images [][]byte) {
	if s.archive == nil {
		return
	}
	if err := s.archive.ArchiveSubmission(ctx, fp, images); err != nil {
		s.log.WithError(err).WithField("fingerprint", fp).Warn("failed to archive submission images")
	}
}

func fingerprintCacheKey(fp string) string {
	return "recipe:fingerprint:" + fp
}

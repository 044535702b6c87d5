package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/snapdish/snapdish-api/internal/service"
)

// maxImageBytes caps a single uploaded image. Photographed recipe cards and
// scans fit comfortably; anything larger is rejected before hitting the
// recognition model.
const maxImageBytes = 20 << 20

// RecipeHandler exposes the ingestion pipeline and similarity search over
// HTTP. Submissions are multipart uploads with one or more "images" parts in
// reading order.
type RecipeHandler struct {
	ingest service.IIngestService
	search service.ISearchService
	log    *logrus.Logger
}

func NewRecipeHandler(ingest service.IIngestService, search service.ISearchService, log *logrus.Logger) *RecipeHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RecipeHandler{
		ingest: ingest,
		search: search,
		log:    log,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, ingestLimit gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("/search", h.SearchRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", ingestLimit, h.IngestRecipe)
		recipes.PUT("/:id", ingestLimit, h.ModifyRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
	}
}

// IngestRecipe handles POST /recipes. Answers 201 with the stored recipe;
// a resubmission of an identical image set answers 201 with the
// already-stored record rather than creating another.
func (h *RecipeHandler) IngestRecipe(c *gin.Context) {
	images, ok := h.readImages(c)
	if !ok {
		return
	}

	recipe, err := h.ingest.Ingest(c.Request.Context(), images)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

// ModifyRecipe handles PUT /recipes/:id, re-running the pipeline against a
// new image set while keeping the recipe's identifier.
func (h *RecipeHandler) ModifyRecipe(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	images, ok := h.readImages(c)
	if !ok {
		return
	}

	recipe, err := h.ingest.Modify(c.Request.Context(), id, images)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	recipe, err := h.ingest.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.ingest.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SearchRecipes handles GET /recipes/search?q=...&limit=k.
func (h *RecipeHandler) SearchRecipes(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	results, err := h.search.Search(c.Request.Context(), query, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": results})
}

// readImages pulls the ordered "images" parts out of the multipart form.
// Part order is meaningful: it determines the submission fingerprint.
func (h *RecipeHandler) readImages(c *gin.Context) ([][]byte, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected multipart form with images"})
		return nil, false
	}

	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one image is required"})
		return nil, false
	}

	images := make([][]byte, 0, len(files))
	for _, fh := range files {
		data, err := readPart(fh)
		if err != nil {
			h.log.WithError(err).Warn("failed to read uploaded image")
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded image"})
			return nil, false
		}
		images = append(images, data)
	}
	return images, true
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxImageBytes {
		return nil, errors.New("image exceeds size limit")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxImageBytes))
}

func (h *RecipeHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps pipeline errors onto HTTP status codes.
func (h *RecipeHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptySubmission):
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one image is required"})
	case errors.Is(err, service.ErrRecipeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
	case errors.Is(err, service.ErrExtractionRefused):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "the submitted images do not contain a recognizable recipe"})
	case errors.Is(err, service.ErrCapability):
		h.log.WithError(err).Error("upstream capability failure")
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream model failure, try again later"})
	default:
		h.log.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

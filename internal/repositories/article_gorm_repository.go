package repositories

import (
	"time"

	"blogapi/internal/apperrors"
	"blogapi/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMArticleRepository is a GORM implementation of ArticleRepository.
type GORMArticleRepository struct {
	db *gorm.DB
}

// NewGORMArticleRepository creates a new instance of GORMArticleRepository.
func NewGORMArticleRepository(db *gorm.DB) *GORMArticleRepository {
	return &GORMArticleRepository{
		db: db,
	}
}

// List retrieves articles matching the filter, newest first.
func (r *GORMArticleRepository) List(filter ArticleFilter) ([]models.Article, error) {
	query := r.db.Order("created_at DESC")

	if filter.Tag != "" {
		// Tags are stored as a JSON array, so match the quoted element.
		query = query.Where("tags LIKE ?", `%"`+filter.Tag+`"%`)
	}
	if filter.Day != nil {
		start := time.Date(filter.Day.Year(), filter.Day.Month(), filter.Day.Day(), 0, 0, 0, 0, filter.Day.Location())
		end := start.Add(24 * time.Hour)
		query = query.Where("created_at >= ? AND created_at < ?", start, end)
	}

	var articles []models.Article
	if err := query.Find(&articles).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to list articles", err)
	}
	return articles, nil
}

// GetByID retrieves a single article by its ID.
func (r *GORMArticleRepository) GetByID(id string) (*models.Article, error) {
	var article models.Article
	if err := r.db.First(&article, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.KindNotFound, "article not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to get article by ID", err)
	}
	return &article, nil
}

// Create creates a new article in the database.
func (r *GORMArticleRepository) Create(article *models.Article) error {
	if article.ID == "" {
		article.ID = uuid.New().String()
	}
	if err := r.db.Create(article).Error; err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to create article", err)
	}
	return nil
}

// Update updates an existing article in the database.
func (r *GORMArticleRepository) Update(article *models.Article) error {
	res := r.db.Save(article) // Save will update all fields, including zero values
	if res.Error != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to update article", res.Error)
	}
	if res.RowsAffected == 0 {
		// GORM's Save doesn't return ErrRecordNotFound if no rows were
		// affected for an update, so we check RowsAffected.
		return apperrors.New(apperrors.KindNotFound, "article not found")
	}
	return nil
}

// Delete deletes an article by its ID from the database.
func (r *GORMArticleRepository) Delete(id string) error {
	res := r.db.Delete(&models.Article{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to delete article", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.KindNotFound, "article not found")
	}
	return nil
}

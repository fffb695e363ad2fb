package repositories

import (
	"time"

	"blogapi/internal/models"
)

// ArticleFilter narrows a listing. Zero values mean no filtering.
type ArticleFilter struct {
	Tag string
	// Day restricts results to articles created on this calendar day.
	Day *time.Time
}

// ArticleRepository defines the interface for article data access.
type ArticleRepository interface {
	List(filter ArticleFilter) ([]models.Article, error)
	GetByID(id string) (*models.Article, error)
	Create(article *models.Article) error
	Update(article *models.Article) error
	Delete(id string) error
}

package repositories

import (
	"sort"
	"sync"
	"time"

	"blogapi/internal/apperrors"
	"blogapi/internal/models"

	"github.com/google/uuid"
)

// MockArticleRepository is an in-memory implementation of ArticleRepository.
type MockArticleRepository struct {
	articles map[string]models.Article
	mu       sync.RWMutex
}

// NewMockArticleRepository creates a new instance of MockArticleRepository.
func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{
		articles: make(map[string]models.Article),
	}
}

// List returns articles matching the filter, newest first.
func (r *MockArticleRepository) List(filter ArticleFilter) ([]models.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	articleList := make([]models.Article, 0, len(r.articles))
	for _, a := range r.articles {
		if filter.Tag != "" && !hasTag(a.Tags, filter.Tag) {
			continue
		}
		if filter.Day != nil && !sameDay(a.CreatedAt, *filter.Day) {
			continue
		}
		articleList = append(articleList, a)
	}
	sort.Slice(articleList, func(i, j int) bool {
		return articleList[i].CreatedAt.After(articleList[j].CreatedAt)
	})
	return articleList, nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// GetByID returns an article by its ID.
func (r *MockArticleRepository) GetByID(id string) (*models.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	article, ok := r.articles[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "article not found")
	}
	return &article, nil
}

// Create adds a new article.
func (r *MockArticleRepository) Create(article *models.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if article.ID == "" {
		article.ID = uuid.New().String()
	}
	if article.CreatedAt.IsZero() {
		article.CreatedAt = time.Now()
	}
	article.UpdatedAt = time.Now()
	r.articles[article.ID] = *article
	return nil
}

// Update modifies an existing article.
func (r *MockArticleRepository) Update(article *models.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.articles[article.ID]
	if !ok {
		return apperrors.New(apperrors.KindNotFound, "article not found")
	}
	article.UpdatedAt = time.Now()
	r.articles[article.ID] = *article
	return nil
}

// Delete removes an article by its ID.
func (r *MockArticleRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.articles[id]
	if !ok {
		return apperrors.New(apperrors.KindNotFound, "article not found")
	}
	delete(r.articles, id)
	return nil
}

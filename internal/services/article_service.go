package services

import (
	"encoding/json"
	"log"
	"time"

	"blogapi/internal/apperrors"
	"blogapi/internal/models"
	"blogapi/internal/repositories"
	"blogapi/pkg/rabbitmq"

	"github.com/google/uuid"
)

// ArticleService handles business logic related to articles, including the
// ownership checks on mutation.
type ArticleService struct {
	articleRepo repositories.ArticleRepository
	mqClient    *rabbitmq.Client
}

// NewArticleService creates a new ArticleService. mqClient may be nil, in
// which case lifecycle events are not published.
func NewArticleService(articleRepo repositories.ArticleRepository, mqClient *rabbitmq.Client) *ArticleService {
	return &ArticleService{
		articleRepo: articleRepo,
		mqClient:    mqClient,
	}
}

// ListArticles retrieves articles, newest first, optionally filtered by tag
// and by creation date (formatted YYYY-MM-DD).
func (s *ArticleService) ListArticles(tag, date string) ([]models.Article, error) {
	filter := repositories.ArticleFilter{Tag: tag}
	if date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindValidation, "date must be formatted YYYY-MM-DD", err)
		}
		filter.Day = &day
	}
	return s.articleRepo.List(filter)
}

// GetArticleByID retrieves a single article by its ID.
func (s *ArticleService) GetArticleByID(id string) (*models.Article, error) {
	return s.articleRepo.GetByID(id)
}

// CreateArticle creates a new article owned by the creator. The display
// author name defaults to the creator's username.
func (s *ArticleService) CreateArticle(article *models.Article, creator *models.PublicUser) (*models.Article, error) {
	article.ID = uuid.New().String()
	article.CreatedBy = creator.ID
	if article.Author == "" {
		article.Author = creator.Username
	}
	if article.Author == "" {
		article.Author = "Anonymous"
	}

	if err := s.articleRepo.Create(article); err != nil {
		return nil, err
	}

	s.publishEvent("article.created", article.ID, creator.ID)
	return article, nil
}

// UpdateArticle applies changes to an article after checking that it exists
// and that the caller created it. The creator reference never changes.
func (s *ArticleService) UpdateArticle(id, callerID string, changes *models.Article) (*models.Article, error) {
	// Existence is checked before ownership so a missing article is always
	// reported as not found, never as an ownership failure.
	article, err := s.articleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if article.CreatedBy != callerID {
		return nil, apperrors.New(apperrors.KindForbidden, "you can only edit your own articles")
	}

	article.Title = changes.Title
	article.Content = changes.Content
	article.Author = changes.Author
	article.Tags = changes.Tags
	if article.Author == "" {
		article.Author = "Anonymous"
	}

	if err := s.articleRepo.Update(article); err != nil {
		return nil, err
	}

	s.publishEvent("article.updated", article.ID, callerID)
	return article, nil
}

// DeleteArticle removes an article after checking existence and ownership.
func (s *ArticleService) DeleteArticle(id, callerID string) error {
	article, err := s.articleRepo.GetByID(id)
	if err != nil {
		return err
	}
	if article.CreatedBy != callerID {
		return apperrors.New(apperrors.KindForbidden, "you can only delete your own articles")
	}

	if err := s.articleRepo.Delete(id); err != nil {
		return err
	}

	s.publishEvent("article.deleted", id, callerID)
	return nil
}

// publishEvent publishes an article lifecycle event. Publication failures
// are logged, not surfaced; the write already happened.
func (s *ArticleService) publishEvent(event, articleID, userID string) {
	if s.mqClient == nil {
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"event":     event,
		"articleID": articleID,
		"userID":    userID,
	})
	if err != nil {
		log.Printf("Failed to marshal %s event for article %s: %v", event, articleID, err)
		return
	}

	if err := s.mqClient.Publish("", rabbitmq.ArticleEventsQueue, body); err != nil {
		log.Printf("Warning: failed to publish %s event for article %s: %v", event, articleID, err)
	}
}

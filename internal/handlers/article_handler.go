package handlers

import (
	"log"

	"blogapi/internal/middleware"
	"blogapi/internal/models"
	"blogapi/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ArticleHandler handles HTTP requests for articles.
type ArticleHandler struct {
	service  *services.ArticleService
	validate *validator.Validate
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(service *services.ArticleService) *ArticleHandler {
	return &ArticleHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterPublicRoutes registers the read-only article routes. Anyone may
// list and view articles.
func (h *ArticleHandler) RegisterPublicRoutes(router fiber.Router) {
	articleRoutes := router.Group("/articles")
	articleRoutes.Get("/", h.HandleListArticles)
	articleRoutes.Get("/:id", h.HandleGetArticleByID)
}

// RegisterProtectedRoutes registers the mutating article routes. The caller
// must mount these behind the access guard.
func (h *ArticleHandler) RegisterProtectedRoutes(router fiber.Router) {
	articleRoutes := router.Group("/articles")
	articleRoutes.Post("/", h.HandleCreateArticle)
	articleRoutes.Put("/:id", h.HandleUpdateArticle)
	articleRoutes.Delete("/:id", h.HandleDeleteArticle)
}

// HandleListArticles retrieves articles, newest first. Supports filtering
// by tag and creation date: /articles?tag=tech&date=2024-01-01
func (h *ArticleHandler) HandleListArticles(c *fiber.Ctx) error {
	articles, err := h.service.ListArticles(c.Query("tag"), c.Query("date"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(articles)
}

// HandleGetArticleByID retrieves a single article by its ID.
func (h *ArticleHandler) HandleGetArticleByID(c *fiber.Ctx) error {
	article, err := h.service.GetArticleByID(c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(article)
}

// HandleCreateArticle creates a new article owned by the caller.
func (h *ArticleHandler) HandleCreateArticle(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Access denied. No token provided.",
		})
	}

	var article models.Article
	if err := c.BodyParser(&article); err != nil {
		log.Printf("Error parsing article request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validate.Struct(article); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": validationMessages(err),
		})
	}

	created, err := h.service.CreateArticle(&article, caller)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdateArticle updates an article the caller created.
func (h *ArticleHandler) HandleUpdateArticle(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Access denied. No token provided.",
		})
	}

	var changes models.Article
	if err := c.BodyParser(&changes); err != nil {
		log.Printf("Error parsing article update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	changes.ID = "" // The path parameter names the target, not the body.

	if err := h.validate.Struct(changes); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": validationMessages(err),
		})
	}

	updated, err := h.service.UpdateArticle(c.Params("id"), caller.ID, &changes)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(updated)
}

// HandleDeleteArticle deletes an article the caller created.
func (h *ArticleHandler) HandleDeleteArticle(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Access denied. No token provided.",
		})
	}

	if err := h.service.DeleteArticle(c.Params("id"), caller.ID); err != nil {
		return handleError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Article deleted.",
	})
}

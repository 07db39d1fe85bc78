package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tdngan/news-survey-server/config"
	"github.com/tdngan/news-survey-server/middleware"
	"github.com/tdngan/news-survey-server/models"
	"github.com/tdngan/news-survey-server/utils"
)

// Home returns the landing feed: latest articles, up to five surveys and,
// for guests only, the six most-viewed articles.
func Home(c *gin.Context) {
	var articles []models.Article
	if err := config.DB.Order("published_at DESC").Limit(20).Find(&articles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load articles"})
		return
	}

	var surveys []models.Survey
	if err := config.DB.Order("created_at DESC").Limit(5).Find(&surveys).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load surveys"})
		return
	}

	mostVisited := []models.Article{}
	if _, authenticated := middleware.CurrentUser(c); !authenticated {
		if err := config.DB.Where("views > 0").
			Order("views DESC, published_at DESC").
			Limit(6).
			Find(&mostVisited).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load articles"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"articles":     articles,
		"surveys":      surveys,
		"most_visited": mostVisited,
	})
}

// ListArticles returns articles newest first with page/limit pagination.
func ListArticles(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var total int64
	config.DB.Model(&models.Article{}).Count(&total)

	var articles []models.Article
	if err := config.DB.Order("published_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&articles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load articles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page":     page,
		"limit":    limit,
		"total":    total,
		"articles": articles,
	})
}

type createArticleReq struct {
	Title    string `json:"title" form:"title" binding:"required,max=255"`
	Content  string `json:"content" form:"content" binding:"required"`
	Author   string `json:"author" form:"author" binding:"required,max=255"`
	Category string `json:"category" form:"category"`
	Tags     string `json:"tags" form:"tags"`
	Excerpt  string `json:"excerpt" form:"excerpt"`
}

// CreateArticle accepts JSON or multipart form data; multipart may carry an
// "image" file which is stored in the object bucket and referenced by URL.
// Slug and excerpt derivation happen in the model's save hook.
func CreateArticle(c *gin.Context) {
	var req createArticleReq
	isMultipart := strings.Contains(c.ContentType(), "multipart/form-data")
	if isMultipart {
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
			return
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
			return
		}
	}

	article := models.Article{
		Title:    req.Title,
		Content:  req.Content,
		Author:   req.Author,
		Category: req.Category,
		Tags:     req.Tags,
		Excerpt:  req.Excerpt,
	}

	if isMultipart {
		if fileHeader, err := c.FormFile("image"); err == nil {
			if err := utils.ValidateImage(fileHeader); err != nil {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
				return
			}
			url, err := utils.UploadImage(fileHeader, uuid.New().String(), "articles")
			if err != nil {
				config.Logger.Warn("article image upload failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Image upload failed"})
				return
			}
			article.ImageURL = url
		}
	}

	if err := config.DB.Create(&article).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create article"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Article created successfully",
		"article": article,
	})
}

// GetArticle returns one article by slug and bumps its view counter. The
// increment runs in the storage layer so concurrent views never lose updates.
func GetArticle(c *gin.Context) {
	slug := c.Param("slug")

	var article models.Article
	if err := config.DB.Where("slug = ?", slug).First(&article).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Article not found"})
		return
	}

	if err := config.DB.Model(&models.Article{}).
		Where("id = ?", article.ID).
		UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not record view"})
		return
	}
	article.Views++
	articleViewsTotal.Inc()

	var related []models.Article
	config.DB.Where("author = ? AND id <> ?", article.Author, article.ID).
		Order("published_at DESC").Limit(3).
		Find(&related)

	words := len(strings.Fields(article.Content))
	readingTime := (words + 219) / 220
	if readingTime < 1 {
		readingTime = 1
	}

	c.JSON(http.StatusOK, gin.H{
		"article":          article,
		"tags_list":        parseTags(article.Tags),
		"word_count":       words,
		"reading_time":     readingTime,
		"related_articles": related,
	})
}

// DeleteArticle removes an article by slug. Superuser only.
func DeleteArticle(c *gin.Context) {
	slug := c.Param("slug")

	var article models.Article
	if err := config.DB.Where("slug = ?", slug).First(&article).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Article not found"})
		return
	}

	if err := config.DB.Delete(&article).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not delete article"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Article deleted successfully"})
}

// parseTags splits the stored comma-separated tag string into clean chips.
// Semicolons count as separators and hash prefixes are stripped.
func parseTags(raw string) []string {
	raw = strings.ReplaceAll(raw, "#", "")
	raw = strings.ReplaceAll(raw, ";", ",")
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tdngan/news-survey-server/utils"
)

// UploadImage stores a standalone image in the object bucket and returns its
// public URL, for clients that upload before creating the article.
func UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file received"})
		return
	}

	if err := utils.ValidateImage(fileHeader); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	publicURL, err := utils.UploadImage(fileHeader, uuid.New().String(), "uploads")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Upload successful",
		"url":     publicURL,
	})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/catsflats/backend/internal/model"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, model.StatusResponse{Status: "ok"})
}

func Root(c *gin.Context) {
	c.JSON(http.StatusOK, model.RootResponse{
		Name:   "Cats & Flats API",
		Status: "ok",
	})
}

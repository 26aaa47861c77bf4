package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"chefmate/internal/app"
	"chefmate/internal/clipper"
	"chefmate/internal/recipe"
	"chefmate/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Clipper builds a recipe from a web page.
type Clipper interface {
	Clip(ctx context.Context, url string) (recipe.Recipe, error)
}

// Server exposes an App over JSON HTTP.
type Server struct {
	app     *app.App
	clipper Clipper
	logger  *zap.Logger
	dataDir string
}

// NewServer creates a Server. clipper may be nil, in which case clipping is
// unavailable.
func NewServer(a *app.App, clipper Clipper, logger *zap.Logger, dataDir string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{app: a, clipper: clipper, logger: logger, dataDir: dataDir}
}

// Router returns the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/health", s.health())

	recipes := router.Group("/recipes")
	{
		recipes.GET("", s.listRecipes())
		recipes.POST("", s.createRecipe())
		recipes.GET("/courses", s.listCourses())
		recipes.POST("/clip", s.clipRecipe())
		recipes.GET("/:id", s.getRecipe())
		recipes.PUT("/:id", s.updateRecipe())
		recipes.DELETE("/:id", s.deleteRecipe())
		recipes.POST("/:id/shopping", s.addRecipeToList())
	}

	list := router.Group("/shopping")
	{
		list.GET("", s.listItems())
		list.POST("", s.addItem())
		list.DELETE("", s.clearAll())
		list.DELETE("/completed", s.clearCompleted())
		list.PATCH("/:id/toggle", s.toggleItem())
		list.DELETE("/:id", s.removeItem())
	}
	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// fail writes the status and message matching err.
func (s *Server) fail(c *gin.Context, err error) {
	status, msg := http.StatusInternalServerError, "Internal server error"
	switch {
	case errors.Is(err, shared.ErrInvalidInput):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, recipe.ErrNoValidIngredients):
		status, msg = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, clipper.ErrNoRecipe):
		status, msg = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, app.ErrRecipeNotFound):
		status, msg = http.StatusNotFound, "Recipe not found"
	case errors.Is(err, app.ErrBusy):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, shared.ErrPersistence):
		status, msg = http.StatusBadGateway, shared.UserMessage(err)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": msg})
}

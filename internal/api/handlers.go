package api

import (
	"errors"
	"fmt"
	"net/http"

	"chefmate/internal/clipper"
	"chefmate/internal/metrics"
	"chefmate/internal/quantity"
	"chefmate/internal/recipe"
	"chefmate/internal/shopping"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// itemView is a shopping item as sent to clients.
type itemView struct {
	shopping.Item
	Display string `json:"display"`
}

func viewItems(items []shopping.Item) []itemView {
	out := make([]itemView, len(items))
	for i, it := range items {
		out[i] = itemView{Item: it, Display: fmt.Sprintf("%s %s", quantity.Format(it.Quantity), it.Unit)}
	}
	return out
}

func (s *Server) health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"system": metrics.GetSysHealth(s.dataDir),
		})
	}
}

func (s *Server) listRecipes() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"recipes": s.app.Recipes(c.Query("course"))})
	}
}

func (s *Server) listCourses() gin.HandlerFunc {
	return func(c *gin.Context) {
		courses := s.app.Courses()
		if courses == nil {
			courses = []string{}
		}
		c.JSON(http.StatusOK, gin.H{"courses": courses})
	}
}

func (s *Server) getRecipe() gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := s.app.Recipe(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"recipe": r})
	}
}

func (s *Server) createRecipe() gin.HandlerFunc {
	return func(c *gin.Context) {
		var r recipe.Recipe
		if err := c.ShouldBindJSON(&r); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		r.ID = ""

		saved, err := s.app.SaveRecipe(c.Request.Context(), r)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"recipe": saved})
	}
}

func (s *Server) updateRecipe() gin.HandlerFunc {
	return func(c *gin.Context) {
		var r recipe.Recipe
		if err := c.ShouldBindJSON(&r); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		r.ID = c.Param("id")

		saved, err := s.app.SaveRecipe(c.Request.Context(), r)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"recipe": saved})
	}
}

func (s *Server) deleteRecipe() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.app.DeleteRecipe(c.Request.Context(), c.Param("id")); err != nil {
			s.fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) clipRecipe() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.clipper == nil {
			c.JSON(http.StatusNotImplemented, gin.H{"error": "Recipe clipping is not configured"})
			return
		}
		var req struct {
			URL string `json:"url" binding:"required,url"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		r, err := s.clipper.Clip(c.Request.Context(), req.URL)
		if err != nil {
			if errors.Is(err, clipper.ErrNoRecipe) {
				s.fail(c, err)
				return
			}
			s.logger.Warn("clip failed", zap.String("url", req.URL), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Could not read the recipe page."})
			return
		}

		saved, err := s.app.SaveRecipe(c.Request.Context(), r)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"recipe": saved})
	}
}

func (s *Server) addRecipeToList() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Servings int `json:"servings"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Servings < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "servings must be at least 1"})
			return
		}

		if err := s.app.AddRecipeToList(c.Request.Context(), c.Param("id"), req.Servings); err != nil {
			s.fail(c, err)
			return
		}
		s.writeItems(c, http.StatusOK)
	}
}

func (s *Server) listItems() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.writeItems(c, http.StatusOK)
	}
}

func (s *Server) addItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name     string  `json:"name"`
			Quantity float64 `json:"quantity"`
			Unit     string  `json:"unit"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := s.app.AddItem(c.Request.Context(), req.Name, req.Quantity, req.Unit); err != nil {
			s.fail(c, err)
			return
		}
		s.writeItems(c, http.StatusCreated)
	}
}

func (s *Server) toggleItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.app.ToggleItem(c.Request.Context(), c.Param("id")); err != nil {
			s.fail(c, err)
			return
		}
		s.writeItems(c, http.StatusOK)
	}
}

func (s *Server) removeItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.app.RemoveItem(c.Request.Context(), c.Param("id")); err != nil {
			s.fail(c, err)
			return
		}
		s.writeItems(c, http.StatusOK)
	}
}

func (s *Server) clearCompleted() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.app.ClearCompleted(c.Request.Context()); err != nil {
			s.fail(c, err)
			return
		}
		s.writeItems(c, http.StatusOK)
	}
}

func (s *Server) clearAll() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.app.ClearAll(c.Request.Context()); err != nil {
			s.fail(c, err)
			return
		}
		s.writeItems(c, http.StatusOK)
	}
}

func (s *Server) writeItems(c *gin.Context, status int) {
	c.JSON(status, gin.H{
		"items":  viewItems(s.app.Items()),
		"active": s.app.ActiveCount(),
	})
}

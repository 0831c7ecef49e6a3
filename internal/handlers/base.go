package handlers

import (
	"log"
	"net/http"

	"civicdesk/internal/middleware"
	"civicdesk/internal/services"

	"github.com/gin-gonic/gin"
)

// serviceError maps a service failure onto the right status code. Anything
// outside the known taxonomy is logged server-side and reported as the
// generic fallback message so storage details never leak to the caller.
func serviceError(c *gin.Context, err error, fallback string) {
	switch {
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case services.IsForbidden(err):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	default:
		log.Printf("%s: %v", fallback, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": fallback})
	}
}

// currentViewer builds the principal the request acts as from the
// verified token claims.
func currentViewer(c *gin.Context) services.Viewer {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		return services.Viewer{}
	}
	return services.Viewer{
		SubjectID: claims.SubjectID(),
		Role:      claims.Role,
	}
}

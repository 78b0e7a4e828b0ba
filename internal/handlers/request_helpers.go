package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/code-sharad/e-com-sub000/internal/customers"
)

const requestTimeout = 10 * time.Second

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func ensureDBConnection(ctx context.Context, db *mongo.Database) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Client().Ping(checkCtx, readpref.Primary())
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] returning error %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondWithEngineError maps customer engine errors onto HTTP statuses.
func respondWithEngineError(c *gin.Context, route string, err error) {
	switch {
	case errors.Is(err, customers.ErrInvalidStatus):
		respondWithError(c, http.StatusBadRequest, route, "invalid status")
	case errors.Is(err, customers.ErrProfileNotFound):
		respondWithError(c, http.StatusNotFound, route, "customer profile not found")
	case errors.Is(err, customers.ErrSourceUnavailable), errors.Is(err, context.DeadlineExceeded):
		log.Printf("[%s] [ERROR] %v", route, err)
		respondWithError(c, http.StatusServiceUnavailable, route, "customer data unavailable")
	default:
		log.Printf("[%s] [ERROR] %v", route, err)
		respondWithError(c, http.StatusInternalServerError, route, "internal server error")
	}
}

// Health reports whether MongoDB answers a primary ping.
func Health(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			log.Println("[HEALTH] [ERROR] database ping failed:", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
	}
}

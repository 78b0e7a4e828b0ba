package handlers

import (
	"context"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/code-sharad/e-com-sub000/internal/customers"
	"github.com/code-sharad/e-com-sub000/internal/models"
)

/* =========================
   REQUEST DTOs
========================= */

type updateCustomerStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive blocked auto"`
}

/* =========================
   GET (ADMIN) – LIST
========================= */

func GetCustomers(engine *customers.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/customers"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		list, err := engine.GetAllCustomers(ctx)
		if err != nil {
			respondWithEngineError(c, route, err)
			return
		}

		total := len(list)
		totalPages := int64(0)
		if total > 0 {
			totalPages = int64(math.Ceil(float64(total) / float64(limit)))
		}
		start, end := pageBounds(total, page, limit)

		c.JSON(http.StatusOK, gin.H{
			"data": list[start:end],
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": totalPages,
			},
		})
	}
}

/* =========================
   GET (ADMIN) – STATS
========================= */

func GetCustomerStats(engine *customers.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/customers/stats"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		stats, err := engine.GetCustomerStats(ctx)
		if err != nil {
			respondWithEngineError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": stats})
	}
}

/* =========================
   GET (ADMIN) – DETAIL
========================= */

func GetCustomer(engine *customers.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/customers/by-email/:email"
		defer handlePanic(c, route)

		email := strings.TrimSpace(c.Param("email"))
		if email == "" {
			respondWithError(c, http.StatusBadRequest, route, "email is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		customer, err := engine.GetCustomerByEmail(ctx, email)
		if err != nil {
			respondWithEngineError(c, route, err)
			return
		}
		if customer == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": customer})
	}
}

/* =========================
   PATCH (ADMIN) – STATUS
========================= */

// UpdateCustomerStatus pins a customer's status. "auto" returns the customer
// to the status derived from their purchase history.
func UpdateCustomerStatus(engine *customers.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/api/customers/:id/status"
		defer handlePanic(c, route)

		id := strings.TrimSpace(c.Param("id"))
		if id == "" {
			respondWithError(c, http.StatusBadRequest, route, "id is required")
			return
		}

		var req updateCustomerStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if err := engine.UpdateCustomerStatus(ctx, id, models.CustomerStatus(req.Status)); err != nil {
			respondWithEngineError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "customer status updated", "status": req.Status})
	}
}

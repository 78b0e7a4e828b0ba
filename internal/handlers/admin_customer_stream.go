package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/code-sharad/e-com-sub000/internal/customers"
	"github.com/code-sharad/e-com-sub000/internal/models"
)

func StreamCustomers(engine *customers.Engine, keepAlive time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		streamSubscription(c, "GET /admin/api/customers/stream", keepAlive, engine.SubscribeToCustomers)
	}
}

func StreamCustomerStats(engine *customers.Engine, keepAlive time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		streamSubscription(c, "GET /admin/api/customers/stats/stream", keepAlive, engine.SubscribeToCustomerStats)
	}
}

func StreamCustomer(engine *customers.Engine, keepAlive time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/customers/by-email/:email/stream"
		email := strings.TrimSpace(c.Param("email"))
		if email == "" {
			respondWithError(c, http.StatusBadRequest, route, "email is required")
			return
		}
		streamSubscription(c, route, keepAlive, func(callback func(*models.Customer)) *customers.Subscription {
			return engine.SubscribeToCustomer(email, callback)
		})
	}
}

// streamSubscription relays a subscription as Server-Sent Events until the
// client goes away. A slow client only ever sees the newest value.
func streamSubscription[T any](c *gin.Context, route string, keepAlive time.Duration, subscribe func(func(T)) *customers.Subscription) {
	defer handlePanic(c, route)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		respondWithError(c, http.StatusInternalServerError, route, "streaming unsupported")
		return
	}

	updates := make(chan T, 1)
	sub := subscribe(func(value T) {
		for {
			select {
			case updates <- value:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	flusher.Flush()

	log.Printf("[STREAM] [INFO] %s opened subscription %s", route, sub.ID())
	defer log.Printf("[STREAM] [INFO] %s closed subscription %s", route, sub.ID())

	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case value := <-updates:
			data, err := json.Marshal(value)
			if err != nil {
				log.Printf("[STREAM] [ERROR] %s encode failed: %v", route, err)
				continue
			}
			fmt.Fprintf(c.Writer, "id: %s\nevent: update\ndata: %s\n\n", sub.ID(), data)
			flusher.Flush()
		}
	}
}

package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const headerRequestID = "X-Request-ID"

func limiter(max int) gin.HandlerFunc {
	if max < 1 {
		max = 1
	}
	// semaphore
	sem := make(chan struct{}, max)

	return func(c *gin.Context) {
		// blocks if semaphore is full
		select {
		case sem <- struct{}{}:
		case <-c.Request.Context().Done():
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		// dequeue semaphore
		defer func() { <-sem }()

		c.Next()
	}
}

// limiterByTime lets one request through every interval.
func limiterByTime(every time.Duration) gin.HandlerFunc {
	tick := time.NewTicker(every)

	return func(c *gin.Context) {
		// blocks waiting next tick
		select {
		case <-tick.C:
		case <-c.Request.Context().Done():
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	}
}

// requestID keeps the id sent by the client or makes a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("reqid", rid)
		c.Header(headerRequestID, rid)
		c.Next()
	}
}

func getid(c *gin.Context) string {
	return c.GetString("reqid")
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("reqid", getid(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-Request-ID")
		c.Header("X-Content-Type-Options", "nosniff")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

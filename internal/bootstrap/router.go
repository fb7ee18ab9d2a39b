package bootstrap

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/peteywee/fresh-schedules/internal/middleware"
	"github.com/peteywee/fresh-schedules/internal/reconcile"
	"github.com/peteywee/fresh-schedules/internal/shared/apperror"
	"github.com/peteywee/fresh-schedules/internal/shared/contextutil"
	"github.com/peteywee/fresh-schedules/internal/shared/response"
)

// Runner is the reconciliation entry point exposed to the trigger endpoint.
type Runner interface {
	Run(ctx context.Context) (reconcile.RunReport, error)
}

// NewRouter builds the operational surface: a health probe and a manual
// trigger mirroring what the external scheduler invokes. Concurrent trigger
// requests collapse into one run through singleflight, matching the
// one-live-instance contract of the scheduler.
func NewRouter(runner Runner) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	sf := &singleflight.Group{}

	router.GET("/healthz", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	internal := router.Group("/internal")
	internal.Use(middleware.RateLimitByIP(rate.Limit(1), 2))
	internal.POST("/reconcile/run", func(c *gin.Context) {
		v, err, shared := sf.Do("reconcile", func() (interface{}, error) {
			return runner.Run(c.Request.Context())
		})
		report, _ := v.(reconcile.RunReport)
		if err != nil {
			status := http.StatusInternalServerError
			code := apperror.CodeInternalError
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				status = appErr.HTTPStatus
				code = appErr.Code
			}
			response.Error(c, status, code, err.Error())
			return
		}
		response.Success(c, http.StatusOK, gin.H{
			"report": report,
			"shared": shared,
		})
	})

	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		log := zap.L().Named("http").With(zap.String("request_id", rid))
		ctx := contextutil.WithRequestID(c.Request.Context(), rid)
		ctx = contextutil.WithLogger(ctx, log)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", rid)

		c.Next()

		log.Info("request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
		)
	}
}

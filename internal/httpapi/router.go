// Package httpapi implements the thin HTTP/JSON surface over the
// orchestration core (spec.md §6.2): every response is wrapped in the
// {success, data?, message?, error?} envelope defined in apierr.
package httpapi

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sixthshift/artframed/internal/apierr"
	"github.com/sixthshift/artframed/internal/clockutil"
	"github.com/sixthshift/artframed/internal/condition"
	"github.com/sixthshift/artframed/internal/config"
	"github.com/sixthshift/artframed/internal/display"
	"github.com/sixthshift/artframed/internal/instance"
	"github.com/sixthshift/artframed/internal/logger"
	"github.com/sixthshift/artframed/internal/middleware"
	"github.com/sixthshift/artframed/internal/orchestrator"
	"github.com/sixthshift/artframed/internal/pluginregistry"
	"github.com/sixthshift/artframed/internal/scheduling"
)

// Dependencies are the components the API surface is a thin read/write
// veneer over; nothing in this package owns business logic.
type Dependencies struct {
	Schedule     *scheduling.Store
	Instances    *instance.Store
	Registry     *pluginregistry.Registry
	Orchestrator *orchestrator.Orchestrator
	Display      *display.Controller
	Config       *config.Watcher
	Conditions   *condition.Evaluator
	Clock        clockutil.Clock
}

// NewRouter builds a gin engine with every endpoint in spec.md §6.2
// registered under it.
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(logger.HTTP(), middleware.DefaultStructuredLoggerConfig()))
	r.Use(middleware.Timeout(middleware.DefaultTimeoutConfig()))
	r.Use(middleware.AllowedHTTPMethods())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RequestSizeLimiter(middleware.MaxRequestBodySize))
	r.Use(middleware.GzipWithExclusions(middleware.BestSpeed, []string{"/api/display/current"}))

	api := r.Group("/api")

	system := api.Group("/system")
	system.GET("/status", deps.getSystemStatus)
	system.GET("/info", deps.getSystemInfo)

	cfg := api.Group("/config")
	cfg.GET("", deps.getConfig)
	cfg.PUT("", deps.putConfig)
	cfg.POST("/save", deps.postConfigSave)
	cfg.POST("/revert", deps.postConfigRevert)

	plugins := api.Group("/plugins")
	plugins.GET("", deps.listPlugins)
	plugins.GET("/:plugin_id", deps.getPlugin)

	instances := api.Group("/instances")
	instances.GET("", deps.listInstances)
	instances.POST("", deps.createInstance)
	instances.GET("/:id", deps.getInstance)
	instances.PUT("/:id", deps.updateInstance)
	instances.DELETE("/:id", deps.deleteInstance)
	instances.POST("/:id/enable", deps.enableInstance)
	instances.POST("/:id/disable", deps.disableInstance)
	instances.POST("/:id/test", deps.testInstance)

	schedules := api.Group("/schedules")
	schedules.GET("", deps.getSchedules)
	schedules.POST("/slot", deps.setSlot)
	schedules.DELETE("/slot", deps.clearSlot)
	schedules.POST("/slots/bulk", deps.bulkSetSlots)
	schedules.POST("/clear", deps.clearAllSlots)
	schedules.GET("/current", deps.getCurrentSlot)

	scheduler := api.Group("/scheduler")
	scheduler.GET("/status", deps.getSchedulerStatus)
	scheduler.POST("/pause", deps.postSchedulerPause)
	scheduler.POST("/resume", deps.postSchedulerResume)
	scheduler.POST("/force-refresh", deps.postForceRefresh)

	displayGroup := api.Group("/display")
	displayGroup.GET("/current", deps.getDisplayCurrent)

	conditionsGroup := api.Group("/conditions")
	conditionsGroup.GET("/context", deps.getConditionContext)

	return r
}

// respond writes resp with the HTTP status implied by its success/error
// state.
func respond(c *gin.Context, okStatus int, resp apierr.Response) {
	if resp.Success {
		c.JSON(okStatus, resp)
		return
	}
	c.JSON(resp.Error.StatusCode, resp)
}

func failWith(c *gin.Context, err error) {
	respond(c, 0, apierr.Fail(err))
}

// reqContext returns the gin request's context, for plumbing into
// blocking orchestrator/plugin calls.
func reqContext(c *gin.Context) context.Context {
	return c.Request.Context()
}

package httpapi

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sixthshift/artframed/internal/apierr"
)

var processStart = time.Now()

type systemStatus struct {
	Scheduler any `json:"scheduler"`
	Display   any `json:"display"`
}

func (d Dependencies) getSystemStatus(c *gin.Context) {
	respond(c, http.StatusOK, apierr.Ok(systemStatus{
		Scheduler: d.Orchestrator.Status(),
		Display:   d.Display.State(),
	}))
}

type systemInfo struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	GoVersion     string  `json:"go_version"`
	NumGoroutine  int     `json:"num_goroutine"`
	NumCPU        int     `json:"num_cpu"`
}

// getSystemInfo reports coarse host/process metrics. Fine-grained
// hardware telemetry (temperature, disk, memory) depends on the target
// device and is outside this daemon's portable core; it is left to a
// platform-specific metrics exporter rather than hand-rolled here.
func (d Dependencies) getSystemInfo(c *gin.Context) {
	respond(c, http.StatusOK, apierr.Ok(systemInfo{
		UptimeSeconds: time.Since(processStart).Seconds(),
		GoVersion:     runtime.Version(),
		NumGoroutine:  runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
	}))
}

func (d Dependencies) getSchedulerStatus(c *gin.Context) {
	respond(c, http.StatusOK, apierr.Ok(d.Orchestrator.Status()))
}

func (d Dependencies) postSchedulerPause(c *gin.Context) {
	d.Orchestrator.Pause()
	respond(c, http.StatusOK, apierr.OkMessage("scheduler paused"))
}

func (d Dependencies) postSchedulerResume(c *gin.Context) {
	d.Orchestrator.Resume()
	respond(c, http.StatusOK, apierr.OkMessage("scheduler resumed"))
}

func (d Dependencies) postForceRefresh(c *gin.Context) {
	if err := d.Orchestrator.ForceRefresh(reqContext(c)); err != nil {
		failWith(c, apierr.Wrap(apierr.CodePluginGenerate, "force refresh failed", err))
		return
	}
	respond(c, http.StatusOK, apierr.OkMessage("refreshed"))
}

func (d Dependencies) getDisplayCurrent(c *gin.Context) {
	respond(c, http.StatusOK, apierr.Ok(d.Display.State()))
}

func (d Dependencies) getConditionContext(c *gin.Context) {
	if d.Conditions == nil {
		respond(c, http.StatusOK, apierr.Ok(nil))
		return
	}
	respond(c, http.StatusOK, apierr.Ok(d.Conditions.CurrentContext()))
}

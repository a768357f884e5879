package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sixthshift/artframed/internal/apierr"
	"github.com/sixthshift/artframed/internal/config"
)

func (d Dependencies) getConfig(c *gin.Context) {
	respond(c, http.StatusOK, apierr.Ok(d.Config.Current()))
}

// putConfig validates a candidate configuration without persisting it,
// so operators can check a draft before calling /api/config/save.
// In-place mutation of the live config that bypasses the file is
// deliberately out of scope: the orchestrator and display controller
// only ever observe configuration through a Reload, and an unsaved
// in-memory change would silently vanish on restart.
func (d Dependencies) putConfig(c *gin.Context) {
	var candidate config.Config
	if err := c.ShouldBindJSON(&candidate); err != nil {
		failWith(c, apierr.Rejected(err.Error()))
		return
	}
	if err := config.Validate(&candidate); err != nil {
		failWith(c, apierr.Rejected(err.Error()))
		return
	}
	respond(c, http.StatusOK, apierr.OkMessage("configuration is valid"))
}

// postConfigSave validates and persists a candidate configuration,
// backing up the previous file first, then makes it the active
// configuration.
func (d Dependencies) postConfigSave(c *gin.Context) {
	var candidate config.Config
	if err := c.ShouldBindJSON(&candidate); err != nil {
		failWith(c, apierr.Rejected(err.Error()))
		return
	}
	if err := d.Config.Save(&candidate); err != nil {
		failWith(c, apierr.Wrap(apierr.CodeIOStore, "failed to save config", err))
		return
	}
	respond(c, http.StatusOK, apierr.Ok(d.Config.Current()))
}

func (d Dependencies) postConfigRevert(c *gin.Context) {
	if err := d.Config.Reload(); err != nil {
		failWith(c, apierr.Wrap(apierr.CodeRejected, "failed to reload config", err))
		return
	}
	respond(c, http.StatusOK, apierr.Ok(d.Config.Current()))
}

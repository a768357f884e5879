package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sixthshift/artframed/internal/apierr"
)

func (d Dependencies) listPlugins(c *gin.Context) {
	respond(c, http.StatusOK, apierr.Ok(d.Registry.ListMetadata()))
}

func (d Dependencies) getPlugin(c *gin.Context) {
	pluginID := c.Param("plugin_id")
	meta, ok := d.Registry.Metadata(pluginID)
	if !ok {
		failWith(c, apierr.NotFound("plugin"))
		return
	}
	respond(c, http.StatusOK, apierr.Ok(meta))
}

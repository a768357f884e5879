package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sixthshift/artframed/internal/apierr"
	"github.com/sixthshift/artframed/internal/instance"
	"github.com/sixthshift/artframed/internal/pluginapi"
	"github.com/sixthshift/artframed/internal/pluginregistry"
)

type createInstanceRequest struct {
	PluginID string             `json:"plugin_id" binding:"required"`
	Name     string             `json:"name" binding:"required"`
	Settings pluginapi.Settings `json:"settings"`
}

type updateInstanceRequest struct {
	Name     *string            `json:"name"`
	Settings pluginapi.Settings `json:"settings"`
}

func instanceError(err error) error {
	switch err.(type) {
	case *instance.ErrNotFound:
		return apierr.NotFound("instance")
	case *instance.ErrInvalidSettings:
		return apierr.Rejected(err.Error())
	case *pluginregistry.ErrUnknownPlugin:
		return apierr.Rejected(err.Error())
	default:
		return apierr.Wrap(apierr.CodeIOStore, "instance store operation failed", err)
	}
}

func (d Dependencies) listInstances(c *gin.Context) {
	pluginID := c.Query("plugin_id")
	respond(c, http.StatusOK, apierr.Ok(d.Instances.List(pluginID)))
}

func (d Dependencies) createInstance(c *gin.Context) {
	var req createInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, apierr.Rejected(err.Error()))
		return
	}

	inst, err := d.Instances.Create(req.PluginID, req.Name, req.Settings)
	if err != nil {
		failWith(c, instanceError(err))
		return
	}
	respond(c, http.StatusCreated, apierr.Ok(inst))
}

func (d Dependencies) getInstance(c *gin.Context) {
	inst, err := d.Instances.Get(c.Param("id"))
	if err != nil {
		failWith(c, instanceError(err))
		return
	}
	respond(c, http.StatusOK, apierr.Ok(inst))
}

func (d Dependencies) updateInstance(c *gin.Context) {
	var req updateInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, apierr.Rejected(err.Error()))
		return
	}

	var settings pluginapi.Settings
	if req.Settings != nil {
		settings = req.Settings
	}

	inst, err := d.Instances.Update(c.Param("id"), req.Name, settings)
	if err != nil {
		failWith(c, instanceError(err))
		return
	}
	respond(c, http.StatusOK, apierr.Ok(inst))
}

func (d Dependencies) deleteInstance(c *gin.Context) {
	if err := d.Instances.Delete(c.Param("id")); err != nil {
		failWith(c, instanceError(err))
		return
	}
	respond(c, http.StatusOK, apierr.OkMessage("instance deleted"))
}

func (d Dependencies) enableInstance(c *gin.Context) {
	inst, err := d.Instances.Enable(c.Param("id"))
	if err != nil {
		failWith(c, instanceError(err))
		return
	}
	respond(c, http.StatusOK, apierr.Ok(inst))
}

func (d Dependencies) disableInstance(c *gin.Context) {
	inst, err := d.Instances.Disable(c.Param("id"))
	if err != nil {
		failWith(c, instanceError(err))
		return
	}
	respond(c, http.StatusOK, apierr.Ok(inst))
}

func (d Dependencies) testInstance(c *gin.Context) {
	width, height := d.Display.Size()
	device := pluginapi.DeviceConfig{Width: width, Height: height}

	if err := d.Instances.Test(reqContext(c), c.Param("id"), device); err != nil {
		failWith(c, apierr.Wrap(apierr.CodePluginGenerate, "test render failed", err))
		return
	}
	respond(c, http.StatusOK, apierr.OkMessage("test render succeeded"))
}

package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sixthshift/artframed/internal/apierr"
	"github.com/sixthshift/artframed/internal/scheduling"
)

type setSlotRequest struct {
	Day        int                     `json:"day"`
	Hour       int                     `json:"hour"`
	TargetType scheduling.TargetType   `json:"target_type"`
	TargetID   string                  `json:"target_id"`
}

type bulkSlotRequest struct {
	Slots []setSlotRequest `json:"slots"`
}

func scheduleError(err error) error {
	if _, ok := err.(*scheduling.ErrInvalidArgument); ok {
		return apierr.Rejected(err.Error())
	}
	return apierr.Wrap(apierr.CodeIOStore, "schedule store operation failed", err)
}

func (d Dependencies) getSchedules(c *gin.Context) {
	respond(c, http.StatusOK, apierr.Ok(d.Schedule.Snapshot()))
}

func (d Dependencies) setSlot(c *gin.Context) {
	var req setSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, apierr.Rejected(err.Error()))
		return
	}
	if req.TargetType == "" {
		req.TargetType = scheduling.TargetInstance
	}

	slot, err := d.Schedule.SetSlot(req.Day, req.Hour, req.TargetType, req.TargetID)
	if err != nil {
		failWith(c, scheduleError(err))
		return
	}
	respond(c, http.StatusOK, apierr.Ok(slot))
}

func (d Dependencies) clearSlot(c *gin.Context) {
	day, err := strconv.Atoi(c.Query("day"))
	if err != nil {
		failWith(c, apierr.Rejected("day must be an integer"))
		return
	}
	hour, err := strconv.Atoi(c.Query("hour"))
	if err != nil {
		failWith(c, apierr.Rejected("hour must be an integer"))
		return
	}

	existed, err := d.Schedule.ClearSlot(day, hour)
	if err != nil {
		failWith(c, scheduleError(err))
		return
	}
	respond(c, http.StatusOK, apierr.Ok(gin.H{"existed": existed}))
}

func (d Dependencies) bulkSetSlots(c *gin.Context) {
	var req bulkSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, apierr.Rejected(err.Error()))
		return
	}

	slots := make([]scheduling.BulkSlot, 0, len(req.Slots))
	for _, s := range req.Slots {
		targetType := s.TargetType
		if targetType == "" {
			targetType = scheduling.TargetInstance
		}
		slots = append(slots, scheduling.BulkSlot{Day: s.Day, Hour: s.Hour, TargetType: targetType, TargetID: s.TargetID})
	}

	count, err := d.Schedule.BulkSet(slots)
	if err != nil {
		failWith(c, scheduleError(err))
		return
	}
	respond(c, http.StatusOK, apierr.Ok(gin.H{"count": count}))
}

func (d Dependencies) clearAllSlots(c *gin.Context) {
	count, err := d.Schedule.ClearAll()
	if err != nil {
		failWith(c, scheduleError(err))
		return
	}
	respond(c, http.StatusOK, apierr.Ok(gin.H{"count": count}))
}

func (d Dependencies) getCurrentSlot(c *gin.Context) {
	source := d.Orchestrator.GetCurrentContentSource()
	respond(c, http.StatusOK, apierr.Ok(source))
}

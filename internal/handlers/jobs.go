package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lionfish/api/internal/models"
)

type createJobRequest struct {
	ImageID        string `json:"imageId" binding:"required,uuid"`
	ImageVersionID string `json:"imageVersionId" binding:"required,uuid"`
	CPU            string `json:"cpu" binding:"required"`
	GPU            string `json:"gpu"`
}

type jobResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Status         string    `json:"status"`
	ImageVersionID string    `json:"imageVersionId"`
	MachineID      *string   `json:"machineId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func newJobResponse(job models.Job) jobResponse {
	return jobResponse{
		ID:             job.ID,
		UserID:         job.UserID,
		Status:         string(job.Status),
		ImageVersionID: job.ImageVersionID,
		MachineID:      job.MachineID,
		CreatedAt:      job.CreatedAt,
		UpdatedAt:      job.UpdatedAt,
	}
}

func (h HandlerSet) CreateJob(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.jobs.Create(c.Request.Context(), user, req.ImageID, req.ImageVersionID, req.CPU, req.GPU)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newJobResponse(job))
}

func (h HandlerSet) GetJobs(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	jobs, err := h.jobs.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	resp := make([]jobResponse, 0, len(jobs))
	for _, job := range jobs {
		resp = append(resp, newJobResponse(job))
	}
	c.JSON(http.StatusOK, resp)
}

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-attendance/internal/approval"
	"campus-attendance/internal/institute"
)

func (h *Handler) submitSession(c *gin.Context) {
	var in approval.SessionInput
	if !h.bind(c, &in) {
		return
	}
	req, err := h.Approvals.SubmitSession(c.Request.Context(), in, caller(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusCreated, req)
}

func (h *Handler) submitBranch(c *gin.Context) {
	var in approval.BranchInput
	if !h.bind(c, &in) {
		return
	}
	req, err := h.Approvals.SubmitBranch(c.Request.Context(), in, caller(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusCreated, req)
}

func (h *Handler) listApprovals(c *gin.Context) {
	var f approval.Filter
	if !h.bindQuery(c, &f) {
		return
	}
	out, err := h.Approvals.List(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, out)
}

func (h *Handler) pendingApprovals(c *gin.Context) {
	ctx := c.Request.Context()
	sessions := h.Approvals.PendingCount(ctx, approval.KindSession)
	branches := h.Approvals.PendingCount(ctx, approval.KindBranch)
	h.ok(c, http.StatusOK, gin.H{
		"session": sessions,
		"branch":  branches,
		"total":   sessions + branches,
	})
}

func (h *Handler) approve(c *gin.Context) {
	req, err := h.Approvals.Approve(c.Request.Context(), c.Param("id"), caller(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, req)
}

type rejectRequest struct {
	Reason string `json:"rejectionReason" binding:"required"`
}

func (h *Handler) reject(c *gin.Context) {
	var body rejectRequest
	if !h.bind(c, &body) {
		return
	}
	req, err := h.Approvals.Reject(c.Request.Context(), c.Param("id"), caller(c), body.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, req)
}

type readStatusRequest struct {
	IDs  []string `json:"ids" binding:"required,min=1"`
	Read *bool    `json:"readStatus" binding:"required"`
}

func (h *Handler) markRead(c *gin.Context) {
	var req readStatusRequest
	if !h.bind(c, &req) {
		return
	}
	n, err := h.Approvals.MarkRead(c.Request.Context(), req.IDs, *req.Read)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, gin.H{"updated": n})
}

func (h *Handler) getInstitute(c *gin.Context) {
	s, err := h.Institute.Get(c.Request.Context(), c.Query("configType"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, s)
}

func (h *Handler) upsertInstitute(c *gin.Context) {
	var in institute.SettingsInput
	if !h.bind(c, &in) {
		return
	}
	s, err := h.Institute.Upsert(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, s)
}

func (h *Handler) addInstituteSession(c *gin.Context) {
	var in institute.SessionInput
	if !h.bind(c, &in) {
		return
	}
	s, err := h.Institute.AddSession(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusCreated, s)
}

type activeSessionRequest struct {
	ConfigType string `json:"configType"`
	Name       string `json:"name" binding:"required"`
}

func (h *Handler) activateInstituteSession(c *gin.Context) {
	var req activeSessionRequest
	if !h.bind(c, &req) {
		return
	}
	s, err := h.Institute.SetActiveSession(c.Request.Context(), req.ConfigType, req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, s)
}

func (h *Handler) removeInstituteSession(c *gin.Context) {
	if err := h.Institute.RemoveSession(c.Request.Context(), c.Query("configType"), c.Param("name")); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, gin.H{"deleted": c.Param("name")})
}

func (h *Handler) dashboardStats(c *gin.Context) {
	stats, err := h.Dashboard.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, stats)
}

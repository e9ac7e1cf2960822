package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"campus-attendance/internal/attendance"
	"campus-attendance/internal/auth"
	"campus-attendance/internal/timetable"
)

// ownerRequest names a faculty member by id or by employee code.
type ownerRequest struct {
	OwnerID      string `json:"ownerId"`
	EmployeeCode string `json:"employeeCode"`
}

func (h *Handler) resolveOwner(c *gin.Context, ownerID, employeeCode string) (string, bool) {
	id, err := h.Faculty.ResolveOwner(c.Request.Context(), ownerID, employeeCode)
	if err != nil {
		h.fail(c, err)
		return "", false
	}
	if !h.ownsTimetable(c, id) {
		return "", false
	}
	return id, true
}

// ownsTimetable lets faculty act only on their own timetable and sheets. Admins and
// department admins act on anyone's. It writes a 403 when access is denied.
func (h *Handler) ownsTimetable(c *gin.Context, ownerID string) bool {
	claims, ok := auth.FromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Status: "err", Message: "missing bearer token", Code: http.StatusUnauthorized, Data: gin.H{}})
		return false
	}
	if claims.Role != auth.RoleFaculty || strings.EqualFold(claims.Subject, strings.TrimSpace(ownerID)) {
		return true
	}
	c.AbortWithStatusJSON(http.StatusForbidden, envelope{Status: "err", Message: "not the owner of this timetable", Code: http.StatusForbidden, Data: gin.H{}})
	return false
}

func (h *Handler) getTimetable(c *gin.Context) {
	var req ownerRequest
	if !h.bind(c, &req) {
		return
	}
	owner, ok := h.resolveOwner(c, req.OwnerID, req.EmployeeCode)
	if !ok {
		return
	}
	tt, err := h.Timetables.Get(c.Request.Context(), owner)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, tt)
}

func (h *Handler) updateTimetable(c *gin.Context) {
	var in timetable.UpdateInput
	if !h.bind(c, &in) || !h.ownsTimetable(c, in.OwnerID) {
		return
	}
	tt, created, err := h.Timetables.Update(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, gin.H{"timetable": tt, "sheetsCreated": created})
}

func (h *Handler) deleteTimetableSlot(c *gin.Context) {
	var in timetable.DeleteSlotInput
	if !h.bind(c, &in) || !h.ownsTimetable(c, in.OwnerID) {
		return
	}
	if err := h.Timetables.DeleteSlot(c.Request.Context(), in); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, gin.H{"day": in.Day, "subjectId": in.SubjectID})
}

func (h *Handler) markAttendance(c *gin.Context) {
	var in attendance.MarkInput
	if !h.bind(c, &in) || !h.ownsTimetable(c, in.OwnerID) {
		return
	}
	sheet, err := h.Attendance.Mark(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, sheet)
}

type sheetsRequest struct {
	ownerRequest
	SubjectID string `json:"subjectId"`
}

func (h *Handler) attendanceSheets(c *gin.Context) {
	var req sheetsRequest
	if !h.bind(c, &req) {
		return
	}
	owner, ok := h.resolveOwner(c, req.OwnerID, req.EmployeeCode)
	if !ok {
		return
	}
	out, err := h.Attendance.Sheets(c.Request.Context(), owner, req.SubjectID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, out)
}

type monthlyRequest struct {
	attendance.MonthlyQuery
	EmployeeCode string `json:"employeeCode"`
}

func (h *Handler) monthlyReport(c *gin.Context) {
	var req monthlyRequest
	if !h.bind(c, &req) {
		return
	}
	owner, ok := h.resolveOwner(c, req.OwnerID, req.EmployeeCode)
	if !ok {
		return
	}
	req.OwnerID = owner
	out, err := h.Attendance.MonthlyReport(c.Request.Context(), req.MonthlyQuery)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, out)
}

type subjectReportRequest struct {
	attendance.SubjectQuery
	EmployeeCode string `json:"employeeCode"`
}

func (h *Handler) subjectQuery(c *gin.Context) (attendance.SubjectQuery, bool) {
	var req subjectReportRequest
	if !h.bind(c, &req) {
		return attendance.SubjectQuery{}, false
	}
	owner, ok := h.resolveOwner(c, req.OwnerID, req.EmployeeCode)
	if !ok {
		return attendance.SubjectQuery{}, false
	}
	req.OwnerID = owner
	return req.SubjectQuery, true
}

func (h *Handler) overallReport(c *gin.Context) {
	q, ok := h.subjectQuery(c)
	if !ok {
		return
	}
	out, err := h.Attendance.OverallReport(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, out)
}

func (h *Handler) classReport(c *gin.Context) {
	q, ok := h.subjectQuery(c)
	if !ok {
		return
	}
	out, err := h.Attendance.ClassReport(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, out)
}

type rangeRequest struct {
	attendance.RangeQuery
	EmployeeCode string `json:"employeeCode"`
}

func (h *Handler) rangeQuery(c *gin.Context) (attendance.RangeQuery, bool) {
	var req rangeRequest
	if !h.bind(c, &req) {
		return attendance.RangeQuery{}, false
	}
	owner, ok := h.resolveOwner(c, req.OwnerID, req.EmployeeCode)
	if !ok {
		return attendance.RangeQuery{}, false
	}
	req.OwnerID = owner
	return req.RangeQuery, true
}

func (h *Handler) scheduleReport(c *gin.Context) {
	q, ok := h.rangeQuery(c)
	if !ok {
		return
	}
	out, err := h.Attendance.ScheduleReport(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, out)
}

func (h *Handler) unmarkedDates(c *gin.Context) {
	q, ok := h.rangeQuery(c)
	if !ok {
		return
	}
	out, err := h.Attendance.UnmarkedDates(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, out)
}

func (h *Handler) classStrength(c *gin.Context) {
	var q attendance.ClassQuery
	if !h.bind(c, &q) {
		return
	}
	n, err := h.Attendance.ClassStrength(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, gin.H{"totalStudents": n})
}

func (h *Handler) averageMarked(c *gin.Context) {
	var q attendance.ClassQuery
	if !h.bind(c, &q) {
		return
	}
	avg, err := h.Attendance.AverageMarked(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, gin.H{"averageMarked": avg})
}

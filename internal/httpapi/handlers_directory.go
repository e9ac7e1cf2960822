package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-attendance/internal/department"
	"campus-attendance/internal/faculty"
	"campus-attendance/internal/student"
	"campus-attendance/internal/subject"
)

type departmentRequest struct {
	Name string `json:"department" binding:"required"`
	Code string `json:"cn" binding:"required"`
}

func (h *Handler) createDepartment(c *gin.Context) {
	var req departmentRequest
	if !h.bind(c, &req) {
		return
	}
	d, err := h.Departments.CreateDepartment(c.Request.Context(), req.Name, req.Code)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusCreated, d)
}

func (h *Handler) listDepartments(c *gin.Context) {
	out, err := h.Departments.ListDepartments(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, out)
}

func (h *Handler) getDepartment(c *gin.Context) {
	d, err := h.Departments.GetDepartment(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, d)
}

func (h *Handler) deleteDepartment(c *gin.Context) {
	if err := h.Departments.DeleteDepartment(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func (h *Handler) listCourses(c *gin.Context) {
	out, err := h.Departments.Courses(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, out)
}

func (h *Handler) addBranch(c *gin.Context) {
	var in department.BranchInput
	if !h.bind(c, &in) {
		return
	}
	b, err := h.Departments.AddBranch(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusCreated, b)
}

func (h *Handler) removeBranch(c *gin.Context) {
	if err := h.Departments.RemoveBranch(c.Request.Context(), c.Param("id"), c.Param("shortForm")); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, gin.H{"deleted": c.Param("shortForm")})
}

type sessionRequest struct {
	Session string `json:"session" binding:"required,academic_session"`
}

func (h *Handler) addSession(c *gin.Context) {
	var req sessionRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.Departments.AddSession(c.Request.Context(), c.Param("id"), c.Param("shortForm"), req.Session); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusCreated, gin.H{"branch": c.Param("shortForm"), "session": req.Session})
}

func (h *Handler) removeSession(c *gin.Context) {
	err := h.Departments.RemoveSession(c.Request.Context(), c.Param("id"), c.Param("shortForm"), c.Param("session"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, gin.H{"deleted": c.Param("session")})
}

func (h *Handler) createFaculty(c *gin.Context) {
	var in faculty.CreateInput
	if !h.bind(c, &in) {
		return
	}
	f, err := h.Faculty.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusCreated, f)
}

func (h *Handler) listFaculty(c *gin.Context) {
	out, err := h.Faculty.ListByDepartment(c.Request.Context(), c.Query("department"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, out)
}

func (h *Handler) getFaculty(c *gin.Context) {
	f, err := h.Faculty.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, f)
}

func (h *Handler) deleteFaculty(c *gin.Context) {
	if err := h.Faculty.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func (h *Handler) createSubject(c *gin.Context) {
	var in subject.CreateInput
	if !h.bind(c, &in) {
		return
	}
	s, err := h.Subjects.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusCreated, s)
}

// listSubjects returns a flat list, or department-wise groups with ?grouped=true.
func (h *Handler) listSubjects(c *gin.Context) {
	if c.Query("grouped") == "true" {
		out, err := h.Subjects.GroupedByDepartment(c.Request.Context())
		if err != nil {
			h.fail(c, err)
			return
		}
		h.ok(c, http.StatusOK, out)
		return
	}
	out, err := h.Subjects.List(c.Request.Context(), c.Query("department"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, out)
}

func (h *Handler) getSubject(c *gin.Context) {
	s, err := h.Subjects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, s)
}

func (h *Handler) deleteSubject(c *gin.Context) {
	if err := h.Subjects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func (h *Handler) createStudent(c *gin.Context) {
	var in student.CreateInput
	if !h.bind(c, &in) {
		return
	}
	s, err := h.Students.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusCreated, s)
}

func (h *Handler) listStudents(c *gin.Context) {
	out, err := h.Students.List(c.Request.Context(), c.Query("branch"), c.Query("batch"), c.Query("section"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, out)
}

func (h *Handler) studentClasses(c *gin.Context) {
	out, err := h.Students.Enumerate(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, out)
}

func (h *Handler) deleteStudent(c *gin.Context) {
	if err := h.Students.Delete(c.Request.Context(), c.Param("scholarNo")); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, gin.H{"deleted": c.Param("scholarNo")})
}

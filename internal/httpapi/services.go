package httpapi

import (
	"context"

	"campus-attendance/internal/approval"
	"campus-attendance/internal/attendance"
	"campus-attendance/internal/dashboard"
	"campus-attendance/internal/department"
	"campus-attendance/internal/faculty"
	"campus-attendance/internal/institute"
	"campus-attendance/internal/student"
	"campus-attendance/internal/subject"
	"campus-attendance/internal/timetable"
)

type Departments interface {
	CreateDepartment(ctx context.Context, name, code string) (department.Department, error)
	ListDepartments(ctx context.Context) ([]department.Department, error)
	GetDepartment(ctx context.Context, id string) (department.Department, error)
	DeleteDepartment(ctx context.Context, id string) error
	AddBranch(ctx context.Context, departmentID string, in department.BranchInput) (department.Branch, error)
	RemoveBranch(ctx context.Context, departmentID, shortForm string) error
	AddSession(ctx context.Context, departmentID, shortForm, session string) error
	RemoveSession(ctx context.Context, departmentID, shortForm, session string) error
	Courses(ctx context.Context, departmentID string) ([]department.Course, error)
}

type Faculty interface {
	Create(ctx context.Context, in faculty.CreateInput) (faculty.Faculty, error)
	Get(ctx context.Context, id string) (faculty.Faculty, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]faculty.Faculty, error)
	Delete(ctx context.Context, id string) error
	Authenticate(ctx context.Context, email, password string) (faculty.Faculty, error)
	ResolveOwner(ctx context.Context, ownerID, employeeCode string) (string, error)
}

type Subjects interface {
	Create(ctx context.Context, in subject.CreateInput) (subject.Subject, error)
	Get(ctx context.Context, id string) (subject.Subject, error)
	List(ctx context.Context, departmentID string) ([]subject.Subject, error)
	GroupedByDepartment(ctx context.Context) ([]subject.DepartmentSubjects, error)
	Delete(ctx context.Context, id string) error
}

type Students interface {
	Create(ctx context.Context, in student.CreateInput) (student.Student, error)
	List(ctx context.Context, branch, batch, section string) ([]student.Student, error)
	Enumerate(ctx context.Context) ([]student.BranchSections, error)
	Delete(ctx context.Context, scholarNo string) error
}

type Timetables interface {
	Get(ctx context.Context, ownerID string) (timetable.Timetable, error)
	Update(ctx context.Context, in timetable.UpdateInput) (timetable.Timetable, int, error)
	DeleteSlot(ctx context.Context, in timetable.DeleteSlotInput) error
}

type Attendance interface {
	Mark(ctx context.Context, in attendance.MarkInput) (attendance.Sheet, error)
	Sheets(ctx context.Context, ownerID, subjectID string) ([]attendance.Sheet, error)
	MonthlyReport(ctx context.Context, q attendance.MonthlyQuery) ([]attendance.MonthlyRow, error)
	OverallReport(ctx context.Context, q attendance.SubjectQuery) ([]attendance.StudentTotal, error)
	ClassReport(ctx context.Context, q attendance.SubjectQuery) (attendance.ClassReport, error)
	ScheduleReport(ctx context.Context, q attendance.RangeQuery) ([]attendance.ScheduleRow, error)
	UnmarkedDates(ctx context.Context, q attendance.RangeQuery) (attendance.Unmarked, error)
	ClassStrength(ctx context.Context, q attendance.ClassQuery) (int, error)
	AverageMarked(ctx context.Context, q attendance.ClassQuery) (float64, error)
}

type Approvals interface {
	SubmitSession(ctx context.Context, in approval.SessionInput, requestedBy string) (approval.Request, error)
	SubmitBranch(ctx context.Context, in approval.BranchInput, requestedBy string) (approval.Request, error)
	List(ctx context.Context, f approval.Filter) ([]approval.Request, error)
	Approve(ctx context.Context, id, processedBy string) (approval.Request, error)
	Reject(ctx context.Context, id, processedBy, reason string) (approval.Request, error)
	MarkRead(ctx context.Context, ids []string, read bool) (int, error)
	PendingCount(ctx context.Context, kind approval.Kind) int
}

type Institute interface {
	Get(ctx context.Context, configType string) (institute.Settings, error)
	Upsert(ctx context.Context, in institute.SettingsInput) (institute.Settings, error)
	AddSession(ctx context.Context, in institute.SessionInput) (institute.Settings, error)
	SetActiveSession(ctx context.Context, configType, name string) (institute.Settings, error)
	RemoveSession(ctx context.Context, configType, name string) error
}

type Dashboard interface {
	Stats(ctx context.Context) (dashboard.Stats, error)
	Invalidate(ctx context.Context) error
}

// HealthCheck reports whether a dependency answers.
type HealthCheck func(ctx context.Context) bool

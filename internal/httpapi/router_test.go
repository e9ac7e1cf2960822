package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"campus-attendance/internal/apperror"
	"campus-attendance/internal/approval"
	"campus-attendance/internal/attendance"
	"campus-attendance/internal/auth"
	"campus-attendance/internal/dashboard"
	"campus-attendance/internal/department"
	"campus-attendance/internal/faculty"
	"campus-attendance/internal/timetable"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testIssuer = auth.Issuer{Name: "campus-test", Key: []byte("test-secret"), AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour}

type stubDepartments struct {
	Departments
	created []string
}

func (s *stubDepartments) CreateDepartment(_ context.Context, name, code string) (department.Department, error) {
	s.created = append(s.created, name)
	return department.Department{ID: "d1", Name: name, Code: code}, nil
}

func (s *stubDepartments) GetDepartment(_ context.Context, id string) (department.Department, error) {
	return department.Department{}, apperror.NotFound("department %s not found", id)
}

type stubFaculty struct {
	Faculty
	byCode map[string]string
}

func (s *stubFaculty) ResolveOwner(_ context.Context, ownerID, employeeCode string) (string, error) {
	if ownerID != "" {
		return ownerID, nil
	}
	id, ok := s.byCode[employeeCode]
	if !ok {
		return "", apperror.NotFound("faculty %s not found", employeeCode)
	}
	return id, nil
}

func (s *stubFaculty) Authenticate(_ context.Context, email, password string) (faculty.Faculty, error) {
	if email == "admin@campus.test" && password == "correct-horse" {
		return faculty.Faculty{ID: "f-admin", Email: email, Role: auth.RoleAdmin}, nil
	}
	return faculty.Faculty{}, faculty.ErrInvalidCredentials
}

type stubAttendance struct {
	Attendance
	monthly attendance.MonthlyQuery
}

func (s *stubAttendance) MonthlyReport(_ context.Context, q attendance.MonthlyQuery) ([]attendance.MonthlyRow, error) {
	s.monthly = q
	return []attendance.MonthlyRow{{ScholarNo: q.ScholarNo, Month: "2024-01", TotalSessions: 1, PresentCount: 1, AttendancePercentage: 100}}, nil
}

type stubApprovals struct {
	Approvals
	requestedBy string
}

func (s *stubApprovals) SubmitSession(_ context.Context, in approval.SessionInput, requestedBy string) (approval.Request, error) {
	s.requestedBy = requestedBy
	return approval.Request{ID: "r1", Kind: approval.KindSession, Session: in.Session, Status: approval.StatusPending}, nil
}

func (s *stubApprovals) PendingCount(_ context.Context, kind approval.Kind) int {
	if kind == approval.KindSession {
		return 2
	}
	return 1
}

type stubTimetables struct {
	Timetables
	updatedFor []string
}

func (s *stubTimetables) Update(_ context.Context, in timetable.UpdateInput) (timetable.Timetable, int, error) {
	s.updatedFor = append(s.updatedFor, in.OwnerID)
	return timetable.Timetable{OwnerID: in.OwnerID, Week: in.Week}, 0, nil
}

func (s *stubTimetables) Get(_ context.Context, ownerID string) (timetable.Timetable, error) {
	return timetable.Timetable{OwnerID: ownerID, Week: timetable.Week{}}, nil
}

type stubDashboard struct {
	invalidations int
}

func (s *stubDashboard) Stats(context.Context) (dashboard.Stats, error) {
	return dashboard.Stats{Departments: 3}, nil
}

func (s *stubDashboard) Invalidate(context.Context) error {
	s.invalidations++
	return nil
}

type fixture struct {
	router     *gin.Engine
	depts      *stubDepartments
	attendance *stubAttendance
	approvals  *stubApprovals
	timetables *stubTimetables
	dash       *stubDashboard
}

func newFixture(health map[string]HealthCheck) *fixture {
	f := &fixture{
		depts:      &stubDepartments{},
		attendance: &stubAttendance{},
		approvals:  &stubApprovals{},
		timetables: &stubTimetables{},
		dash:       &stubDashboard{},
	}
	f.router = NewRouter(Deps{
		Issuer:      testIssuer,
		Health:      health,
		Departments: f.depts,
		Faculty:     &stubFaculty{byCode: map[string]string{"EMP01": "8d3c2a4e-8f7b-4a55-9c1e-2d5b7a9e0f11"}},
		Attendance:  f.attendance,
		Approvals:   f.approvals,
		Timetables:  f.timetables,
		Dashboard:   f.dash,
	})
	return f
}

func token(t *testing.T, subject string, role auth.Role) string {
	t.Helper()
	pair, err := testIssuer.Issue(subject, role, "")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return pair.AccessToken
}

func (f *fixture) do(t *testing.T, method, path, bearer string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newFixture(nil)
	w, env := f.do(t, http.MethodGet, "/departments", "", nil)
	if w.Code != http.StatusUnauthorized || env.Status != "err" {
		t.Fatalf("expected 401 error envelope, got %d %+v", w.Code, env)
	}
}

func TestFacultyCannotCreateDepartment(t *testing.T) {
	f := newFixture(nil)
	w, _ := f.do(t, http.MethodPost, "/departments", token(t, "f1", auth.RoleFaculty), gin.H{"department": "Computer Science", "cn": "CSE"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if len(f.depts.created) != 0 {
		t.Fatalf("department should not be created")
	}
}

func TestCreateDepartmentInvalidatesStats(t *testing.T) {
	f := newFixture(nil)
	w, env := f.do(t, http.MethodPost, "/departments", token(t, "f-admin", auth.RoleAdmin), gin.H{"department": "Computer Science", "cn": "CSE"})
	if w.Code != http.StatusCreated || env.Status != "ok" {
		t.Fatalf("expected 201 ok, got %d %s", w.Code, w.Body.String())
	}
	if f.dash.invalidations != 1 {
		t.Fatalf("expected one stats invalidation, got %d", f.dash.invalidations)
	}
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	f := newFixture(nil)
	w, env := f.do(t, http.MethodGet, "/departments/missing", token(t, "f1", auth.RoleFaculty), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if env.Status != "err" || env.Code != http.StatusNotFound || env.Message == "" {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestSessionRequestRejectsBadFormat(t *testing.T) {
	f := newFixture(nil)
	body := gin.H{"departmentId": "8d3c2a4e-8f7b-4a55-9c1e-2d5b7a9e0f11", "branchShortForm": "CSE", "session": "2024/25"}
	w, _ := f.do(t, http.MethodPost, "/approvals/sessions", token(t, "f-admin", auth.RoleDeptAdmin), body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed session, got %d", w.Code)
	}

	body["session"] = "2024-25"
	w, _ = f.do(t, http.MethodPost, "/approvals/sessions", token(t, "f-dept", auth.RoleDeptAdmin), body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", w.Code, w.Body.String())
	}
	if f.approvals.requestedBy != "f-dept" {
		t.Fatalf("expected requester from token, got %q", f.approvals.requestedBy)
	}
}

func TestMonthlyReportResolvesEmployeeCode(t *testing.T) {
	f := newFixture(nil)
	body := gin.H{"employeeCode": "EMP01", "branch": "CSE", "section": "A", "scholarNumber": "S1"}
	w, env := f.do(t, http.MethodPost, "/attendance/report/monthly", token(t, "8d3c2a4e-8f7b-4a55-9c1e-2d5b7a9e0f11", auth.RoleFaculty), body)
	if w.Code != http.StatusOK || env.Status != "ok" {
		t.Fatalf("expected 200 ok, got %d %s", w.Code, w.Body.String())
	}
	if f.attendance.monthly.OwnerID != "8d3c2a4e-8f7b-4a55-9c1e-2d5b7a9e0f11" {
		t.Fatalf("owner not resolved: %+v", f.attendance.monthly)
	}
	if f.dash.invalidations != 0 {
		t.Fatalf("read-only report must not invalidate stats")
	}
}

func TestPendingApprovalCounts(t *testing.T) {
	f := newFixture(nil)
	w, env := f.do(t, http.MethodGet, "/approvals/pending", token(t, "f-admin", auth.RoleAdmin), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data, _ := env.Data.(map[string]any)
	if data["total"] != float64(3) {
		t.Fatalf("expected total 3, got %v", data["total"])
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(nil)
	w, _ := f.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "admin@campus.test", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad credentials, got %d", w.Code)
	}

	w, env := f.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "admin@campus.test", "password": "correct-horse"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
	}
	data, _ := env.Data.(map[string]any)
	tokens, _ := data["tokens"].(map[string]any)
	access, _ := tokens["accessToken"].(string)
	claims, err := testIssuer.ParseAccess(access)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.Subject != "f-admin" || claims.Role != auth.RoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestHealthReportsDegraded(t *testing.T) {
	f := newFixture(map[string]HealthCheck{
		"postgres": func(context.Context) bool { return true },
		"redis":    func(context.Context) bool { return false },
	})
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(nil)
	w, env := f.do(t, http.MethodGet, "/nope", "", nil)
	if w.Code != http.StatusNotFound || env.Status != "err" {
		t.Fatalf("expected 404 envelope, got %d %+v", w.Code, env)
	}
}

const (
	ownerA = "8d3c2a4e-8f7b-4a55-9c1e-2d5b7a9e0f11"
	ownerB = "11111111-2222-4333-8444-555555555555"
)

func TestFacultyCannotTouchAnotherTimetable(t *testing.T) {
	f := newFixture(nil)
	other := token(t, ownerB, auth.RoleFaculty)
	week := gin.H{"1": []gin.H{}}

	w, _ := f.do(t, http.MethodPost, "/timetable/update", other, gin.H{"ownerId": ownerA, "timetable": week})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 updating another timetable, got %d", w.Code)
	}
	if len(f.timetables.updatedFor) != 0 {
		t.Fatalf("timetable must not be updated, got %v", f.timetables.updatedFor)
	}

	w, _ = f.do(t, http.MethodPost, "/timetable/get", other, gin.H{"employeeCode": "EMP01"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 reading another timetable by employee code, got %d", w.Code)
	}

	mark := gin.H{"ownerId": ownerA, "subjectId": ownerB, "section": "A", "date": "2024-01-15", "time": "09:00-10:00",
		"students": []gin.H{{"Scholar No.": "S1", "isPresent": "1"}}}
	w, _ = f.do(t, http.MethodPost, "/attendance/mark", other, mark)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 marking another faculty's attendance, got %d", w.Code)
	}

	w, _ = f.do(t, http.MethodPost, "/attendance/report/monthly", other, gin.H{"ownerId": ownerA, "scholarNumber": "S1"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 reading another faculty's report, got %d", w.Code)
	}
	if f.attendance.monthly.OwnerID != "" {
		t.Fatalf("report must not run for another owner")
	}
}

func TestOwnersAndAdminsCanUpdateTimetable(t *testing.T) {
	f := newFixture(nil)
	week := gin.H{"1": []gin.H{}}

	for _, bearer := range []string{
		token(t, ownerA, auth.RoleFaculty),
		token(t, ownerB, auth.RoleAdmin),
		token(t, ownerB, auth.RoleDeptAdmin),
	} {
		w, _ := f.do(t, http.MethodPost, "/timetable/update", bearer, gin.H{"ownerId": ownerA, "timetable": week})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
		}
	}
	if len(f.timetables.updatedFor) != 3 {
		t.Fatalf("expected three updates, got %v", f.timetables.updatedFor)
	}
}

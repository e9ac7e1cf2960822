package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func testIssuer() Issuer {
	return Issuer{Name: "test", Key: []byte("secret"), AccessTTL: time.Minute, RefreshTTL: time.Hour}
}

func TestIssueAndParse(t *testing.T) {
	iss := testIssuer()
	pair, err := iss.Issue("owner-1", RoleFaculty, "dept-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := iss.ParseAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.Subject != "owner-1" || claims.Role != RoleFaculty || claims.DepartmentID != "dept-1" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := iss.ParseAccess(pair.RefreshToken); err == nil {
		t.Fatalf("expected refresh token to be rejected as access token")
	}
	if _, err := iss.ParseRefresh(pair.RefreshToken); err != nil {
		t.Fatalf("parse refresh: %v", err)
	}

	other := iss
	other.Name = "someone-else"
	if _, err := other.ParseAccess(pair.AccessToken); err == nil {
		t.Fatalf("expected issuer mismatch")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct-horse", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if err := VerifyPassword(hash, "correct-horse"); err != nil {
		t.Fatalf("expected password to match")
	}
	if err := VerifyPassword(hash, "wrong-horse"); err != ErrPasswordMismatch {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if _, err := HashPassword("short", bcrypt.MinCost); err != ErrPasswordTooShort {
		t.Fatalf("expected short password error, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	iss := testIssuer()
	r := gin.New()
	r.GET("/admin", RequireAuth(iss), RequireRole(RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	facultyTokens, _ := iss.Issue("f1", RoleFaculty, "")
	adminTokens, _ := iss.Issue("a1", RoleAdmin, "")

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"faculty", "Bearer " + facultyTokens.AccessToken, http.StatusForbidden},
		{"admin", "Bearer " + adminTokens.AccessToken, http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, rec.Code)
		}
	}
}

package department

import (
	"regexp"
	"strings"
	"time"

	"campus-attendance/internal/apperror"
)

type CourseType string

const (
	CourseUG   CourseType = "UG"
	CoursePG   CourseType = "PG"
	CourseDual CourseType = "DD"
)

// Course is derived from the course names of a department's branches.
type Course struct {
	Name     string     `json:"name"`
	Type     CourseType `json:"type"`
	Duration int        `json:"duration"`
}

// Branch is a program offered by a department, with the academic sessions admitted to it.
type Branch struct {
	ID        string   `json:"id"`
	Program   string   `json:"program"`
	Course    string   `json:"course"`
	ShortForm string   `json:"shortForm"`
	Duration  int      `json:"duration"`
	Sessions  []string `json:"session"`
}

type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"department"`
	Code      string    `json:"cn"`
	Branches  []Branch  `json:"branches"`
	Courses   []Course  `json:"courses"`
	CreatedAt time.Time `json:"createdAt"`
}

// FindBranch returns the branch with the given short form.
func (d Department) FindBranch(shortForm string) (Branch, bool) {
	for _, b := range d.Branches {
		if b.ShortForm == shortForm {
			return b, true
		}
	}
	return Branch{}, false
}

// DeriveCourseType classifies a course name: dual degrees first, then "B." programs as
// undergraduate, everything else postgraduate.
func DeriveCourseType(course string) CourseType {
	switch {
	case strings.Contains(course, "Dual"), strings.Contains(course, "M.Tech-M.Tech"):
		return CourseDual
	case strings.HasPrefix(course, "B."):
		return CourseUG
	default:
		return CoursePG
	}
}

var sessionPattern = regexp.MustCompile(`^\d{4}-(\d{2}|\d{4})$`)

// ValidateSession accepts academic sessions written as YYYY-YY or YYYY-YYYY.
func ValidateSession(session string) error {
	if !sessionPattern.MatchString(session) {
		return apperror.Validation("session %q must look like 2022-26 or 2022-2026", session)
	}
	return nil
}

// BranchInput is the payload for adding a branch.
type BranchInput struct {
	Program   string   `json:"program" binding:"required"`
	Course    string   `json:"course" binding:"required"`
	ShortForm string   `json:"shortForm" binding:"required"`
	Duration  int      `json:"duration" binding:"required,min=1,max=5"`
	Sessions  []string `json:"session" binding:"omitempty,dive,academic_session"`
}

// Normalize trims the input and checks the branch invariants.
func (in BranchInput) Normalize() (BranchInput, error) {
	in.Program = strings.TrimSpace(in.Program)
	in.Course = strings.TrimSpace(in.Course)
	in.ShortForm = strings.TrimSpace(in.ShortForm)
	if in.Program == "" || in.Course == "" || in.ShortForm == "" {
		return in, apperror.Validation("program, course and shortForm are required")
	}
	if in.Duration < 1 || in.Duration > 5 {
		return in, apperror.Validation("duration must be between 1 and 5")
	}
	seen := make(map[string]struct{}, len(in.Sessions))
	sessions := make([]string, 0, len(in.Sessions))
	for _, s := range in.Sessions {
		s = strings.TrimSpace(s)
		if err := ValidateSession(s); err != nil {
			return in, err
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		sessions = append(sessions, s)
	}
	in.Sessions = sessions
	return in, nil
}

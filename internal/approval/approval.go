package approval

import (
	"time"
)

// Kind names what an approval request asks for.
type Kind string

const (
	KindSession Kind = "session"
	KindBranch  Kind = "branch"
)

func (k Kind) Valid() bool {
	return k == KindSession || k == KindBranch
}

// Status is the lifecycle state of a request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Request asks for a session or a branch to be added to a department.
// Branch requests carry Program, Course and Duration; session requests carry Session.
type Request struct {
	ID              string     `json:"_id"`
	Kind            Kind       `json:"kind"`
	DepartmentID    string     `json:"departmentId"`
	BranchShortForm string     `json:"branchShortForm"`
	Session         string     `json:"session,omitempty"`
	Program         string     `json:"program,omitempty"`
	Course          string     `json:"course,omitempty"`
	Duration        int        `json:"duration,omitempty"`
	Status          Status     `json:"status"`
	RequestedBy     string     `json:"requestedBy"`
	ProcessedBy     string     `json:"processedBy,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	ReadStatus      bool       `json:"readStatus"`
	CreatedAt       time.Time  `json:"createdAt"`
	ProcessedAt     *time.Time `json:"processedAt,omitempty"`
}

type SessionInput struct {
	DepartmentID    string `json:"departmentId" binding:"required,uuid"`
	BranchShortForm string `json:"branchShortForm" binding:"required"`
	Session         string `json:"session" binding:"required,academic_session"`
}

type BranchInput struct {
	DepartmentID string `json:"departmentId" binding:"required,uuid"`
	Program      string `json:"program" binding:"required"`
	Course       string `json:"course" binding:"required"`
	ShortForm    string `json:"shortForm" binding:"required"`
	Duration     int    `json:"duration" binding:"required,min=1,max=5"`
}

// Filter matches requests on every non-empty field.
type Filter struct {
	Kind         Kind   `form:"kind"`
	Status       Status `form:"status"`
	DepartmentID string `form:"departmentId"`
}

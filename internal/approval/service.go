package approval

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campus-attendance/internal/apperror"
	"campus-attendance/internal/department"
	"campus-attendance/internal/metrics"
)

type Store interface {
	Insert(ctx context.Context, req Request) error
	Get(ctx context.Context, id string) (*Request, error)
	List(ctx context.Context, f Filter) ([]Request, error)
	PendingExists(ctx context.Context, req Request) (bool, error)
	Transition(ctx context.Context, id string, from, to Status, processedBy, reason string, at time.Time) (bool, error)
	SetRead(ctx context.Context, ids []string, read bool) (int, error)
	CountPending(ctx context.Context, kind Kind) (int, error)
}

// Departments is the department mutation surface approvals apply.
type Departments interface {
	Exists(ctx context.Context, id string) (bool, error)
	HasBranch(ctx context.Context, departmentID, shortForm string) (bool, error)
	HasSession(ctx context.Context, departmentID, shortForm, session string) (bool, error)
	AddSession(ctx context.Context, departmentID, shortForm, session string) error
	AddBranch(ctx context.Context, departmentID string, in department.BranchInput) (department.Branch, error)
}

type Service struct {
	store       Store
	departments Departments
	log         *zap.Logger
	now         func() time.Time
}

// NewService builds the approval workflow over s. departments applies approved branch and session requests.
func NewService(s Store, departments Departments, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: s, departments: departments, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) requireDepartment(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.Validation("invalid departmentId %q", id)
	}
	exists, err := s.departments.Exists(ctx, id)
	if err != nil {
		return apperror.Internal(err, "load department")
	}
	if !exists {
		return apperror.NotFound("department not found")
	}
	return nil
}

// SubmitSession files a pending request to add a session to an existing branch.
func (s *Service) SubmitSession(ctx context.Context, in SessionInput, requestedBy string) (Request, error) {
	in.BranchShortForm = strings.TrimSpace(in.BranchShortForm)
	in.Session = strings.TrimSpace(in.Session)
	if err := department.ValidateSession(in.Session); err != nil {
		return Request{}, err
	}
	if err := s.requireDepartment(ctx, in.DepartmentID); err != nil {
		return Request{}, err
	}
	hasBranch, err := s.departments.HasBranch(ctx, in.DepartmentID, in.BranchShortForm)
	if err != nil {
		return Request{}, err
	}
	if !hasBranch {
		return Request{}, apperror.NotFound("branch %s not found", in.BranchShortForm)
	}
	hasSession, err := s.departments.HasSession(ctx, in.DepartmentID, in.BranchShortForm, in.Session)
	if err != nil {
		return Request{}, err
	}
	if hasSession {
		return Request{}, apperror.Conflict("session %s already exists for branch %s", in.Session, in.BranchShortForm)
	}

	return s.submit(ctx, Request{
		Kind:            KindSession,
		DepartmentID:    in.DepartmentID,
		BranchShortForm: in.BranchShortForm,
		Session:         in.Session,
		RequestedBy:     requestedBy,
	})
}

// SubmitBranch files a pending request to add a new branch to a department.
func (s *Service) SubmitBranch(ctx context.Context, in BranchInput, requestedBy string) (Request, error) {
	normalized, err := department.BranchInput{
		Program:   in.Program,
		Course:    in.Course,
		ShortForm: in.ShortForm,
		Duration:  in.Duration,
	}.Normalize()
	if err != nil {
		return Request{}, err
	}
	if err := s.requireDepartment(ctx, in.DepartmentID); err != nil {
		return Request{}, err
	}
	hasBranch, err := s.departments.HasBranch(ctx, in.DepartmentID, normalized.ShortForm)
	if err != nil {
		return Request{}, err
	}
	if hasBranch {
		return Request{}, apperror.Conflict("branch %s already exists", normalized.ShortForm)
	}

	return s.submit(ctx, Request{
		Kind:            KindBranch,
		DepartmentID:    in.DepartmentID,
		BranchShortForm: normalized.ShortForm,
		Program:         normalized.Program,
		Course:          normalized.Course,
		Duration:        normalized.Duration,
		RequestedBy:     requestedBy,
	})
}

func (s *Service) submit(ctx context.Context, req Request) (Request, error) {
	pending, err := s.store.PendingExists(ctx, req)
	if err != nil {
		return Request{}, apperror.Internal(err, "check pending requests")
	}
	if pending {
		return Request{}, apperror.Conflict("an identical %s request is already pending", req.Kind)
	}

	req.ID = uuid.NewString()
	req.Status = StatusPending
	req.CreatedAt = s.now()
	if err := s.store.Insert(ctx, req); err != nil {
		return Request{}, apperror.Internal(err, "create approval request")
	}
	return req, nil
}

// List returns requests matching f. Unknown kind or status values are a validation error.
func (s *Service) List(ctx context.Context, f Filter) ([]Request, error) {
	if f.Kind != "" && !f.Kind.Valid() {
		return nil, apperror.Validation("invalid kind %q", f.Kind)
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperror.Validation("invalid status %q", f.Status)
	}
	out, err := s.store.List(ctx, f)
	if err != nil {
		return nil, apperror.Internal(err, "list approval requests")
	}
	if out == nil {
		out = []Request{}
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, id string) (*Request, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.Validation("invalid request id %q", id)
	}
	req, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "load approval request")
	}
	if req == nil {
		return nil, apperror.NotFound("approval request not found")
	}
	if req.Status != StatusPending {
		return nil, apperror.Conflict("request already processed")
	}
	return req, nil
}

// Approve claims a pending request and applies it to the department. When applying fails,
// the request is rejected with the failure message and the failure is returned.
func (s *Service) Approve(ctx context.Context, id, processedBy string) (Request, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return Request{}, err
	}

	at := s.now()
	claimed, err := s.store.Transition(ctx, req.ID, StatusPending, StatusApproved, processedBy, "", at)
	if err != nil {
		return Request{}, apperror.Internal(err, "claim approval request")
	}
	if !claimed {
		return Request{}, apperror.Conflict("request already processed")
	}

	if applyErr := s.apply(ctx, *req); applyErr != nil {
		reason := applyErr.Error()
		if _, err := s.store.Transition(ctx, req.ID, StatusApproved, StatusRejected, processedBy, reason, at); err != nil {
			s.log.Error("reject failed approval", zap.String("request_id", req.ID), zap.Error(err))
		}
		metrics.ApprovalDecisions.WithLabelValues(string(req.Kind), "failed").Inc()
		s.log.Warn("approval rejected on error",
			zap.String("request_id", req.ID),
			zap.String("kind", string(req.Kind)),
			zap.Error(applyErr))
		return Request{}, applyErr
	}

	metrics.ApprovalDecisions.WithLabelValues(string(req.Kind), string(StatusApproved)).Inc()
	req.Status = StatusApproved
	req.ProcessedBy = processedBy
	req.ProcessedAt = &at
	return *req, nil
}

func (s *Service) apply(ctx context.Context, req Request) error {
	switch req.Kind {
	case KindSession:
		return s.departments.AddSession(ctx, req.DepartmentID, req.BranchShortForm, req.Session)
	case KindBranch:
		_, err := s.departments.AddBranch(ctx, req.DepartmentID, department.BranchInput{
			Program:   req.Program,
			Course:    req.Course,
			ShortForm: req.BranchShortForm,
			Duration:  req.Duration,
		})
		return err
	default:
		return apperror.Validation("unknown request kind %q", req.Kind)
	}
}

// Reject closes a pending request. A reason is required.
func (s *Service) Reject(ctx context.Context, id, processedBy, reason string) (Request, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Request{}, apperror.Validation("rejection reason is required")
	}
	req, err := s.load(ctx, id)
	if err != nil {
		return Request{}, err
	}

	at := s.now()
	ok, err := s.store.Transition(ctx, req.ID, StatusPending, StatusRejected, processedBy, reason, at)
	if err != nil {
		return Request{}, apperror.Internal(err, "reject approval request")
	}
	if !ok {
		return Request{}, apperror.Conflict("request already processed")
	}

	metrics.ApprovalDecisions.WithLabelValues(string(req.Kind), string(StatusRejected)).Inc()
	req.Status = StatusRejected
	req.ProcessedBy = processedBy
	req.RejectionReason = reason
	req.ProcessedAt = &at
	return *req, nil
}

// MarkRead sets the read flag on the given requests without touching their status.
func (s *Service) MarkRead(ctx context.Context, ids []string, read bool) (int, error) {
	if len(ids) == 0 {
		return 0, apperror.Validation("ids are required")
	}
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return 0, apperror.Validation("invalid request id %q", id)
		}
	}
	n, err := s.store.SetRead(ctx, ids, read)
	if err != nil {
		return 0, apperror.Internal(err, "update read status")
	}
	return n, nil
}

// PendingCount never fails; a query error is logged and reported as 0.
func (s *Service) PendingCount(ctx context.Context, kind Kind) int {
	n, err := s.store.CountPending(ctx, kind)
	if err != nil {
		s.log.Warn("count pending approvals", zap.String("kind", string(kind)), zap.Error(err))
		return 0
	}
	return n
}

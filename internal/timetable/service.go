package timetable

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campus-attendance/internal/apperror"
	"campus-attendance/internal/attendance"
)

type Store interface {
	Get(ctx context.Context, ownerID string) (*Timetable, error)
	Replace(ctx context.Context, ownerID string, w Week) (bool, error)
	DeleteSlot(ctx context.Context, ownerID string, day int, subjectID string) (bool, error)
}

// SheetProvisioner creates empty attendance sheets for classes that have none.
type SheetProvisioner interface {
	Provision(ctx context.Context, ownerID string, keys []attendance.SheetKey) (int, error)
}

type Service struct {
	store  Store
	sheets SheetProvisioner
	log    *zap.Logger
}

// NewService wires the timetable store to the attendance sheets it provisions.
func NewService(s Store, sheets SheetProvisioner, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: s, sheets: sheets, log: log}
}

func parseOwner(ownerID string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(ownerID))
	if err != nil {
		return "", apperror.Validation("invalid ownerId %q", ownerID)
	}
	return id.String(), nil
}

// Get returns the timetable owned by ownerID.
func (s *Service) Get(ctx context.Context, ownerID string) (Timetable, error) {
	owner, err := parseOwner(ownerID)
	if err != nil {
		return Timetable{}, err
	}
	t, err := s.store.Get(ctx, owner)
	if err != nil {
		return Timetable{}, apperror.Internal(err, "load timetable")
	}
	if t == nil {
		return Timetable{}, apperror.NotFound("timetable not found for owner %s", owner)
	}
	return *t, nil
}

// Update replaces the owner's week and then creates empty attendance sheets for subjects
// that have none. It returns the stored timetable and how many sheets were created.
func (s *Service) Update(ctx context.Context, in UpdateInput) (Timetable, int, error) {
	owner, err := parseOwner(in.OwnerID)
	if err != nil {
		return Timetable{}, 0, err
	}
	week := Week{}
	for day, slots := range in.Week {
		for i, slot := range slots {
			if slot.Subject.ID == "" {
				return Timetable{}, 0, apperror.Validation("day %d slot %d has no subject _id", day, i)
			}
			if strings.TrimSpace(slot.Section) == "" {
				return Timetable{}, 0, apperror.Validation("day %d slot %d has no section", day, i)
			}
		}
		if len(slots) > 0 {
			week[day] = slots
		}
	}

	found, err := s.store.Replace(ctx, owner, week)
	if err != nil {
		return Timetable{}, 0, apperror.Internal(err, "update timetable")
	}
	if !found {
		return Timetable{}, 0, apperror.NotFound("timetable not found for owner %s", owner)
	}

	created, err := s.sheets.Provision(ctx, owner, week.SheetKeys(owner))
	if err != nil {
		s.log.Error("provision attendance sheets", zap.String("owner_id", owner), zap.Error(err))
		return Timetable{}, created, err
	}
	return Timetable{OwnerID: owner, Week: week}, created, nil
}

// DeleteSlot removes one slot for subjectID from a day.
func (s *Service) DeleteSlot(ctx context.Context, in DeleteSlotInput) error {
	owner, err := parseOwner(in.OwnerID)
	if err != nil {
		return err
	}
	day, err := ParseDay(in.Day)
	if err != nil {
		return apperror.Validation("%s", err.Error())
	}
	subject, err := uuid.Parse(strings.TrimSpace(in.SubjectID))
	if err != nil {
		return apperror.Validation("invalid subjectId %q", in.SubjectID)
	}

	t, err := s.Get(ctx, owner)
	if err != nil {
		return err
	}
	if len(t.Week[day]) == 0 {
		return apperror.NotFound("no slots on day %d", day)
	}
	deleted, err := s.store.DeleteSlot(ctx, owner, day, subject.String())
	if err != nil {
		return apperror.Internal(err, "delete timetable slot")
	}
	if !deleted {
		return apperror.NotFound("subject %s not scheduled on day %d", subject, day)
	}
	return nil
}

package attendance

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campus-attendance/internal/apperror"
	"campus-attendance/internal/metrics"
)

type Store interface {
	SubjectIDs(ctx context.Context, ownerID string) (map[string]bool, error)
	InsertEmpty(ctx context.Context, id string, k SheetKey) (bool, error)
	FindByKey(ctx context.Context, k SheetKey) (*Sheet, error)
	Find(ctx context.Context, f SheetFilter) ([]Sheet, error)
	RecordDay(ctx context.Context, sheetID string, entry DayEntry, mark Mark) error
	MonthlyTotals(ctx context.Context, ownerID, branch, section, scholarNo string) ([]MonthlyRow, error)
	StudentTotals(ctx context.Context, ownerID, subjectID, section, scholarNo string) ([]StudentTotal, error)
	ClassDates(ctx context.Context, ownerID, subjectID, section string) (int, error)
}

// SubjectNamer resolves subject ids to names for report rows.
type SubjectNamer interface {
	Names(ctx context.Context, ids []string) (map[string]string, error)
}

// ScheduleReader lists an owner's weekly timetable slots.
type ScheduleReader interface {
	ScheduledSlots(ctx context.Context, ownerID string) ([]ScheduledSlot, error)
}

type Service struct {
	store    Store
	subjects SubjectNamer
	schedule ScheduleReader
	log      *zap.Logger
}

// NewService builds the attendance service. subjects and schedule feed report rows.
func NewService(s Store, subjects SubjectNamer, schedule ScheduleReader, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: s, subjects: subjects, schedule: schedule, log: log}
}

// MonthlyQuery selects one student's monthly report for an owner.
type MonthlyQuery struct {
	OwnerID   string `json:"ownerId"`
	Branch    string `json:"branch"`
	Section   string `json:"section"`
	ScholarNo string `json:"scholarNumber"`
}

// SubjectQuery selects a subject taught by an owner to one section.
type SubjectQuery struct {
	OwnerID   string `json:"ownerId"`
	SubjectID string `json:"subjectId"`
	Section   string `json:"section"`
	ScholarNo string `json:"scholarNumber"`
}

// RangeQuery selects an owner's classes over [Start, End]. Empty SubjectID and Section match all.
type RangeQuery struct {
	OwnerID   string `json:"ownerId"`
	SubjectID string `json:"subjectId"`
	Section   string `json:"section"`
	Start     Date   `json:"startDate"`
	End       Date   `json:"endDate"`
}

// ClassQuery selects a class by branch, section and academic session.
type ClassQuery struct {
	Branch  string `json:"branch"`
	Section string `json:"section"`
	Session string `json:"session"`
	Start   Date   `json:"startDate"`
	End     Date   `json:"endDate"`
}

// MaxRangeDays bounds the span of date-range reports.
const MaxRangeDays = 5 * 366

func validateRange(start, end Date) error {
	if start.IsZero() || end.IsZero() {
		return apperror.Validation("startDate and endDate are required")
	}
	if end.Before(start) {
		return apperror.Validation("endDate %s is before startDate %s", end, start)
	}
	if start.DaysUntil(end) >= MaxRangeDays {
		return apperror.Validation("date range %s to %s exceeds %d days", start, end, MaxRangeDays)
	}
	return nil
}

func validateID(field, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.Validation("invalid %s %q", field, id)
	}
	return nil
}

// Provision creates an empty sheet for every key whose subject the owner has no sheet for yet.
// Resubmitting the same keys creates nothing.
func (s *Service) Provision(ctx context.Context, ownerID string, keys []SheetKey) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	existing, err := s.store.SubjectIDs(ctx, ownerID)
	if err != nil {
		return 0, apperror.Internal(err, "load attendance subjects")
	}

	created := 0
	for _, k := range keys {
		if existing[k.SubjectID] {
			continue
		}
		k.OwnerID = ownerID
		inserted, err := s.store.InsertEmpty(ctx, uuid.NewString(), k)
		if err != nil {
			return created, apperror.Internal(err, "create attendance sheet")
		}
		if inserted {
			created++
		}
	}
	if created > 0 {
		metrics.SheetsProvisioned.Add(float64(created))
		s.log.Info("provisioned attendance sheets", zap.String("owner_id", ownerID), zap.Int("count", created))
	}
	return created, nil
}

// Mark stores the outcomes for one date and records that attendance was taken at that time.
func (s *Service) Mark(ctx context.Context, in MarkInput) (Sheet, error) {
	if err := validateID("ownerId", in.OwnerID); err != nil {
		return Sheet{}, err
	}
	if err := validateID("subjectId", in.SubjectID); err != nil {
		return Sheet{}, err
	}
	if in.Date.IsZero() {
		return Sheet{}, apperror.Validation("date is required")
	}
	in.Time = strings.TrimSpace(in.Time)
	if in.Time == "" {
		return Sheet{}, apperror.Validation("time is required")
	}
	if len(in.Students) == 0 {
		return Sheet{}, apperror.Validation("students are required")
	}
	seen := make(map[string]bool, len(in.Students))
	for i, st := range in.Students {
		no := strings.TrimSpace(st.ScholarNo)
		if no == "" {
			return Sheet{}, apperror.Validation("students[%d] has no scholar number", i)
		}
		if seen[no] {
			return Sheet{}, apperror.Validation("scholar number %s listed twice", no)
		}
		seen[no] = true
		in.Students[i].ScholarNo = no
	}

	sheet, err := s.store.FindByKey(ctx, in.SheetKey)
	if err != nil {
		return Sheet{}, apperror.Internal(err, "load attendance sheet")
	}
	if sheet == nil {
		return Sheet{}, apperror.NotFound("attendance sheet not found for subject %s section %s", in.SubjectID, in.Section)
	}

	entry := DayEntry{Date: in.Date, Students: in.Students}
	if err := s.store.RecordDay(ctx, sheet.ID, entry, Mark{TimeRange: in.Time, Date: in.Date}); err != nil {
		return Sheet{}, apperror.Internal(err, "record attendance")
	}

	updated, err := s.store.FindByKey(ctx, in.SheetKey)
	if err != nil || updated == nil {
		return Sheet{}, apperror.Internal(err, "reload attendance sheet")
	}
	return *updated, nil
}

// Sheets lists an owner's sheets, optionally for one subject.
func (s *Service) Sheets(ctx context.Context, ownerID, subjectID string) ([]Sheet, error) {
	if err := validateID("ownerId", ownerID); err != nil {
		return nil, err
	}
	out, err := s.store.Find(ctx, SheetFilter{OwnerID: ownerID, SubjectID: subjectID})
	if err != nil {
		return nil, apperror.Internal(err, "list attendance sheets")
	}
	if out == nil {
		out = []Sheet{}
	}
	return out, nil
}

// MonthlyReport returns a student's per-subject totals for each month.
func (s *Service) MonthlyReport(ctx context.Context, q MonthlyQuery) ([]MonthlyRow, error) {
	if err := validateID("ownerId", q.OwnerID); err != nil {
		return nil, err
	}
	if q.ScholarNo == "" {
		return nil, apperror.Validation("scholarNumber is required")
	}
	rows, err := s.store.MonthlyTotals(ctx, q.OwnerID, q.Branch, q.Section, q.ScholarNo)
	if err != nil {
		return nil, apperror.Internal(err, "monthly report")
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.SubjectID)
	}
	names, err := s.subjectNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].SubjectName = names[rows[i].SubjectID]
		rows[i].AttendancePercentage = Percentage(rows[i].PresentCount, rows[i].TotalSessions)
	}
	if rows == nil {
		rows = []MonthlyRow{}
	}
	return rows, nil
}

// OverallReport returns per-student totals for a subject, sorted by scholar number.
func (s *Service) OverallReport(ctx context.Context, q SubjectQuery) ([]StudentTotal, error) {
	if err := s.validateSubjectQuery(q); err != nil {
		return nil, err
	}
	totals, err := s.store.StudentTotals(ctx, q.OwnerID, q.SubjectID, q.Section, q.ScholarNo)
	if err != nil {
		return nil, apperror.Internal(err, "overall report")
	}
	return withPercentages(totals), nil
}

// ClassReport returns every student's totals for a subject plus the number of recorded dates.
func (s *Service) ClassReport(ctx context.Context, q SubjectQuery) (ClassReport, error) {
	q.ScholarNo = ""
	if err := s.validateSubjectQuery(q); err != nil {
		return ClassReport{}, err
	}
	totals, err := s.store.StudentTotals(ctx, q.OwnerID, q.SubjectID, q.Section, "")
	if err != nil {
		return ClassReport{}, apperror.Internal(err, "class report")
	}
	held, err := s.store.ClassDates(ctx, q.OwnerID, q.SubjectID, q.Section)
	if err != nil {
		return ClassReport{}, apperror.Internal(err, "class report")
	}
	return ClassReport{TotalClasses: held, Students: withPercentages(totals)}, nil
}

func (s *Service) validateSubjectQuery(q SubjectQuery) error {
	if err := validateID("ownerId", q.OwnerID); err != nil {
		return err
	}
	if err := validateID("subjectId", q.SubjectID); err != nil {
		return err
	}
	if q.Section == "" {
		return apperror.Validation("section is required")
	}
	return nil
}

func withPercentages(totals []StudentTotal) []StudentTotal {
	if totals == nil {
		return []StudentTotal{}
	}
	for i := range totals {
		totals[i].AttendancePercentage = Percentage(totals[i].PresentCount, totals[i].TotalClasses)
	}
	return totals
}

// ScheduleReport compares scheduled with recorded classes per subject and section.
func (s *Service) ScheduleReport(ctx context.Context, q RangeQuery) ([]ScheduleRow, error) {
	if err := validateID("ownerId", q.OwnerID); err != nil {
		return nil, err
	}
	if err := validateRange(q.Start, q.End); err != nil {
		return nil, err
	}

	slots, err := s.schedule.ScheduledSlots(ctx, q.OwnerID)
	if err != nil {
		return nil, apperror.Internal(err, "load timetable")
	}
	var filtered []ScheduledSlot
	for _, slot := range slots {
		if (q.SubjectID == "" || slot.SubjectID == q.SubjectID) && (q.Section == "" || slot.Section == q.Section) {
			filtered = append(filtered, slot)
		}
	}

	sheets, err := s.store.Find(ctx, SheetFilter{OwnerID: q.OwnerID, SubjectID: q.SubjectID, Section: q.Section})
	if err != nil {
		return nil, apperror.Internal(err, "load attendance sheets")
	}
	rows := ScheduleRows(filtered, sheets, q.Start, q.End)

	var missing []string
	for _, r := range rows {
		if r.SubjectName == "" {
			missing = append(missing, r.SubjectID)
		}
	}
	if len(missing) > 0 {
		names, err := s.subjectNames(ctx, missing)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			if rows[i].SubjectName == "" {
				rows[i].SubjectName = names[rows[i].SubjectID]
			}
		}
	}
	return rows, nil
}

// UnmarkedDates reports the dates in range a subject's sheet has no outcomes or no mark for.
func (s *Service) UnmarkedDates(ctx context.Context, q RangeQuery) (Unmarked, error) {
	if err := validateID("ownerId", q.OwnerID); err != nil {
		return Unmarked{}, err
	}
	if err := validateID("subjectId", q.SubjectID); err != nil {
		return Unmarked{}, err
	}
	if err := validateRange(q.Start, q.End); err != nil {
		return Unmarked{}, err
	}
	sheet, err := s.firstSheet(ctx, SheetFilter{OwnerID: q.OwnerID, SubjectID: q.SubjectID, Section: q.Section})
	if err != nil {
		return Unmarked{}, err
	}
	return FindUnmarked(sheet, q.Start, q.End), nil
}

// ClassStrength returns the number of students on the class's first recorded date.
func (s *Service) ClassStrength(ctx context.Context, q ClassQuery) (int, error) {
	sheet, err := s.classSheet(ctx, q)
	if err != nil {
		return 0, err
	}
	return ClassStrength(sheet), nil
}

// AverageMarked returns the average presence percentage over the marked dates in range.
func (s *Service) AverageMarked(ctx context.Context, q ClassQuery) (float64, error) {
	if err := validateRange(q.Start, q.End); err != nil {
		return 0, err
	}
	sheet, err := s.classSheet(ctx, q)
	if err != nil {
		return 0, err
	}
	return AverageMarked(sheet, q.Start, q.End), nil
}

func (s *Service) classSheet(ctx context.Context, q ClassQuery) (Sheet, error) {
	if q.Branch == "" || q.Section == "" || q.Session == "" {
		return Sheet{}, apperror.Validation("branch, section and session are required")
	}
	return s.firstSheet(ctx, SheetFilter{Branch: q.Branch, Section: q.Section, Session: q.Session})
}

func (s *Service) firstSheet(ctx context.Context, f SheetFilter) (Sheet, error) {
	sheets, err := s.store.Find(ctx, f)
	if err != nil {
		return Sheet{}, apperror.Internal(err, "load attendance sheet")
	}
	if len(sheets) == 0 {
		return Sheet{}, apperror.NotFound("attendance sheet not found")
	}
	return sheets[0], nil
}

func (s *Service) subjectNames(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 || s.subjects == nil {
		return map[string]string{}, nil
	}
	names, err := s.subjects.Names(ctx, ids)
	if err != nil {
		return nil, apperror.Internal(err, "resolve subject names")
	}
	return names, nil
}

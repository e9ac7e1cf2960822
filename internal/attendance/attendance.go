package attendance

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SheetKey identifies one attendance sheet: a faculty member teaching a subject to one class.
type SheetKey struct {
	OwnerID   string `json:"ownerId"`
	SubjectID string `json:"subjectId"`
	Section   string `json:"section"`
	Session   string `json:"session"`
	Branch    string `json:"branch"`
	Semester  string `json:"semester"`
	Course    string `json:"course"`
}

// Presence is a student's outcome for one class. On the wire it is "1" or "0".
type Presence bool

func (p Presence) MarshalJSON() ([]byte, error) {
	if p {
		return []byte(`"1"`), nil
	}
	return []byte(`"0"`), nil
}

// UnmarshalJSON accepts "1"/"0", 1/0 and true/false.
func (p *Presence) UnmarshalJSON(b []byte) error {
	switch strings.TrimSpace(string(b)) {
	case `"1"`, `1`, `true`, `"true"`:
		*p = true
	case `"0"`, `0`, `false`, `"false"`:
		*p = false
	default:
		return fmt.Errorf("isPresent must be \"0\" or \"1\", got %s", b)
	}
	return nil
}

type StudentMark struct {
	ScholarNo string   `json:"Scholar No." binding:"required"`
	Name      string   `json:"Name of Student"`
	Present   Presence `json:"isPresent"`
}

// DayEntry holds every student's outcome for one date.
type DayEntry struct {
	Date     Date          `json:"date"`
	Students []StudentMark `json:"attendance"`
}

// PresentCount counts students marked present.
func (e DayEntry) PresentCount() int {
	n := 0
	for _, s := range e.Students {
		if s.Present {
			n++
		}
	}
	return n
}

// Mark records that attendance was taken for a time range on a date.
type Mark struct {
	TimeRange string
	Date      Date
}

// ParseMark reads "<time-range> <date>". The date is the token after the last space.
func ParseMark(s string) (Mark, error) {
	s = strings.TrimSpace(s)
	timeRange, date := "", s
	if i := strings.LastIndex(s, " "); i >= 0 {
		timeRange, date = strings.TrimSpace(s[:i]), s[i+1:]
	}
	d, err := ParseDate(date)
	if err != nil {
		return Mark{}, fmt.Errorf("mark %q: %w", s, err)
	}
	return Mark{TimeRange: timeRange, Date: d}, nil
}

func (m Mark) String() string {
	if m.TimeRange == "" {
		return m.Date.String()
	}
	return m.TimeRange + " " + m.Date.String()
}

func (m Mark) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Mark) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseMark(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Sheet is the attendance record for one SheetKey.
type Sheet struct {
	ID string `json:"_id"`
	SheetKey
	Entries   []DayEntry `json:"attendance"`
	Marks     []Mark     `json:"isMarked"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Entry returns the entry recorded on d, if any.
func (s Sheet) Entry(d Date) (DayEntry, bool) {
	for _, e := range s.Entries {
		if e.Date.Equal(d) {
			return e, true
		}
	}
	return DayEntry{}, false
}

// MarkInput is the body of a mark-attendance request.
type MarkInput struct {
	SheetKey
	Date     Date          `json:"date"`
	Time     string        `json:"time" binding:"required"`
	Students []StudentMark `json:"students" binding:"required,min=1,dive"`
}

// MonthlyRow is one student's totals for a subject in one calendar month.
type MonthlyRow struct {
	SubjectID            string  `json:"subjectId"`
	SubjectName          string  `json:"subjectName"`
	Branch               string  `json:"branch"`
	Semester             string  `json:"semester"`
	Section              string  `json:"section"`
	ScholarNo            string  `json:"scholarNumber"`
	Month                string  `json:"month"`
	TotalSessions        int     `json:"totalSessions"`
	PresentCount         int     `json:"presentCount"`
	AttendancePercentage float64 `json:"attendancePercentage"`
}

// StudentTotal is one student's totals for a subject across all recorded dates.
type StudentTotal struct {
	ScholarNo            string  `json:"scholarNumber"`
	Name                 string  `json:"name"`
	TotalClasses         int     `json:"totalClasses"`
	PresentCount         int     `json:"presentCount"`
	AttendancePercentage float64 `json:"attendancePercentage"`
}

type ClassReport struct {
	TotalClasses int            `json:"totalClasses"`
	Students     []StudentTotal `json:"students"`
}

// ScheduleRow compares how often a subject should have been taught with how often it was recorded.
type ScheduleRow struct {
	SubjectID        string `json:"subjectId"`
	SubjectName      string `json:"subjectName"`
	Section          string `json:"section"`
	Session          string `json:"session"`
	Branch           string `json:"branch"`
	Semester         string `json:"semester"`
	Course           string `json:"course"`
	ScheduledClasses int    `json:"scheduledClasses"`
	HeldClasses      int    `json:"heldClasses"`
}

type Unmarked struct {
	NotRecorded []Date `json:"unmarkedDates"`
	NotFlagged  []Date `json:"unflaggedDates"`
}

// ScheduledSlot is one weekly timetable slot as seen by the schedule report.
type ScheduledSlot struct {
	Day int
	SheetKey
	SubjectName string
}

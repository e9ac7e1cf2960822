package timetable

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"campus-attendance/internal/attendance"
)

// Days are numbered 1 (Monday) to 7.
const (
	FirstDay = 1
	LastDay  = 7
)

// SubjectID is a subject reference that accepts both a raw id string and the wrapped
// {"$oid": "..."} form, and always holds the canonical lowercase uuid.
type SubjectID string

func (id *SubjectID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var raw string
	if len(b) > 0 && b[0] == '{' {
		var wrapped struct {
			OID string `json:"$oid"`
		}
		if err := json.Unmarshal(b, &wrapped); err != nil {
			return fmt.Errorf("subject _id: %w", err)
		}
		raw = wrapped.OID
	} else if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("subject _id must be a string or {\"$oid\": ...}")
	}
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("subject _id %q is not a valid id", raw)
	}
	*id = SubjectID(parsed.String())
	return nil
}

type SubjectRef struct {
	ID   SubjectID `json:"_id"`
	Code string    `json:"subjectCode"`
	Name string    `json:"subjectName"`
}

// Slot is one class in the weekly schedule.
type Slot struct {
	Subject  SubjectRef `json:"subject"`
	Section  string     `json:"section"`
	Session  string     `json:"session"`
	Semester string     `json:"semester"`
	Branch   string     `json:"branch"`
	Course   string     `json:"course"`
	Timing   string     `json:"timing,omitempty"`
	Location string     `json:"location,omitempty"`
}

// Week maps day numbers to that day's slots, in order.
type Week map[int][]Slot

// MarshalJSON emits all seven days keyed "1".."7", with empty days as [].
func (w Week) MarshalJSON() ([]byte, error) {
	out := make(map[string][]Slot, LastDay)
	for d := FirstDay; d <= LastDay; d++ {
		slots := w[d]
		if slots == nil {
			slots = []Slot{}
		}
		out[strconv.Itoa(d)] = slots
	}
	return json.Marshal(out)
}

func (w *Week) UnmarshalJSON(b []byte) error {
	var raw map[string][]Slot
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	week := make(Week, len(raw))
	for key, slots := range raw {
		d, err := ParseDay(key)
		if err != nil {
			return err
		}
		week[d] = slots
	}
	*w = week
	return nil
}

// ParseDay reads a day key "1".."7".
func ParseDay(s string) (int, error) {
	d, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || d < FirstDay || d > LastDay {
		return 0, fmt.Errorf("day must be 1..7, got %q", s)
	}
	return d, nil
}

// Days returns the days that have slots, ascending.
func (w Week) Days() []int {
	days := make([]int, 0, len(w))
	for d := range w {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

// SheetKeys lists the distinct classes the week references for an owner, in schedule order.
func (w Week) SheetKeys(ownerID string) []attendance.SheetKey {
	seen := map[attendance.SheetKey]bool{}
	var keys []attendance.SheetKey
	for _, d := range w.Days() {
		for _, s := range w[d] {
			k := s.sheetKey(ownerID)
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

func (s Slot) sheetKey(ownerID string) attendance.SheetKey {
	return attendance.SheetKey{
		OwnerID:   ownerID,
		SubjectID: string(s.Subject.ID),
		Section:   s.Section,
		Session:   s.Session,
		Branch:    s.Branch,
		Semester:  s.Semester,
		Course:    s.Course,
	}
}

// Timetable is a faculty member's weekly schedule.
type Timetable struct {
	OwnerID string `json:"ownerId"`
	Week    Week   `json:"timetable"`
}

type UpdateInput struct {
	OwnerID string `json:"ownerId" binding:"required,uuid"`
	Week    Week   `json:"timetable" binding:"required"`
}

type DeleteSlotInput struct {
	OwnerID   string `json:"ownerId" binding:"required,uuid"`
	Day       string `json:"day" binding:"required,weekday"`
	SubjectID string `json:"subjectId" binding:"required"`
}

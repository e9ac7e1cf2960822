package attendance

// Percentage returns present/total*100, or 0 when nothing was held.
func Percentage(present, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(present) / float64(total) * 100
}

// ScheduledOccurrences counts how often a weekly slot on day (1..7) falls in [start, end].
//
// The range is split into whole weeks plus a remainder, and the slot gains one extra
// occurrence when its day number is within the remainder. This assumes the range starts
// on day 1 and is kept as is so reports stay comparable with existing figures.
func ScheduledOccurrences(start, end Date, day int) int {
	if end.Before(start) || day < 1 || day > 7 {
		return 0
	}
	totalDays := start.DaysUntil(end) + 1
	weeks, remainder := totalDays/7, totalDays%7
	if day <= remainder {
		return weeks + 1
	}
	return weeks
}

// CountHeld counts recorded dates in [start, end].
func CountHeld(entries []DayEntry, start, end Date) int {
	n := 0
	for _, e := range entries {
		if e.Date.Within(start, end) {
			n++
		}
	}
	return n
}

// FindUnmarked lists the dates in [start, end] with no recorded outcomes and those with no mark.
func FindUnmarked(sheet Sheet, start, end Date) Unmarked {
	recorded := make(map[string]struct{}, len(sheet.Entries))
	for _, e := range sheet.Entries {
		recorded[e.Date.String()] = struct{}{}
	}
	flagged := make(map[string]struct{}, len(sheet.Marks))
	for _, m := range sheet.Marks {
		flagged[m.Date.String()] = struct{}{}
	}

	out := Unmarked{NotRecorded: []Date{}, NotFlagged: []Date{}}
	for _, d := range DateRange(start, end) {
		if _, ok := recorded[d.String()]; !ok {
			out.NotRecorded = append(out.NotRecorded, d)
		}
		if _, ok := flagged[d.String()]; !ok {
			out.NotFlagged = append(out.NotFlagged, d)
		}
	}
	return out
}

// ClassStrength is the number of students on the first recorded date.
func ClassStrength(sheet Sheet) int {
	if len(sheet.Entries) == 0 {
		return 0
	}
	return len(sheet.Entries[0].Students)
}

// AverageMarked averages the presence percentage over the marks in [start, end] that have
// recorded outcomes for their date.
func AverageMarked(sheet Sheet, start, end Date) float64 {
	strength := ClassStrength(sheet)
	if strength == 0 {
		return 0
	}

	var sum float64
	matched := 0
	for _, m := range sheet.Marks {
		if !m.Date.Within(start, end) {
			continue
		}
		entry, ok := sheet.Entry(m.Date)
		if !ok {
			continue
		}
		sum += Percentage(entry.PresentCount(), strength)
		matched++
	}
	if matched == 0 {
		return 0
	}
	return sum / float64(matched)
}

type classKey struct {
	SubjectID, Section, Session, Branch, Semester, Course string
}

func classKeyOf(k SheetKey) classKey {
	return classKey{k.SubjectID, k.Section, k.Session, k.Branch, k.Semester, k.Course}
}

// ScheduleRows sums scheduled occurrences per class across the weekly slots and pairs
// each class with the dates recorded on its sheet. Rows follow the order of first appearance.
func ScheduleRows(slots []ScheduledSlot, sheets []Sheet, start, end Date) []ScheduleRow {
	bySheet := make(map[classKey]Sheet, len(sheets))
	for _, s := range sheets {
		bySheet[classKeyOf(s.SheetKey)] = s
	}

	index := map[classKey]int{}
	rows := []ScheduleRow{}
	for _, slot := range slots {
		k := classKeyOf(slot.SheetKey)
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			row := ScheduleRow{
				SubjectID:   slot.SubjectID,
				SubjectName: slot.SubjectName,
				Section:     slot.Section,
				Session:     slot.Session,
				Branch:      slot.Branch,
				Semester:    slot.Semester,
				Course:      slot.Course,
			}
			if sheet, found := bySheet[k]; found {
				row.HeldClasses = CountHeld(sheet.Entries, start, end)
			}
			rows = append(rows, row)
		}
		rows[i].ScheduledClasses += ScheduledOccurrences(start, end, slot.Day)
	}
	return rows
}

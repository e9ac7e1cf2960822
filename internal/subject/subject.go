package subject

import "time"

type Subject struct {
	ID           string    `json:"_id"`
	Code         string    `json:"subjectCode"`
	Name         string    `json:"subjectName"`
	DepartmentID string    `json:"department"`
	IsElective   bool      `json:"isElective"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Summary is the projection used when grouping subjects by department.
type Summary struct {
	ID         string `json:"_id"`
	Code       string `json:"subjectCode"`
	Name       string `json:"subjectName"`
	IsElective bool   `json:"isElective"`
}

type DepartmentSubjects struct {
	DepartmentID string    `json:"_id"`
	Subjects     []Summary `json:"subjects"`
}

type CreateInput struct {
	Code         string `json:"subjectCode" binding:"required"`
	Name         string `json:"subjectName" binding:"required"`
	DepartmentID string `json:"department" binding:"required,uuid"`
	IsElective   bool   `json:"isElective"`
}

// GroupByDepartment groups subjects by department, keeping the input order inside each group.
func GroupByDepartment(subjects []Subject) []DepartmentSubjects {
	var out []DepartmentSubjects
	index := map[string]int{}
	for _, s := range subjects {
		i, ok := index[s.DepartmentID]
		if !ok {
			out = append(out, DepartmentSubjects{DepartmentID: s.DepartmentID, Subjects: []Summary{}})
			i = len(out) - 1
			index[s.DepartmentID] = i
		}
		out[i].Subjects = append(out[i].Subjects, Summary{
			ID:         s.ID,
			Code:       s.Code,
			Name:       s.Name,
			IsElective: s.IsElective,
		})
	}
	if out == nil {
		out = []DepartmentSubjects{}
	}
	return out
}

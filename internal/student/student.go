package student

import "sort"

type Student struct {
	ScholarNo    string `json:"scholarNumber"`
	Name         string `json:"name"`
	DepartmentID string `json:"department,omitempty"`
	Branch       string `json:"branch"`
	Batch        string `json:"batch"`
	Section      string `json:"section"`
	Semester     string `json:"semester,omitempty"`
}

type CreateInput struct {
	ScholarNo    string `json:"scholarNumber" binding:"required"`
	Name         string `json:"name" binding:"required"`
	DepartmentID string `json:"department" binding:"omitempty,uuid"`
	Branch       string `json:"branch" binding:"required"`
	Batch        string `json:"batch" binding:"required,academic_session"`
	Section      string `json:"section" binding:"required"`
	Semester     string `json:"semester"`
}

// ClassKey is one distinct (branch, batch, section) combination found among students.
type ClassKey struct {
	Branch  string
	Batch   string
	Section string
}

type BatchSections struct {
	Batch    string   `json:"batch"`
	Sections []string `json:"sections"`
}

type BranchSections struct {
	Branch  string          `json:"branch"`
	Batches []BatchSections `json:"batches"`
}

// GroupClasses collects distinct sections per (branch, batch), then regroups per branch.
// Output is sorted by branch, batch and section.
func GroupClasses(keys []ClassKey) []BranchSections {
	sections := map[string]map[string]map[string]struct{}{}
	for _, k := range keys {
		if sections[k.Branch] == nil {
			sections[k.Branch] = map[string]map[string]struct{}{}
		}
		if sections[k.Branch][k.Batch] == nil {
			sections[k.Branch][k.Batch] = map[string]struct{}{}
		}
		sections[k.Branch][k.Batch][k.Section] = struct{}{}
	}

	out := make([]BranchSections, 0, len(sections))
	for branch, batches := range sections {
		bs := BranchSections{Branch: branch}
		for batch, secs := range batches {
			names := make([]string, 0, len(secs))
			for s := range secs {
				names = append(names, s)
			}
			sort.Strings(names)
			bs.Batches = append(bs.Batches, BatchSections{Batch: batch, Sections: names})
		}
		sort.Slice(bs.Batches, func(i, j int) bool { return bs.Batches[i].Batch < bs.Batches[j].Batch })
		out = append(out, bs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Branch < out[j].Branch })
	return out
}

package timetable

import (
	"context"
	"encoding/json"
	"testing"

	"campus-attendance/internal/apperror"
	"campus-attendance/internal/attendance"
)

const (
	owner    = "2b0c6a52-93a4-4bd4-8d0e-5a3f4f6e7a10"
	mathID   = "9e7f3c1d-6b2a-4f8e-a1c5-0d4b3e2f1a99"
	physicID = "5d4c3b2a-1f0e-4d9c-8b7a-6e5f4d3c2b1a"
)

type fakeStore struct {
	weeks map[string]Week
}

func (f *fakeStore) Get(_ context.Context, ownerID string) (*Timetable, error) {
	w, ok := f.weeks[ownerID]
	if !ok {
		return nil, nil
	}
	return &Timetable{OwnerID: ownerID, Week: w}, nil
}

func (f *fakeStore) Replace(_ context.Context, ownerID string, w Week) (bool, error) {
	if _, ok := f.weeks[ownerID]; !ok {
		return false, nil
	}
	f.weeks[ownerID] = w
	return true, nil
}

func (f *fakeStore) DeleteSlot(_ context.Context, ownerID string, day int, subjectID string) (bool, error) {
	slots := f.weeks[ownerID][day]
	for i, s := range slots {
		if string(s.Subject.ID) == subjectID {
			f.weeks[ownerID][day] = append(slots[:i], slots[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// sheetStore keeps only what provisioning touches.
type sheetStore struct {
	attendance.Store
	keys []attendance.SheetKey
}

func (s *sheetStore) SubjectIDs(_ context.Context, ownerID string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, k := range s.keys {
		if k.OwnerID == ownerID {
			out[k.SubjectID] = true
		}
	}
	return out, nil
}

func (s *sheetStore) InsertEmpty(_ context.Context, _ string, k attendance.SheetKey) (bool, error) {
	for _, existing := range s.keys {
		if existing == k {
			return false, nil
		}
	}
	s.keys = append(s.keys, k)
	return true, nil
}

func newService(weeks map[string]Week) (*Service, *sheetStore) {
	sheets := &sheetStore{}
	provisioner := attendance.NewService(sheets, nil, nil, nil)
	return NewService(&fakeStore{weeks: weeks}, provisioner, nil), sheets
}

const mondayMath = `{
	"ownerId": "` + owner + `",
	"timetable": {
		"1": [{
			"subject": {"_id": {"$oid": "` + mathID + `"}, "subjectCode": "MA101", "subjectName": "Mathematics"},
			"section": "A", "session": "2022-26", "semester": "3", "branch": "CSE", "course": "B.Tech"
		}],
		"3": [{
			"subject": {"_id": "` + physicID + `", "subjectCode": "PH101", "subjectName": "Physics"},
			"section": "A", "session": "2022-26", "semester": "3", "branch": "CSE", "course": "B.Tech",
			"timing": "10:00-11:00"
		}]
	}
}`

func decodeUpdate(t *testing.T, body string) UpdateInput {
	t.Helper()
	var in UpdateInput
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("decode update: %v", err)
	}
	return in
}

func TestSubjectIDForms(t *testing.T) {
	var ids []SubjectID
	body := `["` + mathID + `", {"$oid": "` + "9E7F3C1D-6B2A-4F8E-A1C5-0D4B3E2F1A99" + `"}]`
	if err := json.Unmarshal([]byte(body), &ids); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ids[0] != mathID || ids[1] != mathID {
		t.Fatalf("expected both forms to normalize to %s, got %v", mathID, ids)
	}

	var bad SubjectID
	if err := json.Unmarshal([]byte(`"not-an-id"`), &bad); err == nil {
		t.Fatalf("expected an error for an invalid id")
	}
}

func TestWeekJSONHasAllDays(t *testing.T) {
	out, err := json.Marshal(Week{2: {{Section: "A"}}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string][]json.RawMessage
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded) != 7 || len(decoded["2"]) != 1 || decoded["7"] == nil {
		t.Fatalf("unexpected week encoding %s", out)
	}

	var w Week
	if err := json.Unmarshal([]byte(`{"8": []}`), &w); err == nil {
		t.Fatalf("expected an error for day 8")
	}
}

func TestUpdateProvisionsSheetsOnce(t *testing.T) {
	svc, sheets := newService(map[string]Week{owner: {}})
	ctx := context.Background()
	in := decodeUpdate(t, mondayMath)

	stored, created, err := svc.Update(ctx, in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if created != 2 || len(sheets.keys) != 2 {
		t.Fatalf("expected 2 sheets, created %d, stored %d", created, len(sheets.keys))
	}
	if len(stored.Week[1]) != 1 || stored.Week[1][0].Subject.ID != mathID {
		t.Fatalf("unexpected stored week %+v", stored.Week)
	}

	_, created, err = svc.Update(ctx, decodeUpdate(t, mondayMath))
	if err != nil {
		t.Fatalf("update again: %v", err)
	}
	if created != 0 || len(sheets.keys) != 2 {
		t.Fatalf("expected resubmission to create nothing, created %d, stored %d", created, len(sheets.keys))
	}
}

func TestUpdateUnknownOwner(t *testing.T) {
	svc, sheets := newService(map[string]Week{})
	_, _, err := svc.Update(context.Background(), decodeUpdate(t, mondayMath))
	if !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(sheets.keys) != 0 {
		t.Fatalf("expected no sheets for a missing timetable")
	}
}

func TestDeleteSlot(t *testing.T) {
	svc, _ := newService(map[string]Week{owner: {}})
	ctx := context.Background()
	if _, _, err := svc.Update(ctx, decodeUpdate(t, mondayMath)); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := svc.DeleteSlot(ctx, DeleteSlotInput{OwnerID: owner, Day: "1", SubjectID: mathID}); err != nil {
		t.Fatalf("delete slot: %v", err)
	}
	got, err := svc.Get(ctx, owner)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Week[1]) != 0 || len(got.Week[3]) != 1 {
		t.Fatalf("unexpected week after delete %+v", got.Week)
	}

	cases := map[string]DeleteSlotInput{
		"empty day":       {OwnerID: owner, Day: "1", SubjectID: mathID},
		"missing subject": {OwnerID: owner, Day: "3", SubjectID: mathID},
		"missing owner":   {OwnerID: "0b9d5c3e-1111-4222-8333-944455556666", Day: "3", SubjectID: physicID},
	}
	for name, in := range cases {
		if err := svc.DeleteSlot(ctx, in); !apperror.Is(err, apperror.KindNotFound) {
			t.Fatalf("%s: expected not found, got %v", name, err)
		}
	}

	if err := svc.DeleteSlot(ctx, DeleteSlotInput{OwnerID: owner, Day: "9", SubjectID: mathID}); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error for day 9, got %v", err)
	}
}

func TestSheetKeysDistinct(t *testing.T) {
	in := decodeUpdate(t, mondayMath)
	in.Week[2] = append(in.Week[2], in.Week[1][0])
	keys := in.Week.SheetKeys(owner)
	if len(keys) != 2 {
		t.Fatalf("expected duplicate class to collapse, got %d keys", len(keys))
	}
	if keys[0].SubjectID != mathID || keys[0].OwnerID != owner {
		t.Fatalf("unexpected first key %+v", keys[0])
	}
}

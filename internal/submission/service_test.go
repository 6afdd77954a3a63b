package submission

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"
)

type fakeStore struct {
	mu   sync.Mutex
	subs map[string]*Submission
	refs map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		subs: make(map[string]*Submission),
		refs: make(map[string]bool),
	}
}

func (f *fakeStore) Create(_ context.Context, s *Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refs[s.Reference] {
		return gorm.ErrDuplicatedKey
	}
	cp := *s
	f.subs[s.ID] = &cp
	f.refs[s.Reference] = true
	return nil
}

func (f *fakeStore) Save(_ context.Context, s *Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.subs[s.ID] = &cp
	return nil
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) FindByReference(_ context.Context, ref string) (*Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subs {
		if s.Reference == ref {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) List(_ context.Context, filter ListFilter) ([]Submission, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Submission
	for _, s := range f.subs {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) CountByStatus(_ context.Context) (map[Status]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[Status]int64)
	for _, s := range f.subs {
		out[s.Status]++
	}
	return out, nil
}

type fakeVehicleCreator struct {
	lastDraft DraftVehicle
	nextID    string
	err       error
}

func (f *fakeVehicleCreator) CreateDraft(_ context.Context, d DraftVehicle) (string, error) {
	f.lastDraft = d
	if f.err != nil {
		return "", f.err
	}
	return f.nextID, nil
}

func validInput() CreateInput {
	return CreateInput{
		OwnerName:     "Ramesh Kumar",
		OwnerPhone:    "9876543210",
		Category:      "bike",
		Brand:         "Hero",
		Model:         "Splendor Plus",
		Year:          2021,
		Kilometers:    12000,
		ExpectedPrice: 45000,
		Images:        []string{"https://img.example.com/a.jpg"},
	}
}

func newTestService(store *fakeStore, vc VehicleCreator) *Service {
	svc := NewService(store, vc)
	svc.now = func() time.Time {
		return time.Date(2024, 1, 31, 15, 45, 2, 0, time.UTC)
	}
	return svc
}

func TestCreateGeneratesTimestampReference(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)

	sub, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if sub.Reference != "SWM-20240131-154502" {
		t.Fatalf("unexpected reference: %s", sub.Reference)
	}
	if sub.Status != StatusPending {
		t.Fatalf("new submission should be pending, got %s", sub.Status)
	}
}

func TestCreateRetriesOnDuplicateReference(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)

	first, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	// 同一秒内的第二单撞唯一索引，应追加后缀重试成功
	second, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if second.Reference == first.Reference {
		t.Fatalf("references must be unique, both are %s", second.Reference)
	}
	if !strings.HasPrefix(second.Reference, first.Reference+"-") {
		t.Fatalf("retry reference should extend the base: %s", second.Reference)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newFakeStore(), nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateInput)
		field  string
	}{
		{"missing owner name", func(in *CreateInput) { in.OwnerName = " " }, "owner_name"},
		{"missing phone", func(in *CreateInput) { in.OwnerPhone = "" }, "owner_phone"},
		{"bad category", func(in *CreateInput) { in.Category = "truck" }, "category"},
		{"no images", func(in *CreateInput) { in.Images = nil }, "images"},
		{"too many images", func(in *CreateInput) { in.Images = make([]string, 11) }, "images"},
		{"negative price", func(in *CreateInput) { in.ExpectedPrice = -1 }, "expected_price"},
	}
	for _, tc := range cases {
		in := validInput()
		tc.mutate(&in)
		_, err := svc.Create(ctx, in)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
		if ve.Field != tc.field {
			t.Fatalf("%s: expected field %s, got %s", tc.name, tc.field, ve.Field)
		}
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	sub, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, sub.ID, StatusContacted, "called owner"); err != nil {
		t.Fatalf("pending -> contacted should succeed: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, sub.ID, StatusApproved, ""); err != nil {
		t.Fatalf("contacted -> approved should succeed: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, sub.ID, StatusPending, ""); err == nil {
		t.Fatal("approved -> pending must be rejected")
	}
	// purchased 只能走 Promote
	if _, err := svc.UpdateStatus(ctx, sub.ID, StatusPurchased, ""); err == nil {
		t.Fatal("direct transition to purchased must be rejected")
	}
}

func TestPromoteApprovedSubmission(t *testing.T) {
	store := newFakeStore()
	vc := &fakeVehicleCreator{nextID: "veh-1"}
	svc := newTestService(store, vc)
	ctx := context.Background()

	sub, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Promote(ctx, sub.ID); !errors.Is(err, ErrNotPromotable) {
		t.Fatalf("promoting a pending submission must fail with ErrNotPromotable, got %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, sub.ID, StatusApproved, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	promoted, err := svc.Promote(ctx, sub.ID)
	if err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	if promoted.Status != StatusPurchased {
		t.Fatalf("promoted submission should be purchased, got %s", promoted.Status)
	}
	if promoted.PromotedVehicleID != "veh-1" {
		t.Fatalf("promoted vehicle id not recorded: %q", promoted.PromotedVehicleID)
	}
	if vc.lastDraft.Brand != "Hero" || vc.lastDraft.PurchasePrice != 45000 {
		t.Fatalf("draft vehicle fields not carried over: %+v", vc.lastDraft)
	}
}

func TestPromoteKeepsApprovedOnVehicleError(t *testing.T) {
	store := newFakeStore()
	vc := &fakeVehicleCreator{err: errors.New("media host down")}
	svc := newTestService(store, vc)
	ctx := context.Background()

	sub, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, sub.ID, StatusApproved, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if _, err := svc.Promote(ctx, sub.ID); err == nil {
		t.Fatal("promote should surface vehicle creation failure")
	}
	got, err := svc.Get(ctx, sub.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != StatusApproved {
		t.Fatalf("failed promote must leave submission approved, got %s", got.Status)
	}
}

func TestGetByReference(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	sub, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	got, err := svc.GetByReference(ctx, sub.Reference)
	if err != nil {
		t.Fatalf("lookup by reference failed: %v", err)
	}
	if got.ID != sub.ID {
		t.Fatalf("wrong submission returned: %s", got.ID)
	}
	if _, err := svc.GetByReference(ctx, "SWM-19700101-000000"); !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("unknown reference should be not found, got %v", err)
	}
}

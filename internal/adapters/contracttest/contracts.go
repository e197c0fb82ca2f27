package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/starclock/starclock-api/internal/domain"
	alarmrepoport "github.com/starclock/starclock-api/internal/ports/out/alarmrepo"
	idempotencyport "github.com/starclock/starclock-api/internal/ports/out/idempotency"
	preferenceport "github.com/starclock/starclock-api/internal/ports/out/preference"
)

type CleanupFunc = func()

type AlarmRepoFactory func(t *testing.T) (alarmrepoport.Repository, CleanupFunc)
type PreferenceStoreFactory func(t *testing.T) (preferenceport.Store, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:      "k-1",
		Method:   "POST",
		Route:    "/alarms",
		BodyHash: "",
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get before Put: ok=%v err=%v", ok, err)
	}
	rec := idempotencyport.Record{
		StatusCode:  0,
		ContentType: "text/plain",
		Body:        []byte("hash-abc"),
		CreatedAt:   time.Unix(123, 0).UTC(),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != "hash-abc" || got.ContentType != "text/plain" || got.StatusCode != 0 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte("hash-def")
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || string(got.Body) != "hash-def" {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}
}

func RunAlarmRepo(t *testing.T, newRepo AlarmRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(1000, 0).UTC()
	first := domain.Alarm{ID: domain.AlarmID(uuid.NewString()), Time: "07:00", IsActive: true, CreatedAt: now}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create first: %v", err)
	}
	if err := repo.Create(ctx, first); !errors.Is(err, alarmrepoport.ErrAlreadyExists) {
		t.Fatalf("Create duplicate id: err=%v, want ErrAlreadyExists", err)
	}

	// Same time, independent alarm.
	second := domain.Alarm{ID: domain.AlarmID(uuid.NewString()), Time: "07:00", IsActive: true, CreatedAt: now.Add(time.Second)}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Create second: %v", err)
	}
	third := domain.Alarm{ID: domain.AlarmID(uuid.NewString()), Time: "06:00", IsActive: true, CreatedAt: now.Add(2 * time.Second)}
	if err := repo.Create(ctx, third); err != nil {
		t.Fatalf("Create third: %v", err)
	}

	// Creation order, not time-of-day order.
	as, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(as) != 3 || as[0].ID != first.ID || as[1].ID != second.ID || as[2].ID != third.ID {
		t.Fatalf("unexpected ordering: %#v", as)
	}

	toggled := second
	toggled.IsActive = false
	if err := repo.Update(ctx, toggled); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := repo.GetByID(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.IsActive || got.Time != "07:00" {
		t.Fatalf("unexpected alarm after update: %#v", got)
	}

	if err := repo.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, first.ID); !errors.Is(err, alarmrepoport.ErrNotFound) {
		t.Fatalf("GetByID deleted: err=%v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, first.ID); !errors.Is(err, alarmrepoport.ErrNotFound) {
		t.Fatalf("Delete twice: err=%v, want ErrNotFound", err)
	}
	missing := domain.Alarm{ID: domain.AlarmID(uuid.NewString()), Time: "09:00"}
	if err := repo.Update(ctx, missing); !errors.Is(err, alarmrepoport.ErrNotFound) {
		t.Fatalf("Update missing: err=%v, want ErrNotFound", err)
	}

	as, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(as) != 2 {
		t.Fatalf("List after delete: %#v", as)
	}

	if err := repo.Create(ctx, domain.Alarm{Time: "08:00", CreatedAt: now}); !errors.Is(err, alarmrepoport.ErrInvalidID) {
		t.Fatalf("Create empty id: err=%v, want ErrInvalidID", err)
	}
}

func RunAlarmRepoSameInstantOrder(t *testing.T, newRepo AlarmRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	at := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	want := []string{"01:00", "02:00", "03:00", "04:00", "05:00", "06:00"}
	ids := make([]domain.AlarmID, 0, len(want))
	for _, hhmm := range want {
		a := domain.Alarm{ID: domain.AlarmID(uuid.NewString()), Time: hhmm, IsActive: true, CreatedAt: at}
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("Create %s: %v", hhmm, err)
		}
		ids = append(ids, a.ID)
	}

	// Updating an alarm keeps its position.
	if err := repo.Update(ctx, domain.Alarm{ID: ids[2], Time: want[2], CreatedAt: at}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	as, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	got := make([]string, 0, len(as))
	for _, a := range as {
		got = append(got, a.Time)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("List order (-want +got):\n%s", diff)
	}
}

func RunPreferenceStore(t *testing.T, newStore PreferenceStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	if _, ok, err := store.Get(ctx); err != nil || ok {
		t.Fatalf("Get before Set: ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, domain.HourFormat12); err != nil {
		t.Fatalf("Set 12: %v", err)
	}
	f, ok, err := store.Get(ctx)
	if err != nil || !ok || f != domain.HourFormat12 {
		t.Fatalf("Get=%q ok=%v err=%v, want 12", f, ok, err)
	}

	// Last write wins.
	if err := store.Set(ctx, domain.HourFormat24); err != nil {
		t.Fatalf("Set 24: %v", err)
	}
	f, ok, err = store.Get(ctx)
	if err != nil || !ok || f != domain.HourFormat24 {
		t.Fatalf("Get=%q ok=%v err=%v, want 24", f, ok, err)
	}

	if err := store.Set(ctx, domain.HourFormat("13")); err == nil {
		t.Fatalf("expected invalid token to be rejected")
	}
}

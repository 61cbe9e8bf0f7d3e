package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/onboardhq/onboard/internal/model"
)

func seedCollaborators(t *testing.T, repo CollaboratorRepository) []model.Collaborator {
	t.Helper()
	ctx := context.Background()

	day := func(offset int) time.Time {
		return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	}

	collaborators := []model.Collaborator{
		{FullName: "Alice Martin", Email: "alice@corp.com", HireDate: day(0),
			WelcomeOnboardingStatus: model.StatusCompleted, TechnicalOnboardingStatus: model.StatusPending},
		{FullName: "Bob Chen", Email: "bob.chen@corp.com", HireDate: day(10),
			WelcomeOnboardingStatus: model.StatusPending, TechnicalOnboardingStatus: model.StatusInProgress},
		{FullName: "Carla Diaz", Email: "carla@corp.com", HireDate: day(20),
			WelcomeOnboardingStatus: model.StatusCompleted, TechnicalOnboardingStatus: model.StatusCompleted},
	}
	for i := range collaborators {
		if err := repo.Create(ctx, &collaborators[i]); err != nil {
			t.Fatalf("seed %s: %v", collaborators[i].Email, err)
		}
	}
	return collaborators
}

func TestCollaboratorRepository_FindAllOrdersByHireDateDesc(t *testing.T) {
	repo := NewCollaboratorRepository(openTestDB(t))
	seedCollaborators(t, repo)

	all, err := repo.FindAll(context.Background(), "", "")
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d collaborators, want 3", len(all))
	}
	if all[0].Email != "carla@corp.com" || all[2].Email != "alice@corp.com" {
		t.Fatalf("unexpected order: %s .. %s", all[0].Email, all[2].Email)
	}
}

func TestCollaboratorRepository_SearchIsCaseInsensitive(t *testing.T) {
	repo := NewCollaboratorRepository(openTestDB(t))
	seedCollaborators(t, repo)
	ctx := context.Background()

	byName, err := repo.FindAll(ctx, "aLiCe", "")
	if err != nil || len(byName) != 1 || byName[0].Email != "alice@corp.com" {
		t.Fatalf("name search: %v %+v", err, byName)
	}

	byEmail, err := repo.FindAll(ctx, "BOB.CHEN", "")
	if err != nil || len(byEmail) != 1 || byEmail[0].FullName != "Bob Chen" {
		t.Fatalf("email search: %v %+v", err, byEmail)
	}

	none, err := repo.FindAll(ctx, "nobody", "")
	if err != nil || len(none) != 0 {
		t.Fatalf("miss search: %v %+v", err, none)
	}
}

func TestCollaboratorRepository_StatusMatchesEitherTrack(t *testing.T) {
	repo := NewCollaboratorRepository(openTestDB(t))
	seedCollaborators(t, repo)
	ctx := context.Background()

	// Alice is completed on welcome only, Carla on both; the filter matches
	// either track.
	completed, err := repo.FindAll(ctx, "", model.StatusCompleted)
	if err != nil {
		t.Fatalf("status filter: %v", err)
	}
	if len(completed) != 2 {
		t.Fatalf("completed = %d rows, want 2", len(completed))
	}

	inProgress, err := repo.FindAll(ctx, "", model.StatusInProgress)
	if err != nil || len(inProgress) != 1 || inProgress[0].FullName != "Bob Chen" {
		t.Fatalf("in_progress filter: %v %+v", err, inProgress)
	}

	all, err := repo.FindAll(ctx, "", "all")
	if err != nil || len(all) != 3 {
		t.Fatalf(`"all" filter: %v, %d rows`, err, len(all))
	}
}

func TestCollaboratorRepository_DuplicateEmail(t *testing.T) {
	repo := NewCollaboratorRepository(openTestDB(t))
	seedCollaborators(t, repo)

	dup := model.Collaborator{FullName: "Alice Again", Email: "alice@corp.com", HireDate: time.Now()}
	if err := repo.Create(context.Background(), &dup); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("duplicate email error = %v, want ErrDuplicatedKey", err)
	}
}

func TestCollaboratorRepository_UpdateAndDeleteReportMatches(t *testing.T) {
	repo := NewCollaboratorRepository(openTestDB(t))
	seeded := seedCollaborators(t, repo)
	ctx := context.Background()

	affected, err := repo.UpdateFields(ctx, seeded[0].ID, map[string]interface{}{
		"technical_onboarding_status": model.StatusCompleted,
	})
	if err != nil || affected != 1 {
		t.Fatalf("update: %v affected=%d", err, affected)
	}

	affected, err = repo.UpdateFields(ctx, 9999, map[string]interface{}{"full_name": "Ghost"})
	if err != nil || affected != 0 {
		t.Fatalf("update missing: %v affected=%d", err, affected)
	}

	affected, err = repo.Delete(ctx, seeded[0].ID)
	if err != nil || affected != 1 {
		t.Fatalf("delete: %v affected=%d", err, affected)
	}
	affected, err = repo.Delete(ctx, seeded[0].ID)
	if err != nil || affected != 0 {
		t.Fatalf("delete again: %v affected=%d", err, affected)
	}
}

func TestCollaboratorRepository_FindByIDs(t *testing.T) {
	repo := NewCollaboratorRepository(openTestDB(t))
	seeded := seedCollaborators(t, repo)
	ctx := context.Background()

	rows, err := repo.FindByIDs(ctx, []uint{seeded[0].ID, seeded[2].ID})
	if err != nil || len(rows) != 2 {
		t.Fatalf("find by ids: %v %d rows", err, len(rows))
	}
	// Still hire_date descending.
	if !rows[0].HireDate.After(rows[1].HireDate) {
		t.Fatalf("rows not ordered: %v then %v", rows[0].HireDate, rows[1].HireDate)
	}

	empty, err := repo.FindByIDs(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty id list: %v %d rows", err, len(empty))
	}
}

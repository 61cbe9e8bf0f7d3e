package repository

import (
	"context"
	"testing"
	"time"

	"github.com/onboardhq/onboard/internal/model"
)

func seedEvents(t *testing.T, repo EventRepository) {
	t.Helper()
	ctx := context.Background()

	events := []model.CalendarEvent{
		{Title: "Cloud Kickoff", Type: model.EventTypeJourneyToCloud, ResponsibleEmail: "lead@corp.com",
			StartDate: time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, time.February, 14, 0, 0, 0, 0, time.UTC),
			Status:    model.EventStatusScheduled},
		{Title: "Go Workshop", Type: model.EventTypeWorkshop, ResponsibleEmail: "lead@corp.com",
			StartDate: time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
			Status:    model.EventStatusScheduled},
		{Title: "Legacy Session", Type: model.EventTypeChapterTechnical, ResponsibleEmail: "lead@corp.com",
			StartDate: time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC),
			Status:    model.EventStatusScheduled},
	}
	for i := range events {
		if err := repo.Create(ctx, &events[i]); err != nil {
			t.Fatalf("seed %s: %v", events[i].Title, err)
		}
	}
}

func TestEventRepository_FindAllFilters(t *testing.T) {
	repo := NewEventRepository(openTestDB(t))
	seedEvents(t, repo)
	ctx := context.Background()

	all, err := repo.FindAll(ctx, nil, "")
	if err != nil || len(all) != 3 {
		t.Fatalf("find all: %v, %d rows", err, len(all))
	}
	// Ascending by start date.
	if all[0].Title != "Legacy Session" || all[2].Title != "Go Workshop" {
		t.Fatalf("unexpected order: %s .. %s", all[0].Title, all[2].Title)
	}

	year := 2026
	inYear, err := repo.FindAll(ctx, &year, "")
	if err != nil || len(inYear) != 2 {
		t.Fatalf("year filter: %v, %d rows", err, len(inYear))
	}

	workshops, err := repo.FindAll(ctx, &year, model.EventTypeWorkshop)
	if err != nil || len(workshops) != 1 || workshops[0].Title != "Go Workshop" {
		t.Fatalf("type filter: %v %+v", err, workshops)
	}
}

func TestEventRepository_FindUpcomingWindow(t *testing.T) {
	repo := NewEventRepository(openTestDB(t))
	seedEvents(t, repo)
	ctx := context.Background()

	from := time.Date(2026, time.February, 8, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC)

	upcoming, err := repo.FindUpcoming(ctx, from, to)
	if err != nil {
		t.Fatalf("find upcoming: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].Title != "Cloud Kickoff" {
		t.Fatalf("window [%v, %v] = %+v", from, to, upcoming)
	}

	none, err := repo.FindUpcoming(ctx, to.AddDate(0, 1, 0), to.AddDate(0, 1, 7))
	if err != nil || len(none) != 0 {
		t.Fatalf("empty window: %v, %d rows", err, len(none))
	}
}

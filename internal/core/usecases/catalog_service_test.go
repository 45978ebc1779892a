package usecases_test

import (
	"testing"

	"github.com/samirrijal/balloonwind/internal/core/usecases"
)

func TestCatalogService_Balloons(t *testing.T) {
	svc := usecases.NewCatalogService(0)

	page, total := svc.Balloons("", 0, 0)
	if total != 1000 {
		t.Fatalf("expected 1000 balloons, got %d", total)
	}
	if len(page) != 50 {
		t.Errorf("expected default page of 50, got %d", len(page))
	}
	if page[0].Label != "Balloon 000" {
		t.Errorf("expected 'Balloon 000', got %q", page[0].Label)
	}

	page, total = svc.Balloons("", 990, 50)
	if total != 1000 || len(page) != 10 || page[9].Label != "Balloon 999" {
		t.Errorf("unexpected last page: total %d, len %d", total, len(page))
	}
}

func TestCatalogService_Filter(t *testing.T) {
	svc := usecases.NewCatalogService(0)

	page, total := svc.Balloons("BALLOON 99", 0, 100)
	if total != 10 || len(page) != 10 {
		t.Fatalf("expected 10 matches, got %d (page %d)", total, len(page))
	}
	if page[0].ID != 990 {
		t.Errorf("expected first match 990, got %d", page[0].ID)
	}

	page, total = svc.Balloons("zeppelin", 0, 10)
	if total != 0 || len(page) != 0 {
		t.Errorf("expected no matches, got %d", total)
	}
}

func TestCatalogService_OffsetPastEnd(t *testing.T) {
	svc := usecases.NewCatalogService(20)

	page, total := svc.Balloons("", 40, 10)
	if total != 20 {
		t.Errorf("expected total 20, got %d", total)
	}
	if page == nil || len(page) != 0 {
		t.Errorf("expected empty non-nil page, got %v", page)
	}
}

func TestCatalogService_PressureLevels(t *testing.T) {
	levels := usecases.NewCatalogService(0).PressureLevels()
	if len(levels) != 19 {
		t.Fatalf("expected 19 levels, got %d", len(levels))
	}
	if levels[0].HPa != 1000 || levels[18].HPa != 30 {
		t.Errorf("expected 1000..30 hPa, got %d..%d", levels[0].HPa, levels[18].HPa)
	}
}

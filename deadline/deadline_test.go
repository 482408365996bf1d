package deadline

import (
	"testing"
	"time"

	"github.com/CCA-SociedadeAdvogados/legalhub-backend/model"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestNextDeadlinePicksEarliest(t *testing.T) {
	now := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	contract := &model.Contract{
		TermDate:                date(2025, 12, 31),
		RenewalDecisionDeadline: date(2025, 10, 1),
	}

	dl := NextDeadline(contract, now)
	if dl == nil {
		t.Fatal("Expected a deadline")
	}
	if dl.Label != LabelRenewalDecision {
		t.Errorf("Expected label %s, got %s", LabelRenewalDecision, dl.Label)
	}
	if !dl.Date.Equal(*contract.RenewalDecisionDeadline) {
		t.Errorf("Expected date %v, got %v", contract.RenewalDecisionDeadline, dl.Date)
	}
	if dl.DaysRemaining != 30 {
		t.Errorf("Expected 30 days remaining, got %d", dl.DaysRemaining)
	}
}

func TestNextDeadlineSingleCandidate(t *testing.T) {
	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	contract := &model.Contract{TermDate: date(2025, 12, 31)}
	dl := NextDeadline(contract, now)
	if dl == nil || dl.Label != LabelTerm {
		t.Fatalf("Expected term deadline, got %+v", dl)
	}

	contract = &model.Contract{RenewalDecisionDeadline: date(2025, 8, 1)}
	dl = NextDeadline(contract, now)
	if dl == nil || dl.Label != LabelRenewalDecision {
		t.Fatalf("Expected renewal decision deadline, got %+v", dl)
	}
	if dl.DaysRemaining >= 0 {
		t.Errorf("Expected negative days remaining for past date, got %d", dl.DaysRemaining)
	}
}

func TestNextDeadlineNone(t *testing.T) {
	now := time.Now()
	if dl := NextDeadline(&model.Contract{}, now); dl != nil {
		t.Errorf("Expected nil deadline, got %+v", dl)
	}
}

func TestNoticeWindowClosed(t *testing.T) {
	// term 2025-12-31, notice 60 days, now 2025-11-10: the notice date
	// was 2025-11-01, nine days ago.
	now := time.Date(2025, 11, 10, 9, 30, 0, 0, time.UTC)
	contract := &model.Contract{
		TermDate:         date(2025, 12, 31),
		NoticePeriodDays: 60,
	}

	n := NoticeWindow(contract, now)
	if n == nil {
		t.Fatal("Expected a notice window")
	}
	want := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	if !n.NoticeDate.Equal(want) {
		t.Errorf("Expected notice date %v, got %v", want, n.NoticeDate)
	}
	if n.DaysUntilNotice != -9 {
		t.Errorf("Expected -9 days until notice, got %d", n.DaysUntilNotice)
	}
	if n.Status != NoticeClosed {
		t.Errorf("Expected status closed, got %s", n.Status)
	}
}

func TestNoticeWindowStatusBoundaries(t *testing.T) {
	contract := &model.Contract{
		TermDate:         date(2026, 3, 1),
		NoticePeriodDays: 30,
	}
	// Notice date is 2026-01-30.
	cases := []struct {
		now    time.Time
		days   int
		status NoticeStatus
	}{
		{time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), -1, NoticeClosed},
		{time.Date(2026, 1, 30, 23, 59, 0, 0, time.UTC), 0, NoticeUrgent},
		{time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), 30, NoticeUrgent},
		{time.Date(2025, 12, 30, 0, 0, 0, 0, time.UTC), 31, NoticeNormal},
	}

	for _, tc := range cases {
		n := NoticeWindow(contract, tc.now)
		if n == nil {
			t.Fatalf("Expected notice window at %v", tc.now)
		}
		if n.DaysUntilNotice != tc.days {
			t.Errorf("At %v expected %d days, got %d", tc.now, tc.days, n.DaysUntilNotice)
		}
		if n.Status != tc.status {
			t.Errorf("At %v expected status %s, got %s", tc.now, tc.status, n.Status)
		}
	}
}

func TestNoticeWindowUndefined(t *testing.T) {
	now := time.Now()

	if n := NoticeWindow(&model.Contract{NoticePeriodDays: 30}, now); n != nil {
		t.Errorf("Expected nil without term date, got %+v", n)
	}
	if n := NoticeWindow(&model.Contract{TermDate: date(2026, 1, 1)}, now); n != nil {
		t.Errorf("Expected nil without notice period, got %+v", n)
	}
	if n := NoticeWindow(&model.Contract{TermDate: date(2026, 1, 1), NoticePeriodDays: -5}, now); n != nil {
		t.Errorf("Expected nil with negative notice period, got %+v", n)
	}
}

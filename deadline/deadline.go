// Package deadline derives a contract's next binding deadline and its
// renewal-notice window from the stored date fields. Everything here is
// computed on read; nothing is persisted.
package deadline

import (
	"time"

	"github.com/CCA-SociedadeAdvogados/legalhub-backend/model"
)

// Labels for the candidate deadlines.
const (
	LabelRenewalDecision = "renewal_decision"
	LabelTerm            = "term"
)

// NoticeStatus classifies the renewal-notice window relative to now.
type NoticeStatus string

const (
	NoticeClosed NoticeStatus = "closed"
	NoticeUrgent NoticeStatus = "urgent"
	NoticeNormal NoticeStatus = "normal"
)

// urgentWindowDays is the span, in days, within which an open notice
// window is flagged urgent.
const urgentWindowDays = 30

// Deadline is the single next deadline of a contract.
type Deadline struct {
	Label         string    `json:"label"`
	Date          time.Time `json:"date"`
	DaysRemaining int       `json:"days_remaining"`
}

// Notice describes the renewal-notice window: the last date by which the
// non-renewal notice must be given.
type Notice struct {
	NoticeDate      time.Time    `json:"notice_date"`
	DaysUntilNotice int          `json:"days_until_notice"`
	Status          NoticeStatus `json:"status"`
}

// NextDeadline returns the earliest of the contract's renewal decision
// deadline and term date, or nil when neither is set. DaysRemaining is
// negative for past dates; callers decide how to display that.
func NextDeadline(c *model.Contract, now time.Time) *Deadline {
	var best *Deadline

	consider := func(label string, date *time.Time) {
		if date == nil {
			return
		}
		if best == nil || date.Before(best.Date) {
			best = &Deadline{Label: label, Date: *date}
		}
	}

	consider(LabelRenewalDecision, c.RenewalDecisionDeadline)
	consider(LabelTerm, c.TermDate)

	if best == nil {
		return nil
	}
	best.DaysRemaining = calendarDays(now, best.Date)
	return best
}

// NoticeWindow returns the renewal-notice window, or nil when the
// contract has no term date or no positive notice period.
func NoticeWindow(c *model.Contract, now time.Time) *Notice {
	if c.TermDate == nil || c.NoticePeriodDays <= 0 {
		return nil
	}

	noticeDate := c.TermDate.AddDate(0, 0, -c.NoticePeriodDays)
	days := calendarDays(now, noticeDate)

	status := NoticeNormal
	switch {
	case days < 0:
		status = NoticeClosed
	case days <= urgentWindowDays:
		status = NoticeUrgent
	}

	return &Notice{
		NoticeDate:      noticeDate,
		DaysUntilNotice: days,
		Status:          status,
	}
}

// calendarDays counts whole calendar days from now to date, ignoring the
// time of day on both sides.
func calendarDays(now, date time.Time) int {
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// InterviewType represents how an interview is conducted.
type InterviewType string

const (
	InterviewVideo    InterviewType = "video"
	InterviewPhone    InterviewType = "phone"
	InterviewInPerson InterviewType = "in_person"
	InterviewPanel    InterviewType = "panel"
)

func (t InterviewType) String() string { return string(t) }

func (t InterviewType) IsValid() bool {
	switch t {
	case InterviewVideo, InterviewPhone, InterviewInPerson, InterviewPanel:
		return true
	}
	return false
}

func ParseInterviewTypeFromString(s string) (InterviewType, error) {
	t := InterviewType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: invalid interview type %q", ErrValidation, s)
	}
	return t, nil
}

// AllowedDurations are the selectable interview lengths in minutes.
var AllowedDurations = []int{15, 30, 45, 60, 90, 120}

func isAllowedDuration(minutes int) bool {
	for _, d := range AllowedDurations {
		if d == minutes {
			return true
		}
	}
	return false
}

const (
	proposalDateLayout = "2006-01-02"
	proposalTimeLayout = "15:04"

	minInterviewerLen          = 2
	defaultReminderOffsetHours = 24
)

// Interview is an immutable scheduled meeting owned by exactly one
// application. Rescheduling creates a new record, never mutates an old one.
type Interview struct {
	ID                  string
	ApplicationID       string
	ScheduledAt         time.Time
	DurationMinutes     int
	Type                InterviewType
	Location            string
	MeetingLink         string
	Interviewer         string
	ReminderOffsetHours int
	Notes               string
	ReminderSentAt      *time.Time
	CreatedAt           time.Time
}

// ReminderDueAt returns the instant the pre-interview reminder becomes due.
func (i *Interview) ReminderDueAt() time.Time {
	return i.ScheduledAt.Add(-time.Duration(i.ReminderOffsetHours) * time.Hour)
}

// InterviewProposal is the raw scheduling form input. Date and Time arrive as
// separate fields the way the scheduling wizard collects them.
type InterviewProposal struct {
	Date                string
	Time                string
	DurationMinutes     int
	Type                string
	Location            string
	MeetingLink         string
	Interviewer         string
	ReminderOffsetHours int
	Notes               string
}

// BuildInterview validates a proposal and assembles the Interview record.
// Validation runs in two field-grouped steps: date/time first, then details.
// The first failing step reports every violated field in that step at once;
// a later step is not evaluated until earlier ones pass.
func BuildInterview(applicationID string, proposal InterviewProposal, now time.Time) (*Interview, error) {
	scheduledAt, err := validateScheduleStep(proposal, now)
	if err != nil {
		return nil, err
	}

	interviewType, err := validateDetailStep(proposal)
	if err != nil {
		return nil, err
	}

	reminderOffset := proposal.ReminderOffsetHours
	if reminderOffset <= 0 {
		reminderOffset = defaultReminderOffsetHours
	}

	return &Interview{
		ID:                  uuid.NewString(),
		ApplicationID:       applicationID,
		ScheduledAt:         scheduledAt,
		DurationMinutes:     proposal.DurationMinutes,
		Type:                interviewType,
		Location:            strings.TrimSpace(proposal.Location),
		MeetingLink:         strings.TrimSpace(proposal.MeetingLink),
		Interviewer:         strings.TrimSpace(proposal.Interviewer),
		ReminderOffsetHours: reminderOffset,
		Notes:               strings.TrimSpace(proposal.Notes),
		CreatedAt:           now,
	}, nil
}

func validateScheduleStep(proposal InterviewProposal, now time.Time) (time.Time, error) {
	ve := NewValidationError()
	now = now.UTC()

	rawDate := strings.TrimSpace(proposal.Date)
	rawTime := strings.TrimSpace(proposal.Time)

	var day time.Time
	dateOK := false
	if rawDate == "" {
		ve.Add("date", "required")
	} else {
		parsed, err := time.Parse(proposalDateLayout, rawDate)
		if err != nil {
			ve.Add("date", "must be a valid date in YYYY-MM-DD format")
		} else if parsed.Before(now.Truncate(24 * time.Hour)) {
			ve.Add("date", "must not be in the past")
		} else {
			day = parsed
			dateOK = true
		}
	}

	var clock time.Time
	timeOK := false
	if rawTime == "" {
		ve.Add("time", "required")
	} else {
		parsed, err := time.Parse(proposalTimeLayout, rawTime)
		if err != nil {
			ve.Add("time", "must be a valid time in HH:MM format")
		} else {
			clock = parsed
			timeOK = true
		}
	}

	if !isAllowedDuration(proposal.DurationMinutes) {
		ve.Add("durationMinutes", fmt.Sprintf("must be one of %v", AllowedDurations))
	}

	var scheduledAt time.Time
	if dateOK && timeOK {
		scheduledAt = time.Date(
			day.Year(), day.Month(), day.Day(),
			clock.Hour(), clock.Minute(), 0, 0, time.UTC,
		)
		if !scheduledAt.After(now) {
			ve.Add("time", "combined date and time must be in the future")
			scheduledAt = time.Time{}
		}
	}

	if ve.HasErrors() {
		return time.Time{}, ve
	}

	return scheduledAt, nil
}

func validateDetailStep(proposal InterviewProposal) (InterviewType, error) {
	ve := NewValidationError()

	rawType := strings.TrimSpace(proposal.Type)
	var interviewType InterviewType
	if rawType == "" {
		ve.Add("type", "required")
	} else {
		parsed, err := ParseInterviewTypeFromString(rawType)
		if err != nil {
			ve.Add("type", fmt.Sprintf("invalid interview type %q", rawType))
		} else {
			interviewType = parsed
		}
	}

	switch interviewType {
	case InterviewVideo:
		link := strings.TrimSpace(proposal.MeetingLink)
		if link == "" {
			ve.Add("meetingLink", "required")
		} else if !isAbsoluteURL(link) {
			ve.Add("meetingLink", "must be a well-formed absolute URL")
		}
	case InterviewInPerson:
		if strings.TrimSpace(proposal.Location) == "" {
			ve.Add("location", "required")
		}
	}

	if interviewer := strings.TrimSpace(proposal.Interviewer); interviewer != "" {
		if len([]rune(interviewer)) < minInterviewerLen {
			ve.Add("interviewer", fmt.Sprintf("must be at least %d characters", minInterviewerLen))
		}
	}

	if ve.HasErrors() {
		return "", ve
	}

	return interviewType, nil
}

func isAbsoluteURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return parsed.IsAbs() && parsed.Host != ""
}

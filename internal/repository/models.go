package repository

import (
	"time"

	"github.com/talentwire/pipeline-tracker/internal/domain"
)

// ApplicationModel is the persistence model for the applications table.
type ApplicationModel struct {
	ID          string        `gorm:"type:uuid;primaryKey"`
	JobID       string        `gorm:"type:uuid;not null"`
	CandidateID string        `gorm:"type:uuid;not null"`
	Status      domain.Status `gorm:"type:varchar(30);not null"`
	Notes       string        `gorm:"type:text"`
	Version     int64         `gorm:"not null;default:1"`
	AppliedAt   time.Time     `gorm:"not null"`
	UpdatedAt   time.Time
}

func (ApplicationModel) TableName() string {
	return "applications"
}

// InterviewModel is the persistence model for the interviews table.
type InterviewModel struct {
	ID                  string               `gorm:"type:uuid;primaryKey"`
	ApplicationID       string               `gorm:"type:uuid;not null"`
	ScheduledAt         time.Time            `gorm:"type:timestamptz;not null"`
	DurationMinutes     int                  `gorm:"not null"`
	Type                domain.InterviewType `gorm:"type:varchar(20);not null"`
	Location            string               `gorm:"type:text"`
	MeetingLink         string               `gorm:"type:text"`
	Interviewer         string               `gorm:"type:varchar(255)"`
	ReminderOffsetHours int                  `gorm:"not null;default:24"`
	Notes               string               `gorm:"type:text"`
	ReminderSentAt      *time.Time           `gorm:"type:timestamptz"`
	CreatedAt           time.Time
}

func (InterviewModel) TableName() string {
	return "interviews"
}

// NotificationModel is the persistence model for the notifications table.
type NotificationModel struct {
	ID          string                  `gorm:"type:uuid;primaryKey"`
	Recipient   string                  `gorm:"type:uuid;not null"`
	Type        domain.NotificationType `gorm:"type:varchar(30);not null"`
	Title       string                  `gorm:"type:varchar(255);not null"`
	Message     string                  `gorm:"type:text;not null"`
	Priority    domain.Priority         `gorm:"type:varchar(10);not null"`
	Read        bool                    `gorm:"not null;default:false"`
	RelatedKind domain.RelatedKind      `gorm:"type:varchar(20);not null"`
	RelatedID   string                  `gorm:"type:uuid;not null"`
	ActionHint  string                  `gorm:"type:varchar(50)"`
	CreatedAt   time.Time
}

func (NotificationModel) TableName() string {
	return "notifications"
}

func applicationModelFromDomain(a *domain.Application) *ApplicationModel {
	if a == nil {
		return nil
	}

	return &ApplicationModel{
		ID:          a.ID,
		JobID:       a.JobID,
		CandidateID: a.CandidateID,
		Status:      a.Status,
		Notes:       a.Notes,
		Version:     a.Version,
		AppliedAt:   a.AppliedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func applicationModelToDomain(m *ApplicationModel) *domain.Application {
	if m == nil {
		return nil
	}

	return &domain.Application{
		ID:          m.ID,
		JobID:       m.JobID,
		CandidateID: m.CandidateID,
		Status:      m.Status,
		Notes:       m.Notes,
		Version:     m.Version,
		AppliedAt:   m.AppliedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func interviewModelFromDomain(i *domain.Interview) *InterviewModel {
	if i == nil {
		return nil
	}

	return &InterviewModel{
		ID:                  i.ID,
		ApplicationID:       i.ApplicationID,
		ScheduledAt:         i.ScheduledAt,
		DurationMinutes:     i.DurationMinutes,
		Type:                i.Type,
		Location:            i.Location,
		MeetingLink:         i.MeetingLink,
		Interviewer:         i.Interviewer,
		ReminderOffsetHours: i.ReminderOffsetHours,
		Notes:               i.Notes,
		ReminderSentAt:      i.ReminderSentAt,
		CreatedAt:           i.CreatedAt,
	}
}

func interviewModelToDomain(m *InterviewModel) *domain.Interview {
	if m == nil {
		return nil
	}

	return &domain.Interview{
		ID:                  m.ID,
		ApplicationID:       m.ApplicationID,
		ScheduledAt:         m.ScheduledAt,
		DurationMinutes:     m.DurationMinutes,
		Type:                m.Type,
		Location:            m.Location,
		MeetingLink:         m.MeetingLink,
		Interviewer:         m.Interviewer,
		ReminderOffsetHours: m.ReminderOffsetHours,
		Notes:               m.Notes,
		ReminderSentAt:      m.ReminderSentAt,
		CreatedAt:           m.CreatedAt,
	}
}

func notificationModelFromDomain(n *domain.Notification) *NotificationModel {
	if n == nil {
		return nil
	}

	return &NotificationModel{
		ID:          n.ID,
		Recipient:   n.Recipient,
		Type:        n.Type,
		Title:       n.Title,
		Message:     n.Message,
		Priority:    n.Priority,
		Read:        n.Read,
		RelatedKind: n.RelatedKind,
		RelatedID:   n.RelatedID,
		ActionHint:  n.ActionHint,
		CreatedAt:   n.CreatedAt,
	}
}

func notificationModelToDomain(m *NotificationModel) *domain.Notification {
	if m == nil {
		return nil
	}

	return &domain.Notification{
		ID:          m.ID,
		Recipient:   m.Recipient,
		Type:        m.Type,
		Title:       m.Title,
		Message:     m.Message,
		Priority:    m.Priority,
		Read:        m.Read,
		RelatedKind: m.RelatedKind,
		RelatedID:   m.RelatedID,
		ActionHint:  m.ActionHint,
		CreatedAt:   m.CreatedAt,
	}
}

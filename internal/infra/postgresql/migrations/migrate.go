package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/talentwire/pipeline-tracker/internal/repository"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "000001_create_applications",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.ApplicationModel{}); err != nil {
					return err
				}
				indexes := []string{
					`CREATE INDEX IF NOT EXISTS idx_applications_status ON applications (status)`,
					`CREATE INDEX IF NOT EXISTS idx_applications_candidate_id ON applications (candidate_id)`,
					`CREATE INDEX IF NOT EXISTS idx_applications_job_id ON applications (job_id)`,
					`CREATE INDEX IF NOT EXISTS idx_applications_applied_at ON applications (applied_at DESC)`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.ApplicationModel{})
			},
		},
		{
			ID: "000002_create_interviews",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.InterviewModel{}); err != nil {
					return err
				}
				indexes := []string{
					`CREATE INDEX IF NOT EXISTS idx_interviews_application_id ON interviews (application_id)`,
					`CREATE INDEX IF NOT EXISTS idx_interviews_reminder_due ON interviews (scheduled_at) WHERE reminder_sent_at IS NULL`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.InterviewModel{})
			},
		},
		{
			ID: "000003_create_notifications",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.NotificationModel{}); err != nil {
					return err
				}
				indexes := []string{
					`CREATE INDEX IF NOT EXISTS idx_notifications_recipient_created ON notifications (recipient, created_at DESC)`,
					`CREATE INDEX IF NOT EXISTS idx_notifications_recipient_unread ON notifications (recipient) WHERE read = false`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.NotificationModel{})
			},
		},
	})

	return m.Migrate()
}

package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportReason string

const (
	ReportReasonDangerous ReportReason = "dangerous"
	ReportReasonObsolete  ReportReason = "obsolete"
	ReportReasonOther     ReportReason = "other"
)

var DisplayReportReason = map[ReportReason]string{
	ReportReasonDangerous: "Contenu dangereux",
	ReportReasonObsolete:  "Annonce obsolète",
	ReportReasonOther:     "Autre",
}

// Report is a user complaint about a listing. Obsolete reports imported
// from the legacy site are authored by the ghost user.
type Report struct {
	ID           string       `gorm:"primaryKey;size:36" json:"id"`
	AppartmentID string       `gorm:"index;size:36" json:"appartment_id"`
	AuthorID     string       `gorm:"index;size:36" json:"author_id"`
	Author       User         `gorm:"foreignKey:AuthorID" json:"-"`
	Reason       ReportReason `gorm:"size:20" json:"reason"`
	Message      string       `gorm:"type:text" json:"message"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (Report) TableName() string {
	return "reports"
}

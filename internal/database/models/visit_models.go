package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type VisitStatus string

const (
	VisitPlanned    VisitStatus = "planned"
	VisitInProgress VisitStatus = "in_progress"
	VisitCompleted  VisitStatus = "completed"
	VisitCancelled  VisitStatus = "cancelled"
)

type VisitType string

const (
	VisitScheduled VisitType = "scheduled"
	VisitAdHoc     VisitType = "ad_hoc"
)

type VisitOutcome string

const (
	OutcomeOrderPlaced  VisitOutcome = "order_placed"
	OutcomeNoOrder      VisitOutcome = "no_order"
	OutcomeFollowUp     VisitOutcome = "follow_up"
	OutcomeNotAvailable VisitOutcome = "not_available"
)

// ValidVisitOutcome reports whether o is a known outcome.
func ValidVisitOutcome(o VisitOutcome) bool {
	switch o {
	case OutcomeOrderPlaced, OutcomeNoOrder, OutcomeFollowUp, OutcomeNotAvailable:
		return true
	}
	return false
}

type StringArray []string

func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = []string{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan StringArray: %v", value)
	}
	return json.Unmarshal(bytes, a)
}

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

type Visit struct {
	ID           int64       `gorm:"primaryKey;autoIncrement"`
	TenantID     int64       `gorm:"index;not null"`
	CustomerID   int64       `gorm:"index;not null"`
	SalesRepID   int64       `gorm:"index;not null"`
	Status       VisitStatus `gorm:"type:varchar(16);not null;default:'planned'"`
	VisitType    VisitType   `gorm:"type:varchar(16);not null"`
	PlannedDate  *time.Time  `gorm:"type:date"`
	PlannedTime  *string     `gorm:"type:varchar(8)"`
	StartedAt    *time.Time
	CompletedAt  *time.Time
	Outcome      *VisitOutcome `gorm:"type:varchar(16)"`
	OutcomeNotes *string       `gorm:"type:text"`
	Photos       StringArray   `gorm:"type:text"`
	StartLat     *float64
	StartLon     *float64
	EndLat       *float64
	EndLon       *float64
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Customer *Customer `gorm:"foreignKey:CustomerID"`
}

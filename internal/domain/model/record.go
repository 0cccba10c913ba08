// Package model contains domain models passed between layers.
package model

import "time"

// Payload keys as exported by the kiosk provider. Keys outside this set are
// ignored; missing keys read as absent.
const (
	KeyDate         = "Date"
	KeyFullName     = "Full Name"
	KeyEntryType    = "EntryType"
	KeyTime         = "Time"
	KeyKioskName    = "Kiosk Name"
	KeyGroup        = "Group"
	KeyDuration     = "Duration"
	KeyActivity     = "Activity"
	KeyLastEditedOn = "Last Edited On"
	KeyCreatedOn    = "Created On"
)

// RawEvent is one staged attendance payload. A nil Payload means the staged
// row carried no payload; such events are filtered out of reconciliation,
// never errored.
type RawEvent struct {
	Payload map[string]string
	LoadTS  time.Time // assigned at staging time, used only as a fallback
}

// Field returns the payload value for key and whether it was present.
func (e RawEvent) Field(key string) (string, bool) {
	v, ok := e.Payload[key]
	return v, ok
}

// Record is a normalized attendance record, one per valid RawEvent.
// ID is a pure function of the five natural-key fields; every other field
// is nullable except UpdatedAt.
type Record struct {
	ID          string
	Date        *time.Time // calendar date, nil when unparsable
	FullName    *string
	Group       *string
	EntryType   *string
	TimeTS      *time.Time // wall-clock Date+Time in the reference timezone
	DurationSec *int64
	Activity    *string
	KioskName   *string
	UpdatedAt   time.Time // freshest of Last Edited On, Created On, LoadTS
}

package models

// Reminder frequencies.
const (
	FrequencyWeekly    = "weekly"
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
)

// Reminder is a recurring bill (rent, electricity, supplier dues). DueDate is
// a "YYYY-MM-DD" string. A paid reminder whose cycle has elapsed is rolled
// back to unpaid with an advanced due date on read.
type Reminder struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Amount    float64 `json:"amount"`
	Frequency string  `json:"frequency"`
	DueDate   string  `json:"dueDate"`
	Paid      bool    `json:"paid"`
	CreatedAt string  `json:"createdAt,omitempty"`
}

// ValidFrequency reports whether f is one of the supported cycles.
func ValidFrequency(f string) bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly:
		return true
	}
	return false
}

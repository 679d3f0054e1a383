package models

// Settings holds the persisted scheduler tuning.
type Settings struct {
	DayStartHour          int     `json:"dayStartHour"`          // first hour of the day sessions may start
	DayEndHour            int     `json:"dayEndHour"`            // hour by which sessions must end
	PreferredStartHour    int     `json:"preferredStartHour"`    // hour the time-of-day score peaks
	GapWeight             float64 `json:"gapWeight"`             // weight of gap quality in the overall score
	PriorityWeight        float64 `json:"priorityWeight"`        // weight of priority in the overall score
	MinSessionMinutes     int     `json:"minSessionMinutes"`     // shortest session worth scheduling
	DefaultSessionMinutes int     `json:"defaultSessionMinutes"` // candidate length before extension
	MaxSessionMinutes     int     `json:"maxSessionMinutes"`     // longest single session
	StepMinutes           int     `json:"stepMinutes"`           // candidate slide step inside a gap
	MinGapMinutes         int     `json:"minGapMinutes"`         // gaps shorter than this are ignored
	SpacingBufferMinutes  int     `json:"spacingBufferMinutes"`  // distance kept from same-course work
	DefaultHorizonDays    int     `json:"defaultHorizonDays"`
	MaxHorizonDays        int     `json:"maxHorizonDays"`
	Timezone              string  `json:"timezone"` // IANA timezone name (e.g. "America/New_York", or "Local" for system timezone)
}

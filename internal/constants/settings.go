package constants

const (
	// Scheduler settings keys
	SettingDayStartHour          = "day_start_hour"
	SettingDayEndHour            = "day_end_hour"
	SettingPreferredStartHour    = "preferred_start_hour"
	SettingGapWeight             = "gap_weight"
	SettingPriorityWeight        = "priority_weight"
	SettingMinSessionMinutes     = "min_session_min"
	SettingDefaultSessionMinutes = "default_session_min"
	SettingMaxSessionMinutes     = "max_session_min"
	SettingStepMinutes           = "step_min"
	SettingMinGapMinutes         = "min_gap_min"
	SettingSpacingBufferMinutes  = "spacing_buffer_min"
	SettingDefaultHorizonDays    = "default_horizon_days"
	SettingMaxHorizonDays        = "max_horizon_days"
	SettingTimezone              = "timezone"

	// Default Settings Values
	DefaultDayStartHour         = 7
	DefaultDayEndHour           = 23
	DefaultPreferredStartHour   = 9
	DefaultGapWeight            = 0.4
	DefaultPriorityWeight       = 0.6
	DefaultMinSessionMinutes    = 25
	DefaultSessionMinutes       = 50
	DefaultMaxSessionMinutes    = 120
	DefaultStepMinutes          = 25
	DefaultMinGapMinutes        = 25
	DefaultSpacingBufferMinutes = 15
	DefaultHorizonDays          = 14
	DefaultMaxHorizonDays       = 60
	DefaultTimezone             = "Local" // Use system local timezone by default
)

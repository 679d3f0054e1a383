package constants

const (
	// A day whose average rating is at or below LowLevelThreshold counts as
	// "low", at or above HighLevelThreshold as "high".
	LowLevelThreshold  = 2
	HighLevelThreshold = 4

	DefaultAdherenceWindowDays = 7
	DefaultRecentNotes         = 5
	MaxRecentNotes             = 50

	// Weight tuner thresholds
	TunerMinSamples            = 6
	TunerLowAdherence          = 0.5
	TunerSessionReduction      = 0.75
	TunerWeightStep            = 0.1
	TunerAdherenceGapThreshold = 0.2
	TunerSkipSkewThreshold     = 0.25
	TunerLatestPreferredHour   = 13
)

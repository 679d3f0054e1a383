package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/studyplan/internal/constants"
)

// DefaultSettings returns the built-in scheduler tuning.
func DefaultSettings() Settings {
	return Settings{
		DayStartHour:          constants.DefaultDayStartHour,
		DayEndHour:            constants.DefaultDayEndHour,
		PreferredStartHour:    constants.DefaultPreferredStartHour,
		GapWeight:             constants.DefaultGapWeight,
		PriorityWeight:        constants.DefaultPriorityWeight,
		MinSessionMinutes:     constants.DefaultMinSessionMinutes,
		DefaultSessionMinutes: constants.DefaultSessionMinutes,
		MaxSessionMinutes:     constants.DefaultMaxSessionMinutes,
		StepMinutes:           constants.DefaultStepMinutes,
		MinGapMinutes:         constants.DefaultMinGapMinutes,
		SpacingBufferMinutes:  constants.DefaultSpacingBufferMinutes,
		DefaultHorizonDays:    constants.DefaultHorizonDays,
		MaxHorizonDays:        constants.DefaultMaxHorizonDays,
		Timezone:              constants.DefaultTimezone,
	}
}

// MapToSettings converts a map of key-value pairs to a Settings struct.
// Keys missing from the map keep their default value.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := DefaultSettings()

	ints := map[string]*int{
		constants.SettingDayStartHour:          &settings.DayStartHour,
		constants.SettingDayEndHour:            &settings.DayEndHour,
		constants.SettingPreferredStartHour:    &settings.PreferredStartHour,
		constants.SettingMinSessionMinutes:     &settings.MinSessionMinutes,
		constants.SettingDefaultSessionMinutes: &settings.DefaultSessionMinutes,
		constants.SettingMaxSessionMinutes:     &settings.MaxSessionMinutes,
		constants.SettingStepMinutes:           &settings.StepMinutes,
		constants.SettingMinGapMinutes:         &settings.MinGapMinutes,
		constants.SettingSpacingBufferMinutes:  &settings.SpacingBufferMinutes,
		constants.SettingDefaultHorizonDays:    &settings.DefaultHorizonDays,
		constants.SettingMaxHorizonDays:        &settings.MaxHorizonDays,
	}
	floats := map[string]*float64{
		constants.SettingGapWeight:      &settings.GapWeight,
		constants.SettingPriorityWeight: &settings.PriorityWeight,
	}

	for key, value := range data {
		if dst, ok := ints[key]; ok {
			if _, err := fmt.Sscanf(value, "%d", dst); err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			continue
		}
		if dst, ok := floats[key]; ok {
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			*dst = v
			continue
		}
		if key == constants.SettingTimezone {
			settings.Timezone = value
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingDayStartHour:          strconv.Itoa(settings.DayStartHour),
		constants.SettingDayEndHour:            strconv.Itoa(settings.DayEndHour),
		constants.SettingPreferredStartHour:    strconv.Itoa(settings.PreferredStartHour),
		constants.SettingGapWeight:             strconv.FormatFloat(settings.GapWeight, 'f', -1, 64),
		constants.SettingPriorityWeight:        strconv.FormatFloat(settings.PriorityWeight, 'f', -1, 64),
		constants.SettingMinSessionMinutes:     strconv.Itoa(settings.MinSessionMinutes),
		constants.SettingDefaultSessionMinutes: strconv.Itoa(settings.DefaultSessionMinutes),
		constants.SettingMaxSessionMinutes:     strconv.Itoa(settings.MaxSessionMinutes),
		constants.SettingStepMinutes:           strconv.Itoa(settings.StepMinutes),
		constants.SettingMinGapMinutes:         strconv.Itoa(settings.MinGapMinutes),
		constants.SettingSpacingBufferMinutes:  strconv.Itoa(settings.SpacingBufferMinutes),
		constants.SettingDefaultHorizonDays:    strconv.Itoa(settings.DefaultHorizonDays),
		constants.SettingMaxHorizonDays:        strconv.Itoa(settings.MaxHorizonDays),
		constants.SettingTimezone:              settings.Timezone,
	}
}

// ApplyDefaultSettings applies default values to unset settings. Hours are left alone
// since zero is a valid hour.
func ApplyDefaultSettings(settings *Settings) {
	if settings.GapWeight == 0 && settings.PriorityWeight == 0 {
		settings.GapWeight = constants.DefaultGapWeight
		settings.PriorityWeight = constants.DefaultPriorityWeight
	}
	if settings.DayEndHour == 0 {
		settings.DayEndHour = constants.DefaultDayEndHour
	}
	if settings.MinSessionMinutes == 0 {
		settings.MinSessionMinutes = constants.DefaultMinSessionMinutes
	}
	if settings.DefaultSessionMinutes == 0 {
		settings.DefaultSessionMinutes = constants.DefaultSessionMinutes
	}
	if settings.MaxSessionMinutes == 0 {
		settings.MaxSessionMinutes = constants.DefaultMaxSessionMinutes
	}
	if settings.StepMinutes == 0 {
		settings.StepMinutes = constants.DefaultStepMinutes
	}
	if settings.MinGapMinutes == 0 {
		settings.MinGapMinutes = constants.DefaultMinGapMinutes
	}
	if settings.DefaultHorizonDays == 0 {
		settings.DefaultHorizonDays = constants.DefaultHorizonDays
	}
	if settings.MaxHorizonDays == 0 {
		settings.MaxHorizonDays = constants.DefaultMaxHorizonDays
	}
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
}

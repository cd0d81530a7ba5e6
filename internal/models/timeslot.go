package models

import "strings"

// Weekday index used across the timetable grid. 1 = Monday .. 5 = Friday.
const (
	MinDay = 1
	MaxDay = 5
)

var dayIndexMap = map[int]string{
	1: "MONDAY",
	2: "TUESDAY",
	3: "WEDNESDAY",
	4: "THURSDAY",
	5: "FRIDAY",
}

var dayNameIndex = map[string]int{
	"MONDAY":    1,
	"TUESDAY":   2,
	"WEDNESDAY": 3,
	"THURSDAY":  4,
	"FRIDAY":    5,
}

// Teaching period labels by slot index, matching the institute's bell schedule.
var slotLabels = map[int]string{
	1: "09:00 - 09:50",
	2: "10:00 - 10:50",
	3: "11:00 - 11:50",
	4: "12:00 - 12:50",
	5: "13:00 - 13:50",
	6: "14:00 - 14:50",
	7: "15:00 - 15:50",
}

// DayName returns the canonical weekday name for an index.
func DayName(day int) string {
	if name, ok := dayIndexMap[day]; ok {
		return name
	}
	return "MONDAY"
}

// DayIndex resolves a weekday name to its index, 0 when unknown.
func DayIndex(name string) int {
	return dayNameIndex[strings.ToUpper(strings.TrimSpace(name))]
}

// SlotLabel returns the wall-clock label for a slot index, empty when unknown.
func SlotLabel(slot int) string {
	return slotLabels[slot]
}

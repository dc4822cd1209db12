package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical day format used across schedules and reservations.
const DateLayout = "2006-01-02"

// TimeLayout is the slot time-of-day label format.
const TimeLayout = "15:04"

// Slot is one bookable time point inside a provider's day.
type Slot struct {
	Time          string `bson:"time" json:"time"`                                     // "HH:MM" label, minutes from midnight implied
	Occupied      bool   `bson:"occupied" json:"occupied"`                             // true iff exactly one active reservation holds it
	ReservationID string `bson:"reservationId,omitempty" json:"reservationId,omitempty"` // back-reference to the holding reservation
}

// DaySchedule is the slot grid for one (provider, date) pair. The slot time
// set is fixed once the document is created; only occupancy changes.
type DaySchedule struct {
	ProviderID string    `bson:"providerId" json:"providerId"`
	Date       string    `bson:"date" json:"date"` // "YYYY-MM-DD"
	Slots      []Slot    `bson:"slots" json:"slots"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

// WorkBlock is one contiguous working-hour range in a provider's day,
// e.g. the morning block 09:00-12:00.
type WorkBlock struct {
	Start int // minutes from midnight, inclusive
	End   int // minutes from midnight, exclusive
}

// ParseWorkBlocks parses a comma separated "HH:MM-HH:MM" block list as found
// in configuration.
func ParseWorkBlocks(spec string) ([]WorkBlock, error) {
	var blocks []WorkBlock
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bounds := strings.Split(part, "-")
		if len(bounds) != 2 {
			return nil, fmt.Errorf("invalid work block %q", part)
		}
		start, err := minutesFromMidnight(bounds[0])
		if err != nil {
			return nil, fmt.Errorf("invalid work block %q: %w", part, err)
		}
		end, err := minutesFromMidnight(bounds[1])
		if err != nil {
			return nil, fmt.Errorf("invalid work block %q: %w", part, err)
		}
		if end <= start {
			return nil, fmt.Errorf("work block %q ends before it starts", part)
		}
		blocks = append(blocks, WorkBlock{Start: start, End: end})
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("no work blocks in %q", spec)
	}
	return blocks, nil
}

// BuildDaySlots cuts the working-hour blocks into an ordered, unoccupied slot
// grid at stepMinutes increments. Partial trailing increments are dropped.
func BuildDaySlots(blocks []WorkBlock, stepMinutes int) []Slot {
	var slots []Slot
	for _, b := range blocks {
		for m := b.Start; m+stepMinutes <= b.End; m += stepMinutes {
			slots = append(slots, Slot{Time: timeLabel(m)})
		}
	}
	return slots
}

// SlotTimes returns just the time labels of the given slots.
func SlotTimes(slots []Slot) []string {
	times := make([]string, len(slots))
	for i, s := range slots {
		times[i] = s.Time
	}
	return times
}

// CombineDateTime resolves a (date, time label) pair to an absolute local
// timestamp.
func CombineDateTime(date, timeOfDay string) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+timeOfDay, time.Local)
}

// IsPastDate reports whether date falls strictly before now's calendar day.
// Same-day booking is allowed; only earlier days are in the past.
func IsPastDate(date string, now time.Time) (bool, error) {
	d, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return false, err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return d.Before(today), nil
}

func minutesFromMidnight(label string) (int, error) {
	t, err := time.Parse(TimeLayout, strings.TrimSpace(label))
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func timeLabel(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

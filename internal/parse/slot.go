package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"huts4u-backend/internal/availability"
)

var (
	hoursRe  = regexp.MustCompile(`^(?:ratefor)?(\d+)\s*(?:h|hr|hrs|hour|hours)$`)
	spacesRe = regexp.MustCompile(`[\s_-]+`)
)

// ParseSlot accepts the slot keys used by the booking front-end and the
// backend ("threeHour", "rateFor3Hour", "3hrs", "3 hours", "overnight",
// "1 night") and returns the canonical slot.
func ParseSlot(raw string) (availability.Slot, error) {
	s := strings.ToLower(spacesRe.ReplaceAllString(strings.TrimSpace(raw), ""))

	switch s {
	case "threehour":
		return availability.SlotThreeHour, nil
	case "sixhour":
		return availability.SlotSixHour, nil
	case "twelvehour":
		return availability.SlotTwelveHour, nil
	case "overnight", "night", "1night", "ratefor1night", "fullday":
		return availability.SlotOvernight, nil
	}

	if m := hoursRe.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			switch n {
			case 3:
				return availability.SlotThreeHour, nil
			case 6:
				return availability.SlotSixHour, nil
			case 12:
				return availability.SlotTwelveHour, nil
			case 24:
				return availability.SlotOvernight, nil
			}
		}
	}
	return "", fmt.Errorf("unknown slot: %q", raw)
}

// ParseBookingType parses "hourly" or "overnight". An empty value defaults
// to overnight.
func ParseBookingType(raw string) (availability.BookingType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "overnight", "night", "nightly":
		return availability.BookingOvernight, nil
	case "hourly", "hour", "hours":
		return availability.BookingHourly, nil
	}
	return "", fmt.Errorf("unknown booking type: %q", raw)
}

// ParseIDs parses a comma separated list of positive ids, skipping blanks.
func ParseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

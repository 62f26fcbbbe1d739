package appointments

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTime12Hour converts a 24-hour "HH:MM" string to its 12-hour display
// form, e.g. "13:00" -> "1:00 PM", "00:30" -> "12:30 AM". Malformed input is
// reported as an error rather than silently producing garbage.
func FormatTime12Hour(value string) (string, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return "", fmt.Errorf("appointments: malformed time %q", value)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("appointments: malformed time %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("appointments: malformed time %q", value)
	}

	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, minute, suffix), nil
}

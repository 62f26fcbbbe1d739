package call

import (
	"regexp"
	"strings"
)

// IntentKind classifies a free-text user turn.
type IntentKind string

const (
	IntentConfirm                IntentKind = "confirm"
	IntentCancel                 IntentKind = "cancel"
	IntentReschedule             IntentKind = "reschedule"
	IntentRescheduleNeedsDetails IntentKind = "reschedule_needs_details"
	IntentUnrecognized           IntentKind = "unrecognized"
)

// Intent is the parsed user action. Date and Time are only set for
// IntentReschedule.
type Intent struct {
	Kind IntentKind
	Date string
	Time string
}

var (
	datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	timePattern = regexp.MustCompile(`\d{2}:\d{2}`)
	yesPattern  = regexp.MustCompile(`\byes\b`)
	noPattern   = regexp.MustCompile(`\bno\b`)
)

// ParseIntent maps free text onto one of the dialogue actions. It is a
// best-effort keyword matcher, not a grammar; the precedence
// (confirm > cancel > reschedule) is fixed, so a message containing both
// "confirm" and "cancel" resolves to confirm. "yes" and "no" are matched on
// word boundaries so phrases like "not sure" do not read as a cancellation.
func ParseIntent(text string) Intent {
	input := strings.ToLower(text)

	switch {
	case strings.Contains(input, "confirm") || yesPattern.MatchString(input):
		return Intent{Kind: IntentConfirm}
	case strings.Contains(input, "cancel") || noPattern.MatchString(input):
		return Intent{Kind: IntentCancel}
	case strings.Contains(input, "reschedule") || strings.Contains(input, "change"):
		date := datePattern.FindString(input)
		tm := timePattern.FindString(input)
		if date != "" && tm != "" {
			return Intent{Kind: IntentReschedule, Date: date, Time: tm}
		}
		// Both values are needed; the controller asks for them through a
		// dedicated follow-up step.
		return Intent{Kind: IntentRescheduleNeedsDetails}
	default:
		return Intent{Kind: IntentUnrecognized}
	}
}

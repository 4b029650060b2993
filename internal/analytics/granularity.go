package analytics

import "fmt"

// Granularity is the bucket size for usage trending. The value is spliced
// into date_trunc, so it is validated against a closed allow-list and
// rejected loudly instead of silently defaulting.
type Granularity string

const (
	GranularityHour Granularity = "hour"
	GranularityDay  Granularity = "day"
	GranularityWeek Granularity = "week"
)

type InvalidGranularityError struct {
	Value string
}

func (e *InvalidGranularityError) Error() string {
	return fmt.Sprintf("invalid granularity %q: must be one of hour, day, week", e.Value)
}

func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case GranularityHour, GranularityDay, GranularityWeek:
		return Granularity(s), nil
	}
	return "", &InvalidGranularityError{Value: s}
}

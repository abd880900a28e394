package lottery

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var ErrEndTimeFormat = errors.New("end time must look like YYYY-MM-DD HH:mm, MM-DD HH:mm or HH:mm")

var (
	fullDate  = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2} \d{1,2}:\d{1,2}$`)
	monthDay  = regexp.MustCompile(`^\d{1,2}-\d{1,2} \d{1,2}:\d{1,2}$`)
	clockOnly = regexp.MustCompile(`^\d{1,2}:\d{1,2}$`)
)

const endTimeLayout = "2006-1-2 15:4"

// ParseEndTime reads a wall-clock end time in loc and returns it in UTC.
// Missing year or date parts are taken from now.
func ParseEndTime(input string, now time.Time, loc *time.Location) (time.Time, error) {
	local := now.In(loc)

	var value string
	switch {
	case fullDate.MatchString(input):
		value = input
	case monthDay.MatchString(input):
		value = strconv.Itoa(local.Year()) + "-" + input
	case clockOnly.MatchString(input):
		value = local.Format("2006-1-2") + " " + input
	default:
		return time.Time{}, ErrEndTimeFormat
	}

	t, err := time.ParseInLocation(endTimeLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrEndTimeFormat, err)
	}

	return t.UTC(), nil
}

// Package timezone pins every stored and rendered timestamp to APP_TIMEZONE.
package timezone

import (
	"errors"
	"fmt"
	"time"

	"busline/config"

	"github.com/rs/zerolog/log"
)

// LocalDateTimeLayout is accepted wherever a query takes a timestamp. It carries no
// offset, so it is read in the application timezone.
const LocalDateTimeLayout = "2006-01-02T15:04:05"

var ErrInvalidTimestamp = errors.New("timestamp must be RFC3339 or " + LocalDateTimeLayout)

var location = time.UTC

func init() {
	name := config.Get().App.Timezone
	if name == "" {
		log.Warn().Msg("APP_TIMEZONE not set, schedules are rendered in UTC")

		return
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("unknown IANA timezone, schedules are rendered in UTC")

		return
	}

	location = loc
}

func Location() *time.Location {
	return location
}

func Now() time.Time {
	return time.Now().In(location)
}

// Format renders t in the application timezone.
func Format(t time.Time, layout string) string {
	return t.In(location).Format(layout)
}

// Parse reads an offset-less value in the application timezone.
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, location) //nolint:wrapcheck
}

// ParseTimestamp accepts an RFC3339 instant or a LocalDateTimeLayout wall-clock time.
func ParseTimestamp(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	t, err := Parse(LocalDateTimeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
	}

	return t, nil
}

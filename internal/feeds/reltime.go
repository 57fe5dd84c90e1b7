package feeds

import (
	"fmt"
	"time"
)

// Relative renders how long ago t was, in whole units: seconds under a
// minute, minutes under an hour, hours under two days, days beyond.
func Relative(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// relativeOrEmpty tolerates the nil timestamps gofeed produces for
// unparseable dates.
func relativeOrEmpty(t *time.Time, now time.Time) string {
	if t == nil {
		return ""
	}
	return Relative(*t, now)
}

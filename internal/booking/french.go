package booking

import (
	"fmt"
	"time"
)

var frenchDays = [...]string{
	time.Sunday:    "Dimanche",
	time.Monday:    "Lundi",
	time.Tuesday:   "Mardi",
	time.Wednesday: "Mercredi",
	time.Thursday:  "Jeudi",
	time.Friday:    "Vendredi",
	time.Saturday:  "Samedi",
}

var frenchMonths = [...]string{
	time.January:   "janvier",
	time.February:  "février",
	time.March:     "mars",
	time.April:     "avril",
	time.May:       "mai",
	time.June:      "juin",
	time.July:      "juillet",
	time.August:    "août",
	time.September: "septembre",
	time.October:   "octobre",
	time.November:  "novembre",
	time.December:  "décembre",
}

// FrenchTime renders a slot start for a spoken confirmation,
// e.g. "Mardi 3 septembre à 14:00".
func FrenchTime(t time.Time) string {
	return fmt.Sprintf("%s %d %s à %s",
		frenchDays[t.Weekday()], t.Day(), frenchMonths[t.Month()], t.Format("15:04"))
}

package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// Practitioner identifies a clinician who owns slots in the catalog.
type Practitioner struct {
	ID   string
	Name string
}

// DefaultPractitioners is the clinic's standing roster.
var DefaultPractitioners = []Practitioner{
	{ID: "dr-dubois", Name: "Dr. Marie Dubois"},
	{ID: "dr-martin", Name: "Dr. Pierre Martin"},
	{ID: "dr-bernard", Name: "Dr. Sophie Bernard"},
}

// SeedConfig controls slot generation at catalog initialization.
type SeedConfig struct {
	// Slots, when non-nil, is loaded as-is and no grid is generated. This is
	// the hook for an external scheduling authority (and for tests).
	Slots []Slot

	// Days is the length of the seeded horizon, counted from tomorrow.
	// Weekends produce no slots.
	Days int
	// Practitioners is how many clinicians get slots. The default roster is
	// used first; beyond it, names are generated.
	Practitioners int
	// Motives defaults to DefaultMotives when nil.
	Motives []Motive
	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// slot start hours within a working day: mornings 9-11, afternoons 14-16.
var slotHours = []int{9, 10, 11, 14, 15, 16}

func generateSlots(cfg SeedConfig) []Slot {
	if cfg.Slots != nil {
		return cfg.Slots
	}
	if cfg.Days <= 0 {
		cfg.Days = 14
	}
	if cfg.Practitioners <= 0 {
		cfg.Practitioners = len(DefaultPractitioners)
	}
	motives := cfg.Motives
	if motives == nil {
		motives = DefaultMotives
	}
	now := time.Now
	if cfg.Now != nil {
		now = cfg.Now
	}

	practitioners := rosterOf(cfg.Practitioners)

	// First seeded day is tomorrow, so the whole grid is in the future.
	t := now()
	base := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)

	var slots []Slot
	for _, motive := range motives {
		duration := time.Duration(motive.DurationMinutes) * time.Minute

		for dayOffset := 0; dayOffset < cfg.Days; dayOffset++ {
			day := base.AddDate(0, 0, dayOffset)
			if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
				continue
			}

			for _, prac := range practitioners {
				for _, hour := range slotHours {
					start := day.Add(time.Duration(hour) * time.Hour)
					slots = append(slots, Slot{
						ID:               uuid.New(),
						StartTime:        start,
						EndTime:          start.Add(duration),
						PractitionerID:   prac.ID,
						PractitionerName: prac.Name,
						MotiveID:         motive.ID,
						Available:        true,
					})
				}
			}
		}
	}

	return slots
}

// rosterOf returns count practitioners, extending the default roster with
// generated clinicians when asked for more.
func rosterOf(count int) []Practitioner {
	if count <= len(DefaultPractitioners) {
		return DefaultPractitioners[:count]
	}

	roster := make([]Practitioner, 0, count)
	roster = append(roster, DefaultPractitioners...)

	seen := make(map[string]bool, count)
	for _, p := range roster {
		seen[p.ID] = true
	}

	for i := len(roster); i < count; i++ {
		name := fmt.Sprintf("Dr. %s", gofakeit.Name())
		id := practitionerID(name)
		for n := 2; seen[id]; n++ {
			id = fmt.Sprintf("%s-%d", practitionerID(name), n)
		}
		seen[id] = true
		roster = append(roster, Practitioner{ID: id, Name: name})
	}

	return roster
}

func practitionerID(name string) string {
	last := name
	if i := strings.LastIndex(name, " "); i >= 0 {
		last = name[i+1:]
	}
	return "dr-" + strings.ToLower(last)
}

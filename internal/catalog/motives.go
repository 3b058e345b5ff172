package catalog

// DefaultMotives is the clinic's visit-motive table. Slot durations are
// derived from it at seed time.
var DefaultMotives = []Motive{
	{
		ID:              "first_consultation",
		Name:            "Première consultation d'ophtalmologie",
		DurationMinutes: 45,
		Description:     "Première visite pour examen complet de la vue",
	},
	{
		ID:              "follow_up",
		Name:            "Consultation de suivi d'ophtalmologie",
		DurationMinutes: 30,
		Description:     "Visite de contrôle après traitement",
	},
	{
		ID:              "glasses_renewal",
		Name:            "Renouvellement de lunettes",
		DurationMinutes: 20,
		Description:     "Examen pour renouvellement de prescription",
	},
	{
		ID:              "lens_trial",
		Name:            "Essai de lentilles",
		DurationMinutes: 30,
		Description:     "Premier essai d'adaptation aux lentilles",
	},
	{
		ID:              "lens_checkup",
		Name:            "Bilan lentilles - 1 mois",
		DurationMinutes: 20,
		Description:     "Contrôle après un mois de port de lentilles",
	},
	{
		ID:              "emergency",
		Name:            "Urgence oculaire",
		DurationMinutes: 30,
		Description:     "Consultation d'urgence pour problème oculaire",
	},
	{
		ID:              "cataract_surgery",
		Name:            "Opération Cataracte",
		DurationMinutes: 60,
		Description:     "Consultation pré-opératoire pour cataracte",
	},
}

// MotiveByID looks up a motive in DefaultMotives. Returns nil when unknown.
func MotiveByID(id string) *Motive {
	for i := range DefaultMotives {
		if DefaultMotives[i].ID == id {
			return &DefaultMotives[i]
		}
	}
	return nil
}

package synth

import "math/rand/v2"

// frenchNameProbability is the share of generated patients with a French
// name.
const frenchNameProbability = 0.20

var (
	englishFirstNames = []string{
		"James", "John", "Robert", "Michael", "William", "David", "Richard", "Joseph",
		"Thomas", "Daniel", "Matthew", "Mark", "Paul", "Andrew", "Kevin", "George",
		"Mary", "Patricia", "Jennifer", "Linda", "Elizabeth", "Susan", "Sarah", "Karen",
		"Nancy", "Margaret", "Emily", "Laura", "Helen", "Anna", "Grace", "Alice",
	}
	englishLastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Miller", "Davis", "Wilson",
		"Anderson", "Taylor", "Moore", "Jackson", "White", "Harris", "Clark", "Lewis",
		"Walker", "Young", "Allen", "King", "Wright", "Hill", "Green", "Baker",
	}
	// ASCII spellings keep PN values inside the default character repertoire.
	frenchFirstNames = []string{
		"Jean", "Pierre", "Michel", "Andre", "Philippe", "Alain", "Jacques", "Francois",
		"Nicolas", "Olivier", "Laurent", "Julien", "Marie", "Nathalie", "Isabelle", "Sylvie",
		"Sophie", "Celine", "Julie", "Claire", "Camille", "Manon", "Lea", "Lucie",
	}
	frenchLastNames = []string{
		"Martin", "Bernard", "Dubois", "Robert", "Richard", "Petit", "Durand", "Leroy",
		"Moreau", "Simon", "Laurent", "Lefebvre", "Michel", "Roux", "Fournier", "Girard",
	}
)

// patientName draws a person name in DICOM PN form, "LAST^FIRST".
func patientName(rng *rand.Rand) string {
	first, last := englishFirstNames, englishLastNames
	if rng.Float64() < frenchNameProbability {
		first, last = frenchFirstNames, frenchLastNames
	}
	return last[rng.IntN(len(last))] + "^" + first[rng.IntN(len(first))]
}

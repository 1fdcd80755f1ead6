package data

// FacultyInfo maps detection patterns to a canonical faculty name.
// Pattern is an uncompiled regular expression evaluated against the
// normalized utterance (lowercase, accents stripped). Order matters:
// the first matching entry wins and at most one faculty is extracted.
type FacultyInfo struct {
	Name    string // canonical normalized name (e.g., "ingenieria")
	Pattern string // detection regex over normalized text
}

// AllFaculties contains all faculty definitions with their detection patterns.
// Patterns must not fire on bare program mentions: "ingenieria de sistemas"
// names a program, not the faculty, so the faculty pattern requires the
// "facultad de" prefix or the plural form.
var AllFaculties = []FacultyInfo{
	{
		Name:    "ingenieria",
		Pattern: `facultad\s+de\s+ingenieria|\bingenierias\b`,
	},
	{
		Name:    "ciencias agrarias y del ambiente",
		Pattern: `ciencias\s+agrarias|facultad\s+de\s+agrarias`,
	},
	{
		Name:    "ciencias empresariales",
		Pattern: `ciencias\s+empresariales|facultad\s+de\s+empresariales|\bempresariales\b`,
	},
	{
		Name:    "ciencias de la salud",
		Pattern: `ciencias\s+de\s+la\s+salud|facultad\s+de\s+salud`,
	},
	{
		Name:    "educacion, artes y humanidades",
		Pattern: `educacion,?\s+artes\s+y\s+humanidades|facultad\s+de\s+educacion|\bhumanidades\b`,
	},
	{
		Name:    "ciencias basicas",
		Pattern: `ciencias\s+basicas|facultad\s+de\s+basicas`,
	},
}

// FindFaculty returns the faculty entry for a canonical name, or nil.
func FindFaculty(name string) *FacultyInfo {
	for i := range AllFaculties {
		if AllFaculties[i].Name == name {
			return &AllFaculties[i]
		}
	}
	return nil
}

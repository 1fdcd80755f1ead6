// Package data provides static data definitions for the application.
// These data are maintained manually and updated each admissions cycle.
package data

// ProgramInfo contains static information about an academic program.
// Name must exactly match the program name in the academic API (normalized:
// lowercase, no accents) for correct cache and filter matching.
//
// Alias tiers drive entity extraction precedence: full phrases are tried
// before partial forms, and partial forms before bare keywords. Within a
// tier, table order decides ties.
type ProgramInfo struct {
	Name     string   // canonical normalized name (e.g., "ingenieria de sistemas")
	Faculty  string   // canonical faculty the program belongs to
	Phrases  []string // full multi-word phrases
	Partials []string // abbreviated or partial forms
	Keywords []string // single bare keywords
}

// AllPrograms contains all program definitions with their extraction aliases.
// Order matters: earlier entries win ties within an alias tier, so broader
// keywords (e.g., "industrial") must appear on the program they should
// resolve to.
var AllPrograms = []ProgramInfo{
	// ============================================
	// Facultad de Ingenieria
	// ============================================
	{
		Name:     "ingenieria de sistemas",
		Faculty:  "ingenieria",
		Phrases:  []string{"ingenieria de sistemas", "ingenieria en sistemas"},
		Partials: []string{"ing sistemas", "ing. sistemas", "ingenieria sistemas"},
		Keywords: []string{"sistemas"},
	},
	{
		Name:     "ingenieria industrial",
		Faculty:  "ingenieria",
		Phrases:  []string{"ingenieria industrial"},
		Partials: []string{"ing industrial", "ing. industrial"},
		Keywords: []string{"industrial"},
	},
	{
		Name:     "ingenieria civil",
		Faculty:  "ingenieria",
		Phrases:  []string{"ingenieria civil"},
		Partials: []string{"ing civil", "ing. civil"},
		Keywords: []string{"civil"},
	},
	{
		Name:     "ingenieria electronica",
		Faculty:  "ingenieria",
		Phrases:  []string{"ingenieria electronica"},
		Partials: []string{"ing electronica", "ing. electronica"},
		Keywords: []string{"electronica"},
	},
	{
		Name:     "ingenieria electromecanica",
		Faculty:  "ingenieria",
		Phrases:  []string{"ingenieria electromecanica"},
		Partials: []string{"ing electromecanica"},
		Keywords: []string{"electromecanica"},
	},
	{
		Name:     "ingenieria de minas",
		Faculty:  "ingenieria",
		Phrases:  []string{"ingenieria de minas"},
		Partials: []string{"ing minas", "ing. minas"},
		Keywords: []string{"minas"},
	},

	// ============================================
	// Facultad de Ciencias Agrarias y del Ambiente
	// ============================================
	{
		Name:     "ingenieria ambiental",
		Faculty:  "ciencias agrarias y del ambiente",
		Phrases:  []string{"ingenieria ambiental"},
		Partials: []string{"ing ambiental"},
		Keywords: []string{"ambiental"},
	},
	{
		Name:     "ingenieria agroindustrial",
		Faculty:  "ciencias agrarias y del ambiente",
		Phrases:  []string{"ingenieria agroindustrial"},
		Partials: []string{"ing agroindustrial"},
		Keywords: []string{"agroindustrial"},
	},
	{
		Name:     "ingenieria agronomica",
		Faculty:  "ciencias agrarias y del ambiente",
		Phrases:  []string{"ingenieria agronomica"},
		Partials: []string{"ing agronomica"},
		Keywords: []string{"agronomica", "agronomia"},
	},

	// ============================================
	// Facultad de Ciencias Empresariales
	// ============================================
	{
		Name:     "administracion de empresas",
		Faculty:  "ciencias empresariales",
		Phrases:  []string{"administracion de empresas"},
		Partials: []string{"admon de empresas", "admon empresas", "adm empresas"},
		Keywords: []string{"administracion"},
	},
	{
		Name:     "contaduria publica",
		Faculty:  "ciencias empresariales",
		Phrases:  []string{"contaduria publica"},
		Partials: []string{},
		Keywords: []string{"contaduria"},
	},
	{
		Name:     "comercio internacional",
		Faculty:  "ciencias empresariales",
		Phrases:  []string{"comercio internacional"},
		Partials: []string{},
		Keywords: []string{"comercio"},
	},

	// ============================================
	// Facultad de Ciencias de la Salud
	// ============================================
	{
		Name:     "enfermeria",
		Faculty:  "ciencias de la salud",
		Phrases:  []string{},
		Partials: []string{},
		Keywords: []string{"enfermeria"},
	},
	{
		Name:     "seguridad y salud en el trabajo",
		Faculty:  "ciencias de la salud",
		Phrases:  []string{"seguridad y salud en el trabajo"},
		Partials: []string{"seguridad y salud"},
		Keywords: []string{},
	},

	// ============================================
	// Facultad de Educacion, Artes y Humanidades
	// ============================================
	{
		Name:     "derecho",
		Faculty:  "educacion, artes y humanidades",
		Phrases:  []string{},
		Partials: []string{},
		Keywords: []string{"derecho"},
	},
	{
		Name:     "trabajo social",
		Faculty:  "educacion, artes y humanidades",
		Phrases:  []string{"trabajo social"},
		Partials: []string{},
		Keywords: []string{},
	},
	{
		Name:     "comunicacion social",
		Faculty:  "educacion, artes y humanidades",
		Phrases:  []string{"comunicacion social"},
		Partials: []string{},
		Keywords: []string{"comunicacion"},
	},
	{
		Name:     "arquitectura",
		Faculty:  "educacion, artes y humanidades",
		Phrases:  []string{},
		Partials: []string{},
		Keywords: []string{"arquitectura"},
	},

	// ============================================
	// Facultad de Ciencias Basicas
	// ============================================
	{
		Name:     "licenciatura en matematicas",
		Faculty:  "ciencias basicas",
		Phrases:  []string{"licenciatura en matematicas"},
		Partials: []string{"lic matematicas", "lic. matematicas"},
		Keywords: []string{"matematicas"},
	},
	{
		Name:     "quimica",
		Faculty:  "ciencias basicas",
		Phrases:  []string{},
		Partials: []string{},
		Keywords: []string{"quimica"},
	},
}

// FindProgram returns the program entry for a canonical name, or nil.
func FindProgram(name string) *ProgramInfo {
	for i := range AllPrograms {
		if AllPrograms[i].Name == name {
			return &AllPrograms[i]
		}
	}
	return nil
}

package data

// SemesterOrdinals maps Spanish ordinal words (normalized) to semester
// digits. The academic programs run semesters 1 through 10.
var SemesterOrdinals = map[string]string{
	"primer":    "1",
	"primero":   "1",
	"1er":       "1",
	"segundo":   "2",
	"2do":       "2",
	"tercer":    "3",
	"tercero":   "3",
	"3er":       "3",
	"cuarto":    "4",
	"4to":       "4",
	"quinto":    "5",
	"5to":       "5",
	"sexto":     "6",
	"6to":       "6",
	"septimo":   "7",
	"7mo":       "7",
	"octavo":    "8",
	"8vo":       "8",
	"noveno":    "9",
	"9no":       "9",
	"decimo":    "10",
	"10mo":      "10",
	"ultimo":    "10",
	"penultimo": "9",
}

// ScheduleTrackInfo maps substrings to a canonical schedule track.
type ScheduleTrackInfo struct {
	Name    string   // canonical track ("diurna", "nocturna", "distancia")
	Matches []string // substrings over normalized text, any of which detects it
}

// AllScheduleTracks contains the schedule track detection table.
// Multiple tracks may be extracted from one utterance.
var AllScheduleTracks = []ScheduleTrackInfo{
	{Name: "diurna", Matches: []string{"diurna", "diurno", "jornada de dia", "en el dia", "de dia"}},
	{Name: "nocturna", Matches: []string{"nocturna", "nocturno", "jornada de noche", "en la noche", "de noche"}},
	{Name: "distancia", Matches: []string{"distancia", "virtual", "a distancia"}},
}

// AdmissionKeywords detect ADMISSIONS_INFO independently of other entities.
// Substring tests over the normalized utterance.
var AdmissionKeywords = []string{
	"admision",
	"admisiones",
	"inscripcion",
	"inscripciones",
	"inscribirme",
	"inscribirse",
	"matricula",
	"matricularme",
	"simulador de puntaje",
	"simulador",
	"puntaje de corte",
	"puntaje",
	"ponderado",
	"icfes",
	"saber 11",
	"requisitos de ingreso",
	"requisitos para entrar",
	"como ingreso",
	"como entrar",
	"pin de pago",
	"el pin",
	"formulario",
	"fechas de inscripcion",
	"calendario de admision",
}

package nlu

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/admibot/admibot-go/internal/data"
)

// ruleSet holds every compiled rule table. All matching happens over the
// normalized utterance (lowercase, accents stripped), in a fixed order, so
// extraction is deterministic.
type ruleSet struct {
	greetings []*regexp.Regexp
	farewells []*regexp.Regexp

	programPhrases  []programAlias
	programPartials []programAlias
	programKeywords []programKeyword

	semesterAfter  *regexp.Regexp
	semesterBefore *regexp.Regexp

	faculties []facultyRule
	topics    []topicRule
}

type programAlias struct {
	alias   string
	program string
}

type programKeyword struct {
	pattern *regexp.Regexp
	program string
}

type facultyRule struct {
	pattern *regexp.Regexp
	faculty string
}

type topicRule struct {
	pattern *regexp.Regexp
	intent  Intent
}

// Greeting and farewell patterns are anchored on both ends: a greeting
// followed by a real question ("hola, quiero el pensum de sistemas") must
// not short-circuit extraction.
var greetingPatterns = []string{
	`^[¡!]*hola+[\s,!.]*$`,
	`^[¡!]*(hola[\s,]+)?(muy\s+)?buen(os|as)\s+(dias|tardes|noches)[\s!.]*$`,
	`^[¡!]*(buenas|saludos|hey|holi)[\s!.]*$`,
	`^[¡!¿?]*(hola[\s,]+)?(que\s+tal|como\s+esta[sn]?)[\s?!.]*$`,
}

var farewellPatterns = []string{
	`^[¡!]*(chao|chau|adios|bye|hasta\s+luego|hasta\s+pronto|nos\s+vemos|feliz\s+(dia|tarde|noche))[\s!.]*$`,
	`^[¡!]*(ok[\s,]+)?(muchas\s+|mil\s+)?gracias[\s!.]*$`,
	`^[¡!]*gracias[\s,]+(chao|adios|hasta\s+luego)[\s!.]*$`,
}

// topicPatterns map utterance vocabulary to topic intents. Evaluated
// independently and in order; several may fire on one utterance.
var topicPatterns = []struct {
	pattern string
	intent  Intent
}{
	{`pensum|plan\s+de\s+estudios|malla\s+curricular|\bmaterias?\b|\basignaturas?\b|curricul`, IntentCurriculumInfo},
	{`\bcarreras?\b|\bprogramas?\b|perfil\s+(profesional|ocupacional)|de\s+que\s+trata|duracion`, IntentProgramInfo},
	{`(materia|asignatura|curso)\s+(de|del|llamad[oa])\b`, IntentCourseInfo},
	{`\bfacultad\b`, IntentFacultyInfo},
	{`(que|cuales|cuantas)\s+facultades|facultades\s+(hay|tienen?|ofrecen?|existen)|lista(do)?\s+de\s+facultades`, IntentListFaculties},
	{`(que|cuales|cuantas)\s+(carreras|programas)|(carreras|programas)\s+(hay|tienen?|ofrecen?|existen)|oferta\s+academica|lista(do)?\s+de\s+(carreras|programas)`, IntentListPrograms},
	{`(que|cuales|cuantas)\s+materias|materias\s+(hay|tienen?|ven?)|lista(do)?\s+de\s+materias`, IntentListCourses},
	{`\bcreditos?\b`, IntentCredits},
	{`\bjornadas?\b|\bhorarios?\b`, IntentScheduleTrack},
}

func newRuleSet() *ruleSet {
	rs := &ruleSet{
		semesterAfter:  regexp.MustCompile(`(?:semestre|nivel)\s*(\d{1,2})`),
		semesterBefore: regexp.MustCompile(`(\d{1,2})\s*(?:°|º)?\s*semestre`),
	}

	for _, p := range greetingPatterns {
		rs.greetings = append(rs.greetings, regexp.MustCompile(p))
	}
	for _, p := range farewellPatterns {
		rs.farewells = append(rs.farewells, regexp.MustCompile(p))
	}

	for _, prog := range data.AllPrograms {
		for _, phrase := range prog.Phrases {
			rs.programPhrases = append(rs.programPhrases, programAlias{alias: phrase, program: prog.Name})
		}
		for _, partial := range prog.Partials {
			rs.programPartials = append(rs.programPartials, programAlias{alias: partial, program: prog.Name})
		}
		for _, kw := range prog.Keywords {
			rs.programKeywords = append(rs.programKeywords, programKeyword{
				pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`),
				program: prog.Name,
			})
		}
	}

	for _, f := range data.AllFaculties {
		rs.faculties = append(rs.faculties, facultyRule{
			pattern: regexp.MustCompile(f.Pattern),
			faculty: f.Name,
		})
	}

	for _, tp := range topicPatterns {
		rs.topics = append(rs.topics, topicRule{
			pattern: regexp.MustCompile(tp.pattern),
			intent:  tp.intent,
		})
	}

	return rs
}

func (rs *ruleSet) matchGreeting(norm string) bool {
	for _, re := range rs.greetings {
		if re.MatchString(norm) {
			return true
		}
	}
	return false
}

func (rs *ruleSet) matchFarewell(norm string) bool {
	for _, re := range rs.farewells {
		if re.MatchString(norm) {
			return true
		}
	}
	return false
}

// resolveProgram applies the three alias tiers in precedence order:
// full phrases, then partial forms, then bare keywords. The first tier
// with a hit wins and only one program is ever returned.
func (rs *ruleSet) resolveProgram(norm string) (string, bool) {
	for _, a := range rs.programPhrases {
		if strings.Contains(norm, a.alias) {
			return a.program, true
		}
	}
	for _, a := range rs.programPartials {
		if strings.Contains(norm, a.alias) {
			return a.program, true
		}
	}
	for _, kw := range rs.programKeywords {
		if kw.pattern.MatchString(norm) {
			return kw.program, true
		}
	}
	return "", false
}

// resolveSemester maps ordinal words through the fixed lookup, scanning
// tokens left to right, and falls back to the numeric patterns. At most
// one semester is extracted.
func (rs *ruleSet) resolveSemester(norm string) (string, bool) {
	for _, token := range strings.Fields(norm) {
		token = strings.Trim(token, ".,;:!?")
		if digit, ok := data.SemesterOrdinals[token]; ok {
			return digit, true
		}
	}

	for _, re := range []*regexp.Regexp{rs.semesterAfter, rs.semesterBefore} {
		if m := re.FindStringSubmatch(norm); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= 10 {
				return m[1], true
			}
		}
	}

	return "", false
}

// resolveTracks collects every schedule track mentioned. Unlike programs
// and faculties, multiple tracks are allowed.
func (rs *ruleSet) resolveTracks(norm string) []string {
	var tracks []string
	for _, info := range data.AllScheduleTracks {
		for _, substr := range info.Matches {
			if strings.Contains(norm, substr) {
				tracks = append(tracks, info.Name)
				break
			}
		}
	}
	return tracks
}

// resolveFaculty returns the first faculty whose pattern matches.
func (rs *ruleSet) resolveFaculty(norm string) (string, bool) {
	for _, f := range rs.faculties {
		if f.pattern.MatchString(norm) {
			return f.faculty, true
		}
	}
	return "", false
}

func (rs *ruleSet) matchAdmissions(norm string) bool {
	for _, kw := range data.AdmissionKeywords {
		if strings.Contains(norm, kw) {
			return true
		}
	}
	return false
}

// topicIntents returns every topic intent whose pattern fires, in table
// order.
func (rs *ruleSet) topicIntents(norm string) []Intent {
	var intents []Intent
	for _, rule := range rs.topics {
		if rule.pattern.MatchString(norm) {
			intents = append(intents, rule.intent)
		}
	}
	return intents
}

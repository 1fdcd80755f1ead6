package session

import (
	"regexp"

	"github.com/admibot/admibot-go/internal/nlu"
	"github.com/admibot/admibot-go/internal/textnorm"
)

// Follow-up openers over the normalized utterance. Pure greetings never
// reach enrichment, so "que tal" here only fires on the elliptical form
// ("que tal industrial").
var followUpPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[¿¡]*y\s+`),
	regexp.MustCompile(`^[¿¡]*que\s+tal\b`),
	regexp.MustCompile(`^[¿¡]*cuales\b`),
	regexp.MustCompile(`^[¿¡]*(el|la|los|las)\s+de\b`),
}

// Enrich resolves elliptical follow-ups against the stored context and
// returns an enriched copy; the input is never mutated. A follow-up that
// names no program inherits the remembered one, same for faculty. When the
// enriched turn carries both a semester and a program the question is a
// curriculum question, whatever the rules classified.
func Enrich(entities *nlu.ExtractedEntities, sc *Context) *nlu.ExtractedEntities {
	enriched := entities.Clone()
	if enriched == nil {
		return nil
	}
	if enriched.HasIntent(nlu.IntentGreeting) || enriched.HasIntent(nlu.IntentFarewell) {
		return enriched
	}

	if sc != nil && isFollowUp(enriched) {
		if len(enriched.Programs) == 0 && sc.LastProgram != "" {
			enriched.Programs = []string{sc.LastProgram}
		}
		if len(enriched.Faculties) == 0 && sc.LastFaculty != "" {
			enriched.Faculties = []string{sc.LastFaculty}
		}
	}

	if len(enriched.Semesters) > 0 && len(enriched.Programs) > 0 {
		forceCurriculum(enriched)
	}

	return enriched
}

// isFollowUp reports whether the turn looks elliptical: it opens with a
// follow-up marker, or it mentions a semester without naming a program.
func isFollowUp(entities *nlu.ExtractedEntities) bool {
	if len(entities.Semesters) > 0 && len(entities.Programs) == 0 {
		return true
	}
	norm := textnorm.Normalize(entities.RawQuery)
	for _, re := range followUpPatterns {
		if re.MatchString(norm) {
			return true
		}
	}
	return false
}

// forceCurriculum adds CURRICULUM_INFO and drops the GENERAL placeholder.
func forceCurriculum(entities *nlu.ExtractedEntities) {
	intents := entities.Intents[:0:0]
	for _, i := range entities.Intents {
		if i != nlu.IntentGeneral {
			intents = append(intents, i)
		}
	}
	if !containsIntent(intents, nlu.IntentCurriculumInfo) {
		intents = append(intents, nlu.IntentCurriculumInfo)
	}
	entities.Intents = intents
}

func containsIntent(intents []nlu.Intent, intent nlu.Intent) bool {
	for _, i := range intents {
		if i == intent {
			return true
		}
	}
	return false
}

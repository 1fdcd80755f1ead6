// Package nlu classifies user utterances into intents and extracts
// structured entities (program, faculty, semester, schedule track) using
// ordered rule tables, with an optional AI-assisted fallback for
// utterances the rules cannot ground.
package nlu

import "strings"

// Intent is the classified purpose of a user utterance.
type Intent string

// The closed set of intents the extractor can emit.
const (
	IntentGreeting       Intent = "GREETING"
	IntentFarewell       Intent = "FAREWELL"
	IntentAdmissionsInfo Intent = "ADMISSIONS_INFO"
	IntentFacultyInfo    Intent = "FACULTY_INFO"
	IntentProgramInfo    Intent = "PROGRAM_INFO"
	IntentCourseInfo     Intent = "COURSE_INFO"
	IntentCurriculumInfo Intent = "CURRICULUM_INFO"
	IntentListFaculties  Intent = "LIST_FACULTIES"
	IntentListPrograms   Intent = "LIST_PROGRAMS"
	IntentListCourses    Intent = "LIST_COURSES"
	IntentCredits        Intent = "CREDITS"
	IntentScheduleTrack  Intent = "SCHEDULE_TRACK"
	IntentGeneral        Intent = "GENERAL"
)

var knownIntents = map[Intent]bool{
	IntentGreeting:       true,
	IntentFarewell:       true,
	IntentAdmissionsInfo: true,
	IntentFacultyInfo:    true,
	IntentProgramInfo:    true,
	IntentCourseInfo:     true,
	IntentCurriculumInfo: true,
	IntentListFaculties:  true,
	IntentListPrograms:   true,
	IntentListCourses:    true,
	IntentCredits:        true,
	IntentScheduleTrack:  true,
	IntentGeneral:        true,
}

// IsValid reports whether i belongs to the closed intent set.
func (i Intent) IsValid() bool {
	return knownIntents[i]
}

// IsListing reports whether i asks for an enumeration rather than a
// specific item. Listing intents take precedence over incidental
// program-name matches during disambiguation.
func (i Intent) IsListing() bool {
	return i == IntentListFaculties || i == IntentListPrograms || i == IntentListCourses
}

// ParseIntent converts a raw string (e.g., from the AI extractor) into an
// Intent, reporting whether it is one of the known values. Matching is
// case-insensitive since LLM replies drift in casing.
func ParseIntent(s string) (Intent, bool) {
	i := Intent(strings.ToUpper(strings.TrimSpace(s)))
	return i, i.IsValid()
}

package nlu

import (
	"github.com/admibot/admibot-go/internal/sliceutil"
)

// ExtractedEntities is the structured representation of one utterance.
// A value is owned exclusively by the call that produced it and must be
// treated as immutable once returned; enrichment works on copies.
type ExtractedEntities struct {
	Faculties      []string // canonical faculty names, at most one from rules
	Programs       []string // canonical program names, at most one from rules
	Courses        []string // course names, AI-extracted only
	Semesters      []string // numeric strings "1".."10", at most one from rules
	ScheduleTracks []string // canonical tracks: diurna, nocturna, distancia
	Intents        []Intent // ordered, never empty, defaults to GENERAL
	RawQuery       string   // the original utterance
}

// Clone returns a deep copy. Enrichment and AI merging operate on clones
// so earlier consumers never observe mutation.
func (e *ExtractedEntities) Clone() *ExtractedEntities {
	if e == nil {
		return nil
	}
	clone := &ExtractedEntities{RawQuery: e.RawQuery}
	clone.Faculties = append([]string(nil), e.Faculties...)
	clone.Programs = append([]string(nil), e.Programs...)
	clone.Courses = append([]string(nil), e.Courses...)
	clone.Semesters = append([]string(nil), e.Semesters...)
	clone.ScheduleTracks = append([]string(nil), e.ScheduleTracks...)
	clone.Intents = append([]Intent(nil), e.Intents...)
	return clone
}

// HasIntent reports whether the given intent was detected.
func (e *ExtractedEntities) HasIntent(intent Intent) bool {
	for _, i := range e.Intents {
		if i == intent {
			return true
		}
	}
	return false
}

// HasListingIntent reports whether any listing intent was detected.
func (e *ExtractedEntities) HasListingIntent() bool {
	for _, i := range e.Intents {
		if i.IsListing() {
			return true
		}
	}
	return false
}

// HasSpecificEntities reports whether the rule pass grounded the utterance
// in a faculty, program, or course. Utterances without any of these (and
// without a listing intent) are candidates for the AI-assisted path.
func (e *ExtractedEntities) HasSpecificEntities() bool {
	return len(e.Faculties) > 0 || len(e.Programs) > 0 || len(e.Courses) > 0
}

// FirstNonGeneralIntent returns the first intent that is not GENERAL,
// or "" when only GENERAL was detected. Used for session topic memory.
func (e *ExtractedEntities) FirstNonGeneralIntent() Intent {
	for _, i := range e.Intents {
		if i != IntentGeneral {
			return i
		}
	}
	return ""
}

// addIntent appends intent if not already present, preserving order.
func (e *ExtractedEntities) addIntent(intent Intent) {
	if !e.HasIntent(intent) {
		e.Intents = append(e.Intents, intent)
	}
}

// dedupe normalizes the slices in place after merging.
func (e *ExtractedEntities) dedupe() {
	identity := func(s string) string { return s }
	e.Faculties = sliceutil.Deduplicate(e.Faculties, identity)
	e.Programs = sliceutil.Deduplicate(e.Programs, identity)
	e.Courses = sliceutil.Deduplicate(e.Courses, identity)
	e.Semesters = sliceutil.Deduplicate(e.Semesters, identity)
	e.ScheduleTracks = sliceutil.Deduplicate(e.ScheduleTracks, identity)
	e.Intents = sliceutil.Deduplicate(e.Intents, func(i Intent) Intent { return i })
}

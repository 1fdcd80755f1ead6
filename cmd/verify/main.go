package main

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"

	"github.com/admibot/admibot-go/internal/data"
	"github.com/admibot/admibot-go/internal/textnorm"
)

// Verification results
type verifyResult struct {
	name    string
	passed  bool
	message string
}

func main() {
	fmt.Println("🔍 Admibot Go - Data Consistency Verification Tool")
	fmt.Println("==================================================")

	results := []verifyResult{}

	// 1. Verify faculty detection table
	results = append(results, verifyFacultyTable()...)

	// 2. Verify program alias table
	results = append(results, verifyProgramTable()...)

	// 3. Verify document source registry
	results = append(results, verifySourceTable()...)

	// 4. Verify extraction lexicons
	results = append(results, verifyLexicons()...)

	// Print results
	fmt.Println("\n📊 Verification Results:")
	fmt.Println("========================")

	passedCount := 0
	failedCount := 0

	for _, result := range results {
		status := "❌"
		if result.passed {
			status = "✅"
			passedCount++
		} else {
			failedCount++
		}
		fmt.Printf("%s %s: %s\n", status, result.name, result.message)
	}

	fmt.Printf("\n📈 Summary: %d passed, %d failed\n", passedCount, failedCount)

	if failedCount > 0 {
		os.Exit(1)
	}
}

// verifyFacultyTable checks the faculty detection table
func verifyFacultyTable() []verifyResult {
	results := []verifyResult{}

	// The university currently has six faculties
	expectedFaculties := 6
	actualFaculties := len(data.AllFaculties)

	results = append(results, verifyResult{
		name:    "Faculty Count",
		passed:  actualFaculties == expectedFaculties,
		message: fmt.Sprintf("Expected %d, got %d", expectedFaculties, actualFaculties),
	})

	// Every detection pattern must compile
	badPatterns := []string{}
	for _, f := range data.AllFaculties {
		if _, err := regexp.Compile(f.Pattern); err != nil {
			badPatterns = append(badPatterns, f.Name)
		}
	}

	if len(badPatterns) == 0 {
		results = append(results, verifyResult{
			name:    "Faculty Patterns Compile",
			passed:  true,
			message: "All detection patterns are valid regular expressions",
		})
	} else {
		results = append(results, verifyResult{
			name:    "Faculty Patterns Compile",
			passed:  false,
			message: fmt.Sprintf("Invalid patterns for: %v", badPatterns),
		})
	}

	// Canonical names must be unique, normalized, and findable
	seen := map[string]bool{}
	duplicates := []string{}
	notNormalized := []string{}
	notFindable := []string{}
	for _, f := range data.AllFaculties {
		if seen[f.Name] {
			duplicates = append(duplicates, f.Name)
		}
		seen[f.Name] = true
		if textnorm.Normalize(f.Name) != f.Name {
			notNormalized = append(notNormalized, f.Name)
		}
		if data.FindFaculty(f.Name) == nil {
			notFindable = append(notFindable, f.Name)
		}
	}

	results = append(results, verifyResult{
		name:    "Faculty Names Unique",
		passed:  len(duplicates) == 0,
		message: uniquenessMessage(duplicates),
	})
	results = append(results, verifyResult{
		name:    "Faculty Names Normalized",
		passed:  len(notNormalized) == 0,
		message: normalizationMessage(notNormalized),
	})

	if len(notFindable) == 0 {
		results = append(results, verifyResult{
			name:    "Faculty Lookup Roundtrip",
			passed:  true,
			message: "Every canonical name resolves through FindFaculty",
		})
	} else {
		results = append(results, verifyResult{
			name:    "Faculty Lookup Roundtrip",
			passed:  false,
			message: fmt.Sprintf("Unresolvable names: %v", notFindable),
		})
	}

	return results
}

// verifyProgramTable checks the program alias table
func verifyProgramTable() []verifyResult {
	results := []verifyResult{}

	// Undergraduate programs covered by the chatbot (expected: 20)
	expectedPrograms := 20
	actualPrograms := len(data.AllPrograms)

	results = append(results, verifyResult{
		name:    "Program Count",
		passed:  actualPrograms == expectedPrograms,
		message: fmt.Sprintf("Expected %d, got %d", expectedPrograms, actualPrograms),
	})

	seen := map[string]bool{}
	duplicates := []string{}
	danglingFaculty := []string{}
	notFindable := []string{}
	rawAliases := []string{}
	for _, p := range data.AllPrograms {
		if seen[p.Name] {
			duplicates = append(duplicates, p.Name)
		}
		seen[p.Name] = true
		if data.FindFaculty(p.Faculty) == nil {
			danglingFaculty = append(danglingFaculty, fmt.Sprintf("%s -> %s", p.Name, p.Faculty))
		}
		if data.FindProgram(p.Name) == nil {
			notFindable = append(notFindable, p.Name)
		}
		for _, alias := range p.Phrases {
			if textnorm.Normalize(alias) != alias {
				rawAliases = append(rawAliases, alias)
			}
		}
		for _, alias := range p.Partials {
			if textnorm.Normalize(alias) != alias {
				rawAliases = append(rawAliases, alias)
			}
		}
		for _, alias := range p.Keywords {
			if textnorm.Normalize(alias) != alias {
				rawAliases = append(rawAliases, alias)
			}
		}
	}

	results = append(results, verifyResult{
		name:    "Program Names Unique",
		passed:  len(duplicates) == 0,
		message: uniquenessMessage(duplicates),
	})

	if len(danglingFaculty) == 0 {
		results = append(results, verifyResult{
			name:    "Program Faculty References",
			passed:  true,
			message: "Every program references a known faculty",
		})
	} else {
		results = append(results, verifyResult{
			name:    "Program Faculty References",
			passed:  false,
			message: fmt.Sprintf("Dangling references: %v", danglingFaculty),
		})
	}

	if len(notFindable) == 0 {
		results = append(results, verifyResult{
			name:    "Program Lookup Roundtrip",
			passed:  true,
			message: "Every canonical name resolves through FindProgram",
		})
	} else {
		results = append(results, verifyResult{
			name:    "Program Lookup Roundtrip",
			passed:  false,
			message: fmt.Sprintf("Unresolvable names: %v", notFindable),
		})
	}

	results = append(results, verifyResult{
		name:    "Program Aliases Normalized",
		passed:  len(rawAliases) == 0,
		message: normalizationMessage(rawAliases),
	})

	return results
}

// verifySourceTable checks the document source registry
func verifySourceTable() []verifyResult {
	results := []verifyResult{}

	seen := map[string]bool{}
	duplicates := []string{}
	badURLs := []string{}
	badTypes := []string{}
	danglingPrograms := []string{}
	for _, s := range data.AllSources {
		if seen[s.Slug] {
			duplicates = append(duplicates, s.Slug)
		}
		seen[s.Slug] = true

		u, err := url.Parse(s.URL)
		if err != nil || u.Scheme != "https" || u.Host == "" {
			badURLs = append(badURLs, s.Slug)
		}

		if s.ContentType != "pdf" && s.ContentType != "html" {
			badTypes = append(badTypes, fmt.Sprintf("%s (%s)", s.Slug, s.ContentType))
		}

		if s.Program != "" && data.FindProgram(s.Program) == nil {
			danglingPrograms = append(danglingPrograms, fmt.Sprintf("%s -> %s", s.Slug, s.Program))
		}
	}

	results = append(results, verifyResult{
		name:    "Source Slugs Unique",
		passed:  len(duplicates) == 0,
		message: uniquenessMessage(duplicates),
	})

	if len(badURLs) == 0 {
		results = append(results, verifyResult{
			name:    "Source URLs Valid",
			passed:  true,
			message: "All source URLs parse and use https",
		})
	} else {
		results = append(results, verifyResult{
			name:    "Source URLs Valid",
			passed:  false,
			message: fmt.Sprintf("Invalid URLs for: %v", badURLs),
		})
	}

	if len(badTypes) == 0 {
		results = append(results, verifyResult{
			name:    "Source Content Types",
			passed:  true,
			message: "All sources declare pdf or html",
		})
	} else {
		results = append(results, verifyResult{
			name:    "Source Content Types",
			passed:  false,
			message: fmt.Sprintf("Unexpected content types: %v", badTypes),
		})
	}

	if len(danglingPrograms) == 0 {
		results = append(results, verifyResult{
			name:    "Source Program References",
			passed:  true,
			message: "Program-scoped sources reference known programs",
		})
	} else {
		results = append(results, verifyResult{
			name:    "Source Program References",
			passed:  false,
			message: fmt.Sprintf("Dangling references: %v", danglingPrograms),
		})
	}

	return results
}

// verifyLexicons checks the semester ordinal and schedule track lexicons
func verifyLexicons() []verifyResult {
	results := []verifyResult{}

	// Semester ordinals must map to digits 1 through 10
	badOrdinals := []string{}
	for word, value := range data.SemesterOrdinals {
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 10 {
			badOrdinals = append(badOrdinals, fmt.Sprintf("%s -> %s", word, value))
		}
		if textnorm.Normalize(word) != word {
			badOrdinals = append(badOrdinals, word)
		}
	}

	if len(badOrdinals) == 0 {
		results = append(results, verifyResult{
			name:    "Semester Ordinals",
			passed:  true,
			message: fmt.Sprintf("%d ordinals map to semesters 1-10", len(data.SemesterOrdinals)),
		})
	} else {
		results = append(results, verifyResult{
			name:    "Semester Ordinals",
			passed:  false,
			message: fmt.Sprintf("Bad entries: %v", badOrdinals),
		})
	}

	// Schedule tracks must be unique with normalized match substrings
	seen := map[string]bool{}
	trackProblems := []string{}
	for _, track := range data.AllScheduleTracks {
		if seen[track.Name] {
			trackProblems = append(trackProblems, "duplicate "+track.Name)
		}
		seen[track.Name] = true
		if len(track.Matches) == 0 {
			trackProblems = append(trackProblems, track.Name+" has no matches")
		}
		for _, m := range track.Matches {
			if textnorm.Normalize(m) != m {
				trackProblems = append(trackProblems, fmt.Sprintf("%s match %q not normalized", track.Name, m))
			}
		}
	}

	if len(trackProblems) == 0 {
		results = append(results, verifyResult{
			name:    "Schedule Tracks",
			passed:  true,
			message: fmt.Sprintf("%d tracks with normalized match tables", len(data.AllScheduleTracks)),
		})
	} else {
		results = append(results, verifyResult{
			name:    "Schedule Tracks",
			passed:  false,
			message: fmt.Sprintf("Problems: %v", trackProblems),
		})
	}

	// Admission keywords must be normalized and non-empty
	badKeywords := []string{}
	for _, kw := range data.AdmissionKeywords {
		if kw == "" || textnorm.Normalize(kw) != kw {
			badKeywords = append(badKeywords, kw)
		}
	}

	results = append(results, verifyResult{
		name:    "Admission Keywords Normalized",
		passed:  len(badKeywords) == 0,
		message: normalizationMessage(badKeywords),
	})

	return results
}

func uniquenessMessage(duplicates []string) string {
	if len(duplicates) == 0 {
		return "No duplicates found"
	}
	return fmt.Sprintf("Duplicates: %v", duplicates)
}

func normalizationMessage(raw []string) string {
	if len(raw) == 0 {
		return "All entries already normalized"
	}
	return fmt.Sprintf("Entries needing normalization: %v", raw)
}

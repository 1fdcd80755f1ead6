package relevance

import (
	"regexp"
	"strings"
	"unicode"
)

// Segmentation tuning. Each strategy discards fragments too short to be a
// useful excerpt on their own; the window strategy is the last resort and
// accepts shorter pieces.
const (
	minSegments        = 3
	headingMinChars    = 150
	paragraphMinChars  = 150
	windowChars        = 800
	windowOverlapChars = 200
	windowMinChars     = 100

	headingMaxLineLen = 80
	allCapsMinLetters = 8
)

// segment is one scoring unit. start is the segment's position in the
// source document and orders the final reassembly.
type segment struct {
	text  string
	start int
}

// segmentDocument tries the strategies in order of preference and stops at
// the first that yields enough segments to make score-driven selection
// meaningful.
func segmentDocument(doc string) []segment {
	if segs := segmentByHeadings(doc); len(segs) >= minSegments {
		return segs
	}
	if segs := segmentByParagraphs(doc); len(segs) >= minSegments {
		return segs
	}
	return segmentByWindow(doc)
}

// Numbered headings: "1. Introducción", "2.3 Perfil del egresado",
// "10) Requisitos". A bare number starting a body line does not count.
var numberedHeading = regexp.MustCompile(`^\s*\d+((\.\d+)+|[.)])\s+\S`)

func isHeadingLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len([]rune(trimmed)) > headingMaxLineLen {
		return false
	}
	if numberedHeading.MatchString(trimmed) {
		return true
	}
	return isAllCapsRun(trimmed)
}

// isAllCapsRun detects shouted section titles ("PERFIL PROFESIONAL DEL
// EGRESADO"). Requires enough letters that short acronyms do not split
// the document.
func isAllCapsRun(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= allCapsMinLetters
}

// segmentByHeadings splits so each segment is the text strictly after a
// heading up to the next heading. Text before the first heading is
// discarded together with the headings themselves.
func segmentByHeadings(doc string) []segment {
	lines := strings.Split(doc, "\n")
	offsets := make([]int, len(lines))
	pos := 0
	for i, line := range lines {
		offsets[i] = pos
		pos += len(line) + 1
	}

	var headings []int
	for i, line := range lines {
		if isHeadingLine(line) {
			headings = append(headings, i)
		}
	}
	if len(headings) == 0 {
		return nil
	}

	var segs []segment
	for h, headingLine := range headings {
		startLine := headingLine + 1
		endLine := len(lines)
		if h+1 < len(headings) {
			endLine = headings[h+1]
		}
		if startLine >= endLine {
			continue
		}

		start := offsets[startLine]
		end := len(doc)
		if endLine < len(lines) {
			end = offsets[endLine]
		}

		text := strings.TrimSpace(doc[start:end])
		if len([]rune(text)) < headingMinChars {
			continue
		}
		segs = append(segs, segment{text: text, start: start})
	}
	return segs
}

var paragraphSep = regexp.MustCompile(`\n[ \t]*\n+`)

// segmentByParagraphs splits on blank-line-delimited paragraphs.
func segmentByParagraphs(doc string) []segment {
	var segs []segment
	pos := 0
	bounds := append(paragraphSep.FindAllStringIndex(doc, -1), []int{len(doc), len(doc)})
	for _, loc := range bounds {
		text := strings.TrimSpace(doc[pos:loc[0]])
		if len([]rune(text)) >= paragraphMinChars {
			segs = append(segs, segment{text: text, start: pos})
		}
		pos = loc[1]
	}
	return segs
}

// segmentByWindow slides a fixed-size window with overlap so keyword runs
// near a cut are still seen whole in the neighboring window.
func segmentByWindow(doc string) []segment {
	runes := []rune(doc)
	step := windowChars - windowOverlapChars

	var segs []segment
	for start := 0; start < len(runes); start += step {
		end := min(start+windowChars, len(runes))
		text := strings.TrimSpace(string(runes[start:end]))
		if len([]rune(text)) >= windowMinChars {
			segs = append(segs, segment{text: text, start: start})
		}
		if end == len(runes) {
			break
		}
	}
	return segs
}

// Package assembler composes the bounded textual context handed to the
// generation model: academic facts first, then the relevant document
// excerpt, then a short tail of the conversation. Composition is pure
// and deterministic; the same inputs always render the same context.
package assembler

import (
	"strings"
	"unicode/utf8"

	"github.com/admibot/admibot-go/internal/relevance"
	"github.com/admibot/admibot-go/internal/sliceutil"
	"github.com/admibot/admibot-go/internal/storage"
	"github.com/admibot/admibot-go/internal/stringutil"
)

const (
	// DefaultMaxContextChars bounds the rendered context.
	DefaultMaxContextChars = 6000

	// DefaultFactsPerCategory caps how many facts of one kind make it in.
	DefaultFactsPerCategory = 10

	// DefaultHistoryTurns is how many trailing messages are summarized.
	DefaultHistoryTurns = 4

	// DefaultTurnMaxChars bounds each summarized message.
	DefaultTurnMaxChars = 200
)

// sectionSeparator joins sections in the rendered context.
const sectionSeparator = "\n\n"

// Section headers, in the fixed order sections appear.
const (
	factsHeader   = "Datos académicos:"
	excerptHeader = "Documento relevante:"
	historyHeader = "Conversación reciente:"
)

// Config tunes the assembler. Zero values select the package defaults.
type Config struct {
	MaxContextChars  int
	FactsPerCategory int
	HistoryTurns     int
	TurnMaxChars     int
}

func (c Config) withDefaults() Config {
	if c.MaxContextChars <= 0 {
		c.MaxContextChars = DefaultMaxContextChars
	}
	if c.FactsPerCategory <= 0 {
		c.FactsPerCategory = DefaultFactsPerCategory
	}
	if c.HistoryTurns <= 0 {
		c.HistoryTurns = DefaultHistoryTurns
	}
	if c.TurnMaxChars <= 0 {
		c.TurnMaxChars = DefaultTurnMaxChars
	}
	return c
}

// Input is everything one turn gathered for the generation model.
type Input struct {
	Faculties []storage.Faculty
	Programs  []storage.Program
	Courses   []storage.CourseEntry
	Excerpt   *relevance.Excerpt
	History   []storage.ChatMessage
}

// AssembledContext is the composed context. Sections are already cut to
// the overall budget, so Render never exceeds it.
type AssembledContext struct {
	Sections   []string
	TotalChars int
	Truncated  bool
}

// Render joins the sections into the text handed to the model.
func (a *AssembledContext) Render() string {
	if a == nil {
		return ""
	}
	return strings.Join(a.Sections, sectionSeparator)
}

// IsEmpty reports whether the turn produced no context at all.
func (a *AssembledContext) IsEmpty() bool {
	return a == nil || len(a.Sections) == 0
}

// Assembler builds contexts. Stateless and safe for concurrent use.
type Assembler struct {
	cfg Config
}

// New builds an Assembler.
func New(cfg Config) *Assembler {
	return &Assembler{cfg: cfg.withDefaults()}
}

// Assemble composes the context in fixed section order under the overall
// character budget. Whole sections are kept while they fit; the section
// that crosses the budget is hard-cut with an ellipsis and everything
// after it is dropped, so section order never changes to make room.
func (a *Assembler) Assemble(in Input) *AssembledContext {
	candidates := []string{
		a.factsSection(in),
		a.excerptSection(in.Excerpt),
		a.historySection(in.History),
	}

	out := &AssembledContext{}
	budget := a.cfg.MaxContextChars
	sepLen := utf8.RuneCountInString(sectionSeparator)
	used := 0
	for _, section := range candidates {
		if section == "" {
			continue
		}
		need := utf8.RuneCountInString(section)
		joinCost := 0
		if len(out.Sections) > 0 {
			joinCost = sepLen
		}
		if used+joinCost+need <= budget {
			out.Sections = append(out.Sections, section)
			used += joinCost + need
			continue
		}

		remaining := budget - used - joinCost
		if cut := stringutil.Truncate(section, remaining); cut != "" {
			out.Sections = append(out.Sections, cut)
			used += joinCost + utf8.RuneCountInString(cut)
		}
		out.Truncated = true
		break
	}

	out.TotalChars = used
	return out
}

// factsSection renders the capped fact lines, or "" when the turn
// resolved no academic data.
func (a *Assembler) factsSection(in Input) string {
	lines := make([]string, 0, 3*a.cfg.FactsPerCategory)
	for _, f := range sliceutil.FirstN(in.Faculties, a.cfg.FactsPerCategory) {
		lines = append(lines, facultyLine(f))
	}
	for _, p := range sliceutil.FirstN(in.Programs, a.cfg.FactsPerCategory) {
		lines = append(lines, programLine(p))
	}
	for _, c := range sliceutil.FirstN(in.Courses, a.cfg.FactsPerCategory) {
		lines = append(lines, courseLine(c))
	}
	if len(lines) == 0 {
		return ""
	}
	return factsHeader + "\n" + strings.Join(lines, "\n")
}

func (a *Assembler) excerptSection(excerpt *relevance.Excerpt) string {
	if excerpt.IsEmpty() {
		return ""
	}
	return excerptHeader + "\n" + excerpt.Text
}

// historySection summarizes the trailing messages, one line per message,
// each collapsed and truncated so a rambling turn cannot crowd out facts.
func (a *Assembler) historySection(history []storage.ChatMessage) string {
	if len(history) > a.cfg.HistoryTurns {
		history = history[len(history)-a.cfg.HistoryTurns:]
	}
	if len(history) == 0 {
		return ""
	}

	lines := make([]string, 0, len(history))
	for _, msg := range history {
		content := stringutil.Truncate(stringutil.CollapseWhitespace(msg.Content), a.cfg.TurnMaxChars)
		lines = append(lines, roleLabel(msg.Role)+": "+content)
	}
	return historyHeader + "\n" + strings.Join(lines, "\n")
}

func roleLabel(role string) string {
	switch role {
	case storage.RoleUser:
		return "usuario"
	case storage.RoleAssistant:
		return "asistente"
	default:
		return role
	}
}

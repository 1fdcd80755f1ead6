package assembler

import (
	"strconv"
	"strings"

	"github.com/admibot/admibot-go/internal/storage"
	"github.com/admibot/admibot-go/internal/stringutil"
)

// factDescriptionMaxChars bounds free-text fields inside a fact line so a
// verbose catalog description cannot swallow the facts block.
const factDescriptionMaxChars = 200

// pairs accumulates "clave: valor" fragments for one fact line. Empty
// values are skipped so lines stay compact.
type pairs []string

func (p *pairs) add(key, value string) {
	if value != "" {
		*p = append(*p, key+": "+value)
	}
}

func (p *pairs) addInt(key string, value int) {
	if value > 0 {
		*p = append(*p, key+": "+strconv.Itoa(value))
	}
}

func (p pairs) line() string {
	return strings.Join(p, "; ")
}

func facultyLine(f storage.Faculty) string {
	var p pairs
	p.add("facultad", f.Name)
	p.add("descripción", stringutil.Truncate(f.Description, factDescriptionMaxChars))
	p.add("sitio web", f.Website)
	return p.line()
}

func programLine(program storage.Program) string {
	var p pairs
	p.add("programa", program.Name)
	p.add("facultad", program.Faculty)
	p.add("título", program.Degree)
	p.addInt("semestres", program.Semesters)
	p.addInt("créditos", program.Credits)
	p.add("jornadas", strings.Join(program.Tracks, ", "))
	p.add("descripción", stringutil.Truncate(program.Description, factDescriptionMaxChars))
	return p.line()
}

func courseLine(c storage.CourseEntry) string {
	var p pairs
	p.add("materia", c.Name)
	p.add("programa", c.Program)
	p.addInt("semestre", c.Semester)
	p.addInt("créditos", c.Credits)
	p.add("jornada", c.Track)
	return p.line()
}

// Package relevance extracts the most relevant excerpt of a long document
// for a user query under a hard character budget. It is a small retrieval
// engine: keyword expansion, heuristic segmentation, proximity-aware
// scoring, and budget-constrained selection with order-preserving
// reassembly.
package relevance

import (
	"strings"

	"github.com/admibot/admibot-go/internal/textnorm"
)

// minKeywordLen drops tokens too short to carry meaning on their own.
const minKeywordLen = 3

// stopWords are high-frequency Spanish tokens that never make useful
// keywords. Checked after normalization.
var stopWords = map[string]bool{
	"que": true, "como": true, "para": true, "por": true, "con": true,
	"del": true, "las": true, "los": true, "una": true, "uno": true,
	"unos": true, "unas": true, "este": true, "esta": true, "estos": true,
	"estas": true, "ese": true, "esa": true, "esos": true, "esas": true,
	"son": true, "ser": true, "estar": true, "hay": true, "tiene": true,
	"tienen": true, "cual": true, "cuales": true, "cuanto": true,
	"cuantos": true, "cuanta": true, "cuantas": true, "donde": true,
	"cuando": true, "quien": true, "quienes": true, "sobre": true,
	"entre": true, "hasta": true, "desde": true, "muy": true, "mas": true,
	"menos": true, "todo": true, "toda": true, "todos": true, "todas": true,
	"otro": true, "otra": true, "pero": true, "porque": true, "segun": true,
	"sin": true, "tambien": true, "quiero": true, "quisiera": true,
	"saber": true, "dime": true, "digame": true, "informacion": true,
	"puede": true, "pueden": true, "favor": true, "gracias": true,
	"hola": true, "universidad": true,
}

// synonymTable compensates for vocabulary mismatch between the question
// and the document's wording. An entry fires when its trigger appears
// inside an extracted keyword, so stemmed forms ("competencias",
// "objetivos") fire too. "principio" and "valor" expand to each other
// since institutional documents use them interchangeably.
var synonymTable = []struct {
	trigger   string
	additions []string
}{
	{"objetivo", []string{"meta", "proposito", "finalidad"}},
	{"competenc", []string{"habilidad", "destreza", "capacidad"}},
	{"principio", []string{"valor"}},
	{"valor", []string{"principio"}},
	{"mision", []string{"proposito", "compromiso"}},
	{"vision", []string{"proyeccion", "futuro"}},
	{"perfil", []string{"egresado", "ocupacional"}},
	{"requisito", []string{"condicion", "documento"}},
	{"costo", []string{"precio", "matricula", "derechos"}},
	{"beca", []string{"apoyo", "subsidio", "descuento"}},
	{"duracion", []string{"semestres", "periodos"}},
	{"credito", []string{"creditos", "intensidad"}},
	{"historia", []string{"fundacion", "origen"}},
	{"jornada", []string{"horario", "diurna", "nocturna"}},
}

// QueryKeywords tokenizes the normalized query, filters stop words and
// short tokens, and expands the survivors with the synonym table. The
// result preserves query order, then synonym-table order, with no
// duplicates.
func QueryKeywords(query string) []string {
	norm := textnorm.Normalize(query)

	var keywords []string
	seen := map[string]bool{}
	for _, token := range strings.Fields(norm) {
		token = strings.Trim(token, ".,;:!?¿¡()\"'")
		if len([]rune(token)) < minKeywordLen || stopWords[token] || seen[token] {
			continue
		}
		seen[token] = true
		keywords = append(keywords, token)
	}

	// Ranging snapshots the slice header, so synonyms appended below are
	// not themselves expanded.
	for _, base := range keywords {
		for _, entry := range synonymTable {
			if !strings.Contains(base, entry.trigger) {
				continue
			}
			for _, add := range entry.additions {
				if !seen[add] {
					seen[add] = true
					keywords = append(keywords, add)
				}
			}
		}
	}

	return keywords
}

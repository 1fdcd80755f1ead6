package data

// SourceInfo describes one admissions document the ingest pipeline keeps
// current. Slug becomes the object storage key under the docs prefix and
// doubles as the document key in the cache, so it must stay stable across
// admissions cycles even when the URL moves.
type SourceInfo struct {
	Slug        string // file name under the docs prefix (e.g., "guia-admision.pdf")
	URL         string // where the current version is published
	Title       string // human-readable title surfaced in citations
	Program     string // canonical program name, empty for university-wide documents
	ContentType string // "pdf" or "html"
}

// AllSources lists the documents ingested each admissions cycle. The
// university-wide guides come first so a partial run still refreshes the
// material most questions draw on.
var AllSources = []SourceInfo{
	{
		Slug:        "guia-admision.pdf",
		URL:         "https://ww2.ufps.edu.co/public/archivos/admisiones/guia-admision.pdf",
		Title:       "Guía de admisión",
		ContentType: "pdf",
	},
	{
		Slug:        "calendario-academico.pdf",
		URL:         "https://ww2.ufps.edu.co/public/archivos/admisiones/calendario-academico.pdf",
		Title:       "Calendario académico",
		ContentType: "pdf",
	},
	{
		Slug:        "inscripciones.html",
		URL:         "https://ww2.ufps.edu.co/universidad/admisiones/inscripciones",
		Title:       "Proceso de inscripción",
		ContentType: "html",
	},
	{
		Slug:        "costos-matricula.html",
		URL:         "https://ww2.ufps.edu.co/universidad/admisiones/costos-matricula",
		Title:       "Costos de matrícula",
		ContentType: "html",
	},
	{
		Slug:        "becas-apoyos.html",
		URL:         "https://ww2.ufps.edu.co/universidad/bienestar/becas-apoyos",
		Title:       "Becas y apoyos socioeconómicos",
		ContentType: "html",
	},
	{
		Slug:        "ingenieria-de-sistemas.html",
		URL:         "https://ww2.ufps.edu.co/academica/ingenieria-de-sistemas",
		Title:       "Programa de Ingeniería de Sistemas",
		Program:     "ingenieria de sistemas",
		ContentType: "html",
	},
	{
		Slug:        "enfermeria.html",
		URL:         "https://ww2.ufps.edu.co/academica/enfermeria",
		Title:       "Programa de Enfermería",
		Program:     "enfermeria",
		ContentType: "html",
	},
}

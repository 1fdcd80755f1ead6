package docindex

import (
	"reflect"
	"strings"
	"testing"

	"github.com/admibot/admibot-go/internal/logger"
	"github.com/admibot/admibot-go/internal/storage"
)

func testDocuments() []*storage.Document {
	return []*storage.Document{
		{
			Key:   "docs/guia-admision.pdf",
			Title: "Guía de Admisión 2026",
			Text: "La inscripción de aspirantes se realiza en línea a través del portal institucional.\n\n" +
				"Los requisitos de admisión incluyen el examen Saber 11 y el formulario de inscripción.\n\n" +
				"El calendario académico publica las fechas de cada convocatoria.",
		},
		{
			Key:     "docs/ingenieria-sistemas.html",
			Title:   "Ingeniería de Sistemas",
			Program: "ingenieria de sistemas",
			Text: "El programa forma profesionales en desarrollo de software y computación.\n\n" +
				"El plan de estudios cubre bases de datos, redes y arquitectura de computadores.",
		},
		{
			Key:     "docs/enfermeria.html",
			Title:   "Enfermería",
			Program: "enfermeria",
			Text: "El programa de Enfermería forma profesionales para el cuidado de la salud.\n\n" +
				"Las prácticas clínicas inician desde el cuarto semestre en hospitales de la región.",
		},
	}
}

func TestNew(t *testing.T) {
	log := logger.New("debug")
	idx := New(log)

	if idx == nil {
		t.Fatal("New() returned nil")
	}

	if idx.IsEnabled() {
		t.Error("New() should not be enabled before initialization")
	}
}

func TestIndex_Initialize(t *testing.T) {
	log := logger.New("debug")
	idx := New(log)

	if err := idx.Initialize(testDocuments()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if !idx.IsEnabled() {
		t.Error("IsEnabled() should be true after initialization")
	}

	if idx.Count() == 0 {
		t.Error("Count() should be > 0 after initialization")
	}
}

func TestIndex_InitializeEmpty(t *testing.T) {
	log := logger.New("debug")
	idx := New(log)

	if err := idx.Initialize(nil); err != nil {
		t.Fatalf("Initialize(nil) error = %v", err)
	}

	if idx.IsEnabled() {
		t.Error("IsEnabled() should be false with no documents")
	}

	results, err := idx.Search("admisión", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() on empty index returned %d results, want 0", len(results))
	}
}

func TestIndex_Search(t *testing.T) {
	log := logger.New("debug")
	idx := New(log)
	if err := idx.Initialize(testDocuments()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	tests := []struct {
		name        string
		query       string
		wantTopKey  string
		wantResults bool
	}{
		{
			name:        "admission requirements",
			query:       "requisitos de admisión",
			wantTopKey:  "docs/guia-admision.pdf",
			wantResults: true,
		},
		{
			name:        "accent and case insensitive",
			query:       "REQUISITOS ADMISION",
			wantTopKey:  "docs/guia-admision.pdf",
			wantResults: true,
		},
		{
			name:        "clinical practice",
			query:       "prácticas clínicas",
			wantTopKey:  "docs/enfermeria.html",
			wantResults: true,
		},
		{
			name:        "software development",
			query:       "desarrollo de software",
			wantTopKey:  "docs/ingenieria-sistemas.html",
			wantResults: true,
		},
		{
			name:        "no matching terms",
			query:       "blockchain",
			wantResults: false,
		},
		{
			name:        "empty query",
			query:       "",
			wantResults: false,
		},
		{
			name:        "punctuation only",
			query:       "¿¡?!",
			wantResults: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := idx.Search(tt.query, 5)
			if err != nil {
				t.Fatalf("Search(%q) error = %v", tt.query, err)
			}

			if !tt.wantResults {
				if len(results) != 0 {
					t.Errorf("Search(%q) returned %d results, want 0", tt.query, len(results))
				}
				return
			}

			if len(results) == 0 {
				t.Fatalf("Search(%q) returned no results", tt.query)
			}
			if results[0].Key != tt.wantTopKey {
				t.Errorf("Search(%q) top result = %s, want %s", tt.query, results[0].Key, tt.wantTopKey)
			}
		})
	}
}

func TestIndex_SearchRanksAndConfidence(t *testing.T) {
	log := logger.New("debug")
	idx := New(log)
	if err := idx.Initialize(testDocuments()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	// "programa" appears in two documents
	results, err := idx.Search("el programa forma profesionales", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) < 2 {
		t.Fatalf("Search() returned %d results, want at least 2", len(results))
	}

	for i, r := range results {
		if r.Rank != i+1 {
			t.Errorf("results[%d].Rank = %d, want %d", i, r.Rank, i+1)
		}
		if i > 0 && results[i].Confidence > results[i-1].Confidence {
			t.Errorf("confidence not descending at position %d", i)
		}
	}

	if diff := results[0].Confidence - 0.952; diff < -0.01 || diff > 0.01 {
		t.Errorf("top confidence = %v, want ~0.952", results[0].Confidence)
	}
}

func TestIndex_SearchTopN(t *testing.T) {
	log := logger.New("debug")
	idx := New(log)
	if err := idx.Initialize(testDocuments()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	results, err := idx.Search("el programa forma profesionales", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) > 1 {
		t.Errorf("Search() with topN=1 returned %d results", len(results))
	}
}

func TestIndex_BestMatch(t *testing.T) {
	log := logger.New("debug")
	idx := New(log)
	if err := idx.Initialize(testDocuments()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	result, ok := idx.BestMatch("requisitos de admisión")
	if !ok {
		t.Fatal("BestMatch() found nothing, want the admission guide")
	}
	if result.Key != "docs/guia-admision.pdf" {
		t.Errorf("BestMatch() = %s, want docs/guia-admision.pdf", result.Key)
	}
	if result.Title != "Guía de Admisión 2026" {
		t.Errorf("BestMatch() title = %s, want Guía de Admisión 2026", result.Title)
	}

	if _, ok := idx.BestMatch("blockchain"); ok {
		t.Error("BestMatch() matched a query with no corpus terms")
	}
}

func TestIndex_SearchBeforeInitialize(t *testing.T) {
	log := logger.New("debug")
	idx := New(log)

	results, err := idx.Search("admisión", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if results != nil {
		t.Errorf("Search() before Initialize returned %v, want nil", results)
	}
}

func TestTokenizeSpanish(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "question with accents",
			text: "¿Cuáles son los requisitos de admisión?",
			want: []string{"cuales", "son", "los", "requisitos", "de", "admision"},
		},
		{
			name: "single letter words dropped",
			text: "ciencias y tecnología",
			want: []string{"ciencias", "tecnologia"},
		},
		{
			name: "single digits kept",
			text: "semestre 5",
			want: []string{"semestre", "5"},
		},
		{
			name: "mixed case",
			text: "Ingeniería de Sistemas",
			want: []string{"ingenieria", "de", "sistemas"},
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "punctuation only",
			text: "¿¡!?",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenizeSpanish(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tokenizeSpanish(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestChunkDocument(t *testing.T) {
	t.Run("short document is one chunk", func(t *testing.T) {
		doc := &storage.Document{
			Title: "Guía",
			Text:  "Primer párrafo.\n\nSegundo párrafo.",
		}
		chunks := chunkDocument(doc)
		if len(chunks) != 1 {
			t.Fatalf("chunkDocument() returned %d chunks, want 1", len(chunks))
		}
		want := "«Guía»\nPrimer párrafo.\n\nSegundo párrafo."
		if chunks[0] != want {
			t.Errorf("chunkDocument() = %q, want %q", chunks[0], want)
		}
	})

	t.Run("no title means no prefix", func(t *testing.T) {
		doc := &storage.Document{Text: "Contenido sin título."}
		chunks := chunkDocument(doc)
		if len(chunks) != 1 || chunks[0] != "Contenido sin título." {
			t.Errorf("chunkDocument() = %v", chunks)
		}
	})

	t.Run("paragraphs grouped up to limit", func(t *testing.T) {
		para := strings.TrimSpace(strings.Repeat("palabra ", 100))
		doc := &storage.Document{
			Title: "Larga",
			Text:  para + "\n\n" + para,
		}
		chunks := chunkDocument(doc)
		if len(chunks) != 2 {
			t.Fatalf("chunkDocument() returned %d chunks, want 2", len(chunks))
		}
		for i, chunk := range chunks {
			if !strings.HasPrefix(chunk, "«Larga»\n") {
				t.Errorf("chunks[%d] missing title prefix", i)
			}
		}
	})

	t.Run("oversized paragraph is hard split", func(t *testing.T) {
		doc := &storage.Document{Text: strings.Repeat("a", 3000)}
		chunks := chunkDocument(doc)
		if len(chunks) != 3 {
			t.Fatalf("chunkDocument() returned %d chunks, want 3", len(chunks))
		}
	})

	t.Run("empty text", func(t *testing.T) {
		if chunks := chunkDocument(&storage.Document{Title: "Vacío", Text: "  \n\n  "}); chunks != nil {
			t.Errorf("chunkDocument() = %v, want nil", chunks)
		}
	})
}

func TestComputeRankConfidence(t *testing.T) {
	tests := []struct {
		rank int
		want float32
	}{
		{1, 0.952},
		{5, 0.8},
		{10, 0.667},
		{0, 0},
		{-1, 0},
	}

	for _, tt := range tests {
		got := computeRankConfidence(tt.rank)
		if diff := got - tt.want; diff < -0.01 || diff > 0.01 {
			t.Errorf("computeRankConfidence(%d) = %v, want ~%v", tt.rank, got, tt.want)
		}
	}
}

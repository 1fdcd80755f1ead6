// Package genai provides integration with LLM APIs (Gemini, Groq, and Cerebras).
// This file contains function declarations for entity extraction and plan review.
//
// Design Principles (Gemini/Groq/Cerebras):
// - functions.go: WHAT the function does (descriptions + parameter formats)
// - prompts.go: WHEN/HOW to use (decision rules, trigger conditions)
//
// IMPORTANT: Function declarations use genai.Type* constants (e.g., genai.TypeString = "STRING").
// When converting to OpenAI-compatible formats (Groq/Cerebras), types must be lowercased to
// match the JSON Schema spec ("string" not "STRING"). See buildOpenAITools() in openai_tools.go.
package genai

import "google.golang.org/genai"

// ExtractFunctionName is the function the extractor models are forced to call.
const ExtractFunctionName = "extraer_entidades"

// PlanFunctionName is the function the plan optimizer models are forced to call.
const PlanFunctionName = "refinar_plan"

// BuildExtractionFunctions returns the function declaration for entity extraction.
// The model is forced to call it on every utterance; empty arrays mean the
// utterance mentions nothing of that kind.
func BuildExtractionFunctions() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        ExtractFunctionName,
			Description: "Registra las entidades académicas y las intenciones detectadas en el mensaje del aspirante.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"faculties": {
						Type:        genai.TypeArray,
						Description: "Facultades mencionadas, tal como aparecen en el mensaje. Ejemplos: «ingenieria», «ciencias de la salud», «educacion»",
						Items:       &genai.Schema{Type: genai.TypeString},
					},
					"programs": {
						Type:        genai.TypeArray,
						Description: "Programas académicos mencionados. Ejemplos: «ingenieria de sistemas», «enfermeria», «derecho»",
						Items:       &genai.Schema{Type: genai.TypeString},
					},
					"courses": {
						Type:        genai.TypeArray,
						Description: "Materias o cursos mencionados. Ejemplos: «calculo diferencial», «anatomia», «programacion»",
						Items:       &genai.Schema{Type: genai.TypeString},
					},
					"semesters": {
						Type:        genai.TypeArray,
						Description: "Semestres mencionados, como números en texto. Ejemplos: «1», «5», «10»",
						Items:       &genai.Schema{Type: genai.TypeString},
					},
					"schedule_tracks": {
						Type:        genai.TypeArray,
						Description: "Jornadas mencionadas. Valores permitidos: «diurna», «nocturna», «distancia»",
						Items:       &genai.Schema{Type: genai.TypeString},
					},
					"intents": {
						Type: genai.TypeArray,
						Description: "Intenciones del mensaje. Valores permitidos: GREETING, FAREWELL, ADMISSIONS_INFO, " +
							"FACULTY_INFO, PROGRAM_INFO, COURSE_INFO, CURRICULUM_INFO, LIST_FACULTIES, LIST_PROGRAMS, " +
							"LIST_COURSES, CREDITS, SCHEDULE_TRACK, GENERAL",
						Items: &genai.Schema{Type: genai.TypeString},
					},
				},
				Required: []string{"intents"},
			},
		},
	}
}

// BuildPlanFunctions returns the function declaration for query-plan review.
// The model may drop or reorder calls from the draft but must never add new ones.
func BuildPlanFunctions() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        PlanFunctionName,
			Description: "Devuelve la versión refinada del plan de consultas: subconjunto ordenado de las llamadas del borrador.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"calls": {
						Type:        genai.TypeArray,
						Description: "Llamadas a conservar, en orden de ejecución, con el formato «endpoint?parametro=valor». Ejemplo: «programs?name=enfermeria»",
						Items:       &genai.Schema{Type: genai.TypeString},
					},
					"strategy": {
						Type:        genai.TypeString,
						Description: "Estrategia de ejecución: «SEQUENTIAL» o «PARALLEL»",
					},
					"result_cap": {
						Type:        genai.TypeInteger,
						Description: "Límite de resultados por llamada cuando conviene reducirlo; omitir para mantener el predeterminado",
					},
				},
				Required: []string{"calls", "strategy"},
			},
		},
	}
}

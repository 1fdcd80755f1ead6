// Package config provides data availability and limitation constants.
// Defines data boundaries and user-facing messages for explaining them.
//
// Catalog coverage:
//   - Faculties and programs: current admissions offer, refreshed from the
//     academic API on an interval and cached with a TTL
//   - Curriculum: per-program course grids, semesters 1-10
//   - Documents: only admissions material that was explicitly ingested;
//     a question about an un-ingested brochure finds nothing
package config

// ================================================
// Turn and Context Limits
// ================================================

const (
	// MinUtteranceLength is the minimum rune count for a chat message.
	MinUtteranceLength = 1

	// MaxUtteranceLength is the maximum rune count for a chat message.
	// Longer input is rejected before any processing happens.
	MaxUtteranceLength = 1000

	// MaxFactsPerCategory caps how many faculties, programs, or courses
	// the assembled context carries per category.
	MaxFactsPerCategory = 10

	// MaxHistoryTurns is how many trailing transcript messages are
	// summarized into the assembled context.
	MaxHistoryTurns = 4

	// HistoryTurnMaxChars bounds each summarized transcript message.
	HistoryTurnMaxChars = 200
)

// ================================================
// Curriculum Data Boundaries
// ================================================

const (
	// SemesterMin is the lowest semester number in any program.
	SemesterMin = 1

	// SemesterMax is the highest semester number in any program.
	// Undergraduate programs run at most 10 semesters.
	SemesterMax = 10
)

// ================================================
// User-facing Messages
// ================================================
//
// Message structure: Emoji + Clear statement + Brief explanation +
// Actionable alternatives. All messages are in Colombian Spanish to match
// the audience.
const (
	// GreetingMessage answers a greeting without burning an LLM call.
	GreetingMessage = "¡Hola! 👋 Soy el asistente de admisiones.\n\n" +
		"Puedo ayudarte con:\n" +
		"• Facultades y programas académicos\n" +
		"• Pensum y materias por semestre\n" +
		"• Requisitos e inscripciones\n\n" +
		"¿Qué quieres saber?"

	// FarewellMessage closes a conversation; the session memory is
	// cleared when it is sent.
	FarewellMessage = "¡Hasta pronto! 🎓\n\n" +
		"Si tienes más preguntas sobre admisiones, escríbeme cuando quieras."

	// NoDataMessage is sent when a turn resolved no catalog data and no
	// relevant document.
	NoDataMessage = "🔍 No encontré información sobre eso en el catálogo académico.\n\n" +
		"💡 Intenta preguntar por:\n" +
		"• Una facultad (por ejemplo «facultad de ingeniería»)\n" +
		"• Un programa (por ejemplo «ingeniería de sistemas»)\n" +
		"• Las materias de un semestre"

	// NoProgramFoundMessage is sent when a named program is not in the
	// current offer. Takes the program name the user asked for.
	NoProgramFoundMessage = "🔍 No encontré el programa «%s» en la oferta actual.\n\n" +
		"Revisa la escritura o pregunta «¿qué programas tienen?» para ver la lista completa."

	// ProviderDownMessage is sent when the academic API is unreachable
	// and the cache holds nothing usable.
	ProviderDownMessage = "😥 El sistema académico no está disponible en este momento.\n\n" +
		"Inténtalo de nuevo en unos minutos."

	// RateLimitedMessage is sent when a session exceeds its chat rate.
	RateLimitedMessage = "⏳ Has enviado muchos mensajes seguidos.\n\n" +
		"Espera un momento antes de escribir de nuevo."

	// UtteranceTooLongMessage is sent when a message exceeds
	// MaxUtteranceLength.
	UtteranceTooLongMessage = "📝 Tu mensaje es demasiado largo.\n\n" +
		"Resume tu pregunta en menos de 1000 caracteres."

	// SemesterRangeMessage explains the valid semester range. Takes the
	// semester the user asked for.
	SemesterRangeMessage = "📚 No hay materias para el semestre %s.\n\n" +
		"Los programas de pregrado van del semestre 1 al 10."

	// FallbackReplyIntro opens a data-only reply when answer generation is
	// disabled or failed; the gathered facts follow verbatim.
	FallbackReplyIntro = "📋 Esto es lo que encontré:"
)

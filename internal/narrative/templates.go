package narrative

// Default prompt templates for the two LLM-backed condensation points.
// The Manager holds both, but Summarizer.Summarize takes no template:
// LLMSummarizer renders micro-summaries and chapter summaries alike with
// defaultChapterSummaryTemplate, and defaultMicroSummaryTemplate is not sent
// to the model.
const (
	defaultMicroSummaryTemplate = `Condensa las siguientes secciones de una novela en un único párrafo de continuidad narrativa, conservando nombres propios y hechos relevantes para el resto de la historia:

{{.text}}`

	defaultChapterSummaryTemplate = `Resume el siguiente capítulo completo en como máximo {{.max_words}} palabras, en tono neutro, preservando los hechos que afecten capítulos posteriores:

{{.text}}`
)

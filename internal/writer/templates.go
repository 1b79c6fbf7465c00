package writer

const writerTemplate = `Eres un novelista. Escribe la siguiente sección de la novela en prosa continua, sin encabezados ni metadatos.

Marco narrativo:
{{.framework}}

Resumen de capítulos anteriores:
{{.previous_chapters_summary}}

Contenido reciente de este capítulo:
{{.current_chapter_summary}}

Capítulo número {{.chapter_number}}, sección {{.idea_index}}, posición: {{.position}}.
Idea a desarrollar en esta sección: {{.idea}}

Escribe solo la prosa de la sección, en español, sin numerar ni titular.`

const writerTemplateSimplified = `Escribe un párrafo de prosa narrativa en español que desarrolle esta idea, sin ningún otro texto:
{{.idea}}

Contexto breve: {{.current_chapter_summary}}`

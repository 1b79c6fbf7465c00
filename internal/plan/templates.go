package plan

const titleTemplate = `Eres un asistente editorial. Propón un único título para una novela con estas características:
Tema: {{.subject}}
Género: {{.genre}}
Perfil de audiencia: {{.profile}}
Estilo: {{.style}}

Responde únicamente con el título, en una sola línea, sin comillas ni prefijos.`

const titleTemplateStrict = titleTemplate + `

Recuerda: una sola línea, sin numeración ni viñetas ni texto adicional.`

const frameworkTemplate = `Eres un asistente editorial. Desarrolla el marco narrativo (framework) de la siguiente novela:
Título: {{.title}}
Tema: {{.subject}}
Género: {{.genre}}
Perfil de audiencia: {{.profile}}
Estilo: {{.style}}

Escribe varios párrafos describiendo el mundo, el tono y los personajes principales.`

const frameworkTemplateStrict = frameworkTemplate + `

Recuerda: texto en prosa, sin encabezados markdown ni listas.`

const chaptersTemplate = `Eres un asistente editorial. A partir del siguiente marco narrativo, genera la lista de capítulos de la novela, uno por línea, en el formato "Clave: descripción breve".
Marco narrativo:
{{.framework}}

Tema: {{.subject}}
Género: {{.genre}}
Incluye un Prólogo al inicio y un Epílogo al final si el estilo lo favorece.`

const chaptersTemplateStrict = `Genera únicamente la lista de capítulos, una línea por capítulo, exactamente en el formato "Clave: descripción breve", sin numeración adicional ni texto introductorio.
Marco narrativo:
{{.framework}}

Tema: {{.subject}}
Género: {{.genre}}`

const ideasTemplate = `Eres un asistente editorial. Propón entre 3 y 5 ideas de escenas para el siguiente capítulo, una por línea.
Marco narrativo:
{{.framework}}

Capítulo: {{.chapter_key}} ({{.chapter_description}})
Ideas ya usadas en capítulos anteriores (evita repetirlas): {{.prior_ideas}}`

const ideasTemplateStrict = `Genera entre 3 y 5 ideas de escena, una idea por línea, sin numeración ni viñetas ni texto adicional.
Marco narrativo:
{{.framework}}

Capítulo: {{.chapter_key}} ({{.chapter_description}})
Ideas ya usadas (evita repetirlas): {{.prior_ideas}}`

package plan

import (
	"fmt"

	"github.com/kroryan/Generador-de-libros-IA-cli/internal/llm"
)

func errMalformed(msg string) error {
	return fmt.Errorf("%w: %s", llm.ErrMalformedResponse, msg)
}

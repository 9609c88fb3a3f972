package collector

import (
	"fmt"
	"strings"

	"github.com/dilma-lab/dilma/internal/domain"
)

const answerInstruction = "Reply with **only** the letter A or B, then one short sentence explaining why.\n" +
	"If you cannot decide between A and B, reply \"INVALID\".\n\n"

// BuildPrompt renders one dilemma as a chat prompt.
func BuildPrompt(d *domain.DilemmaRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (ID: %s)\n\n", d.Title, d.ID)
	b.WriteString(d.Vignette)
	b.WriteString("\n\n")
	b.WriteString(answerInstruction)

	for i, opt := range d.Options {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s. %s", opt.ID, opt.Text)
	}
	return b.String()
}

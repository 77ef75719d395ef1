package prompts

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a senior UI/UX designer reviewing screenshots of websites.
You give direct, specific and actionable design critique. You only comment on
what is visible in the screenshot.`

// BuildCritiquePrompt returns the system and user instructions for one
// screenshot. The requested layout is what the issue parser understands.
func BuildCritiquePrompt(viewport string) (string, string) {
	viewport = strings.TrimSpace(viewport)
	if viewport == "" {
		viewport = "desktop"
	}

	user := fmt.Sprintf(`Review this screenshot of a web page captured at the "%s" viewport.

Start with one line in the form:
Page description: <what the page is for, in one sentence>

Then group the problems you find under these headers, omitting empty groups:
Critical Issues - <area>:
Major Issues - <area>:
Minor Issues - <area>:

Write every problem as its own line starting with "- ". Areas are things like
Navigation, Layout, Responsive, Accessibility, Performance, Visual or Content.
Check layout breakage, overlapping or cut-off elements, spacing and alignment,
contrast and legibility, and anything that looks wrong for a %s screen.

Finish with an "Overall assessment:" line followed by two or three sentences.

If the page has no problems, answer with exactly:
No issues found.`, viewport, viewport)

	return systemPrompt, user
}

package aisvc

import (
	"fmt"
	"strings"

	"github.com/trezcool/educode/core"
)

func chatPrompt(prompt string, history []core.ChatTurn) string {
	var ctx strings.Builder
	for _, h := range history {
		who := "User"
		if h.Role != "user" {
			who = "AI"
		}
		fmt.Fprintf(&ctx, "%s: %s\n", who, h.Text)
	}
	return fmt.Sprintf(`System: You are a helpful programming tutor AI for EduCode. Be concise and encouraging.

Context:
%s
Current User Question: %s`, ctx.String(), prompt)
}

func gradePrompt(code, task string) string {
	return fmt.Sprintf(`Act as a strict but helpful programming teacher.
Task: %s

Student Code:
`+"```"+`
%s
`+"```"+`

Analyze the code for correctness, efficiency, and style.
Return a JSON object with:
- score (integer 0-100)
- feedback (string, concise constructive criticism)`, task, code)
}

func runPrompt(code, language string) string {
	return fmt.Sprintf(`Act as a %s interpreter.
Execute the following code virtually and return ONLY the output.
If the code has syntax errors, return the error message.

Code:
%s`, language, code)
}

func intentPrompt(query string) string {
	return fmt.Sprintf(`Analyze the user's query to see if they want to navigate within the EduCode app.
Available Views/Targets:
- 'dashboard' (My learning, progress)
- 'landing' (Home, explore courses)
- 'profile' (Settings, account)
- 'support' (Help, report issue)
- 'teacher-portal' (Grading, create course)

If the user is asking a coding question, intent is 'chat'.
If the user wants to go somewhere, intent is 'navigate'.

User Query: %q

Return JSON: { "intent": "navigate" | "chat", "target": "view_name" (if navigate) }`, query)
}

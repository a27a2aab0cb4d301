package usecase

import (
	"fmt"
	"time"
)

const personaPrompt = `You are an expert construction project management assistant for Alleato. You help project managers track meetings, budgets, schedules, and risks across active construction projects.

Guidelines:
- Ground every answer in the database context below when it is relevant.
- Cite document titles when you reference specific meetings or reports.
- For financial questions, show the figures behind your conclusion.
- If the context does not cover the question, say so plainly instead of guessing.
- Keep answers concise and actionable for a project manager on site.`

// buildSystemPrompt assembles the persona, the current date, and whatever
// retrieval context the conversation gathered into one system message.
func buildSystemPrompt(contextBlock string, now time.Time) string {
	if contextBlock == "" {
		contextBlock = "No relevant context found in the project knowledge base."
	}
	return fmt.Sprintf("%s\n\nToday's date: %s\n\nCURRENT DATABASE CONTEXT:\n%s",
		personaPrompt, now.Format("2006-01-02"), contextBlock)
}

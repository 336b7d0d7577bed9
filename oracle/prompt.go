package oracle

import "strings"

const systemPrompt = "You are the wiki assistant for the game War Tycoon. " +
	"Answer strictly from the context supplied in the user message. " +
	"If the context does not contain the information needed, say so explicitly; never invent vehicles, prices, or stats. " +
	"When tiered stats are present (Non-Upgraded, Tier 1, Tier 2, Tier 3), format them as a labeled list, one tier per line. " +
	"Placeholder values such as N/A or [TBA] mean the wiki has no data for that field; report them as unknown."

func userPrompt(contextText, question string) string {
	var sb strings.Builder
	sb.WriteString("Context:\n")
	sb.WriteString(contextText)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)
	return sb.String()
}

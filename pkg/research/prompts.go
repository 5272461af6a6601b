package research

import (
	"fmt"
	"strings"
)

// Character budget for the running summary when it is fed back into a
// prompt. Local models have small context windows.
const maxSummaryPromptChars = 4000

// Character budget per source when formatting search results for the
// summarizer.
const maxSourceChars = 4000

const queryWriterInstructions = `Your goal is to generate a targeted web search query.
The query will gather information related to a specific topic.

Return the JSON object directly without any formatting or additional text. The JSON object must have the following structure:
{
  "query": "string - the actual search query",
  "rationale": "string - brief explanation of why this query is relevant"
}`

const summarizerInstructions = `Generate a high-quality summary of the provided search results.

When EXTENDING an existing summary:
- Integrate new information without repeating what is already covered.
- Maintain consistency with the existing content's style and depth.
- Only add genuinely new, relevant information.
- Do not remove or contradict the existing summary unless the new sources correct it.

When creating a NEW summary:
- Highlight the most relevant information from each source.
- Provide a concise overview of the key points related to the topic.
- Keep a coherent flow of information.

Start directly with the summary. Do not use XML tags, preamble, or meta-commentary about the task.`

const reflectionInstructions = `You are an expert research assistant analyzing a summary about a topic.
Identify knowledge gaps or areas that need deeper exploration, then generate a follow-up web search query that would help expand the understanding. Focus on technical details, implementation specifics, or emerging trends that were not fully covered.

Return the JSON object directly without any formatting or additional text. The JSON object must have the following structure:
{
  "has_gap": "boolean - whether the summary leaves a knowledge gap",
  "knowledge_gap": "string - description of what information is missing",
  "follow_up_query": "string - a specific question to address the gap, required when has_gap is true"
}`

func buildQueryWriterPrompt(topic, runningSummary string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a web search query for the following topic:\n\n<TOPIC>\n%s\n</TOPIC>\n", topic)
	if strings.TrimSpace(runningSummary) != "" {
		fmt.Fprintf(&b, "\nKnowledge gathered so far:\n<SUMMARY>\n%s\n</SUMMARY>\n",
			truncateRunes(runningSummary, maxSummaryPromptChars))
		b.WriteString("\nThe query should target information not yet covered above.\n")
	}
	return b.String()
}

func buildSummarizerPrompt(topic, existingSummary string, newSources []Source) string {
	var b strings.Builder
	if strings.TrimSpace(existingSummary) != "" {
		fmt.Fprintf(&b, "<Existing Summary>\n%s\n</Existing Summary>\n\n", existingSummary)
		fmt.Fprintf(&b, "<New Context>\n%s\n</New Context>\n", formatSources(newSources))
		fmt.Fprintf(&b, "Update the Existing Summary with the New Context on this topic:\n<User Input>\n%s\n</User Input>\n", topic)
	} else {
		fmt.Fprintf(&b, "<Context>\n%s\n</Context>\n", formatSources(newSources))
		fmt.Fprintf(&b, "Create a summary using the Context on this topic:\n<User Input>\n%s\n</User Input>\n", topic)
	}
	return b.String()
}

func buildReflectionPrompt(topic, runningSummary string) string {
	return fmt.Sprintf("Reflect on our existing knowledge of this topic:\n<TOPIC>\n%s\n</TOPIC>\n\n<SUMMARY>\n%s\n</SUMMARY>\n\nIdentify a knowledge gap and generate a follow-up query, or report that no gap remains.",
		topic, truncateRunes(runningSummary, maxSummaryPromptChars))
}

// formatSources renders sources for the summarizer prompt, preferring full
// page text when available and capping each entry.
func formatSources(sources []Source) string {
	var b strings.Builder
	for i, s := range sources {
		content := s.ShortContent
		if s.FullContent != "" {
			content = s.FullContent
		}
		fmt.Fprintf(&b, "Source %d: %s\n===\nURL: %s\nContent: %s\n===\n\n",
			i+1, s.Title, s.URL, truncateRunes(content, maxSourceChars))
	}
	return strings.TrimSpace(b.String())
}

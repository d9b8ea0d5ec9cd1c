package llm

import (
	"fmt"
	"strings"
)

// Prompts for the summarization agents and the QA assistant.

const SummarizerSystemPrompt = "You are an expert scientific summarizer. " +
	"You read research papers and produce thorough, factual, structured summaries. " +
	"Be precise and avoid hallucinations."

// SectionPrompt builds the per-section summarization instruction.
func SectionPrompt(heading, content string) string {
	var sb strings.Builder
	sb.WriteString("Summarize the section ")
	fmt.Fprintf(&sb, "%q", heading)
	sb.WriteString(" from the following content. Produce a concise, structured, academic-style summary.\n\n")
	sb.WriteString("Section text:\n")
	sb.WriteString(content)
	sb.WriteString("\n\nInstructions:\n")
	sb.WriteString("- Include key points and methodology if present\n")
	sb.WriteString("- Mention any datasets, results, or experiments\n")
	sb.WriteString("- Keep the summary factual and concise\n")
	return sb.String()
}

// AggregatePrompt builds the instruction that merges per-section summaries
// into one cohesive document-level summary. The model is free to rename,
// reorder, and merge headings.
func AggregatePrompt(sectionBlocks string) string {
	var sb strings.Builder
	sb.WriteString("Combine the following individual section summaries into one cohesive, ")
	sb.WriteString("well-structured academic summary of the research paper.\n\n")
	sb.WriteString("Guidelines:\n")
	sb.WriteString("- Reorganize and merge overlapping or overly detailed sections as needed\n")
	sb.WriteString("- Choose the most logical section headings yourself (e.g. Introduction, Methods, Results, Discussion)\n")
	sb.WriteString("- Ensure smooth transitions and a consistent academic tone\n")
	sb.WriteString("- Preserve key technical details, results, and findings\n")
	sb.WriteString("- Do not add information that is not supported by the summaries\n\n")
	sb.WriteString("Input section summaries:\n")
	sb.WriteString(sectionBlocks)
	return sb.String()
}

// ShortSummaryPrompt asks for a brief overview of the full paper text.
func ShortSummaryPrompt(paperText string) string {
	return "Provide a concise summary (3-5 bullet points or one paragraph) " +
		"highlighting the paper's objectives, methods, and findings.\n\nPaper text:\n" + paperText
}

// DetailedSummaryPrompt asks for a thorough structured summary of the full
// paper text.
func DetailedSummaryPrompt(paperText string) string {
	var sb strings.Builder
	sb.WriteString("Produce an extremely detailed summary of the following research paper ")
	sb.WriteString("with a strong focus on methods, data and feature engineering, training ")
	sb.WriteString("pipeline, evaluation details, and results.\n\n")
	sb.WriteString("Cover, in order: objective, paper metadata (title, authors, venue, year), ")
	sb.WriteString("each model or method (inputs, outputs, training setup, hyperparameters ")
	sb.WriteString("as stated), evaluation (metrics, baselines, experimental setup), results, ")
	sb.WriteString("limitations, and key findings. When the paper does not state a detail, ")
	sb.WriteString("write \"not specified\" rather than guessing.\n\n")
	sb.WriteString("Paper text:\n")
	sb.WriteString(paperText)
	return sb.String()
}

// QASystemPrompt frames the question-answering assistant.
const QASystemPrompt = "You are a helpful research assistant."

// QAUserPrompt combines retrieved source passages with the user's question.
func QAUserPrompt(contextText, question string) string {
	return "Here are the relevant parts of the research paper:\n\n" +
		contextText + "\n\nQuestion: " + question
}

// Package prompt renders model prompts from system instructions,
// retrieved documents, conversation history, and the current question.
// All functions are pure: identical inputs produce byte-identical output.
package prompt

import (
	"fmt"
	"strings"

	"github.com/shopassist/kbchat/internal/domain"
)

// DefaultInstructions is the system message applied when no override is
// configured. The text is part of the deployed behavior contract.
const DefaultInstructions = `
    You are an AI assistant for product information. Be concise in your responses. Always be polite and professional.
    Never provide information about competitors' products.
    Do not discuss availability. If asked, say this information changes frequently and encourage users to visit our website or contact customer service for the most up-to-date information.
    Always respect user privacy and do not ask for or store personal information.
    `

// MessageTemplate is the turn template used with message-style models.
// Reproduced verbatim, including indentation and trailing spaces, for
// parity with existing consumers.
const MessageTemplate = `
        You are an assistant for question-answering tasks about product information. 
        Use the following context and chat history to answer the question. Your response should be structured as a summary of the TV products mentioned in the search results, with bullet points for each product and its key features. Include the source number for each product.

        Context:
        {context}

        Chat History:
        {chat_history}

        Question: {question}

        Generate a response in the following format:
        The search results contain information about several TV products, including:
        - [Brand] [Size] [Color] [Product Type] ([Model Number]) with [key feature 1], [key feature 2], and [key feature 3]. 
        - [Next product...]
        Do not include any source references in the bullet points.

        Answer:`

// CompletionTemplate is the turn template used with completion-style
// models, where the system instructions travel separately inside the
// instruction fence instead of the template body.
const CompletionTemplate = `
        Use the following context and chat history to answer the question. Your response should be structured as a summary of the TV products mentioned in the search results, with bullet points for each product and its key features. Include the source number for each product.

        Context:
        {context}

        Chat History:
        {chat_history}

        Question: {question}

        Generate a response in the following format:
        The search results contain information about several TV products, including:
        - [Brand] [Size] [Color] [Product Type] ([Model Number]) with [key feature 1], [key feature 2], and [key feature 3]. 
        - [Next product...]
        Do not include any source references in the bullet points.

        Answer:
        `

// ContextBlock renders the retrieved documents in retrieval order,
// one "Source {i}: {content}" line per document.
func ContextBlock(docs []domain.RetrievedDocument) string {
	lines := make([]string, len(docs))
	for i, doc := range docs {
		lines[i] = fmt.Sprintf("Source %d: %s", doc.Index, doc.Content)
	}
	return strings.Join(lines, "\n")
}

// HistoryBlock renders prior turns in append order, one
// "{role}: {text}" line per turn.
func HistoryBlock(turns []domain.Turn) string {
	lines := make([]string, len(turns))
	for i, turn := range turns {
		lines[i] = fmt.Sprintf("%s: %s", turn.Role, turn.Text)
	}
	return strings.Join(lines, "\n")
}

// Fill substitutes the named placeholders in a template. Substitution
// is a single pass: placeholder-like substrings inside the values are
// left alone, and no escaping is performed.
func Fill(template string, pc domain.PromptContext) string {
	return strings.NewReplacer(
		"{context}", ContextBlock(pc.Documents),
		"{chat_history}", HistoryBlock(pc.History),
		"{question}", pc.Question,
	).Replace(template)
}

// Fence renders turns into the single-string instruction-fenced shape:
// system turns inside an [INST] <<SYS>> fence, user turns closed by
// [/INST], assistant turns concatenated as plain trailing text.
func Fence(turns []domain.Turn) string {
	var b strings.Builder
	for _, turn := range turns {
		switch turn.Role {
		case domain.RoleSystem:
			b.WriteString("[INST] <<SYS>>\n")
			b.WriteString(turn.Text)
			b.WriteString("\n<</SYS>>\n\n")
		case domain.RoleUser:
			b.WriteString(turn.Text)
			b.WriteString(" [/INST]\n")
		case domain.RoleAssistant:
			b.WriteString(turn.Text)
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

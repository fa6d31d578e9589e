package prompt

import (
	"strings"
	"testing"

	"github.com/shopassist/kbchat/internal/domain"
)

func TestContextBlock(t *testing.T) {
	docs := []domain.RetrievedDocument{
		{Index: 1, Content: "55-inch OLED, 120Hz"},
		{Index: 2, Content: "65-inch QLED, HDR10+"},
	}

	got := ContextBlock(docs)
	want := "Source 1: 55-inch OLED, 120Hz\nSource 2: 65-inch QLED, HDR10+"
	if got != want {
		t.Errorf("ContextBlock() = %q, want %q", got, want)
	}
}

func TestContextBlock_Empty(t *testing.T) {
	if got := ContextBlock(nil); got != "" {
		t.Errorf("ContextBlock(nil) = %q, want empty", got)
	}
}

func TestHistoryBlock(t *testing.T) {
	turns := []domain.Turn{
		{Role: domain.RoleUser, Text: "What TVs do you have?"},
		{Role: domain.RoleAssistant, Text: "We carry several models."},
	}

	got := HistoryBlock(turns)
	want := "user: What TVs do you have?\nassistant: We carry several models."
	if got != want {
		t.Errorf("HistoryBlock() = %q, want %q", got, want)
	}
}

func TestFill_Deterministic(t *testing.T) {
	pc := domain.PromptContext{
		Documents: []domain.RetrievedDocument{{Index: 1, Content: "doc one"}},
		History:   []domain.Turn{{Role: domain.RoleUser, Text: "hi"}},
		Question:  "What TVs do you have?",
	}

	first := Fill(MessageTemplate, pc)
	second := Fill(MessageTemplate, pc)
	if first != second {
		t.Fatal("Fill() is not deterministic for identical inputs")
	}

	if !strings.Contains(first, "Source 1: doc one") {
		t.Error("filled prompt missing context block")
	}
	if !strings.Contains(first, "user: hi") {
		t.Error("filled prompt missing history block")
	}
	if !strings.Contains(first, "Question: What TVs do you have?") {
		t.Error("filled prompt missing question")
	}
	if strings.Contains(first, "{context}") || strings.Contains(first, "{chat_history}") || strings.Contains(first, "{question}") {
		t.Error("filled prompt still contains placeholders")
	}
}

func TestFill_PlaceholderLikeContent(t *testing.T) {
	// Placeholder-like substrings in retrieved content pass through
	// untouched; substitution is a single pass over the template.
	pc := domain.PromptContext{
		Documents: []domain.RetrievedDocument{{Index: 1, Content: "literal {question} marker"}},
		Question:  "q",
	}

	got := Fill(MessageTemplate, pc)
	if !strings.Contains(got, "Source 1: literal {question} marker") {
		t.Error("placeholder-like content was rewritten")
	}
}

func TestFence(t *testing.T) {
	turns := []domain.Turn{
		{Role: domain.RoleSystem, Text: "be helpful"},
		{Role: domain.RoleUser, Text: "hello"},
		{Role: domain.RoleAssistant, Text: "hi there"},
	}

	got := Fence(turns)
	want := "[INST] <<SYS>>\nbe helpful\n<</SYS>>\n\nhello [/INST]\nhi there\n\n"
	if got != want {
		t.Errorf("Fence() = %q, want %q", got, want)
	}
}

func TestTemplates_PreserveTrailingSpaces(t *testing.T) {
	// The deployed templates end two lines with a trailing space. Byte
	// parity matters for consumers that hash or diff rendered prompts.
	if !strings.Contains(MessageTemplate, "about product information. \n") {
		t.Error("message template lost the trailing space after the assistant line")
	}
	for _, tmpl := range []string{MessageTemplate, CompletionTemplate} {
		if !strings.Contains(tmpl, "[key feature 3]. \n") {
			t.Error("template lost the trailing space after the feature-list line")
		}
	}
}

func TestTemplates_CarryPlaceholders(t *testing.T) {
	for _, tmpl := range []string{MessageTemplate, CompletionTemplate} {
		for _, ph := range []string{"{context}", "{chat_history}", "{question}"} {
			if !strings.Contains(tmpl, ph) {
				t.Errorf("template missing placeholder %s", ph)
			}
		}
	}
}

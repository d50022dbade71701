package chat

import (
	"fmt"
	"strings"

	"github.com/abbiehooper/PolicyChatbot/internal/storage/models"
	"github.com/abbiehooper/PolicyChatbot/pkg/anthropic"
)

const systemPrompt = `You are a helpful insurance policy assistant. You ONLY answer questions about the specific insurance policy provided in the next message.

RULES:
- Only answer questions based on the policy information provided
- If the policy doesn't mention something, clearly state 'This policy does not specify information about [topic]'
- Be concise and specific
- If asked about topics not in the policy, politely redirect to policy-related questions

CRITICAL CITATION FORMAT:
When you quote or reference specific text from the policy, you MUST use this exact format:
[CITE:page_number:"exact quoted text"]

For example:
- The policy states [CITE:5:"the excess is £250 for all claims"] which means you would pay this amount first.
- According to [CITE:12:"fire damage is covered under Section 3"], your property is protected.

IMPORTANT:
- Always include the page number where you found the information
- Quote the exact text from that page (or a relevant portion)
- You can have multiple citations in one response
- Every factual claim about the policy should have a citation
- The quoted text should be word-for-word from the policy

FORMATTING:
- Keep your explanations clear and helpful
- Use the citation format for all policy references`

// composeRequest builds the provider request: the instruction block, the
// policy document as a cacheable system block, and the prior turns followed
// by the new question. The document block is marked cacheable on every call;
// the backend cache is content-keyed, not session-keyed, so repeat requests
// for the same policy reuse the cached prefix automatically.
func composeRequest(model string, maxTokens int, pages []models.PolicyPage, history []models.ConversationMessage, question string) anthropic.MessagesRequest {
	system := []anthropic.SystemBlock{
		{
			Type: "text",
			Text: systemPrompt,
		},
		{
			Type:         "text",
			Text:         "POLICY DOCUMENT (with page numbers):\n\n" + buildPagesBlock(pages),
			CacheControl: &anthropic.CacheControl{Type: "ephemeral"},
		},
	}

	messages := make([]anthropic.Message, 0, len(history)+1)
	for _, msg := range history {
		messages = append(messages, anthropic.Message{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	messages = append(messages, anthropic.Message{
		Role:    "user",
		Content: question,
	})

	return anthropic.MessagesRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  messages,
	}
}

func buildPagesBlock(pages []models.PolicyPage) string {
	parts := make([]string, len(pages))
	for i, page := range pages {
		parts[i] = fmt.Sprintf("=== PAGE %d ===\n%s", page.PageNumber, page.Text)
	}
	return strings.Join(parts, "\n\n")
}

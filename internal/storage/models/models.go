package models

import (
	"time"
)

// PolicyPage is one page of extracted policy text.
type PolicyPage struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

// PolicyContent is a policy document broken into numbered pages. FullText is
// the concatenation of all pages with page markers, kept for display.
type PolicyContent struct {
	FullText string       `json:"full_text"`
	Pages    []PolicyPage `json:"pages"`
}

type ProductInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ConversationMessage is one stored turn of a session's history.
type ConversationMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // user, assistant
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Citation is one [CITE:page:"text"] marker lifted out of a generated
// answer. CitationIndex is 1-based in order of appearance within the answer.
type Citation struct {
	CitationIndex int    `json:"citation_index"`
	PageNumber    int    `json:"page_number"`
	QuotedText    string `json:"quoted_text"`
}

// ChatAnswer is a generated answer after citation extraction: the marker-free
// text plus its citations in appearance order.
type ChatAnswer struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

package model

type AnswerStatus string

const (
	AnswerStatusAnswered    AnswerStatus = "answered"
	AnswerStatusNoDocuments AnswerStatus = "no_documents"
	AnswerStatusNoMatch     AnswerStatus = "no_match"
	AnswerStatusFallback    AnswerStatus = "fallback"
)

type Section struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}

type AnswerRecord struct {
	Answer   string       `json:"answer"`
	Sections []Section    `json:"relevant_sections"`
	Status   AnswerStatus `json:"status"`
	Reason   string       `json:"reason,omitempty"`
}

func SectionsOf(chunks []Chunk) []Section {
	out := make([]Section, 0, len(chunks))
	for _, ch := range chunks {
		out = append(out, Section{Source: ch.Filename, Content: ch.Text})
	}
	return out
}

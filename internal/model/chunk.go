package model

// ChunkSpec is a span produced by the chunker. Start and End are rune offsets, End exclusive.
type ChunkSpec struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

type Chunk struct {
	Filename string `json:"filename"`
	Position int    `json:"position"`
	Text     string `json:"text"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
}

type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// RetrievalResult is ordered by score desc, then filename, then position.
type RetrievalResult struct {
	Items []ScoredChunk `json:"items"`
}

func (r RetrievalResult) Len() int {
	return len(r.Items)
}

func (r RetrievalResult) Chunks() []Chunk {
	out := make([]Chunk, 0, len(r.Items))
	for _, item := range r.Items {
		out = append(out, item.Chunk)
	}
	return out
}

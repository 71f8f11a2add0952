package model

// Document is an uploaded manual. Filename is its identity within the store.
type Document struct {
	Filename string  `json:"filename"`
	Size     int64   `json:"total_size"`
	Ctime    int64   `json:"uploaded_at"`
	Chunks   []Chunk `json:"chunks"`
}

type DocumentSummary struct {
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
	TotalSize  int64  `json:"total_size"`
	Ctime      int64  `json:"uploaded_at"`
}

func (d *Document) Summary() DocumentSummary {
	return DocumentSummary{
		Filename:   d.Filename,
		ChunkCount: len(d.Chunks),
		TotalSize:  d.Size,
		Ctime:      d.Ctime,
	}
}

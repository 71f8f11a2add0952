package handler_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/manualqa/internal/model"
	"github.com/xxxsen/manualqa/internal/pkg/errcode"
	"github.com/xxxsen/manualqa/internal/service"
)

const beltManual = "Drive system maintenance. Replace the motor belt every 500 hours of operation. " +
	"Inspect belt tension weekly and look for cracks along the inner surface."

type uploadData struct {
	Message   string                  `json:"message"`
	Documents []service.IngestOutcome `json:"documents"`
}

type listData struct {
	Documents []model.DocumentSummary `json:"documents"`
}

func answerFrom(ctx context.Context, prompt string) (string, error) {
	return "Replace the motor belt every 500 hours (manual.txt).", nil
}

func TestUploadBatch(t *testing.T) {
	router := setupRouter(t, generatorFunc(answerFrom), 0)

	env := doUpload(t, router,
		uploadFile{name: "manual.txt", content: beltManual},
		uploadFile{name: "photo.png", content: "\x89PNG\r\n\x1a\n"},
		uploadFile{field: "file", name: "blank.txt", content: "   "},
	)
	var data uploadData
	decodeData(t, env, &data)
	require.Equal(t, "1 of 3 documents processed", data.Message)
	require.Len(t, data.Documents, 3)
	require.Equal(t, "manual.txt", data.Documents[0].Filename)
	require.Equal(t, service.IngestStatusSuccess, data.Documents[0].Status)
	require.Equal(t, 1, data.Documents[0].ChunkCount)
	require.Equal(t, service.IngestStatusError, data.Documents[1].Status)
	require.Contains(t, data.Documents[1].Reason, "only PDF and TXT")
	require.Equal(t, service.IngestStatusError, data.Documents[2].Status)

	env = doUpload(t, router, uploadFile{name: "manual.txt", content: "another version"})
	decodeData(t, env, &data)
	require.Equal(t, service.IngestStatusError, data.Documents[0].Status)
	require.Contains(t, data.Documents[0].Reason, "already exists")

	var list listData
	decodeData(t, doJSON(t, router, http.MethodGet, "/api/v1/documents", nil), &list)
	require.Len(t, list.Documents, 1)
	require.Equal(t, "manual.txt", list.Documents[0].Filename)
	require.Equal(t, int64(len(beltManual)), list.Documents[0].TotalSize)
	require.Equal(t, 1, list.Documents[0].ChunkCount)
	require.NotZero(t, list.Documents[0].Ctime)
}

func TestUploadRejectsRequestsWithoutFiles(t *testing.T) {
	router := setupRouter(t, nil, 0)
	env := doUpload(t, router)
	require.Equal(t, errcode.ErrInvalidFile, env.Code)

	env = doJSON(t, router, http.MethodPost, "/api/v1/upload", map[string]string{"file": "x"})
	require.Equal(t, errcode.ErrInvalidFile, env.Code)
}

func TestUploadSizeLimit(t *testing.T) {
	router := setupRouter(t, nil, 16)
	env := doUpload(t, router,
		uploadFile{name: "small.txt", content: "belt check"},
		uploadFile{name: "big.txt", content: strings.Repeat("belt ", 10)},
	)
	var data uploadData
	decodeData(t, env, &data)
	require.Equal(t, service.IngestStatusSuccess, data.Documents[0].Status)
	require.Equal(t, service.IngestStatusError, data.Documents[1].Status)
	require.Contains(t, data.Documents[1].Reason, "upload limit")
}

func TestQuery(t *testing.T) {
	router := setupRouter(t, generatorFunc(answerFrom), 0)

	var rec model.AnswerRecord
	decodeData(t, doJSON(t, router, http.MethodPost, "/api/v1/query", map[string]string{"question": "belt?"}), &rec)
	require.Equal(t, model.AnswerStatusNoDocuments, rec.Status)
	require.NotNil(t, rec.Sections)
	require.Empty(t, rec.Sections)

	doUpload(t, router, uploadFile{name: "manual.txt", content: beltManual})

	decodeData(t, doJSON(t, router, http.MethodPost, "/api/v1/query", map[string]string{"question": "When should I replace the motor belt?"}), &rec)
	require.Equal(t, model.AnswerStatusAnswered, rec.Status)
	require.Contains(t, rec.Answer, "500 hours")
	require.Len(t, rec.Sections, 1)
	require.Equal(t, "manual.txt", rec.Sections[0].Source)

	env := doJSON(t, router, http.MethodPost, "/api/v1/query", map[string]string{"question": "   "})
	require.Equal(t, errcode.ErrInvalidQuestion, env.Code)

	req := doJSON(t, router, http.MethodPost, "/api/v1/query", "not an object")
	require.Equal(t, errcode.ErrInvalid, req.Code)
}

func TestQueryWithoutProviderFallsBack(t *testing.T) {
	router := setupRouter(t, nil, 0)
	doUpload(t, router, uploadFile{name: "manual.txt", content: beltManual})

	var rec model.AnswerRecord
	decodeData(t, doJSON(t, router, http.MethodPost, "/api/v1/query", map[string]string{"question": "motor belt"}), &rec)
	require.Equal(t, model.AnswerStatusFallback, rec.Status)
	require.Equal(t, "unavailable", rec.Reason)
	require.Len(t, rec.Sections, 1)
}

func TestDocumentLifecycle(t *testing.T) {
	router := setupRouter(t, generatorFunc(answerFrom), 0)
	doUpload(t, router,
		uploadFile{name: "manual.txt", content: beltManual},
		uploadFile{name: "coolant.txt", content: "Check coolant daily."},
	)

	var doc model.Document
	decodeData(t, doJSON(t, router, http.MethodGet, "/api/v1/documents/manual.txt", nil), &doc)
	require.Equal(t, "manual.txt", doc.Filename)
	require.Len(t, doc.Chunks, 1)
	require.Equal(t, beltManual, doc.Chunks[0].Text)

	env := doJSON(t, router, http.MethodGet, "/api/v1/documents/missing.txt", nil)
	require.Equal(t, errcode.ErrNotFound, env.Code)

	env = doJSON(t, router, http.MethodDelete, "/api/v1/documents/manual.txt", nil)
	require.Equal(t, 0, env.Code)
	env = doJSON(t, router, http.MethodDelete, "/api/v1/documents/manual.txt", nil)
	require.Equal(t, errcode.ErrNotFound, env.Code)

	var rec model.AnswerRecord
	decodeData(t, doJSON(t, router, http.MethodPost, "/api/v1/query", map[string]string{"question": "motor belt"}), &rec)
	require.Equal(t, model.AnswerStatusNoMatch, rec.Status)

	var reset struct {
		Deleted int `json:"deleted"`
	}
	decodeData(t, doJSON(t, router, http.MethodDelete, "/api/v1/documents", nil), &reset)
	require.Equal(t, 1, reset.Deleted)

	var list listData
	decodeData(t, doJSON(t, router, http.MethodGet, "/api/v1/documents", nil), &list)
	require.Empty(t, list.Documents)
}

func TestStatusEndpoints(t *testing.T) {
	router := setupRouter(t, generatorFunc(answerFrom), 0)
	doUpload(t, router, uploadFile{name: "manual.txt", content: beltManual})

	var health map[string]string
	decodeData(t, doJSON(t, router, http.MethodGet, "/api/v1/health", nil), &health)
	require.Equal(t, "running", health["status"])

	var status struct {
		AIConfigured    bool     `json:"ai_configured"`
		ModelsAvailable []string `json:"models_available"`
		DocumentsCount  int      `json:"documents_count"`
	}
	decodeData(t, doJSON(t, router, http.MethodGet, "/api/v1/api-status", nil), &status)
	require.True(t, status.AIConfigured)
	require.Equal(t, []string{"meta-llama/llama-3.2-3b-instruct:free"}, status.ModelsAvailable)
	require.Equal(t, 1, status.DocumentsCount)
}

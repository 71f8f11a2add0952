package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/xxxsen/manualqa/internal/ai"
	"github.com/xxxsen/manualqa/internal/extract"
	"github.com/xxxsen/manualqa/internal/handler"
	"github.com/xxxsen/manualqa/internal/middleware"
	"github.com/xxxsen/manualqa/internal/repo"
	"github.com/xxxsen/manualqa/internal/retriever"
	"github.com/xxxsen/manualqa/internal/service"
)

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type uploadFile struct {
	field   string
	name    string
	content string
}

func setupRouter(t *testing.T, gen ai.IGenerator, maxUploadSize int64) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	docs := repo.NewDocumentRepo()
	manager := ai.NewManager(gen, ai.ManagerConfig{Timeout: time.Second})
	synth := ai.NewSynthesizer(manager, ai.SynthesizerConfig{PromptCharBudget: 6000})
	documentService := service.NewDocumentService(docs)
	ingestService := service.NewIngestService(docs, extract.New(), nil, service.IngestConfig{ChunkTargetSize: 200, ChunkOverlap: 40})
	queryService := service.NewQueryService(docs, retriever.New(), synth, 3)

	deps := handler.RouterDeps{
		Documents: handler.NewDocumentHandler(ingestService, documentService, maxUploadSize),
		Query:     handler.NewQueryHandler(queryService),
		Status: handler.NewStatusHandler(documentService, []handler.ProviderStatus{
			{Name: "openrouter", Model: "meta-llama/llama-3.2-3b-instruct:free", Configured: gen != nil},
		}),
	}
	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)
	return engine
}

func doRequest(t *testing.T, router http.Handler, req *http.Request) envelope {
	t.Helper()
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	return env
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) envelope {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return doRequest(t, router, req)
}

func doUpload(t *testing.T, router http.Handler, files ...uploadFile) envelope {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		field := f.field
		if field == "" {
			field = "files"
		}
		w, err := mw.CreateFormFile(field, f.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("note", "manuals"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return doRequest(t, router, req)
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.Equal(t, 0, env.Code, env.Msg)
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

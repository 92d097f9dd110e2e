//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finsight-ai/finsight/internal/api/handlers"
	"github.com/finsight-ai/finsight/internal/extractor"
	"github.com/finsight-ai/finsight/internal/jobs"
	"github.com/finsight-ai/finsight/internal/repository"
	"github.com/finsight-ai/finsight/internal/server"
	"github.com/finsight-ai/finsight/internal/service"
	"github.com/finsight-ai/finsight/internal/storage"
	"github.com/finsight-ai/finsight/internal/testutil"
)

const testAPIKey = "e2e-test-key"

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	RustFSC      *testutil.RustFSContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	S3Client     *storage.S3Client
	Worker       *jobs.Worker
	BinaryDir    string
	RawDir       string
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with containers, a running
// server, and the embedding worker polling at test speed.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "test-raw-transcripts",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	rawDir, err := os.MkdirTemp("", "finsight-raw-*")
	if err != nil {
		t.Fatalf("failed to create raw dir: %v", err)
	}

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser, worker := startServer(t, pool, s3Client, rawDir, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		RustFSC:      s3C,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		S3Client:     s3Client,
		Worker:       worker,
		RawDir:       rawDir,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.Worker != nil {
		e.Worker.Stop()
	}
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
	if e.RawDir != "" {
		os.RemoveAll(e.RawDir)
	}
}

// BuildBinaries builds the finsight and finsightd binaries
func (e *E2ETestEnv) BuildBinaries() {
	tmpDir, err := os.MkdirTemp("", "finsight-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, "finsightd"), "./cmd/finsightd")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build finsightd: %v\n%s", err, out)
	}

	cmd = exec.Command("go", "build", "-o", filepath.Join(tmpDir, "finsight"), "./cmd/finsight")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build finsight: %v\n%s", err, out)
	}
}

// RunFinsight runs the finsight CLI against the test server
func (e *E2ETestEnv) RunFinsight(args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "finsight"), args...)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("FINSIGHT_API_KEY=%s", testAPIKey),
		fmt.Sprintf("FINSIGHT_API_URL=%s", e.ServerURL),
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// WaitForChunks polls until at least n transcript chunks exist
func (e *E2ETestEnv) WaitForChunks(n int, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		var count int64
		if err := e.Pool.QueryRow(e.Ctx, "SELECT COUNT(*) FROM transcript_chunks").Scan(&count); err == nil && count >= int64(n) {
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	e.T.Fatalf("embedding worker did not produce %d chunks within %v", n, timeout)
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs an authenticated GET request
func (e *E2ETestEnv) Get(path string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil, testAPIKey)
}

// Post performs an authenticated POST request
func (e *E2ETestEnv) Post(path string, body interface{}) (*APIResponse, error) {
	return e.doRequest("POST", path, body, testAPIKey)
}

// Delete performs an authenticated DELETE request
func (e *E2ETestEnv) Delete(path string) (*APIResponse, error) {
	return e.doRequest("DELETE", path, nil, testAPIKey)
}

// GetUnauthenticated performs a GET request without credentials
func (e *E2ETestEnv) GetUnauthenticated(path string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil, "")
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, apiKey string) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNoContent {
		return &APIResponse{}, nil
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// stubLLM is a deterministic stand-in for the model backend. Embeddings are
// bag-of-words vectors hashed into dimensions 1..767 plus a fixed baseline on
// dimension 0, so any query clears the retrieval threshold while ranking still
// follows shared vocabulary.
type stubLLM struct{}

func (s *stubLLM) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, 768)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(strings.Trim(word, ".,:;!?()\"'")))
		v[1+h.Sum32()%767]++
	}
	var norm float64
	for _, x := range v[1:] {
		norm += float64(x) * float64(x)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range v[1:] {
			v[i+1] *= scale
		}
	}
	v[0] = 2
	norm = 0
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v, nil
}

func (s *stubLLM) Complete(_ context.Context, _, prompt string) (string, error) {
	// Echo the first context tag so grounding assertions have something real
	if idx := strings.Index(prompt, "["); idx >= 0 {
		if end := strings.Index(prompt[idx:], "]"); end > 0 {
			return fmt.Sprintf("Based on the transcripts, revenue grew strongly %s.", prompt[idx:idx+end+1]), nil
		}
	}
	return "Based on the transcripts, revenue grew strongly.", nil
}

func (s *stubLLM) Ping(_ context.Context) error {
	return nil
}

// startServer wires the full stack with the sample transcript source and the
// stub model backend, and starts the embedding worker at a fast poll interval.
func startServer(t *testing.T, pool *pgxpool.Pool, s3Client *storage.S3Client, rawDir string, port int) (string, func(), *jobs.Worker) {
	transcriptRepo := repository.NewTranscriptRepository(pool)
	chunkRepo := repository.NewTranscriptChunkRepository(pool)
	jobRepo := repository.NewEmbeddingJobRepository(pool)
	queryLogRepo := repository.NewQueryLogRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	llm := &stubLLM{}

	store := extractor.NewRawStore(rawDir).WithArchiver(s3Client)
	ext := extractor.New([]extractor.Source{extractor.NewSampleSource()}, store)

	extractionSvc := service.NewExtractionService(ext, txRunner)
	embeddingSvc := service.NewEmbeddingService(llm, transcriptRepo, chunkRepo)
	transcriptSvc := service.NewTranscriptService(transcriptRepo, chunkRepo)
	ragSvc := service.NewRAGService(llm, llm, chunkRepo, queryLogRepo)
	statsSvc := service.NewStatsService(transcriptRepo, chunkRepo, jobRepo)

	worker := jobs.NewWorker(jobs.NewEmbeddingWorker(jobRepo, embeddingSvc), 100*time.Millisecond)
	go worker.Start(context.Background())

	router := server.NewRouter(server.RouterConfig{
		APIKey:            testAPIKey,
		CompanyHandler:    handlers.NewCompanyHandler(),
		ExtractHandler:    handlers.NewExtractHandler(extractionSvc),
		TranscriptHandler: handlers.NewTranscriptHandler(transcriptSvc),
		QueryHandler:      handlers.NewQueryHandler(ragSvc),
		StatsHandler:      handlers.NewStatsHandler(statsSvc),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}, worker
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

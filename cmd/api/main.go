// @title           Document Knowledge Base API
// @version         1.0
// @description     Asynchronous document ingestion, deletion and question answering over a multi-store knowledge base.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"kbase/internal/config"
	"kbase/internal/data/redisStore"
	"kbase/internal/data/store"
	jobmodel "kbase/internal/domain/jobModel"
	"kbase/internal/handlers"
	"kbase/internal/job"
	"kbase/internal/kb"
	"kbase/internal/kb/blobStore/redisBlobStore"
	"kbase/internal/kb/deletion"
	"kbase/internal/kb/docStore/redisDocStore"
	"kbase/internal/kb/embedding/googleEmbedding"
	"kbase/internal/kb/extract"
	"kbase/internal/kb/ingest"
	"kbase/internal/kb/llm"
	"kbase/internal/kb/llm/gemini"
	"kbase/internal/kb/llm/openaiLLM"
	"kbase/internal/kb/vectorIndex/qdrantIndex"
	"kbase/internal/server"
	"kbase/internal/worker"
	"kbase/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config - .env is optional, real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using process environment")
	}
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	logger.Info("Starting job service")

	jobRedis, err := redisStore.NewStore(serviceContext, config.RedisAddr, config.RedisPassword, config.RedisJobStore)
	if err != nil {
		logger.Error("Redis job store is offline, falling back to in-memory", "error", err)
		serviceConfig.JobStore = store.InitInMemoryJobStore()
	} else {
		serviceConfig.JobStore = store.NewRedisJobStore(jobRedis)
	}
	service := job.InitJobService(serviceConfig)

	//the chunk and blob stores have no in-memory fallback: without them the
	//knowledge base has no data to serve
	docRedis, err := redisStore.NewStore(serviceContext, config.RedisAddr, config.RedisPassword, config.RedisDocumentStore)
	if err != nil {
		logger.Error("Document store is offline. Shutting down.", "error", err)
		return
	}
	blobRedis, err := redisStore.NewStore(serviceContext, config.RedisAddr, config.RedisPassword, config.RedisBlobStore)
	if err != nil {
		logger.Error("Blob store is offline. Shutting down.", "error", err)
		return
	}
	chunks := redisDocStore.NewStore(docRedis)
	blobs := redisBlobStore.NewStore(blobRedis)

	vectors, err := qdrantIndex.NewIndex(serviceContext, config.QdrantHost, config.QdrantGrpcPort)
	if err != nil {
		logger.Error("Vector index failed to initialize. Shutting down.", "error", err)
		return
	}

	embedder, err := googleEmbedding.NewClient(serviceContext, config.GoogleEmbeddingModel, os.Getenv(config.GoogleAPIKeyEnv))
	if err != nil {
		logger.Error("Embedding client failed to initialize. Shutting down.", "error", err)
		return
	}

	var llmProvider llm.Provider
	switch config.AnswerProvider {
	case "openai":
		llmProvider = openaiLLM.NewClient(config.OpenAIModelName, os.Getenv(config.OpenAIAPIKeyEnv))
	default:
		llmProvider, err = gemini.NewClient(serviceContext, config.GeminiModelName, os.Getenv(config.GoogleAPIKeyEnv))
		if err != nil {
			logger.Error("LLM provider failed to initialize. Shutting down.", "error", err)
			return
		}
	}

	ingester := ingest.NewEngine(blobs, chunks, vectors, embedder, extract.NewFileExtractor())
	deleter := deletion.NewEngine(blobs, chunks, vectors)
	kbService := kb.NewServiceWithEngines(vectors, chunks, blobs, llmProvider, embedder, ingester, deleter)

	handlers.InitJobHandler(service, kbService)

	//init worker pool
	worker.InitServices(service, kbService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

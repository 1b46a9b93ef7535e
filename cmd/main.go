package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/panjf2000/ants/v2"
	"github.com/projectsmartedu/SmartEducation/application/ports/outbound"
	"github.com/projectsmartedu/SmartEducation/application/services"
	"github.com/projectsmartedu/SmartEducation/config"
	"github.com/projectsmartedu/SmartEducation/infrastructure/adapters"
	"github.com/projectsmartedu/SmartEducation/infrastructure/gin_interface/controllers"
	"github.com/projectsmartedu/SmartEducation/middleware"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			log.Fatal().Err(err).Msg("Failed to load .env file")
		}
	}

	appConfig, err := config.GetAppConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get app config")
	}

	pipelineConfig, err := config.GetPipelineConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get pipeline config")
	}

	renderConfig, err := config.GetRenderConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get render config")
	}

	mediaConfig, err := config.GetMediaConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get media config")
	}

	elevenLabsConfig, err := config.GetElevenLabsConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get eleven labs config")
	}

	s3Config, err := config.GetS3Config()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get s3 config")
	}

	dynamoConfig, err := config.GetDynamoConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get dynamo config")
	}

	authConfig, err := config.GetAuthConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get auth config")
	}

	zeroLogger := adapters.NewZerologWrapper(appConfig.LogLevel)

	panicHandler := func(p interface{}) {
		zeroLogger.Error(fmt.Errorf("%v", p), "Panic in worker pool")
	}

	workerPool, err := ants.NewPool(appConfig.WorkerPoolSize, ants.WithPanicHandler(panicHandler))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create worker pool")
	}
	defer workerPool.Release()

	var sess *session.Session
	if s3Config.Enabled() || dynamoConfig.Enabled() {
		sess = session.Must(session.NewSessionWithOptions(session.Options{
			SharedConfigState: session.SharedConfigEnable,
		}))
	}

	var archive outbound.ArtifactArchivePort = adapters.NewNoopArtifactArchive()
	if s3Config.Enabled() {
		s3Client := s3.New(sess, aws.NewConfig().WithRegion(s3Config.Region))
		archive = adapters.NewS3ArtifactArchive(zeroLogger, s3Client, s3Config)
	}

	journal := adapters.NewLoggingJobJournal(zeroLogger)
	if dynamoConfig.Enabled() {
		journal = adapters.NewDynamoJobJournal(zeroLogger, dynamodb.New(sess), dynamoConfig)
	}

	artifactStore := adapters.NewLocalArtifactStore(appConfig.WorkDir, zeroLogger)

	commandRunner := adapters.NewExecRunner()

	contentFetcher := adapters.NewContentFetcher(zeroLogger, &http.Client{Timeout: 10 * time.Minute})

	textExtractor := adapters.NewDocumentTextExtractor(zeroLogger)

	sceneRenderer := adapters.NewCommandSceneRenderer(zeroLogger, artifactStore, commandRunner, renderConfig)

	narrator := adapters.NewElevenLabsNarrator(contentFetcher, artifactStore, elevenLabsConfig, zeroLogger)

	mediaMuxer := adapters.NewFFmpegMediaMuxer(zeroLogger, artifactStore, commandRunner, mediaConfig)

	storyboardStrategy := services.NewPrefixStoryboardStrategy(pipelineConfig)

	jobTracker := services.NewJobTracker(pipelineConfig.JobRetention)

	explainerPipeline := services.NewExplainerPipeline(
		zeroLogger,
		artifactStore,
		textExtractor,
		storyboardStrategy,
		sceneRenderer,
		narrator,
		mediaMuxer,
		jobTracker,
		journal,
		archive,
		workerPool,
		pipelineConfig,
	)

	explainerController := controllers.NewExplainerController(zeroLogger, explainerPipeline, jobTracker)

	router := gin.Default()

	err = router.SetTrustedProxies(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set trusted proxies!")
	}

	if authConfig.Enabled() {
		authHandler, err := middleware.NewAuthHandler(authConfig, zeroLogger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create auth handler!")
		}
		router.Use(authHandler.AuthMiddleware())
	} else {
		zeroLogger.Warn("JWKS_URL is not set, API requests are not authenticated")
	}

	explainerController.RegisterRoutes(router)

	zeroLogger.InfoWithFields("Starting server", map[string]interface{}{
		"addr":     appConfig.HTTPAddr,
		"work_dir": appConfig.WorkDir,
	})
	err = router.Run(appConfig.HTTPAddr)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start server!")
	}
}

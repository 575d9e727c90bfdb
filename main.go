package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"emotion-video-server/modules/common/config"
	"emotion-video-server/modules/common/credit"
	"emotion-video-server/modules/common/database"
	"emotion-video-server/modules/common/events"
	redisClient "emotion-video-server/modules/common/redis"
	"emotion-video-server/modules/common/storage"
	"emotion-video-server/modules/did"
	"emotion-video-server/modules/enhance"
	"emotion-video-server/modules/generation"
	"emotion-video-server/modules/media"
	"emotion-video-server/modules/studio"
	"emotion-video-server/modules/validation"
	"emotion-video-server/modules/worker"
)

// CORS 미들웨어
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// 헬스 체크 엔드포인트
func healthCheck(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "healthy",
			"service":     "emotion-video-server",
			"providerKey": cfg.HasDIDKey(),
			"queue":       cfg.RedisEnabled() && cfg.SupabaseEnabled(),
		})
	}
}

// 서버 메트릭 조회 엔드포인트
func getMetrics(manager *studio.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"server": manager.Metrics(),
		})
	}
}

// 유휴 세션 강제 정리 (관리자용)
func forceCleanupSessions(manager *studio.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cleaned := manager.CleanupIdle(0)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "Cleanup completed",
			"cleaned": cleaned,
		})
	}
}

func main() {
	// 환경변수 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bannedWords := cfg.BannedWords
	if len(bannedWords) == 0 {
		bannedWords = validation.DefaultBannedWords
	}

	// 프로바이더/향상 서비스
	provider := did.NewService(did.LoadConfig(cfg))
	enhancer := enhance.NewEnhancer(cfg)

	// Supabase (작업 저장, 보관 스토리지, 크레딧)
	dbClient := database.NewClient(cfg)

	var options []generation.Option

	// 결과 보관
	archiver, err := newArchiver(ctx, cfg, dbClient)
	if err != nil {
		log.Fatalf("❌ Failed to initialize archive storage: %v", err)
	}
	if archiver != nil {
		var thumbnail storage.ThumbnailFunc
		if cfg.FFmpegEnabled {
			thumbnail = media.ExtractThumbnail
		}
		options = append(options, generation.WithFinalizer(storage.NewVideoFinalizer(archiver, thumbnail)))
	}

	// 이벤트 발행 (Kafka)
	if cfg.KafkaEnabled() {
		publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Printf("⚠️  Kafka publisher disabled: %v", err)
		} else {
			defer publisher.Close()
			options = append(options, generation.WithPublisher(publisher))
		}
	}

	orchestrator := generation.NewOrchestrator(provider, generation.OptionsFromConfig(cfg), options...)

	// 위저드 세션
	hub := studio.NewHub()
	manager := studio.NewManager(enhancer, orchestrator, bannedWords, hub)
	manager.StartCleanupRoutine(ctx)

	// 라우터 설정
	r := mux.NewRouter()

	// CORS 미들웨어 적용
	r.Use(enableCORS)

	// 라우트 설정
	r.HandleFunc("/", healthCheck(cfg)).Methods("GET")
	r.HandleFunc("/health", healthCheck(cfg)).Methods("GET")
	r.HandleFunc("/metrics", getMetrics(manager)).Methods("GET")
	r.HandleFunc("/admin/cleanup", forceCleanupSessions(manager)).Methods("POST")

	studio.NewHandler(ctx, manager, hub, provider, bannedWords).RegisterRoutes(r)

	// Redis Queue Worker (Redis + Supabase 둘 다 있을 때만)
	if rdb := redisClient.Connect(cfg); rdb != nil && dbClient != nil {
		defer rdb.Close()
		store := redisClient.NewJobStore(rdb)

		credits := credit.NewClient(dbClient.Supabase(), cfg.VideoCreditPrice)
		log.Printf("💰 Credit deduction enabled: %d credits per video", credits.Price())
		jobWorker := worker.NewWorker(store, dbClient, orchestrator, enhancer, credits, bannedWords)
		go jobWorker.Start(ctx)

		worker.NewEnqueueHandler(store, dbClient, bannedWords).RegisterRoutes(r)
		worker.NewCancelHandler(store, dbClient).RegisterRoutes(r)
	} else {
		log.Println("⚠️  Redis or Supabase not configured, job queue disabled")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("🚀 Emotion Video Server starting on port %s", cfg.Port)
	log.Printf("📡 WebSocket endpoint: ws://localhost:%s/ws?session={id}", cfg.Port)
	log.Printf("❤️  Health check: http://localhost:%s/health", cfg.Port)
	log.Printf("📊 Metrics: http://localhost:%s/metrics", cfg.Port)
	log.Printf("🧹 Admin cleanup: http://localhost:%s/admin/cleanup", cfg.Port)

	go func() {
		<-ctx.Done()
		log.Println("🛑 Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("❌ Server shutdown error: %v", err)
		}
	}()

	// 서버 시작
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed to start: %v", err)
	}
	log.Println("👋 Server stopped")
}

// newArchiver - Supabase 백엔드는 작업 DB와 같은 클라이언트 사용
func newArchiver(ctx context.Context, cfg *config.Config, dbClient *database.Client) (storage.Archiver, error) {
	if dbClient == nil {
		return storage.NewArchiver(ctx, cfg, nil)
	}
	return storage.NewArchiver(ctx, cfg, dbClient.Supabase())
}

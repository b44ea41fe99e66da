package main

import (
	"fmt"
	"log"
	"net/http"

	"coursegen/config"
	"coursegen/db"
	"coursegen/handlers"
	"coursegen/services"
	"coursegen/services/agent"
	"coursegen/services/chat"
	"coursegen/services/course"
	"coursegen/services/deepcourse"
	"coursegen/services/diagram"
	"coursegen/services/exercise"

	"github.com/gorilla/mux"
	"github.com/tmc/langchaingo/llms/openai"
)

func main() {
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DB_URL environment variable is required")
	}

	if cfg.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required")
	}

	if cfg.AnthropicAPIKey == "" {
		log.Fatal("ANTHROPIC_API_KEY environment variable is required")
	}

	documentRepo, err := db.NewPostgresDocumentRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize document database: %v", err)
	}
	defer documentRepo.Close()

	sessionRepo, err := db.NewPostgresSessionRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize session database: %v", err)
	}
	defer sessionRepo.Close()

	chapterRepo, err := db.NewPostgresChapterRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize chapter database: %v", err)
	}
	defer chapterRepo.Close()

	deepCourseRepo, err := db.NewPostgresDeepCourseRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize deepcourse database: %v", err)
	}
	defer deepCourseRepo.Close()

	userRepo, err := db.NewPostgresUserRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize user database: %v", err)
	}
	defer userRepo.Close()

	llm, err := openai.New(
		openai.WithModel("gpt-4o-mini"),
		openai.WithToken(cfg.OpenAIAPIKey),
	)
	if err != nil {
		log.Fatalf("Failed to create OpenAI client: %v", err)
	}

	documentStore := services.NewDocumentStoreService(documentRepo, sessionRepo)
	deepCourseStore := services.NewDeepCourseStoreService(deepCourseRepo, chapterRepo, documentStore)
	sessionService := services.NewSessionService(sessionRepo)
	userService := services.NewUserService(userRepo)
	gradingService := services.NewGradingService(llm)

	diagramService := diagram.NewService(cfg.KrokiURL)
	exerciseService := exercise.NewService(llm, documentStore)
	courseService := course.NewService(llm, diagramService, documentStore)
	deepCourseService := deepcourse.NewService(llm, exerciseService, courseService, deepCourseStore)

	agentTree := agent.NewAgentTree(exerciseService, courseService, deepCourseService, documentStore, deepCourseStore)
	agentService := agent.NewService(cfg.AnthropicAPIKey, agentTree)
	chatService := chat.NewService(agentService, sessionService)

	chatHandler := handlers.NewChatHandler(chatService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	documentHandler := handlers.NewDocumentHandler(documentStore, gradingService)
	chapterHandler := handlers.NewChapterHandler(deepCourseStore)
	userHandler := handlers.NewUserHandler(userService)

	router := mux.NewRouter()

	router.Use(corsMiddleware)
	router.Use(jsonMiddleware)

	router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("OPTIONS")

	chatHandler.RegisterRoutes(router)
	sessionHandler.RegisterRoutes(router)
	documentHandler.RegisterRoutes(router)
	chapterHandler.RegisterRoutes(router)
	userHandler.RegisterRoutes(router)

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")

	addr := ":" + cfg.Port
	fmt.Printf("Server starting on port %s\n", cfg.Port)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy"}`))
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskflow/backend/authz"
	"taskflow/backend/handlers"
	"taskflow/backend/logging"
	"taskflow/backend/middleware"
	"taskflow/backend/repositories"
	"taskflow/backend/services"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createUserEmailIndex(collection *mongo.Collection) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.M{"email": 1},
		Options: options.Index().SetUnique(true),
	}
	_, err := collection.Indexes().CreateOne(context.TODO(), indexModel)
	if err != nil {
		return fmt.Errorf("failed to create unique index on user email: %v", err)
	}
	return nil
}

func main() {
	logging.InitLogger()

	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting TaskFlow backend...")
	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(context.TODO())

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)
	usersCollection := db.Collection("users")
	projectsCollection := db.Collection("projects")
	tasksCollection := db.Collection("tasks")

	if err := createUserEmailIndex(usersCollection); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
	}

	breaker := repositories.NewMongoBreaker()
	userRepo := repositories.NewUserMongoRepository(usersCollection, breaker)
	projectRepo := repositories.NewProjectMongoRepository(projectsCollection, breaker)
	taskRepo := repositories.NewTaskMongoRepository(tasksCollection, breaker)

	authorizer := authz.NewAuthorizer(repositories.Store{
		Users:    userRepo,
		Projects: projectRepo,
		Tasks:    taskRepo,
	})
	blacklist := services.NewTokenBlacklist()

	authService := services.NewAuthService(userRepo, blacklist)
	userService := services.NewUserService(userRepo, projectRepo, authorizer)
	projectService := services.NewProjectService(projectRepo, taskRepo, userRepo, authorizer)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo, authorizer)

	if err := authService.EnsureDefaultUsers(ctx); err != nil {
		logging.Logger.Fatalf("Event ID: SEED_FAILED, Description: %v", err)
	}

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)

	r := mux.NewRouter()

	r.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/auth/logout", authHandler.Logout).Methods("GET")

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(middleware.Auth(blacklist))

	protected.HandleFunc("/auth/me", authHandler.Me).Methods("GET")

	protected.HandleFunc("/users", userHandler.ListUsers).Methods("GET")
	protected.HandleFunc("/users", userHandler.CreateUser).Methods("POST")
	protected.HandleFunc("/users/{id}", userHandler.UpdateUser).Methods("PUT")
	protected.HandleFunc("/users/{id}", userHandler.DeleteUser).Methods("DELETE")

	protected.HandleFunc("/projects", projectHandler.ListProjects).Methods("GET")
	protected.HandleFunc("/projects", projectHandler.CreateProject).Methods("POST")
	protected.HandleFunc("/projects/{id}", projectHandler.UpdateProject).Methods("PUT")
	protected.HandleFunc("/projects/{id}", projectHandler.DeleteProject).Methods("DELETE")

	protected.HandleFunc("/tasks", taskHandler.ListTasks).Methods("GET")
	protected.HandleFunc("/tasks", taskHandler.CreateTask).Methods("POST")
	protected.HandleFunc("/tasks/{id}", taskHandler.UpdateTask).Methods("PUT")
	protected.HandleFunc("/tasks/{id}", taskHandler.DeleteTask).Methods("DELETE")

	corsRouter := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins([]string{"*"}),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(r)

	serverPort := os.Getenv("PORT")
	if serverPort == "" {
		serverPort = "5050"
	}

	serverAddress := fmt.Sprintf(":%s", serverPort)
	server := &http.Server{
		Handler: corsRouter,
		Addr:    serverAddress,
	}

	go func() {
		logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	logging.Logger.Infof("Event ID: SERVER_SHUTDOWN, Description: Received %s, shutting down gracefully...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_SHUTDOWN_FAILED, Description: Cannot gracefully shut down: %v", err)
	}
	logging.Logger.Info("Event ID: SERVER_STOPPED, Description: Server stopped.")
}

package main

import (
	"os"

	"github.com/benbeisheim/chessboard-backend/internal/config"
	"github.com/benbeisheim/chessboard-backend/internal/controller"
	"github.com/benbeisheim/chessboard-backend/internal/middleware"
	"github.com/benbeisheim/chessboard-backend/internal/model"
	"github.com/benbeisheim/chessboard-backend/internal/service"
	"github.com/benbeisheim/chessboard-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	log.SetLevel(cfg.Level())

	store, err := storage.Open(cfg.DataDir)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer store.Close()

	// Initialize services
	rules := model.Rules{Strict: cfg.StrictRules}
	gameManager := service.NewGameManager(rules, store)
	restored, err := gameManager.Restore()
	if err != nil {
		log.Fatalf("restore games: %v", err)
	}
	log.Infof("restored %d games (strict rules: %t)", restored, cfg.StrictRules)
	gameService := service.NewGameService(gameManager)

	app := newApp(cfg, gameService)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Errorf("listen: %v", err)
	}
}

func newApp(cfg config.Config, gameService *service.GameService) *fiber.App {
	app := fiber.New()

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Client-ID",
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize controllers
	gameController := controller.NewGameController(gameService, cfg.RenderSize)
	wsController := controller.NewWebSocketController(gameService)

	// Set up WebSocket routes
	app.Use("/ws/*", middleware.EnsureClientID())
	app.Get("/ws/board/:gameId", middleware.WebSocketUpgrade(), websocket.New(wsController.HandleConnection, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}))

	// Set up REST routes
	api := app.Group("/api")
	api.Get("/legal", controller.CheckMove)

	boardRoutes := api.Group("/board", middleware.EnsureClientID())
	boardRoutes.Get("/", gameController.ListGames)
	boardRoutes.Post("/create", gameController.CreateGame)
	boardRoutes.Get("/:gameId", gameController.GetGameState)
	boardRoutes.Delete("/:gameId", gameController.DeleteGame)
	boardRoutes.Post("/:gameId/click", gameController.Click)
	boardRoutes.Post("/:gameId/move", gameController.Move)
	boardRoutes.Post("/:gameId/reset", gameController.Reset)
	boardRoutes.Get("/:gameId/render.svg", gameController.RenderSVG)
	boardRoutes.Get("/:gameId/render.png", gameController.RenderPNG)

	return app
}

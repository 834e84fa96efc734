package main

import (
	"context"
	"fmt"
	"os"

	"github.com/xuanji/bazi-backend/internal/clients/jieqi"
	"github.com/xuanji/bazi-backend/internal/db"
	"github.com/xuanji/bazi-backend/internal/handlers"
	"github.com/xuanji/bazi-backend/internal/logger"
	"github.com/xuanji/bazi-backend/internal/repos"
	"github.com/xuanji/bazi-backend/internal/server"
	"github.com/xuanji/bazi-backend/internal/services"
	"github.com/xuanji/bazi-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	fourPillarRepo := repos.NewFourPillarRepo(thePG, log)
	rulesetRepo := repos.NewRulesetRepo(thePG, log)
	tenGodRepo := repos.NewTenGodRepo(thePG, log)
	seasonStateRepo := repos.NewSeasonStateRepo(thePG, log)
	dayunRepo := repos.NewDayunRepo(thePG, log)
	supportRepo := repos.NewSupportRepo(thePG, log)
	drainRepo := repos.NewDrainRepo(thePG, log)

	// Solar term source; nil provider means approximate calendar only.
	var termProvider jieqi.Provider
	if httpProvider := jieqi.NewHTTPProvider(log, jieqi.ConfigFromEnv(log)); httpProvider != nil {
		termProvider = httpProvider
	} else {
		log.Warn("No solar term source configured, dayun will use the approximate calendar")
	}

	// Services
	log.Info("Setting up services from main...")
	rulesetResolver := services.NewRulesetResolver(thePG, log, rulesetRepo)
	if seedPath := utils.GetEnv("RULESET_SEED_PATH", "", log); seedPath != "" {
		if err := rulesetResolver.SeedFromFile(context.Background(), seedPath); err != nil {
			log.Error("Ruleset seeding failed", "path", seedPath, "error", err)
			os.Exit(1)
		}
	}
	dayunService := services.NewDayunService(thePG, log, fourPillarRepo, dayunRepo, termProvider)
	dezhuService := services.NewDezhuService(thePG, log, rulesetResolver, fourPillarRepo, tenGodRepo, supportRepo)
	kexieService := services.NewKexieService(thePG, log, rulesetResolver, fourPillarRepo, seasonStateRepo, drainRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	dayunHandler := handlers.NewDayunHandler(dayunService)
	dezhuHandler := handlers.NewDezhuHandler(dezhuService)
	kexieHandler := handlers.NewKexieHandler(kexieService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		DayunHandler: dayunHandler,
		DezhuHandler: dezhuHandler,
		KexieHandler: kexieHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/nanohard/petal-lottery-bot/pkg/config"
	"github.com/nanohard/petal-lottery-bot/pkg/db"
	"github.com/nanohard/petal-lottery-bot/pkg/equipment"
	"github.com/nanohard/petal-lottery-bot/pkg/logger"
	"github.com/nanohard/petal-lottery-bot/pkg/service"
)

type bot struct {
	conf      *config.Config
	loc       *time.Location
	lotteries *service.LotteryService
	squads    *service.SquadService
	inventory *service.InventoryService
	requests  *requestFiler
	ready     atomic.Bool
	now       func() time.Time
}

func main() {
	if err := run(); err != nil {
		log.Fatalln(err)
	}
}

func run() error {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yml"
	}
	conf, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err := logger.Init(conf.Log.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer zap.L().Sync()

	loc, err := conf.Location()
	if err != nil {
		return fmt.Errorf("conf.Location -> %w", err)
	}

	table, err := equipment.LoadTable(conf.Equipment.TablePath)
	if err != nil {
		return fmt.Errorf("failed to load equipment table -> %w", err)
	}

	store, err := db.Open(conf.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}
	defer store.Close()

	biomes := conf.Equipment.BiomeNames()
	b := &bot{
		conf:      conf,
		loc:       loc,
		lotteries: service.NewLotteryService(store, store, conf.Access.LurerUserIDs, biomes, conf.Lottery.Seed),
		squads:    service.NewSquadService(store, store, biomes),
		inventory: service.NewInventoryService(store, table, conf.Equipment.Biomes, conf.Roles.Grants),
		now:       time.Now,
	}
	if conf.GitHub.Enabled() {
		b.requests = newRequestFiler(conf.GitHub)
	}

	session, err := discordgo.New("Bot " + conf.Discord.Token)
	if err != nil {
		return fmt.Errorf("discordgo.New -> %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.ready.Store(true)
		zap.L().Info("connected to discord", zap.String("user", r.User.Username), zap.Int("guilds", len(r.Guilds)))
	})
	session.AddHandler(func(s *discordgo.Session, d *discordgo.Disconnect) {
		b.ready.Store(false)
		zap.L().Warn("disconnected from discord")
	})
	session.AddHandler(b.onInteraction)

	if err := session.Open(); err != nil {
		return fmt.Errorf("session.Open -> %w", err)
	}
	defer session.Close()

	registered, err := session.ApplicationCommandBulkOverwrite(conf.Discord.AppID, conf.Discord.GuildID, commandDefinitions(biomes, b.requests != nil))
	if err != nil {
		return fmt.Errorf("session.ApplicationCommandBulkOverwrite -> %w", err)
	}
	zap.L().Info("registered commands", zap.Int("count", len(registered)), zap.String("guild", conf.Discord.GuildID))

	srv := &http.Server{
		Addr:              ":" + conf.Web.Port,
		Handler:           newRouter(b.ready.Load),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zap.L().Info(fmt.Sprintf("keep-alive server listening at %v", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("keep-alive server stopped", zap.Error(err))
		}
	}()

	// Block until SIGINT or SIGTERM, then close the server; the deferred
	// calls close the gateway session and the store.
	gracefulStop := make(chan os.Signal, 1)
	signal.Notify(gracefulStop, syscall.SIGINT, syscall.SIGTERM)
	<-gracefulStop
	zap.L().Info("preparing to shut down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("srv.Shutdown", zap.Error(err))
	}

	zap.L().Info("exiting")
	return nil
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/pancake-gg/qotd/internal/config"
	"github.com/pancake-gg/qotd/internal/core"
	"github.com/pancake-gg/qotd/internal/handler"
	"github.com/pancake-gg/qotd/internal/history"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	postAt, err := core.ParseTimeOfDay(cfg.PostTime)
	if err != nil {
		return errors.Wrap(err, "parsing post time")
	}

	var recorder core.Recorder
	var viewer handler.HistoryViewer
	if cfg.HistoryDBPath != "" {
		hist, err := history.Open(cfg.HistoryDBPath)
		if err != nil {
			return errors.Wrap(err, "opening history store")
		}
		defer hist.Close()
		recorder = hist
		viewer = hist
	}

	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return errors.Wrap(err, "creating discord session")
	}

	discordClient := handler.NewDiscordClientWrapper(dg)
	bot := core.NewBot(discordClient, recorder, cfg.ChannelID, cfg.RoleID)

	// cancelled on shutdown to stop the daily scheduler
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := handler.NewHandler(bot, viewer, cfg.AuthorizedUsers, func() {
		go core.RunDaily(ctx, postAt, func() {
			if err := bot.PostDaily(); err != nil {
				slog.Error("daily post failed", "error", err)
			}
		})
	})

	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("READY event", "user", r.User.Username, "guilds", len(r.Guilds))
		h.OnReady(s, r)
	})
	dg.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		h.OnInteractionCreate(s, i)
	})

	// slash commands and channel sends need no privileged intents
	dg.Identify.Intents = discordgo.IntentsGuilds

	if err := dg.Open(); err != nil {
		return errors.Wrap(err, "opening discord connection")
	}
	defer dg.Close()

	slog.Info("connected", "botID", dg.State.User.ID, "username", dg.State.User.Username,
		"channel", cfg.ChannelID, "postTime", cfg.PostTime)

	// wait for interrupt
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	slog.Info("shutting down")
	return nil
}

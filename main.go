package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rook-computer/emogen/internal/colorcode"
	"github.com/rook-computer/emogen/internal/config"
	"github.com/rook-computer/emogen/internal/fontsource"
	"github.com/rook-computer/emogen/internal/logger"
	"github.com/rook-computer/emogen/internal/moji"
	"github.com/rook-computer/emogen/internal/render"
	"github.com/rook-computer/emogen/internal/state"
	"github.com/rook-computer/emogen/internal/web"
)

const envStdioLog = "EMOGEN_STDIO_LOG"

func main() {
	configPath := flag.String("config", "", "TOML config file (optional)")
	listenAddr := flag.String("listen", "", "http listen address; also configurable via "+web.EnvListenAddr)
	devMode := flag.Bool("dev", false, "enable dev mode (permissive CORS); also configurable via "+web.EnvDevMode)
	debug := flag.Bool("debug", false, "log at debug level regardless of log.level")
	stdioLog := flag.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via "+envStdioLog)
	writeConfig := flag.String("write-config", "", "write the default config to this path and exit")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.DefaultConfig().Save(*writeConfig); err != nil {
			fmt.Println("write config error:", err)
			os.Exit(1)
		}
		fmt.Println("wrote default config to", *writeConfig)
		return
	}

	// Best-effort: send crash output to a file when running detached.
	logPath := *stdioLog
	if logPath == "" {
		logPath = os.Getenv(envStdioLog)
	}
	if logPath != "" {
		if err := redirectStdIO(logPath); err != nil {
			fmt.Println("stdio log redirect error:", err)
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}

	serverCfg, err := web.DefaultServerConfigFromEnv(web.ServerConfig{
		ListenAddr: cfg.Server.Listen,
		DevMode:    cfg.Server.Dev,
	})
	if err != nil {
		fmt.Println("server config error:", err)
		os.Exit(2)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			serverCfg.ListenAddr = *listenAddr
		case "dev":
			serverCfg.DevMode = *devMode
		}
	})

	level := logger.ParseLevel(cfg.Log.Level)
	if *debug && level > slog.LevelDebug {
		level = slog.LevelDebug
	}
	log, logCloser := logger.New(cfg.Log.File, level, cfg.Log.MaxSizeMB)
	defer logCloser.Close()
	slog.SetDefault(log)
	comp := logger.NewComponent(log)

	store := state.NewStore()

	fonts, closeFonts, err := fontsource.New(cfg.Font, comp)
	if err != nil {
		logger.Fail(log, "font setup failed", "source", cfg.Font.Source, "error", err)
		os.Exit(1)
	}
	defer closeFonts()
	store.UpdateFont(state.FontInfo{Source: fonts.Name()})
	log.Info("font ready", "source", fonts.Name())

	resolver := colorcode.NewResolver(cfg.Policy(), colorcode.NewRand(cfg.Colors.Seed))
	canvas := image.Pt(cfg.Render.Width, cfg.Render.Height)

	mux := web.NewDefaultMux(web.EmojiDeps{
		Fonts:       fonts,
		Colors:      resolver,
		Renderer:    render.GlyphFit{FullTextPass: cfg.Render.FullTextPass},
		Moji:        moji.Decoder{NFC: cfg.Render.NormalizeNFC},
		Store:       store,
		Canvas:      canvas,
		BaseDomain:  cfg.Server.BaseDomain,
		ServiceName: cfg.Server.ServiceName,
		Log:         comp,
	}, web.APIV1Config{
		Deps: web.APIV1Deps{Store: store, Fonts: fonts, Canvas: canvas},
	})
	var handler http.Handler = web.WithRequestLog(mux, log)
	if serverCfg.DevMode {
		handler = web.WithDevCORS(handler)
	}

	processCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := web.NewHTTPServer(serverCfg.ListenAddr, handler)
	server.Logger = comp
	// Stop is called below so in-flight requests drain before exit.
	if err := server.Start(context.Background()); err != nil {
		logger.Fail(log, "server start failed", "error", err)
		os.Exit(1)
	}
	store.SetPhase(state.READY)
	log.Info("emogen ready",
		"listen", server.ListenAddr(),
		"base_domain", cfg.Server.BaseDomain,
		"canvas", fmt.Sprintf("%dx%d", canvas.X, canvas.Y),
		"fallback", cfg.Colors.Fallback,
		"dev", serverCfg.DevMode,
	)

	<-processCtx.Done()
	store.SetPhase(state.STOPPING)
	log.Info("shutting down")
	if err := server.Stop(); err != nil {
		log.Error("server stop", "error", err)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/goalkeeper/internal/app"
	"github.com/ayusman/goalkeeper/internal/config"
	"github.com/ayusman/goalkeeper/internal/scoreboard"
	"github.com/ayusman/goalkeeper/internal/server"
	"github.com/ayusman/goalkeeper/internal/store"
	"github.com/ayusman/goalkeeper/internal/tray"
)

func main() {
	fmt.Println("Goalkeeper - hand-tracking goalkeeper game")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	var publisher *scoreboard.Publisher
	if cfg.RedisURL != "" {
		rdb, err := scoreboard.Connect(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		publisher = scoreboard.NewPublisher(rdb, cfg.RedisChannel)
		log.Printf("Publishing round results on %s", publisher.Channel())
	}

	game := app.New(app.Config{
		Store:        st,
		HookDir:      cfg.HookDir,
		CameraID:     cfg.CameraID,
		MotionThresh: cfg.MotionThresh,
		FrameRate:    cfg.FrameRate,
		Goal:         cfg.Goal(),
		Scoreboard:   publisher,
	})
	if err := game.LoadSettings(); err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	if err := game.DiscoverHooks(); err != nil {
		log.Printf("Hook discovery failed: %v", err)
	}
	if err := game.Start(); err != nil {
		log.Fatalf("Failed to start game: %v", err)
	}
	defer game.Stop()

	webDir := cfg.WebDir
	if webDir == "" {
		webDir = findWebDir(cfg.DataDir)
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srvCfg := server.Config{
		StaticDir: webDir,
		Store:     st,
		Game:      game,
		Hooks:     game.HookManager(),
	}
	if publisher != nil {
		srvCfg.Scores = publisher
	}
	if cam := game.Camera(); cam != nil {
		srvCfg.Camera = cam
		if game.Detector() != nil {
			srvCfg.Tracking = game
		}
	}

	httpSrv := &http.Server{Addr: cfg.Addr, Handler: server.New(srvCfg)}
	serveErr := make(chan error, 1)
	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tray {
		// systray must own the main goroutine.
		t := tray.New()
		t.OnToggle(game.SetEnabled)
		t.OnOpen(func() { openBrowser(browserURL(cfg.Addr)) })
		t.OnQuit(stop)

		frames, unsubscribe := game.Subscribe()
		defer unsubscribe()
		go t.Watch(frames)

		go func() {
			select {
			case <-ctx.Done():
			case <-serveErr:
			}
			t.Quit()
		}()
		t.Run()
	} else {
		select {
		case <-ctx.Done():
		case err := <-serveErr:
			if err != nil {
				log.Printf("Server failed: %v", err)
			}
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}

// findWebDir searches for the web directory in common locations: "web", "../web",
// "../../web" and <dataDir>/web. It returns "" when none exists.
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

// browserURL turns a listen address such as ":8080" into a local URL.
func browserURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}

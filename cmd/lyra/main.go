package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/auralabs/lyra/internal/adapters/llm"
	memstore "github.com/auralabs/lyra/internal/adapters/storage/memory"
	"github.com/auralabs/lyra/internal/app/assistant"
	"github.com/auralabs/lyra/internal/app/command"
	"github.com/auralabs/lyra/internal/app/voice"
	"github.com/auralabs/lyra/internal/app/workspace"
	"github.com/auralabs/lyra/internal/audio"
	"github.com/auralabs/lyra/internal/config"
	"github.com/auralabs/lyra/internal/domain"
	"github.com/auralabs/lyra/internal/observability"
	"github.com/auralabs/lyra/internal/state"
	"github.com/auralabs/lyra/internal/tui"
)

const version = "0.1.0"

func main() {
	var (
		configPath string
		useMock    bool
		noTUI      bool
		persona    string
	)

	root := &cobra.Command{
		Use:     "lyra",
		Short:   "Lyra, the Aura workspace assistant",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if useMock {
				cfg.Backend = config.BackendMock
			}
			if persona != "" {
				cfg.Persona = persona
			}
			return run(cmd.Context(), cfg, noTUI)
		},
	}

	root.Flags().StringVar(&configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.Flags().BoolVar(&useMock, "mock", false, "run fully offline against the mock service")
	root.Flags().BoolVar(&noTUI, "no-tui", false, "plain line-based session instead of the overlay")
	root.Flags().StringVar(&persona, "persona", "", "voice persona (Zephyr, Puck, Charon, Kore, Fenrir)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, noTUI bool) error {
	if !noTUI {
		if err := redirectLogs(); err != nil {
			return err
		}
	}
	log := observability.Logger()

	ws, err := workspace.NewService(
		memstore.NewProjectStore(),
		memstore.NewSessionStore(),
		memstore.NewMessageStore(),
	)
	if err != nil {
		return fmt.Errorf("initializing workspace: %w", err)
	}

	settings := state.NewSettingsStore(domain.DefaultSettings())
	settings.SetVoice(cfg.Persona)
	profile := state.NewProfileStore(domain.UserProfile{})

	captions := assistant.NewCaptions(time.Duration(cfg.CaptionSeconds) * time.Second)
	sched := audio.NewScheduler(audio.NullSink{})

	var (
		gen    domain.TextGenerator
		synth  domain.SpeechSynthesizer
		dialer domain.LiveDialer
	)
	switch cfg.Backend {
	case config.BackendMock:
		log.Info("using mock assistant service")
		mock := llm.NewMockService()
		gen, synth, dialer = mock, mock, mock
	default:
		log.Info("using gemini assistant service", "backend", string(cfg.Backend))
		client, err := llm.NewClient(ctx, llm.Config{
			Backend:   string(cfg.Backend),
			APIKey:    cfg.APIKey,
			Project:   cfg.GCPProject,
			Location:  cfg.GCPLocation,
			TextModel: cfg.TextModel,
			TTSModel:  cfg.TTSModel,
			LiveModel: cfg.LiveModel,
		})
		if err != nil {
			return err
		}
		gen, synth, dialer = client, client, client
	}

	// Navigation lands after the UI exists; the indirection breaks the cycle
	// between the command host and the view.
	var navigate func(domain.Screen)
	host := command.Host{
		Navigate: func(s domain.Screen) {
			if navigate != nil {
				navigate(s)
			}
		},
		SetFlag:       settings.SetFlag,
		Profile:       profile.Get,
		UpdateProfile: profile.Apply,
	}
	applier := command.NewApplier(host)

	voiceName := func() string { return settings.Get().Voice }
	speaker := assistant.NewSpeaker(synth, sched, voiceName)
	svc := assistant.NewService(gen, ws, captions, speaker, applier, settings.Get)
	channel := voice.NewChannel(dialer, micSource(cfg), sched, captions, voiceName)

	if noTUI {
		navigate = func(s domain.Screen) {
			fmt.Printf("[screen] %s\n", s)
		}
		return runREPL(ctx, ws, svc, channel, settings)
	}

	app := tui.App{
		Workspace: ws,
		Assistant: svc,
		Voice:     channel,
		Settings:  settings,
	}
	m := tui.New(app)
	navigate = m.OnNavigate
	return tui.Run(m)
}

// micSource picks the capture device: a PCM16 pipe named by LYRA_MIC_PIPE, or
// silence when none is available.
func micSource(cfg *config.Config) audio.Source {
	if cfg.Backend != config.BackendMock {
		if path := os.Getenv("LYRA_MIC_PIPE"); path != "" {
			if f, err := os.Open(path); err == nil {
				return audio.NewReaderSource(f, 16000, 1600)
			}
			observability.Logger().Warn("mic pipe unavailable, capturing silence", "path", path)
		}
	}
	return audio.NewSilentSource()
}

// redirectLogs points the JSON log at a file so the overlay owns the screen.
func redirectLogs() error {
	dir, err := os.UserCacheDir()
	if err != nil {
		return err
	}
	dir = filepath.Join(dir, "lyra")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, "lyra.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	observability.SetOutput(slog.New(slog.NewJSONHandler(f, nil)))
	return nil
}

// runREPL is the plain line-based session: each line is one turn, slash
// commands manage the workspace.
func runREPL(
	ctx context.Context,
	ws *workspace.Service,
	svc *assistant.Service,
	channel *voice.Channel,
	settings *state.SettingsStore,
) error {
	fmt.Printf("lyra %s (persona %s). /help for commands.\n", version, settings.Get().Voice)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			channel.Stop()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := replCommand(ctx, line, ws, channel, settings); quit {
				return nil
			}
			continue
		}

		if err := svc.Send(ctx, line); err != nil {
			fmt.Println("error:", err)
			continue
		}
		printLastReply(ctx, ws)
	}
}

func replCommand(
	ctx context.Context,
	line string,
	ws *workspace.Service,
	channel *voice.Channel,
	settings *state.SettingsStore,
) (quit bool) {
	fields := strings.Fields(line)
	arg := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

	switch fields[0] {
	case "/quit", "/exit":
		channel.Stop()
		return true
	case "/help":
		fmt.Println("/threads /thread <title> /branch /project <name> /persona <name> /live /quit")
	case "/threads":
		sessions, err := ws.ProjectSessions(ws.ActiveProjectID())
		if err != nil {
			fmt.Println("error:", err)
			break
		}
		for _, s := range sessions {
			marker := " "
			if s.ID == ws.ActiveSessionID() {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, s.Title)
		}
	case "/thread":
		if _, err := ws.CreateSession(ctx, ws.ActiveProjectID(), arg); err != nil {
			fmt.Println("error:", err)
		}
	case "/branch":
		history, err := ws.History(ctx, ws.ActiveSessionID())
		if err != nil || len(history) == 0 {
			fmt.Println("nothing to branch from")
			break
		}
		s, err := ws.Branch(ctx, ws.ActiveSessionID(), history[len(history)-1].ID)
		if err != nil {
			fmt.Println("error:", err)
			break
		}
		fmt.Println("now on", s.Title)
	case "/project":
		if _, err := ws.CreateProject(ctx, arg); err != nil {
			fmt.Println("error:", err)
		}
	case "/persona":
		settings.SetVoice(arg)
		fmt.Println("persona:", settings.Get().Voice)
	case "/live":
		if err := channel.Toggle(ctx); err != nil {
			fmt.Println("error:", err)
		} else if channel.Live() {
			fmt.Println("live channel open")
		} else {
			fmt.Println("live channel closed")
		}
	default:
		fmt.Println("unknown command", fields[0])
	}
	return false
}

func printLastReply(ctx context.Context, ws *workspace.Service) {
	history, err := ws.History(ctx, ws.ActiveSessionID())
	if err != nil || len(history) == 0 {
		return
	}
	last := history[len(history)-1]
	if last.Role != domain.RoleAgent {
		return
	}
	fmt.Println(last.Text)
	for _, src := range last.Sources {
		fmt.Printf("  [%s] %s\n", src.Title, src.URI)
	}
}

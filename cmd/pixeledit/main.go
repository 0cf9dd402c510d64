package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pixel-canvas/internal/client"
	"pixel-canvas/internal/desktop"
	"pixel-canvas/internal/pixelcanvas"
	"pixel-canvas/internal/tui"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pixeledit",
	Short: "Pixel canvas editor",
	Long: `pixeledit edits pixel canvases stored on a pixel-canvas server.

Without --canvas the editor runs offline on an empty grid and nothing is saved.

Examples:
  pixeledit login -u alice -p secret       # Store a token in ~/.pixeledit.yaml
  pixeledit tui --canvas 3                 # Edit canvas 3 in the terminal
  pixeledit desktop --canvas 3             # Edit canvas 3 in a window
  pixeledit render --canvas 3 -o art.png   # Export canvas 3 as PNG`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(flagLogLevel)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return nil
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Edit a canvas in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		// 终端模式下日志会打乱画面
		logrus.SetOutput(io.Discard)
		return tui.Run(s.cfg, tui.Options{Title: s.title, Palette: s.profile.Palette, Saver: s.saver})
	},
}

var desktopCmd = &cobra.Command{
	Use:   "desktop",
	Short: "Edit a canvas in a desktop window",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		return desktop.Run(s.cfg, s.title, s.saver)
	},
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Export a canvas as PNG",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagCanvas == "" {
			return fmt.Errorf("--canvas is required")
		}
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		grid, err := pixelcanvas.NewGrid(s.cfg.GridSize, s.cfg.InitialGrid)
		if err != nil {
			return err
		}
		data, err := pixelcanvas.RenderPNG(grid, s.cfg.CellSize)
		if err != nil {
			return fmt.Errorf("failed to render canvas: %w", err)
		}
		if err := os.WriteFile(flagOutput, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", flagOutput, err)
		}
		logrus.WithFields(logrus.Fields{"canvas_id": flagCanvas, "file": flagOutput}).Info("Canvas exported")
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the access token in the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, profile, err := loadProfile()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		token, err := client.New(profile.Server).Login(ctx, flagUsername, flagPassword)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		profile.Token = token
		if err := client.SaveProfile(profile, path); err != nil {
			return err
		}
		fmt.Printf("Logged in as %s, token saved to %s\n", flagUsername, path)
		return nil
	},
}

var (
	flagConfig   string
	flagServer   string
	flagToken    string
	flagCanvas   string
	flagColor    string
	flagLogLevel string
	flagOutput   string
	flagUsername string
	flagPassword string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Profile file (default ~/.pixeledit.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "Server base URL, overrides the profile")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "Access token, overrides the profile")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level")

	for _, cmd := range []*cobra.Command{tuiCmd, desktopCmd, renderCmd} {
		cmd.Flags().StringVar(&flagCanvas, "canvas", "", "Canvas ID to open")
	}
	for _, cmd := range []*cobra.Command{tuiCmd, desktopCmd} {
		cmd.Flags().StringVar(&flagColor, "color", "", "Initial brush color")
	}
	renderCmd.Flags().StringVarP(&flagOutput, "output", "o", "canvas.png", "Output PNG file")

	loginCmd.Flags().StringVarP(&flagUsername, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&flagPassword, "password", "p", "", "Password")
	_ = loginCmd.MarkFlagRequired("username")
	_ = loginCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(tuiCmd, desktopCmd, renderCmd, loginCmd)
}

// session 是一次编辑所需的全部上下文
type session struct {
	profile *client.Profile
	cfg     pixelcanvas.Config
	title   string
	saver   pixelcanvas.Saver
}

func loadProfile() (string, *client.Profile, error) {
	path := flagConfig
	if path == "" {
		var err error
		if path, err = client.DefaultProfilePath(); err != nil {
			return "", nil, err
		}
	}
	profile, err := client.LoadProfile(path)
	if err != nil {
		return "", nil, err
	}
	if flagServer != "" {
		profile.Server = flagServer
	}
	if flagToken != "" {
		profile.Token = flagToken
	}
	return path, profile, nil
}

// openSession 加载配置并在指定了画布时从服务端获取编辑器初始化数据
func openSession(ctx context.Context) (*session, error) {
	_, profile, err := loadProfile()
	if err != nil {
		return nil, err
	}

	s := &session{
		profile: profile,
		title:   "offline",
		cfg:     pixelcanvas.Config{Editable: true, CellSize: profile.CellSize},
	}
	if flagCanvas != "" {
		c := client.New(profile.Server, client.WithToken(profile.Token))
		fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		ei, err := c.FetchEditorConfig(fetchCtx, flagCanvas)
		if err != nil {
			return nil, fmt.Errorf("failed to load canvas %s: %w", flagCanvas, err)
		}
		s.cfg = ei.EditorConfig()
		s.title = ei.Title
		s.saver = c
	}

	s.cfg.DefaultColor = profile.DefaultColor
	if flagColor != "" {
		s.cfg.DefaultColor = flagColor
	}
	s.cfg.Logger = logrus.WithField("component", "pixeledit")
	s.cfg = s.cfg.Resolved()
	return s, nil
}

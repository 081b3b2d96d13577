// Command pixedit edits images from natural-language prompts.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Fepozopo/pixedit/pkg/cli"
	"github.com/Fepozopo/pixedit/pkg/editor"
	"github.com/Fepozopo/pixedit/pkg/mask"
	"github.com/Fepozopo/pixedit/pkg/prompt"
	"github.com/Fepozopo/pixedit/pkg/server"
	"github.com/Fepozopo/pixedit/pkg/stdimg"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type rootFlags struct {
	config  string
	offline bool
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:          "pixedit [image]",
		Short:        "Prompt-driven image editor",
		Version:      cli.Version,
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, f, args)
		},
	}
	root.PersistentFlags().StringVar(&f.config, "config", "", "config file (default .config.yaml or config.yaml)")
	root.PersistentFlags().BoolVar(&f.offline, "offline", false, "skip the remote advisor")

	root.AddCommand(
		analyzeCmd(f),
		edgesCmd(f),
		editCmd(f),
		maskCmd(f),
		interpretCmd(),
		commandsCmd(),
		serveCmd(f),
		tokenCmd(f),
		replCmd(f),
		versionCmd(),
		updateCmd(),
	)
	return root
}

func withApp(f *rootFlags, fn func(*app) error) error {
	a, err := newApp(f.config, f.offline)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func loadInput(a *app, path string) (*stdimg.Buffer, editor.Format, error) {
	return cli.LoadImage(path, a.ed.Limits())
}

// defaultOutput derives "<name>_<suffix>.png" next to the input.
func defaultOutput(in, suffix string) string {
	ext := filepath.Ext(in)
	return strings.TrimSuffix(in, ext) + "_" + suffix + ".png"
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func analyzeCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <image>",
		Short: "Print size, dominant colours, brightness, contrast and edge density as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(f, func(a *app) error {
				buf, _, err := loadInput(a, args[0])
				if err != nil {
					return err
				}
				res, err := a.ed.Analyze(buf)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
}

func edgesCmd(f *rootFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "edges <image>",
		Short: "Write the edge map of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(f, func(a *app) error {
				buf, _, err := loadInput(a, args[0])
				if err != nil {
					return err
				}
				edges, err := stdimg.DetectEdges(buf)
				if err != nil {
					return err
				}
				if out == "" {
					out = defaultOutput(args[0], "edges")
				}
				out, err = cli.SaveImage(out, edges)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "edge density %.4f, saved to %s\n", stdimg.EdgeDensity(edges), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file")
	return cmd
}

func editCmd(f *rootFlags) *cobra.Command {
	var (
		text, out, maskPath, strokes string
		asJSON                       bool
	)
	cmd := &cobra.Command{
		Use:   "edit <image>",
		Short: "Apply the edit described by --prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if maskPath != "" && strokes != "" {
				return errors.New("--mask and --strokes are mutually exclusive")
			}
			return withApp(f, func(a *app) error {
				buf, _, err := loadInput(a, args[0])
				if err != nil {
					return err
				}
				var m *stdimg.Buffer
				switch {
				case maskPath != "":
					if m, _, err = loadInput(a, maskPath); err != nil {
						return err
					}
				case strokes != "":
					s, err := mask.LoadSession(strokes)
					if err != nil {
						return err
					}
					if s.BrushSize == 0 {
						s.BrushSize = a.cfg.Mask.BrushSize
					}
					if m, err = mask.Render(buf, s); err != nil {
						return err
					}
				}

				var res *editor.Result
				if m != nil {
					res, err = a.ed.EditMasked(cmd.Context(), buf, m, text)
				} else {
					res, err = a.ed.Edit(cmd.Context(), buf, text)
				}
				if err != nil {
					return err
				}
				if out == "" {
					out = filepath.Join(filepath.Dir(args[0]), "edited_"+res.ID+".png")
				}
				out, err = cli.SaveImage(out, res.Image)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if asJSON {
					return printJSON(w, struct {
						*editor.Result
						Output string `json:"output"`
					}{res, out})
				}
				if res.Fallback {
					fmt.Fprintln(w, "AI analysis unavailable; keyword matching only.")
				} else {
					fmt.Fprintf(w, "AI analysis: %s\n", res.AIAnalysis)
				}
				for _, e := range res.Settings.Entries() {
					fmt.Fprintf(w, "  %s: %s\n", e.Key, e.Value)
				}
				fmt.Fprintf(w, "saved to %s\n", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&text, "prompt", "p", "", "editing prompt")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default edited_<id>.png)")
	cmd.Flags().StringVar(&maskPath, "mask", "", "mask image; white pixels are edited")
	cmd.Flags().StringVar(&strokes, "strokes", "", "recorded brush strokes (JSON) to build the mask from")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

func maskCmd(f *rootFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "mask <image> <strokes.json>",
		Short: "Render a binary mask from recorded brush strokes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(f, func(a *app) error {
				buf, _, err := loadInput(a, args[0])
				if err != nil {
					return err
				}
				s, err := mask.LoadSession(args[1])
				if err != nil {
					return err
				}
				if s.BrushSize == 0 {
					s.BrushSize = a.cfg.Mask.BrushSize
				}
				m, err := mask.Render(buf, s)
				if err != nil {
					return err
				}
				if out == "" {
					out = defaultOutput(args[0], "mask")
				}
				out, err = cli.SaveImage(out, m)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved to %s\n", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file")
	return cmd
}

func interpretCmd() *cobra.Command {
	var aiText string
	cmd := &cobra.Command{
		Use:   "interpret <prompt>",
		Short: "Show the settings a prompt maps to without touching an image",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if err := prompt.NewBlockList().Check(text); err != nil {
				return err
			}
			settings := prompt.Interpret(text, aiText)
			w := cmd.OutOrStdout()
			if len(settings) == 0 {
				fmt.Fprintln(w, "no adjustments matched")
				return nil
			}
			for _, e := range settings.Entries() {
				fmt.Fprintf(w, "%s: %s\n", e.Key, e.Value)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&aiText, "ai", "", "advisor text to match alongside the prompt")
	return cmd
}

func commandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the single-step engine commands",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, c := range stdimg.Commands {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", cli.Tooltip(c))
			}
		},
	}
}

func serveCmd(f *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(f, func(a *app) error {
				opts := server.Options{BrushSize: a.cfg.Mask.BrushSize, Logger: a.log}
				if a.cfg.Server.Auth.Enabled {
					tokens, err := server.NewTokens(a.cfg.Server.Auth.Secret, 0)
					if err != nil {
						return err
					}
					opts.Tokens = tokens
				}
				if addr == "" {
					addr = a.cfg.Server.Addr
				}
				return server.New(a.ed, opts).Run(cmd.Context(), addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func tokenCmd(f *rootFlags) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(f, func(a *app) error {
				tokens, err := server.NewTokens(a.cfg.Server.Auth.Secret, ttl)
				if err != nil {
					return err
				}
				tok, err := tokens.Issue(subject)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), tok)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "pixedit", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default 1h)")
	return cmd
}

func replCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "repl [image]",
		Short: "Interactive editor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, f, args)
		},
	}
}

func runREPL(cmd *cobra.Command, f *rootFlags, args []string) error {
	return withApp(f, func(a *app) error {
		r := cli.NewREPL(a.ed, cmd.InOrStdin(), cmd.OutOrStdout())
		if len(args) == 1 {
			if err := r.Open(args[0]); err != nil {
				return err
			}
		}
		return r.Run(cmd.Context())
	})
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), cli.Version)
		},
	}
}

func updateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Check GitHub for a newer release and install it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			return cli.CheckForUpdates(cmd.Context(), p, cmd.OutOrStdout())
		},
	}
}

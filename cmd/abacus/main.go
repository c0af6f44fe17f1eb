package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/mwhitford/abacus/internal/config"
	"github.com/mwhitford/abacus/internal/graph"
	"github.com/mwhitford/abacus/internal/issue"
	"github.com/mwhitford/abacus/internal/mcp"
	"github.com/mwhitford/abacus/internal/storage"
	"github.com/mwhitford/abacus/internal/tui"
	"github.com/mwhitford/abacus/internal/watcher"
)

var version = "dev"

// resolveRefs converts a list of issue references to ids.
func resolveRefs(refs []string) ([]int, error) {
	ids := make([]int, 0, len(refs))
	for _, ref := range refs {
		id, err := storage.Resolve(ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func refList(ids []int) string {
	if len(ids) == 0 {
		return "(none)"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = issue.Ref(id)
	}
	return strings.Join(parts, ", ")
}

func main() {
	logLevel := &slog.LevelVar{}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	viper.SetEnvPrefix("ABACUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "abacus",
		Short: "File-backed issue tracker with dependency graphs",
		Long: `abacus is an issue tracker that stores each issue as an MDX file
(YAML frontmatter plus a markdown body) under issues/open and
issues/closed.

Issues can depend on each other. abacus keeps the dependency graph
acyclic, finds the critical path through open work, and renders the
graph in an interactive terminal dashboard.`,
		SilenceUsage: true,
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().Bool(FlagVerbose, false, "Enable verbose (debug) logging")
	rootCmd.PersistentFlags().String(FlagConfig, "", "Config file path (default: .abacus/config.yaml)")
	rootCmd.PersistentFlags().String(FlagRoot, "", "Tracker root directory (contains issues/)")

	// Bind all flags to viper
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
	})

	// loadSetup applies verbosity, loads config with flag overrides, and
	// opens the issue store. Shared by every command that touches issues.
	// Command-local flags are bound here, at run time, so same-named flags
	// on sibling commands cannot shadow each other in viper.
	loadSetup := func(cmd *cobra.Command) (*config.Config, *storage.FileStore, error) {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			_ = viper.BindPFlag(f.Name, f)
		})

		if viper.GetBool(FlagVerbose) {
			logLevel.Set(slog.LevelDebug)
			logger.Debug("verbose logging enabled")
		}

		cfg, err := config.LoadConfig(viper.GetViper())
		if err != nil {
			return nil, nil, fmt.Errorf("load config: %w", err)
		}

		// Apply CLI flag overrides (only if explicitly set)
		if cmd.Flags().Changed(FlagRoot) {
			cfg.Paths.Root = viper.GetString(FlagRoot)
		}

		return cfg, storage.NewFileStore(cfg.Paths.Root), nil
	}

	// Version command
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("abacus %s\n", version)
		},
	}

	// Create command
	createCmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a new open issue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := loadSetup(cmd)
			if err != nil {
				return err
			}

			priority := issue.Priority(viper.GetString(FlagPriority))
			if !priority.IsValid() {
				return fmt.Errorf("invalid priority %q (critical/high/medium/low)", priority)
			}

			id, err := store.NextID()
			if err != nil {
				return fmt.Errorf("allocate id: %w", err)
			}

			iss := issue.New(id,
				strings.Join(args, " "),
				priority,
				viper.GetStringSlice(FlagFiles),
				viper.GetString(FlagProblem),
				viper.GetString(FlagImpact),
				viper.GetString(FlagAcceptance),
				time.Now().Unix(),
			)

			path, err := store.Save(iss, true)
			if err != nil {
				return fmt.Errorf("save issue: %w", err)
			}

			fmt.Printf("Created %s: %s\n", issue.Ref(id), path)
			return nil
		},
	}
	createCmd.Flags().String(FlagPriority, string(issue.PriorityMedium), "Issue priority (critical/high/medium/low)")
	createCmd.Flags().StringSlice(FlagFiles, nil, "Affected files (comma-separated)")
	createCmd.Flags().String(FlagProblem, "", "Problem description")
	createCmd.Flags().String(FlagImpact, "", "Impact if not fixed")
	createCmd.Flags().String(FlagAcceptance, "", "Acceptance criteria")

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List open issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := loadSetup(cmd)
			if err != nil {
				return err
			}

			issues, err := store.List()
			if err != nil {
				return err
			}

			if status := viper.GetString(FlagStatus); status != "" {
				if !issue.Status(status).IsValid() {
					return fmt.Errorf("invalid status %q", status)
				}
				filtered := issues[:0]
				for _, iss := range issues {
					if iss.Meta.Status == issue.Status(status) {
						filtered = append(filtered, iss)
					}
				}
				issues = filtered
			}
			if priority := viper.GetString(FlagPriority); priority != "" {
				if !issue.Priority(priority).IsValid() {
					return fmt.Errorf("invalid priority %q", priority)
				}
				filtered := issues[:0]
				for _, iss := range issues {
					if iss.Meta.Priority == issue.Priority(priority) {
						filtered = append(filtered, iss)
					}
				}
				issues = filtered
			}

			if viper.GetBool(FlagJSON) {
				metas := make([]issue.Metadata, len(issues))
				for i, iss := range issues {
					metas[i] = iss.Meta
				}
				return printJSON(metas)
			}

			if len(issues) == 0 {
				fmt.Println("No open issues")
				return nil
			}
			for _, iss := range issues {
				line := fmt.Sprintf("%s [%s] %-8s %s",
					issue.Ref(iss.Meta.ID), iss.Meta.Status.Marker(), iss.Meta.Priority, iss.Meta.Title)
				if n := len(iss.Meta.DependsOn); n > 0 {
					line += fmt.Sprintf(" (deps: %d)", n)
				}
				fmt.Println(line)
			}
			return nil
		},
	}
	listCmd.Flags().String(FlagStatus, "", "Filter by status")
	listCmd.Flags().String(FlagPriority, "", "Filter by priority")
	listCmd.Flags().Bool(FlagJSON, false, "Output as JSON")

	// Show command
	showCmd := &cobra.Command{
		Use:   "show <issue>",
		Short: "Show a single issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := loadSetup(cmd)
			if err != nil {
				return err
			}

			id, err := storage.Resolve(args[0])
			if err != nil {
				return err
			}
			iss, err := store.Get(id)
			if err != nil {
				return err
			}
			if iss == nil {
				return fmt.Errorf("%s not found", issue.Ref(id))
			}

			if viper.GetBool(FlagJSON) {
				return printJSON(struct {
					Meta issue.Metadata `json:"meta"`
					Body string         `json:"body"`
				}{iss.Meta, iss.Body})
			}

			fmt.Printf("%s: %s\n", issue.Ref(id), iss.Meta.Title)
			fmt.Printf("Status: %s  Priority: %s\n", iss.Meta.Status, iss.Meta.Priority)
			fmt.Printf("Depends on: %s\n", refList(iss.Meta.DependsOn))
			fmt.Printf("Blocks: %s\n", refList(iss.Meta.Blocks))
			if body := strings.TrimSpace(iss.Body); body != "" {
				fmt.Printf("\n%s\n", body)
			}
			return nil
		},
	}
	showCmd.Flags().Bool(FlagJSON, false, "Output as JSON")

	// Depend command
	dependCmd := &cobra.Command{
		Use:   "depend <issue>",
		Short: "Add or remove dependency edges",
		Long: `Add or remove dependency edges for an issue.

Additions are rejected as a whole if any of them would introduce a
cycle or a self-dependency. The reverse blocks lists on the other
issues are kept in sync automatically.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := loadSetup(cmd)
			if err != nil {
				return err
			}

			subject, err := storage.Resolve(args[0])
			if err != nil {
				return err
			}
			add, err := resolveRefs(viper.GetStringSlice(FlagAdd))
			if err != nil {
				return err
			}
			remove, err := resolveRefs(viper.GetStringSlice(FlagRemove))
			if err != nil {
				return err
			}

			depends, err := graph.Apply(store, subject, add, remove)
			if err != nil {
				var pw *graph.PartialWriteError
				if errors.As(err, &pw) {
					fmt.Fprintf(os.Stderr, "warning: partial write, %s now depends on %s; rerun to repair\n",
						issue.Ref(subject), refList(pw.DependsOn))
				}
				return err
			}

			fmt.Printf("%s depends on: %s\n", issue.Ref(subject), refList(depends))
			return nil
		},
	}
	dependCmd.Flags().StringSlice(FlagAdd, nil, "Issues to depend on (comma-separated refs)")
	dependCmd.Flags().StringSlice(FlagRemove, nil, "Dependencies to remove (comma-separated refs)")

	// Deps command
	depsCmd := &cobra.Command{
		Use:   "deps <issue>",
		Short: "Show what an issue depends on and what it blocks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := loadSetup(cmd)
			if err != nil {
				return err
			}

			id, err := storage.Resolve(args[0])
			if err != nil {
				return err
			}
			iss, err := store.Get(id)
			if err != nil {
				return err
			}
			if iss == nil {
				return fmt.Errorf("%s not found", issue.Ref(id))
			}

			view, err := graph.Load(store)
			if err != nil {
				return err
			}

			describe := func(depID int) string {
				if n, ok := view.Nodes[depID]; ok {
					return fmt.Sprintf("  %s [%s] %s", issue.Ref(depID), n.Status.Marker(), n.Title)
				}
				return fmt.Sprintf("  %s (not open)", issue.Ref(depID))
			}

			fmt.Printf("%s: %s\n", issue.Ref(id), iss.Meta.Title)
			fmt.Println("Depends on:")
			if len(iss.Meta.DependsOn) == 0 {
				fmt.Println("  (none)")
			}
			for _, depID := range iss.Meta.DependsOn {
				fmt.Println(describe(depID))
			}

			// Dependents are recomputed from depends_on rather than read
			// from the stored blocks mirror.
			var blocks []int
			for _, otherID := range view.IDs {
				if otherID != id && containsID(view.Nodes[otherID].DependsOn, id) {
					blocks = append(blocks, otherID)
				}
			}
			fmt.Println("Blocks:")
			if len(blocks) == 0 {
				fmt.Println("  (none)")
			}
			for _, depID := range blocks {
				fmt.Println(describe(depID))
			}
			return nil
		},
	}

	// Critical path command
	criticalPathCmd := &cobra.Command{
		Use:   "critical-path",
		Short: "Show the longest dependency chain through open issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := loadSetup(cmd)
			if err != nil {
				return err
			}

			view, err := graph.Load(store)
			if err != nil {
				return err
			}
			chain := graph.LongestChain(view)

			if viper.GetBool(FlagJSON) {
				type entry struct {
					Num      int    `json:"num"`
					Title    string `json:"title"`
					Status   string `json:"status"`
					Priority string `json:"priority"`
				}
				out := struct {
					Length int     `json:"length"`
					Chain  []entry `json:"chain"`
				}{Length: len(chain), Chain: []entry{}}
				for _, id := range chain {
					n := view.Nodes[id]
					out.Chain = append(out.Chain, entry{id, n.Title, string(n.Status), string(n.Priority)})
				}
				return printJSON(out)
			}

			if len(chain) == 0 {
				fmt.Println("No open issues")
				return nil
			}
			fmt.Printf("Critical path (%d issues):\n", len(chain))
			for i, id := range chain {
				n := view.Nodes[id]
				fmt.Printf("%d. %s [%s/%s] %s\n", i+1, issue.Ref(id), n.Status.Marker(), n.Priority, n.Title)
			}
			return nil
		},
	}
	criticalPathCmd.Flags().Bool(FlagJSON, false, "Output as JSON")

	// Graph command (one-shot render)
	graphCmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the dependency graph as text",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := loadSetup(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed(FlagDensity) {
				cfg.Graph.Density = viper.GetString(FlagDensity)
			}

			view, err := graph.Load(store)
			if err != nil {
				return err
			}

			g := tui.NewGraph(&cfg.Graph)
			g.Rebuild(view)
			if focus := viper.GetString(FlagFocus); focus != "" {
				id, err := storage.Resolve(focus)
				if err != nil {
					return err
				}
				g.SetFocus(id)
			}

			w, h := g.ContentSize()
			if w == 0 || h == 0 {
				fmt.Println("No open issues")
				return nil
			}
			if maxW := viper.GetInt(FlagWidth); maxW > 0 && w > maxW {
				w = maxW
			}
			fmt.Print(g.Render(w, h))
			return nil
		},
	}
	graphCmd.Flags().String(FlagFocus, "", "Restrict the graph to one issue's dependency closure")
	graphCmd.Flags().String(FlagDensity, "", "Node density (compact/standard/detailed)")
	graphCmd.Flags().Int(FlagWidth, 0, "Clip output to this many columns (0 = fit content)")

	// Check command
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Verify graph integrity (cycles and mirror consistency)",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := loadSetup(cmd)
			if err != nil {
				return err
			}

			view, err := graph.Load(store)
			if err != nil {
				return err
			}

			violations := view.MirrorViolations()
			cycles := graph.FindCycles(view)

			for _, v := range violations {
				if v.Stale {
					fmt.Printf("mirror violation: %s blocks %s but %s does not depend on it\n",
						issue.Ref(v.Target), issue.Ref(v.Dependent), issue.Ref(v.Dependent))
				} else {
					fmt.Printf("mirror violation: %s depends on %s but is missing from its blocks list\n",
						issue.Ref(v.Dependent), issue.Ref(v.Target))
				}
			}
			for _, cycle := range cycles {
				fmt.Printf("cycle: %s\n", refList(cycle))
			}

			if len(violations) == 0 && len(cycles) == 0 {
				fmt.Printf("OK: %d open issues, no cycles, mirrors consistent\n", len(view.IDs))
				return nil
			}
			return fmt.Errorf("%d problem(s) found", len(violations)+len(cycles))
		},
	}

	// Close command
	closeCmd := &cobra.Command{
		Use:   "close <issue>",
		Short: "Close an issue and move it to issues/closed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := loadSetup(cmd)
			if err != nil {
				return err
			}

			id, err := storage.Resolve(args[0])
			if err != nil {
				return err
			}
			err = store.Update(id, func(m *issue.Metadata) {
				m.Status = issue.StatusClosed
				m.Closed = time.Now().Unix()
			})
			if err != nil {
				return err
			}
			path, err := store.Move(id, false)
			if err != nil {
				return err
			}
			fmt.Printf("Closed %s: %s\n", issue.Ref(id), path)
			return nil
		},
	}

	// Reopen command
	reopenCmd := &cobra.Command{
		Use:   "reopen <issue>",
		Short: "Reopen a closed issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := loadSetup(cmd)
			if err != nil {
				return err
			}

			id, err := storage.Resolve(args[0])
			if err != nil {
				return err
			}
			err = store.Update(id, func(m *issue.Metadata) {
				m.Status = issue.StatusNotStarted
				m.Closed = 0
			})
			if err != nil {
				return err
			}
			path, err := store.Move(id, true)
			if err != nil {
				return err
			}
			fmt.Printf("Reopened %s: %s\n", issue.Ref(id), path)
			return nil
		},
	}

	// Serve command (MCP over stdio)
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve issue tools over stdio (MCP)",
		Long: `Serve issue tools as line-delimited JSON requests on stdin with
responses on stdout, for editor and agent integration.

Logs go to a rotating file so they cannot corrupt the protocol stream.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := loadSetup(cmd)
			if err != nil {
				return err
			}

			logResult, err := SetupFileLogger(filepath.Dir(cfg.Paths.Log), logLevel, cfg.LogRotation)
			if err != nil {
				return err
			}
			defer func() { _ = logResult.Close() }()

			srv := mcp.New(store, cfg, logResult.Logger)
			return srv.Serve(cmd.Context(), os.Stdin, os.Stdout)
		},
	}

	// Dash command (interactive TUI)
	dashCmd := &cobra.Command{
		Use:   "dash",
		Short: "Open the interactive dependency graph dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := loadSetup(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed(FlagDensity) {
				cfg.Graph.Density = viper.GetString(FlagDensity)
			}
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("dash requires a terminal (try 'abacus graph' for plain output)")
			}

			logResult, err := SetupFileLogger(filepath.Dir(cfg.Paths.Log), logLevel, cfg.LogRotation)
			if err != nil {
				return err
			}
			defer func() { _ = logResult.Close() }()
			slog.SetDefault(logResult.Logger)

			var changes <-chan struct{}
			if cfg.Watcher.Enabled {
				w := watcher.New(&cfg.Watcher, cfg.Paths.Root, logResult.Logger)
				if err := w.Start(cmd.Context()); err != nil {
					logResult.Logger.Warn("file watcher unavailable", "error", err)
				} else {
					defer func() { _ = w.Stop() }()
					changes = w.Changes()
				}
			}

			return tui.Run(store, cfg, changes)
		},
	}
	dashCmd.Flags().String(FlagDensity, "", "Node density (compact/standard/detailed)")

	// Register all commands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(dependCmd)
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(criticalPathCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(reopenCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dashCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func containsID(list []int, x int) bool {
	for _, v := range list {
		if v == x {
			return true
		}
	}
	return false
}

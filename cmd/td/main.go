package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taskdeck/internal/config"
	"taskdeck/internal/db"
	"taskdeck/internal/domain"
	"taskdeck/internal/logging"
	"taskdeck/internal/persist"
	"taskdeck/internal/server"
	"taskdeck/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "td",
	Short: "Taskdeck CLI",
	Long: `Taskdeck keeps a single list of short text tasks in a workspace.
Tasks get monotonically increasing ids that are never reused; completion,
priority, category and due date can change over time, and the list is always
shown through a derived view (filter + sort + search). State lives in
.taskdeck/taskdeck.db and survives restarts.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("TASKDECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(doneCmd())
	rootCmd.AddCommand(undoneCmd())
	rootCmd.AddCommand(toggleCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(rmCmd())
	rootCmd.AddCommand(clearCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(serveCmd())
}

func addCmd() *cobra.Command {
	var priority, category, due string
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.Store) error {
				t, err := s.Add(strings.Join(args, " "), store.AddOptions{
					Priority: domain.Priority(priority),
					Category: domain.Category(category),
					DueDate:  due,
				})
				if err := reportPersistence(err); err != nil {
					return err
				}
				return printJSONOrTask(t)
			})
		},
	}
	cmd.Flags().StringVar(&priority, "priority", "", "priority (high, medium, low; default medium)")
	cmd.Flags().StringVar(&category, "category", "", "category (work, personal, shopping, health, study)")
	cmd.Flags().StringVar(&due, "due", "", "due date ("+domain.DueDateLayout+")")
	return cmd
}

func listCmd() *cobra.Command {
	var filter, category, sortKey, query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks through the view",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.Store) error {
				if filter != "" {
					if err := s.SetFilter(filter); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("category") {
					if err := s.SetCategoryScope(domain.Category(category)); err != nil {
						return err
					}
				}
				if sortKey != "" {
					if err := s.SetSort(sortKey); err != nil {
						return err
					}
				}
				s.SetSearchQuery(query)
				tasks := s.View()
				if viper.GetBool("json") {
					return printJSON(tasks)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Done", "Text", "Priority", "Category", "Due", "Created"})
				for _, t := range tasks {
					done := ""
					if t.Completed {
						done = "x"
					}
					due := ""
					if t.DueDate != nil {
						due = *t.DueDate
					}
					tw.AppendRow(table.Row{t.ID, done, t.Text, t.Priority, t.Category, due, t.CreatedAt.Local().Format("2006-01-02 15:04")})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "filter (all, pending, completed, recent, due-today, overdue, no-due-date, category:<name>)")
	cmd.Flags().StringVar(&category, "category", "", "category scope ANDed with the filter (empty clears)")
	cmd.Flags().StringVar(&sortKey, "sort", "", "sort key (created-desc, created-asc, alphabetical, completion, priority, due-date)")
	cmd.Flags().StringVar(&query, "search", "", "case-insensitive substring of the task text")
	return cmd
}

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withStore(func(s *store.Store) error {
				t, ok := s.Get(id)
				if !ok {
					return fmt.Errorf("task %d not found", id)
				}
				return printJSONOrTask(t)
			})
		},
	}
	return cmd
}

func doneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <id>...",
		Short: "Complete one or more pending tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return withStore(func(s *store.Store) error {
				n, err := s.BulkComplete(ids)
				if err := reportPersistence(err); err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]int{"completed": n})
				}
				fmt.Printf("completed %d task(s)\n", n)
				return nil
			})
		},
	}
	return cmd
}

func undoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undone <id>",
		Short: "Mark a completed task pending again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withStore(func(s *store.Store) error {
				t, ok := s.Get(id)
				if !ok || !t.Completed {
					fmt.Println("nothing to do")
					return nil
				}
				t, _, err := s.Toggle(id)
				if err := reportPersistence(err); err != nil {
					return err
				}
				return printJSONOrTask(t)
			})
		},
	}
	return cmd
}

func toggleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip task completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withStore(func(s *store.Store) error {
				t, ok, err := s.Toggle(id)
				if err := reportPersistence(err); err != nil {
					return err
				}
				if !ok {
					fmt.Println("nothing to do")
					return nil
				}
				return printJSONOrTask(t)
			})
		},
	}
	return cmd
}

func editCmd() *cobra.Command {
	var priority, category, due string
	cmd := &cobra.Command{
		Use:   "edit <id> [text]",
		Short: "Edit task text or attributes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withStore(func(s *store.Store) error {
				if len(args) > 1 {
					if err := reportPersistence(s.Edit(id, strings.Join(args[1:], " "))); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("priority") {
					if err := reportPersistence(s.SetPriority(id, domain.Priority(priority))); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("category") {
					if err := reportPersistence(s.SetCategory(id, domain.Category(category))); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("due") {
					if err := reportPersistence(s.SetDueDate(id, due)); err != nil {
						return err
					}
				}
				t, ok := s.Get(id)
				if !ok {
					fmt.Println("nothing to do")
					return nil
				}
				return printJSONOrTask(t)
			})
		},
	}
	cmd.Flags().StringVar(&priority, "priority", "", "priority (high, medium, low)")
	cmd.Flags().StringVar(&category, "category", "", "category (empty clears)")
	cmd.Flags().StringVar(&due, "due", "", "due date (empty clears)")
	return cmd
}

func rmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return withStore(func(s *store.Store) error {
				for _, id := range ids {
					if err := reportPersistence(s.Delete(id)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	return cmd
}

func clearCmd() *cobra.Command {
	var all, force bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete completed tasks, or everything with --all --force",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.Store) error {
				if all {
					if !force {
						return fmt.Errorf("--all removes every task; pass --force to confirm")
					}
					if err := reportPersistence(s.ClearAll()); err != nil {
						return err
					}
					fmt.Println("cleared all tasks")
					return nil
				}
				n, err := s.BulkDeleteCompleted()
				if err := reportPersistence(err); err != nil {
					return err
				}
				fmt.Printf("removed %d completed task(s)\n", n)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "delete every task, not just completed ones")
	cmd.Flags().BoolVar(&force, "force", false, "confirm destructive operation")
	return cmd
}

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show derived statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.Store) error {
				st := s.Stats()
				if viper.GetBool("json") {
					return printJSON(st)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Metric", "Count"})
				tw.AppendRow(table.Row{"total", st.Total})
				tw.AppendRow(table.Row{"completed", st.Completed})
				tw.AppendRow(table.Row{"pending", st.Pending})
				for _, p := range []domain.Priority{domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow} {
					tw.AppendRow(table.Row{"pending " + string(p), st.PendingByPriority[p]})
				}
				for _, c := range domain.Categories() {
					if n := st.ByCategory[c]; n > 0 {
						tw.AppendRow(table.Row{string(c), n})
					}
				}
				tw.AppendRow(table.Row{"due today", st.DueToday})
				tw.AppendRow(table.Row{"overdue", st.Overdue})
				tw.AppendRow(table.Row{"upcoming", st.Upcoming})
				tw.AppendRow(table.Row{"no due date", st.NoDueDate})
				tw.AppendRow(table.Row{"created today", st.CreatedToday})
				tw.AppendRow(table.Row{"completed today", st.CompletedToday})
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the full collection as a JSON snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.Store) error {
				data, err := s.ExportJSON()
				if err != nil {
					return err
				}
				if out == "" {
					fmt.Println(string(data))
					return nil
				}
				return os.WriteFile(out, data, 0o644)
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write snapshot to file instead of stdout")
	return cmd
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Inspect workspace config",
	}
	cfg.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show loaded config and workspace paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			c, err := config.LoadOptional(workspace)
			if err != nil {
				return err
			}
			if c == nil {
				c = config.Default()
			}
			return printJSON(map[string]any{
				"configPath": config.Path(workspace),
				"dbPath":     db.Path(workspace),
				"config":     c,
			})
		},
	})
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate taskdeck.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			var err error
			if file != "" {
				_, err = config.FromFile(file)
			} else {
				_, err = config.Load(viper.GetString("workspace"))
			}
			if err != nil {
				return err
			}
			fmt.Println("config OK")
			return nil
		},
	}
	validate.Flags().String("file", "", "validate this file instead of the workspace config")
	cfg.AddCommand(validate)
	cfg.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default taskdeck.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	})
	return cfg
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			cfg, err := config.LoadOptional(workspace)
			if err != nil {
				return err
			}
			if cfg == nil {
				cfg = config.Default()
			}
			if !cmd.Flags().Changed("addr") && cfg.Server.Addr != "" {
				addr = cfg.Server.Addr
			}
			if !cmd.Flags().Changed("base-path") && cfg.Server.BasePath != "" {
				basePath = cfg.Server.BasePath
			}
			log := logging.New("server")
			return withStore(func(s *store.Store) error {
				applyViewDefaults(s, cfg)
				handler, err := server.New(server.Config{Store: s, BasePath: basePath, Log: log})
				if err != nil {
					return err
				}
				srv := &http.Server{Addr: addr, Handler: handler}
				go func() {
					<-cmd.Context().Done()
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					srv.Shutdown(ctx)
				}()
				fmt.Printf("Serving Taskdeck API on http://%s%s (OpenAPI at %s/openapi.json, docs at /docs)\n", addr, basePath, basePath)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	return cmd
}

// --- helpers ---

func withStore(fn func(*store.Store) error) error {
	workspace := viper.GetString("workspace")
	storage, err := persist.OpenSQLite(workspace)
	if err != nil {
		return err
	}
	s := store.New(storage, logging.New("store"))
	defer s.Close()
	if cfg, err := config.LoadOptional(workspace); err == nil && cfg != nil {
		applyViewDefaults(s, cfg)
	}
	return fn(s)
}

func applyViewDefaults(s *store.Store, cfg *config.Config) {
	if cfg.View.Filter != "" {
		_ = s.SetFilter(cfg.View.Filter)
	}
	if cfg.View.Sort != "" {
		_ = s.SetSort(cfg.View.Sort)
	}
}

// reportPersistence surfaces a failed write as a warning but lets the
// command succeed: the mutation is applied in memory and the collection
// remains usable for the session.
func reportPersistence(err error) error {
	var pe *store.PersistenceError
	if errors.As(err, &pe) {
		fmt.Fprintln(os.Stderr, "warning:", pe.Error())
		return nil
	}
	return err
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}

func parseIDs(raw []string) ([]int64, error) {
	ids := make([]int64, 0, len(raw))
	for _, r := range raw {
		id, err := parseID(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func printJSONOrTask(t domain.Task) error {
	if viper.GetBool("json") {
		return printJSON(t)
	}
	b, _ := json.MarshalIndent(t, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

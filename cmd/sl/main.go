package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/message"

	"stageline/internal/app"
	"stageline/internal/config"
	"stageline/internal/db"
	"stageline/internal/domain"
	"stageline/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "sl",
	Short: "Stageline CLI",
	Long: `Stageline moves construction projects through four team stages.
- Survey creates a project and forwards it to design.
- Design, bidding and project management each fill in their part and forward it.
- Project management completes it, which closes it for good.
- Admin sees and edits everything, and alone may delete, behind the access secret.
Pick who you are acting as with --role.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, err := domain.ParseRole(viper.GetString("role")); err != nil {
			return err
		}
		_, err := db.EnsureWorkspace(viper.GetString("workspace"))
		return err
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	// A missing .env is normal outside development.
	_ = godotenv.Load(viper.GetString("env-file"))
	viper.SetEnvPrefix("STAGELINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().StringP("role", "r", string(domain.RoleSurvey), "act as survey, design, bidding, pm or admin")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("config", "", "config file (default <workspace>/stageline.yml)")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")
	for _, name := range []string{"workspace", "role", "json", "config", "env-file"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func registerCommands() {
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(employeeCmd())
	rootCmd.AddCommand(locationCmd())
	rootCmd.AddCommand(schemaCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(serveCmd())
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Manage stageline.yml",
		Long:  "stageline.yml holds the locale, construction types, storage bucket and database settings. Secrets can be overridden from the environment (STAGELINE_ACCESS_SECRET, STAGELINE_JWT_SECRET).",
	}
	cfg.AddCommand(configInitCmd())
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configValidateCmd())
	return cfg
}

func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default stageline.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			env, err := config.ParseEnv()
			if err != nil {
				return err
			}
			if err := cfg.Apply(env); err != nil {
				return err
			}
			shown := *cfg
			shown.Access.Secret = "********"
			return printJSONOrTable(shown)
		},
	}
}

func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate stageline.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := config.Load(viper.GetString("workspace"))
			if path := viper.GetString("config"); path != "" {
				_, err = config.FromFile(path)
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{"ok": err == nil, "error": fmt.Sprint(err)})
			}
			if err != nil {
				return err
			}
			fmt.Println("config OK")
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	tok := &cobra.Command{Use: "token", Short: "API tokens"}
	var subject string
	var ttl time.Duration
	issue := &cobra.Command{
		Use:   "issue",
		Short: "DEV ONLY: mint a bearer token for the acting role",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := config.ParseEnv()
			if err != nil {
				return err
			}
			if env.JWTSecret == "" {
				return fmt.Errorf("STAGELINE_JWT_SECRET is required to sign tokens")
			}
			role := domain.Role(viper.GetString("role"))
			token, err := server.IssueToken(env.JWTSecret, subject, role, ttl)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(map[string]string{"token": token, "role": string(role), "subject": subject})
			}
			fmt.Println(token)
			return nil
		},
	}
	issue.Flags().StringVar(&subject, "subject", "", "who the token is for")
	issue.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime, 0 for no expiry")
	_ = issue.MarkFlagRequired("subject")
	tok.AddCommand(issue)
	return tok
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			return withRuntime(cmd.Context(), logger, func(ctx context.Context, rt *app.Runtime) error {
				authCfg := server.AuthConfig{
					JWTSecret:             rt.Env.JWTSecret,
					AllowLegacyRoleHeader: rt.Env.LegacyRole,
					Logger:                logger,
				}
				if authCfg.JWTSecret == "" && !authCfg.AllowLegacyRoleHeader {
					return fmt.Errorf("STAGELINE_JWT_SECRET is required for bearer auth")
				}
				handler, err := server.New(server.Config{
					Workspace: rt.Workspace,
					Objects:   rt.Objects,
					BasePath:  basePath,
					Auth:      authCfg,
				})
				if err != nil {
					return err
				}
				srv := &http.Server{Addr: addr, Handler: handler}
				go func() {
					<-ctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					srv.Shutdown(shutdownCtx)
				}()
				fmt.Printf("Serving Stageline API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs)\n", addr, basePath, basePath)
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

func newLogger() *log.Logger {
	if viper.GetBool("json") {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "sl: ", log.LstdFlags)
}

func loadConfig() (*config.Config, error) {
	if path := viper.GetString("config"); path != "" {
		return config.FromFile(path)
	}
	return config.LoadOptional(viper.GetString("workspace"))
}

func withRuntime(ctx context.Context, logger *log.Logger, fn func(context.Context, *app.Runtime) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rt, err := app.OpenConfig(ctx, viper.GetString("workspace"), cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(ctx, rt)
}

func actingRole() domain.Role {
	return domain.Role(viper.GetString("role"))
}

func numberPrinter(rt *app.Runtime) *message.Printer {
	return message.NewPrinter(rt.Config.Language())
}

func newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	return tw
}

// printJSONOrTable prints v as JSON with --json, otherwise as a two-column
// table of its JSON fields, nested objects flattened to dotted keys.
func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	tw := newTable()
	tw.AppendHeader(table.Row{"Key", "Value"})
	for _, kv := range flatten("", fields) {
		tw.AppendRow(table.Row{kv[0], kv[1]})
	}
	tw.Render()
	return nil
}

func flatten(prefix string, fields map[string]any) [][2]string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out [][2]string
	for _, k := range keys {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := fields[k].(type) {
		case map[string]any:
			out = append(out, flatten(key, val)...)
		case nil:
			out = append(out, [2]string{key, "-"})
		case string:
			out = append(out, [2]string{key, val})
		default:
			b, _ := json.Marshal(val)
			out = append(out, [2]string{key, string(b)})
		}
	}
	return out
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

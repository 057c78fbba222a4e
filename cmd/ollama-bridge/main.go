package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/ollama-bridge/alias"
	"github.com/jbctechsolutions/ollama-bridge/config"
	"github.com/jbctechsolutions/ollama-bridge/dialect"
	"github.com/jbctechsolutions/ollama-bridge/mcpserver"
	"github.com/jbctechsolutions/ollama-bridge/proxy"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "ollama-bridge",
		Short: "Ollama-dialect bridge for an OpenAI-compatible inference server",
		Long:  "Translates between the Ollama editor-client dialect and an OpenAI-compatible upstream, including streaming reasoning-content injection.",
	}

	// --config is persistent so all subcommands inherit it.
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Overlay config file (default: ./config/overrides.yaml, then ~/.config/ollama-bridge/overrides.yaml)")

	// -------------------------------------------------------------------------
	// serve — start the HTTP bridge
	// -------------------------------------------------------------------------
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			srv := proxy.NewServer(cfg)
			return srv.Start()
		},
	}

	// -------------------------------------------------------------------------
	// aliases — print the derived friendly-alias table
	// -------------------------------------------------------------------------
	aliasesCmd := &cobra.Command{
		Use:   "aliases",
		Short: "Hit the upstream's model list and print the derived friendly-alias table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			table := alias.NewTable()
			client := dialect.NewClient(cfg.Upstream)
			client.Tags(context.Background(), table, cfg.Overrides.AliasPins, cfg.Overrides.Capabilities)

			snap := table.Snapshot()
			names := make([]string, 0, len(snap))
			for name := range snap {
				names = append(names, name)
			}
			sort.Strings(names)

			fmt.Printf("%-40s %s\n", "ALIAS", "UPSTREAM MODEL")
			fmt.Println("---------------------------------------- ------------------------------")
			for _, name := range names {
				fmt.Printf("%-40s %s\n", name, snap[name])
			}
			return nil
		},
	}

	// -------------------------------------------------------------------------
	// mcp — start MCP server (stdio transport)
	// -------------------------------------------------------------------------
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP introspection server (stdio transport)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			table := alias.NewTable()
			client := dialect.NewClient(cfg.Upstream)
			srv := mcpserver.NewServer(cfg, table, client)
			return srv.Start()
		},
	}

	rootCmd.AddCommand(serveCmd, aliasesCmd, mcpCmd)
	rootCmd.RunE = serveCmd.RunE // running the bare root command also serves, matching spec.md's "serve is the default action".

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/colenielsonauto/agent-arc/config"
	"github.com/colenielsonauto/agent-arc/interfaces"
	"github.com/colenielsonauto/agent-arc/internal/logger"
	"github.com/colenielsonauto/agent-arc/internal/repository"
	"github.com/colenielsonauto/agent-arc/server"
	"github.com/colenielsonauto/agent-arc/services/registry"
)

func main() {
	app := &cli.App{
		Name:  "agent-arc",
		Usage: "multi-tenant email dispatch core",
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the application server",
				Action: func(c *cli.Context) error {
					cfg, err := config.InitConfig()
					if err != nil {
						return err
					}

					log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
					log.Println("Dispatch core starting up...")

					srv, err := server.NewServer(cfg)
					if err != nil {
						return err
					}
					if err := srv.Run(); err != nil {
						return err
					}

					log.Println("Shutdown complete")
					return nil
				},
			},
			{
				Name:  "clients",
				Usage: "Inspect and manage client configurations",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "List all registered client ids",
						Action: withRegistry(func(ctx context.Context, reg interfaces.ClientRegistryService, c *cli.Context) error {
							clients, err := reg.ListClients(ctx)
							if err != nil {
								return err
							}
							for _, clientID := range clients {
								fmt.Println(clientID)
							}
							return nil
						}),
					},
					{
						Name:      "summary",
						Usage:     "Print a client's configuration summary",
						ArgsUsage: "<client-id>",
						Action: withRegistry(func(ctx context.Context, reg interfaces.ClientRegistryService, c *cli.Context) error {
							if c.NArg() != 1 {
								return cli.Exit("usage: clients summary <client-id>", 1)
							}
							summary, err := reg.GetClientSummary(ctx, c.Args().First())
							if err != nil {
								return err
							}
							return printJSON(summary)
						}),
					},
					{
						Name:      "validate",
						Usage:     "Check that a client's configuration is loadable and active",
						ArgsUsage: "<client-id>",
						Action: withRegistry(func(ctx context.Context, reg interfaces.ClientRegistryService, c *cli.Context) error {
							if c.NArg() != 1 {
								return cli.Exit("usage: clients validate <client-id>", 1)
							}
							clientID := c.Args().First()
							if !reg.ValidateClient(ctx, clientID) {
								return cli.Exit(fmt.Sprintf("%s: invalid or inactive", clientID), 1)
							}
							fmt.Printf("%s: ok\n", clientID)
							return nil
						}),
					},
					{
						Name:      "identify",
						Usage:     "Identify the client behind a sender email address",
						ArgsUsage: "<email>",
						Action: withRegistry(func(ctx context.Context, reg interfaces.ClientRegistryService, c *cli.Context) error {
							if c.NArg() != 1 {
								return cli.Exit("usage: clients identify <email>", 1)
							}
							result := reg.IdentifyClient(ctx, c.Args().First())
							return printJSON(result)
						}),
					},
					{
						Name:      "refresh",
						Usage:     "Reload client configurations from disk",
						ArgsUsage: "[client-id]",
						Action: withRegistry(func(ctx context.Context, reg interfaces.ClientRegistryService, c *cli.Context) error {
							if c.NArg() == 1 {
								return reg.RefreshClient(ctx, c.Args().First())
							}
							return reg.RefreshAll(ctx)
						}),
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// withRegistry builds the registry service from configuration for one-shot
// CLI invocations.
func withRegistry(fn func(ctx context.Context, reg interfaces.ClientRegistryService, c *cli.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.InitConfig()
		if err != nil {
			return err
		}

		appLogger := logger.NewAppLogger(cfg.Logger)
		appLogger.InitLogger()

		repos := repository.InitRepositories(cfg.AppConfig.ClientsDir)
		reg := registry.NewClientRegistryService(appLogger, repos, cfg.IdentificationConfig)

		return fn(c.Context, reg, c)
	}
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

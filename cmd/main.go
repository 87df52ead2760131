package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/meghashyamc/awquery/api"
	"github.com/meghashyamc/awquery/config"
	"github.com/meghashyamc/awquery/logger"
	"github.com/spf13/pflag"
)

func main() {
	flags := pflag.NewFlagSet("awquery", pflag.ExitOnError)
	flags.String("port", "", "port to serve the MCP endpoint and REST API on")
	flags.Bool("debug", false, "log every tool call and its result")
	flags.String("aw-url", "", "ActivityWatch REST API base URL, e.g. http://localhost:5600/api/0")
	flags.Parse(os.Args[1:])

	godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %s\n", err)
		os.Exit(1)
	}
	if err := cfg.BindFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := api.Run(ctx, cfg, logger.New(cfg.GetDebug())); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

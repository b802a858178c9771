// Command inventoryd runs the inventory printer registry: it follows a
// discovery source, elects one printer per name and serves the inventory
// reports over HTTP.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/kbukum/inventory/config"
	"github.com/kbukum/inventory/version"
)

const (
	serviceName = "inventoryd"
	envPrefix   = "INVENTORY"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	configFile := flags.StringP("config", "c", "", "path to the YAML configuration file")
	envFile := flags.String("env-file", "", "path to a .env file")
	showVersion := flags.BoolP("version", "v", false, "print the version and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Println(version.Get().String())
		return nil
	}

	opts := []config.LoaderOption{config.WithEnvPrefix(envPrefix)}
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}

	cfg := &Config{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return err
	}
	if cfg.Version == "" {
		cfg.Version = version.Get().Short()
	}

	d, err := buildApp(cfg)
	if err != nil {
		return err
	}
	return d.app.Run(context.Background())
}

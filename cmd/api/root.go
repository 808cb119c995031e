package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"example.com/mergington/internal/config"
	"example.com/mergington/internal/domain"
	"example.com/mergington/internal/seed"
)

// flagKeys maps persistent flags to their configuration keys.
var flagKeys = map[string]string{
	"addr":      "http.address",
	"log-level": "log.level",
	"seed-file": "registry.seed_file",
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:          "api",
		Short:        "Mergington High School extracurricular activities API",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML)")
	root.PersistentFlags().String("addr", "", "listen address (default :8000)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().String("seed-file", "", "YAML activity catalogue (default: embedded)")

	load := func(cmd *cobra.Command) (config.Config, error) {
		v, err := config.NewViper(cfgFile)
		if err != nil {
			return config.Config{}, err
		}
		if err := bindFlags(cmd, v); err != nil {
			return config.Config{}, err
		}
		return config.Load(v)
	}

	serve := newServeCmd(load)
	root.AddCommand(serve, newSeedCmd(load))
	root.RunE = serve.RunE
	return root
}

// bindFlags lets explicitly set flags override file and environment values.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

func loadCatalogue(cfg config.Config) ([]domain.Activity, error) {
	if cfg.Registry.SeedFile == "" {
		return seed.Default()
	}
	return seed.LoadFile(cfg.Registry.SeedFile)
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/earth-sol/onefilellm/config"
	"github.com/earth-sol/onefilellm/internal/server"
)

func main() {
	root := &cobra.Command{Use: "onefilellm"}

	root.AddCommand(serveCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCMD() *cobra.Command {
	var cfgPath string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the web interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			return server.Run(cfg)
		},
	}
	serve.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return serve
}

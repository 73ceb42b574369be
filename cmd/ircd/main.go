package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/miravassor/irc/internal/config"
	"github.com/miravassor/irc/internal/envconfig"
	"github.com/miravassor/irc/irc"
	"github.com/miravassor/irc/irc/server"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "ircd <port> <password>",
		Short: "A single-threaded IRC server",
		Long:  "ircd listens on <port> and requires <password> from every connecting client (pass an empty string to disable the requirement).",
		Args:  cobra.ExactArgs(2),
		RunE:  run,
	}
	root.Flags().StringVar(&configPath, "config", "", "path to a YAML file overriding server identity defaults")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	port, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid port %q: %w", args[0], err)
	}
	if port < 1024 || port > 65535 {
		return fmt.Errorf("port %d out of range, must be in [1024, 65535]", port)
	}
	password := args[1]

	if err := envconfig.Load(); err != nil {
		log.Printf("envconfig: %v", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	irc.ServerName = cfg.ServerName

	srv := server.NewServer(password, cfg.MOTD, cfg.SendQueueBound)
	loop, err := server.NewLoop(srv, port)
	if err != nil {
		return fmt.Errorf("starting listener on port %d: %w", port, err)
	}

	stop := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		close(stop)
	}()

	log.Printf("%s listening on port %d", cfg.ServerName, port)
	loop.Run(stop)
	log.Printf("%s shut down", cfg.ServerName)
	return nil
}

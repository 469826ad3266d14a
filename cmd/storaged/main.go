/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command storaged serves commissaire storage requests. Each line read from
// stdin is a JSON request; one JSON response line is written to stdout per
// request, in order. Logs go to stderr.
//
//	{"id": "1", "operation": "save", "model_type": "Host", "data": {"address": "10.0.0.1"}}
//	{"id": "2", "operation": "list", "model_type": "Hosts"}
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/suparena/commissaire"
	"github.com/suparena/commissaire/config"
	"github.com/suparena/commissaire/datastore"
	"github.com/suparena/commissaire/datastore/ddb"
	"github.com/suparena/commissaire/datastore/memory"
	"github.com/suparena/commissaire/datastore/sqlstore"
	"github.com/suparena/commissaire/datastore/vault"
)

// maxRequestSize bounds a single request line.
const maxRequestSize = 4 << 20

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var (
		configPath  string
		envFiles    []string
		debug       bool
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("storaged", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "configuration file (default $COMMISSAIRE_CONFIG or "+config.DefaultConfigPath+")")
	flagSet.StringSliceVar(&envFiles, "env-file", nil, "load environment variables from these files (default .env if present)")
	flagSet.BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	flagSet.BoolVarP(&showVersion, "version", "v", false, "show version information")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	if showVersion {
		fmt.Fprintf(stdout, "commissaire storaged %s\n", commissaire.GetVersionInfo())
		return nil
	}

	if err := config.LoadEnv(envFiles...); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(debug || cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	svc, err := commissaire.NewService(newCatalog(logger), cfg.Entries(), commissaire.WithLogger(logger))
	if err != nil {
		return err
	}
	for _, h := range svc.ListStoreHandlers() {
		logger.Info("store handler ready",
			zap.String("name", h.Config.Name()),
			zap.String("handler_type", h.HandlerType),
			zap.Strings("models", h.ModelTypes))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("serving storage requests", zap.String("version", commissaire.Version))
	return serve(ctx, svc, stdin, stdout, logger)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newCatalog returns every store handler type this binary can configure.
func newCatalog(logger *zap.Logger) *datastore.Catalog {
	return datastore.NewCatalog().
		MustAdd("memory", memory.HandlerType{}).
		MustAdd("dynamodb", ddb.HandlerType{Logger: logger.Named("dynamodb")}).
		MustAdd("sql", sqlstore.HandlerType{Logger: logger.Named("sql")}).
		MustAdd("vault", vault.HandlerType{Logger: logger.Named("vault")})
}

// serve answers requests read from r until r is exhausted or ctx is done.
func serve(ctx context.Context, svc *commissaire.Service, r io.Reader, w io.Writer, logger *zap.Logger) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxRequestSize)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp commissaire.Response
		var req commissaire.Request
		if err := json.Unmarshal(line, &req); err != nil {
			logger.Warn("rejecting undecodable request", zap.Error(err))
			resp = commissaire.Response{
				ID:    req.ID,
				Error: &commissaire.ErrorBody{Kind: commissaire.ErrorKindMalformed, Message: fmt.Sprintf("invalid request: %v", err)},
			}
		} else {
			resp = svc.Handle(ctx, req)
		}

		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read requests: %w", err)
	}
	return nil
}

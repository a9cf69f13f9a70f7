package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/tv-manager/internal/app/backend"
	"github.com/magabrotheeeer/tv-manager/internal/config"
	"github.com/magabrotheeeer/tv-manager/internal/services/manager"
	"github.com/magabrotheeeer/tv-manager/internal/storage"
)

// skipManager помечает команды, которым не нужно хранилище.
const skipManager = "skip-manager"

// cli хранит общее состояние команд. mgr создается в PersistentPreRunE,
// либо подставляется заранее в тестах.
type cli struct {
	configPath string
	verbose    bool

	in  *bufio.Reader
	out io.Writer

	mgr   *manager.Manager
	store *storage.Store
}

func newCLI(in io.Reader, out io.Writer) *cli {
	return &cli{in: bufio.NewReader(in), out: out}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "tvctl",
		Short:         "Manage TV subscription clients from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipManager] == "true" || c.mgr != nil {
				return nil
			}
			return c.open(cmd.Context())
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to config file (defaults to $CONFIG_PATH)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "print storage logs")

	root.AddCommand(
		newClientsCmd(c),
		newDashboardCmd(c),
		newHistoryCmd(c),
		newRenewCmd(c),
		newExportCmd(c),
		newImportCmd(c),
		newHashPasswordCmd(c),
	)
	return root
}

// execute запускает команду и закрывает хранилище даже после ошибки в RunE.
func execute(c *cli, args []string) error {
	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetOut(c.out)
	err := root.Execute()
	if cerr := c.close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (c *cli) open(ctx context.Context) error {
	const op = "tvctl.open"
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.Load(c.configPath)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	} else {
		cfg = config.MustLoad()
	}

	loc, err := cfg.TimeLocation()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if c.verbose {
		logger = slog.New(slog.NewTextHandler(c.out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	store, err := backend.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	mgr := manager.New(store, logger, loc)
	if err := mgr.Load(ctx); err != nil {
		_ = store.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	c.store = store
	c.mgr = mgr
	return nil
}

func (c *cli) close() error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}

// confirm спрашивает подтверждение. Пустой ответ и конец ввода считаются отказом.
func (c *cli) confirm(question string) (bool, error) {
	fmt.Fprintf(c.out, "%s [s/N]: ", question)
	answer, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "s", "sim", "y", "yes":
		return true, nil
	}
	return false, nil
}

// writeOutput пишет данные в файл path или в stdout, если path пустой либо "-".
func (c *cli) writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := c.out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "saved %s (%d bytes)\n", path, len(data))
	return nil
}

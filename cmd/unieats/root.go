package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/unieats/internal/app"
	"github.com/vladislavdragonenkov/unieats/internal/domain"
	"github.com/vladislavdragonenkov/unieats/internal/notify"
	"github.com/vladislavdragonenkov/unieats/internal/render"
)

const skipDepsAnnotation = "unieats/skip-deps"

// cli хранит флаги и зависимости одного запуска.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configPath string
	envFile    string
	backendURL string
	storage    string
	namespace  string
	logLevel   string
	assumeYes  bool

	// extra подмешивается к опциям app.NewDependencies (тесты).
	extra []app.Option

	reader *bufio.Reader
	deps   *app.Dependencies
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "unieats",
		Short:         "UniEats client: shops, cart and food management",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipDepsAnnotation] == "true" || cmd.Name() == "help" {
				return nil
			}
			return c.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.close()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "path to YAML config file")
	flags.StringVar(&c.envFile, "env-file", ".env", "dotenv file with UNIEATS_* variables")
	flags.StringVar(&c.backendURL, "backend", "", "backend base URL (overrides config)")
	flags.StringVar(&c.storage, "storage", "", "storage driver: memory|sqlite|postgres|redis")
	flags.StringVar(&c.namespace, "namespace", "", "storage namespace (cart owner)")
	flags.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newLoginCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
		newRegisterCmd(c),
		newShopsCmd(c),
		newCartCmd(c),
		newFoodsCmd(c),
		newServeCmd(c),
		newVersionCmd(c),
	)
	return root
}

// setup собирает конфиг (файл, .env, окружение, флаги) и поднимает зависимости.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := app.LoadConfig(c.configPath, c.envFile)
	if err != nil {
		return err
	}
	if c.backendURL != "" {
		cfg.BackendURL = c.backendURL
	}
	if c.storage != "" {
		cfg.StorageDriver = app.StorageDriver(strings.ToLower(c.storage))
	}
	if c.namespace != "" {
		cfg.Namespace = c.namespace
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := app.NewLogger(cfg.LogLevel, c.errOut)
	opts := append([]app.Option{app.WithConfirmer(domain.ConfirmFunc(c.confirm))}, c.extra...)
	deps, err := app.NewDependencies(cmd.Context(), cfg, logger, opts...)
	if err != nil {
		return err
	}
	deps.Notifier.Subscribe(func(m notify.Message) {
		_, _ = fmt.Fprintln(c.errOut, render.Notification(string(m.Level), m.Text))
	})
	c.deps = deps
	return nil
}

// close освобождает зависимости; повторный вызов ничего не делает.
// RunE с ошибкой не доходит до PersistentPostRunE, поэтому main зовёт close сам.
func (c *cli) close() error {
	if c.deps == nil {
		return nil
	}
	err := c.deps.Close()
	c.deps = nil
	return err
}

// confirm спрашивает y/N в stdin; --yes отвечает за пользователя.
func (c *cli) confirm(prompt string) bool {
	if c.assumeYes {
		return true
	}
	_, _ = fmt.Fprintf(c.errOut, "%s [y/N]: ", prompt)
	answer, err := c.readLine()
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

func (c *cli) readLine() (string, error) {
	if c.reader == nil {
		c.reader = bufio.NewReader(c.in)
	}
	line, err := c.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// prompt возвращает value или читает строку из stdin.
func (c *cli) prompt(label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	_, _ = fmt.Fprintf(c.errOut, "%s: ", label)
	line, err := c.readLine()
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return line, nil
}

func (c *cli) println(a ...any) {
	_, _ = fmt.Fprintln(c.out, a...)
}

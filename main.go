package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"boomerang-scanner/scanner"

	"github.com/charmbracelet/huh/spinner"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultDBFile = "boomerang.db"

// options holds everything the persistent flags and environment resolve to.
type options struct {
	cfg       scanner.Config
	csvPath   string
	catalog   bool
	noHistory bool
	bell      bool
	verbose   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "boomerang",
		Short:         "Check record barcodes against a buying service's wants list",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.resolve(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.cfg.BaseURL, "base-url", "", "buying service base URL [BOOMERANG_BASE_URL]")
	f.StringVarP(&opts.cfg.Username, "username", "u", "", "login name [BOOMERANG_USERNAME]")
	f.StringVar(&opts.cfg.Password, "password", "", "login password, prompted when empty [BOOMERANG_PASSWORD]")
	f.StringVar(&opts.cfg.DBPath, "db", defaultDBFile, "SQLite file for the imported catalog and scan history [BOOMERANG_DB]")
	f.IntVar(&opts.cfg.Months, "months", scanner.DefaultMonths, "want history window in months [BOOMERANG_MONTHS]")
	f.DurationVar(&opts.cfg.Timeout, "timeout", 0, "per-request HTTP timeout, 0 for none [BOOMERANG_TIMEOUT]")
	f.StringVar(&opts.csvPath, "csv", "", "match offline against this wants CSV instead of the service")
	f.BoolVar(&opts.catalog, "catalog", false, "match offline against the catalog imported with import_wants")
	f.BoolVar(&opts.noHistory, "no-history", false, "do not record scans in the local history")
	f.BoolVar(&opts.bell, "bell", false, "ring the terminal bell on match and on error")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log HTTP and lookup details to stderr")

	root.AddCommand(
		newLoginCmd(opts),
		newLookupCmd(opts),
		newScanCmd(opts),
		newHistoryCmd(opts),
	)
	return root
}

// resolve fills unset flags from the environment (and an optional .env file)
// and installs the logger.
func (o *options) resolve(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	flags := cmd.Flags()
	fromEnv := func(flag, env string, set func(string) error) error {
		v, ok := os.LookupEnv(env)
		if !ok || flags.Changed(flag) {
			return nil
		}
		if err := set(v); err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
		return nil
	}
	setString := func(dst *string) func(string) error {
		return func(v string) error { *dst = v; return nil }
	}

	if err := errors.Join(
		fromEnv("base-url", "BOOMERANG_BASE_URL", setString(&o.cfg.BaseURL)),
		fromEnv("username", "BOOMERANG_USERNAME", setString(&o.cfg.Username)),
		fromEnv("password", "BOOMERANG_PASSWORD", setString(&o.cfg.Password)),
		fromEnv("db", "BOOMERANG_DB", setString(&o.cfg.DBPath)),
		fromEnv("months", "BOOMERANG_MONTHS", func(v string) (err error) {
			o.cfg.Months, err = strconv.Atoi(v)
			return err
		}),
		fromEnv("timeout", "BOOMERANG_TIMEOUT", func(v string) (err error) {
			o.cfg.Timeout, err = time.ParseDuration(v)
			return err
		}),
	); err != nil {
		return err
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func (o *options) offline() bool { return o.csvPath != "" || o.catalog }

// readPassword securely reads a password with masking
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println() // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}

// credentials prompts for whatever the flags and environment left empty.
func (o *options) credentials(in *bufio.Scanner) (string, string, error) {
	username := o.cfg.Username
	if username == "" {
		fmt.Print("Username: ")
		if !in.Scan() {
			return "", "", errors.New("no username given")
		}
		username = strings.TrimSpace(in.Text())
	}
	password := o.cfg.Password
	if password == "" {
		var err error
		if password, err = readPassword(fmt.Sprintf("Password for %s: ", username)); err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
	}
	if username == "" || password == "" {
		return "", "", errors.New("username and password cannot be empty")
	}
	o.cfg.Username, o.cfg.Password = username, password
	return username, password, nil
}

// login creates a client and authenticates it.
func (o *options) login(ctx context.Context, in *bufio.Scanner) (*scanner.Client, error) {
	client, err := scanner.NewClient(o.cfg, slog.Default())
	if err != nil {
		return nil, err
	}
	username, password, err := o.credentials(in)
	if err != nil {
		return nil, err
	}
	if err := client.Login(ctx, username, password); err != nil {
		return nil, err
	}
	return client, nil
}

// env bundles what a lookup command needs; close releases the database.
type env struct {
	checker *scanner.Checker
	client  *scanner.Client
	db      *scanner.Database
}

func (e *env) close() {
	if e.db != nil {
		e.db.Close()
	}
}

// openEnv picks the finder: a CSV file, the imported catalog, or the remote
// service after logging in.
func (o *options) openEnv(ctx context.Context, in *bufio.Scanner) (*env, error) {
	e := &env{}
	if o.catalog || !o.noHistory {
		db, err := scanner.NewDatabase(o.cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		e.db = db
	}

	var finder scanner.Finder
	switch {
	case o.csvPath != "":
		wants, err := scanner.LoadWantsFile(o.csvPath)
		if err != nil {
			e.close()
			return nil, fmt.Errorf("loading file: %w", err)
		}
		fmt.Printf("Loaded %d barcodes!\n", len(wants))
		finder = scanner.NewWantList(wants)
	case o.catalog:
		n, err := e.db.CountWants()
		if err != nil {
			e.close()
			return nil, err
		}
		if n == 0 {
			e.close()
			return nil, errors.New("catalog is empty, run import_wants first")
		}
		fmt.Printf("Catalog has %d barcodes.\n", n)
		finder = e.db
	default:
		client, err := o.login(ctx, in)
		if err != nil {
			e.close()
			return nil, err
		}
		e.client = client
		finder = client
	}

	var history *scanner.Database
	if !o.noHistory {
		history = e.db
	}
	e.checker = scanner.NewChecker(finder, history, slog.Default())
	return e, nil
}

// submit runs one lookup, behind a spinner when talking to the service on a TTY.
func (o *options) submit(ctx context.Context, chk *scanner.Checker, raw string) scanner.Outcome {
	if o.offline() || !term.IsTerminal(int(os.Stdout.Fd())) {
		return chk.Submit(ctx, raw)
	}
	return submitWhile(ctx, chk, raw, func(wait func(context.Context) error) error {
		return spinner.New().Title("Looking up " + raw + "...").Context(ctx).ActionWithErr(wait).Run()
	})
}

// submitWhile runs the lookup in the background while show displays progress.
// show gets a wait function that blocks until the lookup is done. Whatever
// show returns, the outcome is read only after Submit has finished.
func submitWhile(ctx context.Context, chk *scanner.Checker, raw string, show func(wait func(context.Context) error) error) scanner.Outcome {
	var out scanner.Outcome
	done := make(chan struct{})
	go func() {
		defer close(done)
		out = chk.Submit(ctx, raw)
	}()
	wait := func(ctx context.Context) error {
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := show(wait); err != nil {
		slog.Debug("progress display stopped", "err", err)
	}
	<-done
	return out
}

func newLoginCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Check that the configured credentials are accepted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := opts.login(cmd.Context(), bufio.NewScanner(os.Stdin)); err != nil {
				if errors.Is(err, scanner.ErrInvalidCredentials) {
					return errors.New("login incorrect, check username and password")
				}
				return err
			}
			fmt.Printf("Logged in as %s\n", opts.cfg.Username)
			return nil
		},
	}
}

func newLookupCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <barcode>...",
		Short: "Look up one or more barcodes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := opts.openEnv(ctx, bufio.NewScanner(os.Stdin))
			if err != nil {
				return err
			}
			defer e.close()

			failed := 0
			for _, raw := range args {
				out := opts.submit(ctx, e.checker, raw)
				printOutcome(cmd.OutOrStdout(), out, opts.bell)
				if out.Tone() == scanner.ToneError {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d lookup(s) failed", failed, len(args))
			}
			return nil
		},
	}
}

func newScanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Interactive scanning: one barcode per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			in := bufio.NewScanner(os.Stdin)
			e, err := opts.openEnv(ctx, in)
			if err != nil {
				return err
			}
			defer e.close()
			return runScanLoop(ctx, opts, e, in)
		},
	}
}

func runScanLoop(ctx context.Context, opts *options, e *env, in *bufio.Scanner) error {
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Println("Scan or type a barcode and press Enter.")
		if e.client != nil {
			fmt.Println("Commands: login (refresh the session), exit")
		} else {
			fmt.Println("Commands: exit")
		}
	}

	for {
		if interactive {
			fmt.Print("\n> ")
		}
		if !in.Scan() {
			break
		}
		line := strings.TrimSpace(in.Text())

		switch {
		case line == "":
			continue
		case line == "exit" || line == "quit":
			fmt.Println("Goodbye!")
			return nil
		case line == "login" && e.client != nil:
			if err := e.client.Login(ctx, opts.cfg.Username, opts.cfg.Password); err != nil {
				fmt.Printf("Login failed: %v\n", err)
			} else {
				fmt.Println("Session refreshed.")
			}
			continue
		}

		out := opts.submit(ctx, e.checker, line)
		printOutcome(os.Stdout, out, opts.bell)
		if out.Kind == scanner.OutcomeFailed && e.client != nil && interactive {
			fmt.Println("Type 'login' if the session has expired.")
		}
		if ctx.Err() != nil {
			return nil
		}
	}
	return in.Err()
}

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent scans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := scanner.NewDatabase(opts.cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			scans, err := db.RecentScans(limit)
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), scans)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of scans to show")
	return cmd
}

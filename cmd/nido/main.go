package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"nido-go/internal/app"
	"nido-go/internal/config"
	"nido-go/internal/encryption"
	"nido-go/internal/model"
	"nido-go/internal/nido"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "LogEvent", "Export").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "nido",
	Short: "Infant-care logging tool",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:  %s\n", cfg.LogDir)
		fmt.Printf("Database: %s", cfg.Database.Type)
		if cfg.Database.DataDir != "" {
			fmt.Printf(" (%s)", cfg.Database.DataDir)
		}
		fmt.Println()
		for _, e := range cfg.Exports {
			fmt.Printf("Export:   %s (%s)\n", e.Name, e.Type)
		}
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage export encryption keys",
}

var configKeysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate an age key pair for encrypted exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
		if err != nil {
			return fmt.Errorf("creating encryptor: %w", err)
		}
		if enc.IsConfigured() {
			return fmt.Errorf("keys already exist at %s", cfg.Encryption.PublicKeyPath)
		}

		passphrase, err := readPassphrase()
		if err != nil {
			return err
		}

		if err := enc.Setup(passphrase); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}

		fmt.Printf("Public key:  %s\n", cfg.Encryption.PublicKeyPath)
		fmt.Printf("Private key: %s (passphrase-encrypted)\n", cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

// add command
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a new event",
	RunE: func(cmd *cobra.Command, args []string) error {
		event, err := eventFromFlags(cmd, &model.Event{})
		if err != nil {
			return err
		}

		a, err := newApp("LogEvent")
		if err != nil {
			return err
		}
		defer a.Close()

		yes, _ := cmd.Flags().GetBool("yes")
		ok, err := confirmWarnings(a.ValidateEvent(event), yes)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Not saved.")
			return nil
		}

		stored, err := a.LogEvent(event)
		if err != nil {
			a.Fail()
			return fmt.Errorf("logging event: %w", err)
		}

		fmt.Printf("Logged %s event %s on %s\n", stored.Type, stored.ID, stored.DateKey)
		return nil
	},
}

// edit command
var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit an existing event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("UpdateEvent")
		if err != nil {
			return err
		}
		defer a.Close()

		existing, err := a.GetEvent(args[0])
		if err != nil {
			return err
		}

		event, err := eventFromFlags(cmd, existing)
		if err != nil {
			return err
		}

		yes, _ := cmd.Flags().GetBool("yes")
		ok, err := confirmWarnings(a.ValidateEvent(event), yes)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Not saved.")
			return nil
		}

		stored, err := a.UpdateEvent(event)
		if err != nil {
			a.Fail()
			return fmt.Errorf("updating event: %w", err)
		}

		fmt.Printf("Updated %s event %s on %s\n", stored.Type, stored.ID, stored.DateKey)
		return nil
	},
}

// rm command
var rmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DeleteEvent")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteEvent(args[0]); err != nil {
			a.Fail()
			return fmt.Errorf("deleting event: %w", err)
		}

		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

// day command
var dayCmd = &cobra.Command{
	Use:   "day [DATE]",
	Short: "View a day's events and summary",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dateKey, err := dateArg(args)
		if err != nil {
			return err
		}

		a, err := newApp("Day")
		if err != nil {
			return err
		}
		defer a.Close()

		events, summary, err := a.Day(dateKey)
		if err != nil {
			return err
		}

		fmt.Printf("%s\n\n", dateKey)
		if len(events) == 0 {
			fmt.Println("No events.")
			return nil
		}

		for _, e := range events {
			fmt.Printf("%s  %s\n", shortID(e.ID), nido.FormatEvent(e))
		}
		fmt.Println()
		for _, line := range nido.FormatSummary(summary) {
			fmt.Println(line)
		}
		return nil
	},
}

// summary command
var summaryCmd = &cobra.Command{
	Use:   "summary [DATE]",
	Short: "View a day's summary",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dateKey, err := dateArg(args)
		if err != nil {
			return err
		}

		a, err := newApp("Summary")
		if err != nil {
			return err
		}
		defer a.Close()

		_, summary, err := a.Day(dateKey)
		if err != nil {
			return err
		}

		fmt.Printf("%s\n", dateKey)
		for _, line := range nido.FormatSummary(summary) {
			fmt.Println(line)
		}
		return nil
	},
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all events as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		a, err := newApp("Export")
		if err != nil {
			return err
		}
		defer a.Close()

		if name == "" {
			name = fmt.Sprintf("nido-%s.csv", time.Now().Format("20060102"))
		}
		if encrypt && !strings.HasSuffix(name, ".age") {
			name += ".age"
		}

		count, err := a.Export(name, encrypt)
		if err != nil {
			a.Fail()
			return fmt.Errorf("export failed: %w", err)
		}

		fmt.Printf("Exported %d event(s) to %s\n", count, name)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("History")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt != nil {
				d := op.FinishedAt.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-12s  %s  %-8s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
			)
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeysCmd)
	configKeysCmd.AddCommand(configKeysInitCmd)

	// event field flags, shared by add and edit
	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().String("type", "", "Event type: feeding, sleep, play, bath")
		c.Flags().String("date", "", "Date key (YYYY-MM-DD, defaults to start's date)")
		c.Flags().String("start", "", "Start time (HH:MM or YYYY-MM-DDTHH:MM)")
		c.Flags().String("end", "", "End time (HH:MM or YYYY-MM-DDTHH:MM)")
		c.Flags().String("mode", "", "Feeding mode: breast, bottle, syringe")
		c.Flags().String("side", "", "Breast side: left, right")
		c.Flags().Float64("volume", 0, "Feed volume in milliliters (bottle/syringe)")
		c.Flags().String("activity", "", "Play activity label")
		c.Flags().String("bath-notes", "", "Bath notes")
		c.Flags().String("notes", "", "Free-form notes")
		c.Flags().BoolP("yes", "y", false, "Proceed without confirming warnings")
	}

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(dayCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("name", "", "Export file name (default nido-YYYYMMDD.csv)")
	exportCmd.Flags().Bool("encrypt", false, "Encrypt the export with the configured age key")
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
}

// readPassphrase prompts for a passphrase twice without echoing.
func readPassphrase() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("passphrase entry requires an interactive terminal")
	}

	fmt.Fprint(os.Stderr, "Passphrase: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}

	fmt.Fprint(os.Stderr, "Confirm passphrase: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passphrases do not match")
	}
	if len(first) == 0 {
		return "", fmt.Errorf("passphrase must not be empty")
	}

	return string(first), nil
}

// confirmWarnings surfaces validation warnings and asks the user whether to
// proceed. Warnings are non-fatal: the user may always save anyway. Without
// an interactive terminal the --yes flag is required.
func confirmWarnings(warnings []nido.Warning, yes bool) (bool, error) {
	if len(warnings) == 0 {
		return true, nil
	}

	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.Message)
	}
	if yes {
		return true, nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("refusing to save with warnings; pass --yes to proceed")
	}

	fmt.Fprint(os.Stderr, "Save anyway? [y/N]: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// eventFromFlags applies the event field flags set on cmd over base.
// For add, base is a zero event; for edit, base is the stored event, so
// unset flags leave the existing values alone.
func eventFromFlags(cmd *cobra.Command, base *model.Event) (*model.Event, error) {
	e := *base
	flags := cmd.Flags()

	if flags.Changed("type") {
		v, _ := flags.GetString("type")
		e.Type = model.Type(v)
	}
	if !e.Type.Valid() {
		if e.Type == "" {
			return nil, fmt.Errorf("--type is required (feeding, sleep, play, bath)")
		}
		return nil, fmt.Errorf("unknown event type: %q", e.Type)
	}

	if flags.Changed("date") {
		v, _ := flags.GetString("date")
		if _, err := time.ParseInLocation(model.DateKeyLayout, v, time.Local); err != nil {
			return nil, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", v)
		}
		e.DateKey = v
	}

	if flags.Changed("start") {
		v, _ := flags.GetString("start")
		t, err := parseInstant(v, e.DateKey)
		if err != nil {
			return nil, err
		}
		e.Start = t
	}
	if flags.Changed("end") {
		v, _ := flags.GetString("end")
		t, err := parseInstant(v, e.DateKey)
		if err != nil {
			return nil, err
		}
		e.End = t
	}

	if e.Type == model.TypeFeeding {
		f := model.Feeding{}
		if e.Feeding != nil {
			f = *e.Feeding
		}
		if flags.Changed("mode") {
			v, _ := flags.GetString("mode")
			f.Mode = model.Mode(v)
		}
		if !f.Mode.Valid() {
			if f.Mode == "" {
				return nil, fmt.Errorf("--mode is required for feeding events (breast, bottle, syringe)")
			}
			return nil, fmt.Errorf("unknown feeding mode: %q", f.Mode)
		}
		if flags.Changed("side") {
			v, _ := flags.GetString("side")
			f.Side = model.Side(v)
			if !f.Side.Valid() {
				return nil, fmt.Errorf("unknown side: %q (want left or right)", v)
			}
		}
		if flags.Changed("volume") {
			v, _ := flags.GetFloat64("volume")
			if v < 0 {
				return nil, fmt.Errorf("volume must not be negative")
			}
			f.VolumeML = v
		}
		e.Feeding = &f
	}

	if flags.Changed("activity") {
		e.Activity, _ = flags.GetString("activity")
	}
	if flags.Changed("bath-notes") {
		e.BathNotes, _ = flags.GetString("bath-notes")
	}
	if flags.Changed("notes") {
		e.Notes, _ = flags.GetString("notes")
	}

	return &e, nil
}

// parseInstant parses a time flag. "HH:MM" is combined with dateKey (or
// today when no date key is set); a full "YYYY-MM-DDTHH:MM" stands alone.
// An explicit empty value clears the field.
func parseInstant(v, dateKey string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}

	if t, err := time.ParseInLocation("2006-01-02T15:04", v, time.Local); err == nil {
		return &t, nil
	}

	clock, err := time.Parse("15:04", v)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q (want HH:MM or YYYY-MM-DDTHH:MM)", v)
	}

	day := time.Now()
	if dateKey != "" {
		day, err = time.ParseInLocation(model.DateKeyLayout, dateKey, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", dateKey)
		}
	}

	t := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.Local)
	return &t, nil
}

// dateArg returns the date key argument, defaulting to today.
func dateArg(args []string) (string, error) {
	if len(args) == 0 {
		return time.Now().Format(model.DateKeyLayout), nil
	}
	if _, err := time.ParseInLocation(model.DateKeyLayout, args[0], time.Local); err != nil {
		return "", fmt.Errorf("invalid date %q (want YYYY-MM-DD)", args[0])
	}
	return args[0], nil
}

// shortID returns the first 8 characters of a UUID for display.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

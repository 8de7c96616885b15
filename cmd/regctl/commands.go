package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/devreg/internal/config"
	"github.com/muurk/devreg/internal/registry"
	"github.com/muurk/devreg/internal/ui"
)

// Output formats
const (
	formatTable = "table"
	formatPlain = "plain"
	formatJSON  = "json"
)

// Command flags
var (
	noSave      bool
	assumeYes   bool
	forceConfig bool
)

func init() {
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(configCmd)

	setCmd.Flags().BoolVar(&noSave, "no-save", false, "Do not write the new value to the store")
	formatCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configInitCmd.Flags().BoolVar(&forceConfig, "force", false, "Overwrite an existing config file")
}

// withApp opens the app for a command and closes it afterwards. When load
// is set, stored values are applied first; records that cannot be applied
// are reported on stderr and do not stop the command.
func withApp(load bool, fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		if load {
			if err := a.loadStored(); err != nil {
				printWarning(cmd.ErrOrStderr(), "Stored values not fully applied", err)
			}
		}
		return fn(cmd, a, args)
	}
}

var getCmd = &cobra.Command{
	Use:   "get <param>",
	Short: "Get a parameter value",
	Example: `  regctl get app/data_send_period
  regctl get lora/str_DEVEUI --backend nvram`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(true, func(cmd *cobra.Command, a *app, args []string) error {
		v, err := a.get(args[0])
		if err != nil {
			return err
		}
		return printValue(cmd.OutOrStdout(), args[0], v)
	}),
}

var setCmd = &cobra.Command{
	Use:   "set <param> <value>",
	Short: "Set a parameter value",
	Long: `Set a parameter value and save it to the store.

The value is parsed by the parameter's group; a rejected value leaves the
parameter and the store unchanged. With --no-save only the running value
changes, which is useful together with 'regctl shell'.`,
	Example: `  regctl set app/data_send_period 300
  regctl set app/watering_level_plant_1 0x40 --no-save`,
	Args: cobra.ExactArgs(2),
	RunE: withApp(true, func(cmd *cobra.Command, a *app, args []string) error {
		name, value := args[0], args[1]
		if err := a.set(name, value); err != nil {
			return err
		}
		if noSave {
			return printResult(cmd.OutOrStdout(), "Parameter set", ui.Detail{Key: "Name", Value: name})
		}

		// Save the parsed value, not the argument, so the store holds the
		// group's canonical form
		if err := a.reg.Export(a.reg.SaveOne, name); err != nil {
			return fmt.Errorf("set %s but failed to save: %w", name, err)
		}
		stored, _ := a.get(name)
		return printResult(cmd.OutOrStdout(), "Parameter saved",
			ui.Detail{Key: "Name", Value: name},
			ui.Detail{Key: "Value", Value: stored},
		)
	}),
}

var listCmd = &cobra.Command{
	Use:   "list [param]",
	Short: "List parameters",
	Long: `List every parameter with its current value, or only the one given.
Values stored in the configured store are applied first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: withApp(true, func(cmd *cobra.Command, a *app, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		rows, err := a.list(name)
		if err != nil {
			return err
		}
		return printRows(cmd.OutOrStdout(), rows, " = ")
	}),
}

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save all parameters",
	Long: `Save every parameter to the store. Parameters whose stored value is
already current are not rewritten.`,
	Args: cobra.NoArgs,
	RunE: withApp(true, func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.save(); err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), "Parameters saved", a.info()...)
	}),
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load stored configuration",
	Long: `Apply every record of the store and report records that could not be
applied. Exits non-zero if any record failed.`,
	Args: cobra.NoArgs,
	RunE: withApp(false, func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.loadStored(); err != nil {
			return fmt.Errorf("load incomplete: %w", err)
		}
		return printResult(cmd.OutOrStdout(), "Configuration loaded", a.info()...)
	}),
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump everything in storage",
	Long:  `Print the raw records of the store without applying them.`,
	Args:  cobra.NoArgs,
	RunE: withApp(false, func(cmd *cobra.Command, a *app, args []string) error {
		rows, err := a.dump()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if outputFormat == formatTable {
			fmt.Fprintln(out, ui.NewHeader("Store contents", cmd.CommandPath(), a.info()...).Render())
		}
		return printRows(out, rows, " \t ")
	}),
}

var commitCmd = &cobra.Command{
	Use:   "commit [group]",
	Short: "Apply the configuration of one group or of all groups",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(true, func(cmd *cobra.Command, a *app, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		if err := a.commit(name); err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), "Configuration committed")
	}),
}

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Erase every record in the store",
	Args:  cobra.NoArgs,
	RunE: withApp(false, func(cmd *cobra.Command, a *app, args []string) error {
		if !assumeYes {
			ok := ui.ConfirmDestructive(cmd.InOrStdin(), cmd.OutOrStdout(), "ERASE STORE", []string{
				"Every stored parameter will be deleted",
				"Running values fall back to their defaults on next start",
			})
			if !ok {
				return nil
			}
		}
		if err := a.format(); err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), "Store erased", a.info()...)
	}),
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Run commands interactively",
	Long: `Read commands from stdin, one per line, against a single registry.

Stored values are not loaded on start; use 'load'. Type 'help' for the
command list and 'exit' to quit.`,
	Args: cobra.NoArgs,
	RunE: withApp(false, func(cmd *cobra.Command, a *app, args []string) error {
		interactive := cmd.InOrStdin() == os.Stdin && ui.IsTerminal(os.Stdin)
		return newShell(a, cmd.OutOrStdout(), interactive).Run(cmd.InOrStdin())
	}),
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the regctl configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			if path, err = config.GetConfigPath(); err != nil {
				return err
			}
		}

		if _, err := os.Stat(path); err == nil && !forceConfig {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}

		c := config.NewConfig()
		if backendFlag != "" {
			c.Store.Backend = backendFlag
		}
		if err := c.Save(path); err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), "Configuration written",
			ui.Detail{Key: "Path", Value: path},
			ui.Detail{Key: "Backend", Value: c.Store.Backend},
		)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if outputFormat == formatJSON {
			return writeJSON(out, cfg)
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = out.Write(data)
		return err
	},
}

type jsonParam struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printValue(w io.Writer, name, value string) error {
	if outputFormat == formatJSON {
		return writeJSON(w, jsonParam{Name: name, Value: value})
	}
	_, err := fmt.Fprintln(w, value)
	return err
}

func printRows(w io.Writer, rows []ui.Detail, sep string) error {
	switch outputFormat {
	case formatJSON:
		params := make([]jsonParam, 0, len(rows))
		for _, r := range rows {
			params = append(params, jsonParam{Name: r.Key, Value: r.Value})
		}
		return writeJSON(w, params)
	case formatPlain:
		for _, r := range rows {
			if _, err := fmt.Fprintf(w, "%s%s%s\n", r.Key, sep, r.Value); err != nil {
				return err
			}
		}
		return nil
	default:
		t := ui.NewTable()
		t.Rows = rows
		_, err := fmt.Fprintln(w, t.Render())
		return err
	}
}

func printWarning(w io.Writer, title string, err error) {
	if outputFormat != formatTable {
		fmt.Fprintf(w, "Warning: %s: %v\n", title, err)
		return
	}
	r := ui.NewWarningResult(title)
	r.AddDetail("Cause", err.Error())
	fmt.Fprintln(w, r.Render())
}

// printError reports a failed command on stderr. Table output gets a
// failure box with hints for the common mistakes.
func printError(w io.Writer, err error) {
	if outputFormat != formatTable || !ui.IsTerminal(os.Stderr) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}

	var hints []string
	switch {
	case registry.IsNotFound(err):
		hints = append(hints, "Run 'regctl list' to see the available parameters")
	case registry.IsInvalidFormat(err), registry.IsOverflow(err):
		hints = append(hints, "Integers accept decimal, 0x, 0o and 0b forms; bytes are base64")
	case registry.IsCapacityExhausted(err):
		hints = append(hints, "Run 'regctl format' to erase the store, then 'regctl save'")
	}
	fmt.Fprintln(w, ui.NewFailureResult("Command failed", err, hints).Render())
}

func printResult(w io.Writer, title string, details ...ui.Detail) error {
	switch outputFormat {
	case formatJSON:
		m := map[string]string{"result": title}
		for _, d := range details {
			m[d.Key] = d.Value
		}
		return writeJSON(w, m)
	case formatPlain:
		_, err := fmt.Fprintln(w, title)
		return err
	default:
		r := ui.NewSuccessResult(title)
		for _, d := range details {
			r.AddDetail(d.Key, d.Value)
		}
		_, err := fmt.Fprintln(w, r.Render())
		return err
	}
}

package main

import (
	"os"

	"github.com/aretw0/abacus/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the calculator in the terminal",
	Long: `Starts an interactive calculator. Type digits and operators, Enter or = to
compute, Backspace to delete, Escape or c to clear and Ctrl+C to quit.

With --headless (or when stdin is not a terminal) every input line is a key
sequence such as "12+30=" and the display is printed after each line. Named
keys go in braces: "12{Backspace}3".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		km, err := cfg.Keymap()
		if err != nil {
			return err
		}

		headless, _ := cmd.Flags().GetBool("headless")
		jsonMode, _ := cmd.Flags().GetBool("json")
		quiet, _ := cmd.Flags().GetBool("quiet")
		debug, _ := cmd.Flags().GetBool("debug")

		logger := cli.CreateLogger(debug)

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		return cli.Execute(sigCtx, os.Stdin, cmd.OutOrStdout(), cli.RunOptions{
			Headless: headless || jsonMode,
			JSON:     jsonMode,
			Quiet:    quiet,
			Keymap:   km,
			Glyphs:   glyphsFor(cfg),
			Hooks:    cli.CreateHooks(logger, nil),
			Logger:   logger,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("headless", false, "Read key sequences line by line from stdin")
	runCmd.Flags().Bool("json", false, "Headless mode printing one JSON frame per line")
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
	runCmd.Flags().Bool("debug", false, "Log every key press to stderr")

	// 'abacus' alone starts the calculator
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}

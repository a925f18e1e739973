package main

import (
	"fmt"

	"github.com/aretw0/abacus/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Show the key bindings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		km, err := cfg.Keymap()
		if err != nil {
			return err
		}

		md := tui.KeyReference(km.Bindings(), glyphsFor(cfg))
		if raw, _ := cmd.Flags().GetBool("markdown"); raw {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}

		out, err := tui.NewRenderer()(md)
		if err != nil {
			return fmt.Errorf("failed to render key reference: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.Flags().Bool("markdown", false, "Print the raw markdown instead of rendering it")
}

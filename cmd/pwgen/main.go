package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/passforge/passforge-go/internal/crypto"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "pwgen",
		Short:        "generate random passwords",
		Long:         "pwgen generates random passwords from letters, optionally with digits and punctuation",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("a subcommand is required")
		},
	}

	// Disable completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(poolCmd())
	return rootCmd
}

func generateCmd() *cobra.Command {
	var opts crypto.GeneratorOptions
	var count int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "print one or more passwords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("count must be at least 1")
			}
			out := cmd.OutOrStdout()
			for i := 0; i < count; i++ {
				password, err := crypto.Generate(opts)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, password)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Length, "length", "l", crypto.DefaultLength, "password length")
	cmd.Flags().BoolVarP(&opts.Numbers, "digits", "d", false, "include digits")
	cmd.Flags().BoolVarP(&opts.Symbols, "symbols", "s", false, "include punctuation")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of passwords to print")
	return cmd
}

func poolCmd() *cobra.Command {
	var opts crypto.GeneratorOptions

	cmd := &cobra.Command{
		Use:   "pool",
		Short: "print the character pool for the selected classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), crypto.Pool(opts))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Numbers, "digits", "d", false, "include digits")
	cmd.Flags().BoolVarP(&opts.Symbols, "symbols", "s", false, "include punctuation")
	return cmd
}

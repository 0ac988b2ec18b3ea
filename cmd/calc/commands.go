package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var last int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past calculations, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, opts, true)
			if err != nil {
				return err
			}
			defer a.close()
			a.printHistory(last)
			return nil
		},
	}
	cmd.Flags().IntVar(&last, "last", 0, "show only the n most recent calculations")

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all past calculations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, opts, true)
			if err != nil {
				return err
			}
			defer a.close()
			return a.hist.Clear()
		},
	})
	return cmd
}

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the location of the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, opts, false)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, a.cfg.Path())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get [path]",
		Short: "Print a setting by dotted path, or every setting",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, opts, false)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				fmt.Fprint(a.out, a.cfg.JSON())
				return nil
			}
			r := a.cfg.Get(args[0])
			if !r.Exists() {
				return fmt.Errorf("no setting %s", args[0])
			}
			if r.Type == gjson.String {
				fmt.Fprintln(a.out, r.Str)
			} else {
				fmt.Fprintln(a.out, r.Raw)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set path value",
		Short: "Change a setting",
		Long: `Change a setting by dotted path. A value that is valid JSON is stored as
that JSON; anything else is stored as a string.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, opts, false)
			if err != nil {
				return err
			}
			if gjson.Valid(args[1]) {
				return a.cfg.SetRaw(args[0], args[1])
			}
			return a.cfg.Set(args[0], args[1])
		},
	})
	return cmd
}

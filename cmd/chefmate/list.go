package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"chefmate/internal/quantity"
	"chefmate/internal/shared"
	"chefmate/internal/shopping"

	"github.com/spf13/cobra"
)

func (c *cli) listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Manage the shopping list",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the shopping list, items to buy first",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			printItems(cmd.OutOrStdout(), rt.App.Items())
			return nil
		},
	}

	var (
		qty  float64
		unit string
	)
	add := &cobra.Command{
		Use:   "add [name]",
		Short: "Add an item, merging it with a matching one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			if err := rt.App.AddItem(cmd.Context(), args[0], qty, unit); err != nil {
				return userError(err)
			}
			printItems(cmd.OutOrStdout(), rt.App.Items())
			return nil
		},
	}
	add.Flags().Float64VarP(&qty, "qty", "q", 1, "quantity")
	add.Flags().StringVarP(&unit, "unit", "u", "", "unit (default from config)")

	toggle := &cobra.Command{
		Use:   "toggle [id]",
		Short: "Mark an item bought or not bought",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			if err := rt.App.ToggleItem(cmd.Context(), args[0]); err != nil {
				return userError(err)
			}
			printItems(cmd.OutOrStdout(), rt.App.Items())
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove [id]",
		Short: "Remove an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			if err := rt.App.RemoveItem(cmd.Context(), args[0]); err != nil {
				return userError(err)
			}
			printItems(cmd.OutOrStdout(), rt.App.Items())
			return nil
		},
	}

	var all bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove bought items, or every item with --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			if all {
				err = rt.App.ClearAll(cmd.Context())
			} else {
				err = rt.App.ClearCompleted(cmd.Context())
			}
			if err != nil {
				return userError(err)
			}
			printItems(cmd.OutOrStdout(), rt.App.Items())
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&all, "all", false, "remove every item")

	cmd.AddCommand(show, add, toggle, remove, clearCmd)
	return cmd
}

func printItems(w io.Writer, items []shopping.Item) {
	fmt.Fprintf(w, "%d to buy\n", shopping.ActiveCount(items))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, it := range items {
		mark := "[ ]"
		if it.Completed {
			mark = "[x]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", mark, quantity.Format(it.Quantity), it.Unit, it.Name, it.ID)
	}
	tw.Flush()
}

// userError replaces a persistence failure with its user-facing message.
func userError(err error) error {
	if err == nil {
		return nil
	}
	if msg := shared.UserMessage(err); msg != "" {
		return errors.New(msg)
	}
	return err
}

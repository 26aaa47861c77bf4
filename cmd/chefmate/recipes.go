package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"chefmate/internal/quantity"
	"chefmate/internal/recipe"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// recipeFile is the YAML document read by import and written by export.
type recipeFile struct {
	Recipes []recipe.Recipe `yaml:"recipes"`
}

func (c *cli) recipesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "Manage recipes",
	}

	var course string
	list := &cobra.Command{
		Use:   "list",
		Short: "List recipes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCOURSE\tSERVINGS")
			for _, r := range rt.App.Recipes(course) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", r.ID, r.Name, r.Course, r.Servings)
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&course, "course", "", "only recipes of this course")

	show := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			r, ok := rt.App.Recipe(args[0])
			if !ok {
				return fmt.Errorf("recipe %s not found", args[0])
			}
			printRecipe(cmd.OutOrStdout(), r)
			return nil
		},
	}

	var servings int
	addToList := &cobra.Command{
		Use:   "add-to-list [id]",
		Short: "Scale a recipe and merge it into the shopping list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			n := servings
			if n == 0 {
				if r, ok := rt.App.Recipe(args[0]); ok {
					n = r.Servings
				}
			}
			if err := rt.App.AddRecipeToList(cmd.Context(), args[0], n); err != nil {
				return userError(err)
			}
			printItems(cmd.OutOrStdout(), rt.App.Items())
			return nil
		},
	}
	addToList.Flags().IntVarP(&servings, "servings", "s", 0, "servings to shop for (default: the recipe's)")

	importCmd := &cobra.Command{
		Use:   "import [file.yaml]",
		Short: "Import recipes from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			recipes, err := readRecipes(f)
			if err != nil {
				return err
			}
			for _, r := range recipes {
				r.ID = ""
				saved, err := rt.App.SaveRecipe(cmd.Context(), r)
				if err != nil {
					return fmt.Errorf("failed to import %q: %w", r.Name, userError(err))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %s %s\n", saved.ID, saved.Name)
			}
			return nil
		},
	}

	var out string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export recipes as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return writeRecipes(w, rt.App.Recipes(""))
		},
	}
	exportCmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")

	deleteCmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			return userError(rt.App.DeleteRecipe(cmd.Context(), args[0]))
		},
	}

	clip := &cobra.Command{
		Use:   "clip [url]",
		Short: "Import a recipe from a web page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			r, err := rt.Clipper.Clip(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			saved, err := rt.App.SaveRecipe(cmd.Context(), r)
			if err != nil {
				return userError(err)
			}
			printRecipe(cmd.OutOrStdout(), saved)
			return nil
		},
	}

	cmd.AddCommand(list, show, addToList, importCmd, exportCmd, deleteCmd, clip)
	return cmd
}

func readRecipes(r io.Reader) ([]recipe.Recipe, error) {
	var doc recipeFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse recipes: %w", err)
	}
	return doc.Recipes, nil
}

func writeRecipes(w io.Writer, recipes []recipe.Recipe) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(recipeFile{Recipes: recipes}); err != nil {
		return fmt.Errorf("failed to write recipes: %w", err)
	}
	return enc.Close()
}

func printRecipe(w io.Writer, r recipe.Recipe) {
	fmt.Fprintf(w, "%s (%s, %d servings)\n", r.Name, r.Course, r.Servings)
	if r.ExternalLink != "" {
		fmt.Fprintf(w, "%s\n", r.ExternalLink)
	}
	fmt.Fprintln(w)
	for _, ing := range r.Ingredients {
		fmt.Fprintf(w, "  - %s %s %s\n", quantity.Format(ing.Quantity), ing.Unit, ing.Name)
	}
	if s := strings.TrimSpace(r.Instructions); s != "" {
		fmt.Fprintf(w, "\n%s\n", s)
	}
}

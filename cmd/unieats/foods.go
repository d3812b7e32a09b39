package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vladislavdragonenkov/unieats/internal/food"
	"github.com/vladislavdragonenkov/unieats/internal/render"
)

func newFoodsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "foods",
		Short: "Manage the food catalogue (admin)",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all food items",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := c.deps.Foods.Load(cmd.Context()); err != nil {
					return err
				}
				c.println(render.FoodsTable(c.deps.Foods.Foods()))
				return nil
			},
		},
		newFoodCreateCmd(c),
		newFoodUpdateCmd(c),
		foodActionCmd(c, "toggle-availability", "Toggle availability of a food item", c.toggleAvailability),
		foodActionCmd(c, "toggle-featured", "Toggle the featured flag of a food item", c.toggleFeatured),
		newFoodDeleteCmd(c),
	)
	return cmd
}

func (c *cli) toggleAvailability(ctx context.Context, id int64) error {
	return c.deps.Foods.ToggleAvailability(ctx, id)
}

func (c *cli) toggleFeatured(ctx context.Context, id int64) error {
	return c.deps.Foods.ToggleFeatured(ctx, id)
}

func foodActionCmd(c *cli, use, short string, action func(context.Context, int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return action(cmd.Context(), id)
		},
	}
}

// bindFormFlags вешает на команду флаги всех полей формы.
func bindFormFlags(fs *pflag.FlagSet, form *food.Form) {
	fs.StringVar(&form.Name, "name", "", "food name (required)")
	fs.StringVar(&form.Description, "description", "", "description")
	fs.StringVar(&form.Price, "price", "", "price, e.g. 9.50")
	fs.StringVar(&form.Category, "category", "", "category")
	fs.StringVar(&form.ImageURL, "image-url", "", "image URL")
	fs.StringVar(&form.Calories, "calories", "", "calories (integer, empty for none)")
	fs.StringVar(&form.PreparationTime, "prep-time", "", "preparation time in minutes")
	fs.StringVar(&form.Ingredients, "ingredients", "", "ingredients")
	fs.StringVar(&form.Allergens, "allergens", "", "allergens")
	fs.BoolVar(&form.Available, "available", true, "item is available")
	fs.BoolVar(&form.Featured, "featured", false, "item is featured")
}

func newFoodCreateCmd(c *cli) *cobra.Command {
	var form food.Form
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a food item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.deps.Foods.CancelEdit()
			return c.deps.Foods.Save(cmd.Context(), form)
		},
	}
	bindFormFlags(cmd.Flags(), &form)
	return cmd
}

func newFoodUpdateCmd(c *cli) *cobra.Command {
	var form food.Form
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a food item; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := c.deps.Foods.Load(ctx); err != nil {
				return err
			}
			current, err := c.deps.Foods.Edit(id)
			if err != nil {
				return err
			}
			mergeChanged(cmd.Flags(), &current, form)
			return c.deps.Foods.Save(ctx, current)
		},
	}
	bindFormFlags(cmd.Flags(), &form)
	return cmd
}

// mergeChanged переносит в dst только явно заданные флаги.
func mergeChanged(fs *pflag.FlagSet, dst *food.Form, src food.Form) {
	fields := map[string]func(){
		"name":        func() { dst.Name = src.Name },
		"description": func() { dst.Description = src.Description },
		"price":       func() { dst.Price = src.Price },
		"category":    func() { dst.Category = src.Category },
		"image-url":   func() { dst.ImageURL = src.ImageURL },
		"calories":    func() { dst.Calories = src.Calories },
		"prep-time":   func() { dst.PreparationTime = src.PreparationTime },
		"ingredients": func() { dst.Ingredients = src.Ingredients },
		"allergens":   func() { dst.Allergens = src.Allergens },
		"available":   func() { dst.Available = src.Available },
		"featured":    func() { dst.Featured = src.Featured },
	}
	fs.Visit(func(f *pflag.Flag) {
		if set, ok := fields[f.Name]; ok {
			set()
		}
	})
}

func newFoodDeleteCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a food item after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.deps.Foods.Delete(cmd.Context(), id)
		},
	}
	cmd.Flags().BoolVarP(&c.assumeYes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

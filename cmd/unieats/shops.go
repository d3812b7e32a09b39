package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/unieats/internal/render"
	"github.com/vladislavdragonenkov/unieats/internal/shop"
)

func newShopsCmd(c *cli) *cobra.Command {
	var search, city, sortKey string
	cmd := &cobra.Command{
		Use:   "shops",
		Short: "List shops with optional search, city filter and sort",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := shop.ParseSortKey(sortKey)
			if err != nil {
				return err
			}
			browser := c.deps.Shops
			if err := browser.Load(cmd.Context()); err != nil {
				return err
			}
			if err := browser.Apply(shop.Query{Text: search, City: city, Sort: key}); err != nil {
				return err
			}
			c.println(render.ShopsTable(browser.Filtered(), browser.CountLabel()))
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive text in name or description")
	cmd.Flags().StringVar(&city, "city", "", "exact city")
	cmd.Flags().StringVar(&sortKey, "sort", "", "sort key: name|rating|orders")

	cmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Show shop details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.deps.Shops.Load(cmd.Context()); err != nil {
				return err
			}
			s, err := c.deps.Shops.Find(id)
			if err != nil {
				return err
			}
			c.println(render.ShopDetailText(s))
			return nil
		},
	})
	return cmd
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", raw)
	}
	return id, nil
}

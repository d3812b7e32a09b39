package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
	"github.com/vladislavdragonenkov/unieats/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/unieats/internal/render"
)

func newCartCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and change the persistent cart",
	}

	var quantity int
	add := &cobra.Command{
		Use:   "add FOOD_ID",
		Short: "Add a food item (quantities of the same item are summed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.deps.Cart.AddToCart(cmd.Context(), id, quantity); err != nil {
				return err
			}
			return c.printCart(cmd.Context())
		},
	}
	add.Flags().IntVarP(&quantity, "qty", "q", 1, "quantity to add")

	cmd.AddCommand(
		add,
		&cobra.Command{
			Use:   "remove FOOD_ID",
			Short: "Remove a food item",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if err := c.deps.Cart.RemoveFromCart(cmd.Context(), id); err != nil {
					return err
				}
				return c.printCart(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "set FOOD_ID QUANTITY",
			Short: "Set quantity; zero or less removes the item",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				q, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid quantity %q", args[1])
				}
				if err := c.deps.Cart.UpdateCartQuantity(cmd.Context(), id, q); err != nil {
					return err
				}
				return c.printCart(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := c.deps.Cart.ClearCart(cmd.Context()); err != nil {
					return err
				}
				return c.printCart(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Show cart contents and total",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.printCart(cmd.Context())
			},
		},
		newCartWatchCmd(c),
	)
	return cmd
}

// printCart печатает корзину; имена и цены берутся через кэш цен, так что итог
// не запрашивает блюда повторно. Недоступные показываются прочерком.
func (c *cli) printCart(ctx context.Context) error {
	items := c.deps.Cart.Items()
	lines := make([]render.CartLine, 0, len(items))
	for _, item := range items {
		line := render.CartLine{FoodID: item.FoodID, Quantity: item.Quantity}
		if f, err := c.deps.Prices.Food(ctx, item.FoodID); err == nil {
			line.Name = f.Name
			line.Price = render.Currency(f.UnitPriceMinor())
		}
		lines = append(lines, line)
	}

	total := ""
	if amount, err := c.deps.Cart.Total(ctx); err == nil {
		total = render.Currency(amount)
	} else if errors.Is(err, domain.ErrPriceUnavailable) {
		total = "unavailable"
	}

	c.println(render.CartTable(lines, c.deps.Cart.Summary(), total))
	return nil
}

func newCartWatchCmd(c *cli) *cobra.Command {
	var allNamespaces bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream cart events from Kafka until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := c.deps.Config
			if len(cfg.KafkaBrokers) == 0 {
				return errors.New("kafka brokers are not configured (UNIEATS_KAFKA_BROKERS)")
			}
			namespace := cfg.Namespace
			if allNamespaces {
				namespace = ""
			}

			watcher, err := kafka.NewWatcher(cfg.KafkaBrokers, cfg.KafkaGroupID, cfg.KafkaTopic, namespace,
				func(_ context.Context, event domain.CartEvent) error {
					c.println(formatCartEvent(event))
					return nil
				}, c.deps.Logger.WithField("component", "kafka-watcher"))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			watcher.Start(ctx)
			<-ctx.Done()
			return watcher.Stop()
		},
	}
	cmd.Flags().BoolVar(&allNamespaces, "all", false, "show events of every namespace")
	return cmd
}

func formatCartEvent(e domain.CartEvent) string {
	line := fmt.Sprintf("%s  %-18s ns=%s", render.Date(e.OccurredAt.Local()), e.Type, e.Namespace)
	if e.FoodID != 0 {
		line += fmt.Sprintf(" food=%d", e.FoodID)
	}
	return line + fmt.Sprintf(" qty=%d", e.Quantity)
}

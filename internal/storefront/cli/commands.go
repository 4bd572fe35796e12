package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"strawbeary/internal/storefront"
)

// NewMenuCommand creates the menu command.
func NewMenuCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "List available dishes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.RefreshMenu(cmd.Context()); err != nil {
				return apiError("fetch menu", err)
			}
			return s.out.Menu(s.Menu())
		},
	}
}

// NewCartCommand creates the cart command and its mutations.
func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(rootOpts, cmd, func(s *session) error { return nil })
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <dish>",
		Short: "Add one unit of a dish",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(rootOpts, cmd, func(s *session) error {
				if err := s.RefreshMenu(cmd.Context()); err != nil {
					return apiError("fetch menu", err)
				}
				if _, err := s.AddItem(args[0]); err != nil {
					return apiError("add item", err)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <dish>",
		Short: "Remove a dish from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(rootOpts, cmd, func(s *session) error {
				s.RemoveItem(args[0])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "qty <dish> <quantity>",
		Short: "Set the quantity of a dish (values below 1 become 1)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(rootOpts, cmd, func(s *session) error {
				s.SetQuantity(args[0], args[1])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(rootOpts, cmd, func(s *session) error {
				s.Clear()
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "restore",
		Short: "Adopt the server copy of the cart when the local cart is empty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(rootOpts, cmd, func(s *session) error {
				if _, err := s.Restore(cmd.Context()); err != nil {
					return apiError("restore cart", err)
				}
				return nil
			})
		},
	})

	return cmd
}

// withCart runs fn against the session and prints the resulting cart.
func withCart(rootOpts *RootOptions, cmd *cobra.Command, fn func(s *session) error) error {
	s, err := openSession(rootOpts, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if err := fn(s); err != nil {
		return err
	}
	return s.out.Cart(newCartView(s.SessionID(), s.Cart()))
}

// NewCheckoutCommand creates the checkout command.
func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the current cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.close()

			order, err := s.Checkout(cmd.Context())
			if errors.Is(err, storefront.ErrAlreadyPlaced) {
				return s.out.AlreadyPlaced()
			}
			if err != nil {
				return apiError("checkout", err)
			}
			return s.out.Order(order)
		},
	}
}

// NewOrdersCommand creates the orders command.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List orders placed from this session, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.close()

			orders, err := s.Orders(cmd.Context())
			if err != nil {
				return apiError("list orders", err)
			}
			return s.out.Orders(orders)
		},
	}
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
	"github.com/vladislavdragonenkov/unieats/internal/validate"
)

func newLoginCmd(c *cli) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email, err = c.prompt("Email", email); err != nil {
				return err
			}
			if err := validate.Email(email); err != nil {
				return err
			}
			if password, err = c.prompt("Password", password); err != nil {
				return err
			}
			if err := validate.Required("Password", password); err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := c.deps.API.Login(ctx, email, password); err != nil {
				if errors.Is(err, domain.ErrInvalidCredentials) {
					c.deps.Notifier.Error("Invalid email or password")
				}
				return err
			}
			if err := c.deps.SaveSession(ctx); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			user, err := c.deps.API.CurrentUser(ctx)
			if err != nil {
				c.println("Logged in")
				return nil
			}
			c.println(fmt.Sprintf("Logged in as %s <%s> (%s)", user.Name, user.Email, user.Role))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when empty)")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logoutErr := c.deps.API.Logout(cmd.Context())
			// Локальная сессия удаляется даже если бэкенд недоступен.
			if err := c.deps.SaveSession(cmd.Context()); err != nil {
				return fmt.Errorf("clear session: %w", err)
			}
			if logoutErr != nil {
				return logoutErr
			}
			c.println("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := c.deps.API.CurrentUser(cmd.Context())
			if errors.Is(err, domain.ErrUnauthenticated) {
				return errors.New("not logged in, run `unieats login`")
			}
			if err != nil {
				return err
			}
			c.println(fmt.Sprintf("%s <%s>", user.Name, user.Email))
			c.println(fmt.Sprintf("role: %s", user.Role))
			return nil
		},
	}
}

func newRegisterCmd(c *cli) *cobra.Command {
	var (
		reg     domain.CustomerRegistration
		confirm string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a customer account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if reg.Name, err = c.prompt("Name", reg.Name); err != nil {
				return err
			}
			if reg.Email, err = c.prompt("Email", reg.Email); err != nil {
				return err
			}
			if reg.Password, err = c.prompt("Password", reg.Password); err != nil {
				return err
			}
			if confirm, err = c.prompt("Confirm password", confirm); err != nil {
				return err
			}
			if err := validate.Registration(reg.Name, reg.Email, reg.Password, confirm); err != nil {
				return err
			}

			ctx := cmd.Context()
			exists, err := c.deps.API.EmailExists(ctx, reg.Email)
			if err == nil && exists {
				c.deps.Notifier.Error("Email already registered")
				return fmt.Errorf("email %s is already registered", reg.Email)
			}
			if err := c.deps.API.RegisterCustomer(ctx, reg); err != nil {
				return err
			}
			c.deps.Notifier.Success("Registration successful! Please log in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&reg.Name, "name", "", "full name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "email")
	cmd.Flags().StringVar(&reg.Password, "password", "", "password")
	cmd.Flags().StringVar(&confirm, "confirm", "", "password confirmation")
	cmd.Flags().StringVar(&reg.PhoneNumber, "phone", "", "phone number")
	cmd.Flags().StringVar(&reg.Address, "address", "", "address")
	cmd.Flags().StringVar(&reg.City, "city", "", "city")
	return cmd
}

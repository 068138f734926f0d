package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/finchat/internal/auth"
	"github.com/Veraticus/finchat/internal/cli"
	"github.com/Veraticus/finchat/internal/common"
	"github.com/spf13/cobra"
)

func registerCmd() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and start a session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			prompter := cli.NewPrompter(cmd.InOrStdin(), out)

			var err error
			if name == "" {
				if name, err = prompter.Ask(ctx, "Nombre", ""); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = prompter.Ask(ctx, "Correo electrónico", ""); err != nil {
					return err
				}
			}
			password, err := prompter.AskSecret(ctx, "Contraseña")
			if err != nil {
				return err
			}
			confirm, err := prompter.AskSecret(ctx, "Confirmar contraseña")
			if err != nil {
				return err
			}

			if err := auth.ValidateRegistration(name, email, password, confirm); err != nil {
				return showFormError(out, err)
			}

			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if _, err := rt.root.Auth().Register(ctx, strings.TrimSpace(name), strings.TrimSpace(email), password); err != nil {
				return showFormError(out, err)
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Cuenta creada. ¡Bienvenido, %s!", strings.TrimSpace(name))))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")

	return cmd
}

func loginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start a session with an existing account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			prompter := cli.NewPrompter(cmd.InOrStdin(), out)

			var err error
			if email == "" {
				if email, err = prompter.Ask(ctx, "Correo electrónico", ""); err != nil {
					return err
				}
			}
			password, err := prompter.AskSecret(ctx, "Contraseña")
			if err != nil {
				return err
			}

			if err := auth.ValidateLogin(email, password); err != nil {
				return showFormError(out, err)
			}

			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if _, err := rt.root.Auth().Login(ctx, strings.TrimSpace(email), password); err != nil {
				return showFormError(out, err)
			}

			fmt.Fprintln(out, cli.FormatSuccess("Sesión iniciada como "+strings.TrimSpace(email)))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.root.Auth().Logout(ctx); err != nil {
				return fmt.Errorf("failed to end session: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Sesión cerrada"))
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who is logged in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if !rt.root.Authenticated(ctx) {
				fmt.Fprintln(out, cli.FormatWarning(notLoggedIn))
				return nil
			}

			user, ok, err := rt.root.Auth().CurrentUser(ctx)
			if err != nil {
				return fmt.Errorf("failed to read session: %w", err)
			}

			who := "usuario desconocido"
			if ok {
				who = user.Email
				if user.DisplayName != "" {
					who = fmt.Sprintf("%s <%s>", user.DisplayName, user.Email)
				}
			}

			fmt.Fprintln(out, cli.FormatSuccess("Sesión activa: "+who))
			fmt.Fprintln(out, cli.FormatInfo("Servidor: "+rt.cfg.API.BaseURL))
			return nil
		},
	}
}

// showFormError prints validation and auth messages the way the form
// would show them and returns the error for the exit code.
func showFormError(w io.Writer, err error) error {
	var validationErr *common.ValidationError
	var authErr *common.AuthError

	switch {
	case errors.As(err, &validationErr):
		fmt.Fprintln(w, cli.FormatError(validationErr.Message))
	case errors.As(err, &authErr):
		fmt.Fprintln(w, cli.FormatError(authErr.Message))
	default:
		return err
	}
	return errSilent
}

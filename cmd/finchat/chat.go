package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/finchat/internal/chat"
	"github.com/Veraticus/finchat/internal/cli"
	"github.com/Veraticus/finchat/internal/common"
	"github.com/Veraticus/finchat/internal/tui"
	"github.com/Veraticus/finchat/internal/tui/themes"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const sessionExpiredText = "Tu sesión expiró. Vuelve a iniciar sesión con 'finchat login'."

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <mensaje>",
		Short: "Send one message to the assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			conv, err := rt.conversation(ctx)
			if err != nil {
				return err
			}

			turn := conv.SendMessage(ctx, strings.Join(args, " "))
			return printTurn(cmd, turn, turn.Reply.Text)
		},
	}
}

func consultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consult <pregunta>",
		Short: "Query your processed receipts",
		Long: `Ask a free-text question about the receipts you already uploaded.
Tabular answers are printed as a table with their totals.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			conv, err := rt.conversation(ctx)
			if err != nil {
				return err
			}

			turn := conv.Consult(ctx, strings.Join(args, " "))
			text := turn.Reply.Text
			if turn.Err == nil && turn.Consultation != nil {
				text = cli.FormatConsultation(*turn.Consultation)
			}
			return printTurn(cmd, turn, text)
		},
	}
}

// printTurn prints the assistant reply and maps a failed turn to the exit
// code. The apology has already been printed as the reply.
func printTurn(cmd *cobra.Command, turn chat.Turn, text string) error {
	out := cmd.OutOrStdout()

	if text != "" {
		fmt.Fprintln(out, cli.ChatIcon+" "+text)
	}

	if turn.Err == nil {
		return nil
	}
	if errors.Is(turn.Err, common.ErrSessionExpired) {
		fmt.Fprintln(out, cli.FormatWarning(sessionExpiredText))
	}
	return errSilent
}

func chatCmd() *cobra.Command {
	var theme string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat",
		Long: `Open the interactive chat screen. Besides plain messages it accepts
/consult <pregunta>, /upload <archivos...>, /logout and /quit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if !rt.root.Authenticated(ctx) {
				return common.NewUserError(notLoggedIn, common.ErrNotAuthenticated)
			}

			if theme == "" {
				theme = viper.GetString("tui.theme")
			}

			outcome, err := tui.Run(ctx, rt.root, tui.WithTheme(themes.GetTheme(theme)))
			if err != nil {
				return err
			}

			switch {
			case outcome.SessionExpired:
				fmt.Fprintln(out, cli.FormatWarning(sessionExpiredText))
				return errSilent
			case outcome.LoggedOut:
				fmt.Fprintln(out, cli.FormatSuccess("Sesión cerrada"))
			default:
				fmt.Fprintln(out, cli.FormatInfo("¡Hasta luego!"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "", "color theme (default, catppuccin-mocha)")

	return cmd
}

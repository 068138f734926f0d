package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/finchat/internal/cli"
	"github.com/Veraticus/finchat/internal/common"
	"github.com/Veraticus/finchat/internal/model"
	"github.com/Veraticus/finchat/internal/upload"
	"github.com/spf13/cobra"
)

func uploadCmd() *cobra.Command {
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "upload <archivo> [archivo...]",
		Short: "Upload receipts for OCR, SUNAT validation and classification",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			up, err := rt.root.Uploader(ctx)
			if err != nil {
				return common.NewUserError(notLoggedIn, err)
			}

			files := make([]model.PendingFile, 0, len(args))
			for _, path := range args {
				files = append(files, model.NewPendingFile(path))
			}
			up.Select(files)

			if !noProgress {
				progress := cli.NewStageProgress(out, len(upload.DefaultStages))
				up.OnChange(progress.Update)
			}

			handler := cli.NewInterruptHandler(out)
			ctx = handler.HandleInterrupts(ctx, "Upload", "Vuelve a ejecutar 'finchat upload' con los mismos archivos.")

			receipts, err := up.SubmitPending(ctx)
			if err != nil {
				return uploadFailure(ctx, cmd, handler, err)
			}

			if len(receipts) == 0 {
				fmt.Fprintln(out, cli.FormatWarning("El servidor no devolvió comprobantes procesados."))
				return nil
			}

			for _, r := range receipts {
				fmt.Fprintln(out, cli.FormatReceipt(r))
			}
			fmt.Fprintln(out, cli.FormatSummary(model.Summarize(receipts)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "hide the stage progress bar")

	return cmd
}

func uploadFailure(ctx context.Context, cmd *cobra.Command, handler *cli.InterruptHandler, err error) error {
	out := cmd.OutOrStdout()

	if handler.WasInterrupted() || errors.Is(ctx.Err(), context.Canceled) {
		return errSilent
	}

	var validationErr *common.ValidationError
	if errors.As(err, &validationErr) {
		fmt.Fprintln(out, cli.FormatError(validationErr.Message))
		return errSilent
	}

	if errors.Is(err, common.ErrSessionExpired) {
		fmt.Fprintln(out, cli.FormatWarning(sessionExpiredText))
		return errSilent
	}

	fmt.Fprintln(out, cli.FormatError(upload.FailedMessage))
	return err
}

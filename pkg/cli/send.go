package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/telekom/smtp-mail-adapter/pkg/mail"
)

const defaultSendTimeout = 30 * time.Second

func newAdapter(rt *runtimeState, dryRun bool) (*mail.Adapter, error) {
	opts := []mail.Option{mail.WithLogger(rt.Logger().Sugar())}
	if dryRun {
		opts = append(opts, mail.WithTransport(mail.NewLogTransport(rt.Writer())))
	}
	return mail.New(*rt.cfg, opts...)
}

// waitForDelivery blocks until d has been handed to the server. The CLI is
// the one caller that reports transport failures to the user.
func waitForDelivery(ctx context.Context, rt *runtimeState, a *mail.Adapter, d *mail.Delivery, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := d.Wait(ctx); err != nil {
		return fmt.Errorf("mail %s was not sent: %w", d.ID, err)
	}
	_ = a.Drain(ctx)
	_, _ = fmt.Fprintf(rt.Writer(), "mail %s sent\n", d.ID)
	return nil
}

func NewSendCommand() *cobra.Command {
	var (
		opts    mail.SendMailOptions
		dryRun  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a plain-text mail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			a, err := newAdapter(rt, dryRun)
			if err != nil {
				return err
			}
			return waitForDelivery(cmd.Context(), rt, a, a.SendMail(opts), timeout)
		},
	}

	cmd.Flags().StringVar(&opts.To, "to", "", "Recipient address")
	cmd.Flags().StringVar(&opts.Subject, "subject", "", "Subject line")
	cmd.Flags().StringVar(&opts.Text, "text", "", "Plain-text body")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the message instead of sending it")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultSendTimeout, "How long to wait for the SMTP server")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func NewSendVerificationCommand() *cobra.Command {
	return newTemplatedSendCommand("send-verification", "Send the verification mail to a user",
		func(a *mail.Adapter, opts mail.SpecificMailOptions) (*mail.Delivery, error) {
			return a.SendVerificationEmail(opts)
		})
}

func NewSendPasswordResetCommand() *cobra.Command {
	return newTemplatedSendCommand("send-password-reset", "Send the password reset mail to a user",
		func(a *mail.Adapter, opts mail.SpecificMailOptions) (*mail.Delivery, error) {
			return a.SendPasswordResetEmail(opts)
		})
}

func newTemplatedSendCommand(use, short string, send func(*mail.Adapter, mail.SpecificMailOptions) (*mail.Delivery, error)) *cobra.Command {
	var (
		flags   templateFlags
		dryRun  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			a, err := newAdapter(rt, dryRun)
			if err != nil {
				return err
			}
			d, err := send(a, flags.options())
			if err != nil {
				return err
			}
			return waitForDelivery(cmd.Context(), rt, a, d, timeout)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the message instead of sending it")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultSendTimeout, "How long to wait for the SMTP server")
	_ = cmd.MarkFlagRequired("link")

	return cmd
}

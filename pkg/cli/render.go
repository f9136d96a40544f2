package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/telekom/smtp-mail-adapter/pkg/mail"
)

type templateFlags struct {
	link    string
	appName string
	user    map[string]string
}

func (f *templateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.link, "link", "", "Link inserted into the template")
	cmd.Flags().StringVar(&f.appName, "app-name", "", "Application name inserted into the template")
	cmd.Flags().StringToStringVar(&f.user, "user", nil, "User attributes, e.g. --user email=jane@example.com,language=fr")
}

func (f *templateFlags) options() mail.SpecificMailOptions {
	attrs := make(mail.Attributes, len(f.user))
	for k, v := range f.user {
		attrs[k] = v
	}
	return mail.SpecificMailOptions{Link: f.link, AppName: f.appName, User: attrs}
}

func NewRenderCommand() *cobra.Command {
	var (
		flags  templateFlags
		format string
	)

	cmd := &cobra.Command{
		Use:       "render " + mail.VerificationEmailTemplate + "|" + mail.PasswordResetEmailTemplate,
		Short:     "Render a mail template for a user without sending it",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{mail.VerificationEmailTemplate, mail.PasswordResetEmailTemplate},
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			a, err := newAdapter(rt, true)
			if err != nil {
				return err
			}
			msg, err := a.Compose(args[0], flags.options())
			if err != nil {
				return err
			}
			return printMessage(rt.Writer(), msg, format)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "all", "Which part to print: all, text, html")

	return cmd
}

func printMessage(w io.Writer, msg *mail.Message, format string) error {
	switch format {
	case "text":
		_, err := fmt.Fprint(w, msg.Text)
		return err
	case "html":
		_, err := fmt.Fprint(w, msg.HTML)
		return err
	case "all", "":
		_, err := fmt.Fprintf(w, "From: %s\nTo: %s\nSubject: %s\n\n%s\n\n%s\n", msg.From, msg.To, msg.Subject, msg.Text, msg.HTML)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

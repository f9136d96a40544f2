package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/telekom/smtp-mail-adapter/pkg/i18n"
	"github.com/telekom/smtp-mail-adapter/pkg/mail"
)

// NewCheckCommand validates the config and template directory and, unless
// --skip-connect is set, opens and closes one SMTP connection.
func NewCheckCommand() *cobra.Command {
	var skipConnect bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration, templates and SMTP connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			cfg := *rt.cfg
			cfg.Defaults()
			w := rt.Writer()

			if err := cfg.Validate(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(w, "configuration: ok")
			printSubject(w, "subjectVerificationEmail", cfg.SubjectVerificationEmail)
			printSubject(w, "subjectPasswordResetEmail", cfg.SubjectPasswordResetEmail)

			for _, name := range mail.RequiredTemplates {
				if err := mail.ValidateTemplate(cfg.TemplateDir, name); err != nil {
					return err
				}
			}
			_, _ = fmt.Fprintf(w, "templates: ok (%s)\n", cfg.TemplateDir)

			if skipConnect {
				return nil
			}
			transport := mail.NewSMTPTransport(cfg.Transport, rt.Logger().Sugar())
			if err := transport.Verify(); err != nil {
				return fmt.Errorf("SMTP connection to %s:%d failed: %w", transport.GetHost(), transport.GetPort(), err)
			}
			_, _ = fmt.Fprintf(w, "smtp: ok (%s:%d)\n", transport.GetHost(), transport.GetPort())
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipConnect, "skip-connect", false, "Do not connect to the SMTP server")

	return cmd
}

func printSubject(w io.Writer, key string, subject i18n.TranslatableString) {
	if !subject.IsLocalized() {
		_, _ = fmt.Fprintf(w, "  %s: plain\n", key)
		return
	}
	_, _ = fmt.Fprintf(w, "  %s: %s\n", key, strings.Join(subject.Languages(), ", "))
}

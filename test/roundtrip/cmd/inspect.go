package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sideeffffect/emil"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect message",
	Short: "Parses a message into the mail model and summarizes it",
	Args:  cobra.ExactArgs(1),
	Run:   RunInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func RunInspect(cmd *cobra.Command, args []string) {
	raw, err := os.ReadFile(args[0])
	cobra.CheckErr(err)

	m, err := emil.Deserialize(raw)
	cobra.CheckErr(err)

	if m.Header.From != nil {
		fmt.Printf("From:    %s\n", m.Header.From)
	}
	for _, to := range m.Header.To {
		fmt.Printf("To:      %s\n", to)
	}
	fmt.Printf("Subject: %s\n", m.Header.Subject)
	if !m.Header.Date.IsZero() {
		fmt.Printf("Date:    %s\n", m.Header.Date.Format(time.RFC1123Z))
	}

	fmt.Printf("Body:    %s", bodyKindName(m.Body.Kind()))
	if c, ok := m.Body.TextContent(); ok && c.Charset != "" {
		fmt.Printf(" (text charset %s)", c.Charset)
	}
	fmt.Println()

	if p := emil.Preview(m, 76); p != "" {
		fmt.Printf("Preview: %s\n", p)
	}

	for _, att := range m.Attachments {
		size := "?"
		if rc, err := att.Content(); err == nil {
			if n, err := io.Copy(io.Discard, rc); err == nil {
				size = fmt.Sprintf("%d", n)
			}
			_ = rc.Close()
		}
		fmt.Printf("Attachment: %q type=%s disposition=%s content-id=%q size=%s\n",
			att.Filename, att.MimeType, dispositionName(att.Disposition),
			att.ContentID, size)
	}
}

func bodyKindName(k emil.BodyKind) string {
	switch k {
	case emil.BodyText:
		return "text"
	case emil.BodyHTML:
		return "html"
	case emil.BodyAlternative:
		return "text+html"
	}
	return "empty"
}

func dispositionName(d emil.Disposition) string {
	if s := d.String(); s != "" {
		return s
	}
	return "none"
}

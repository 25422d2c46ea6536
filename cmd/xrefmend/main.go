package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "xrefmend",
		Short: "Reconcile prose prefixes around cross-references",
		Long: `xrefmend removes duplicated words in front of cross-references
("see Figure [Figure 1]") and moves a missing kind word into bare
numeric labels ("see figure [1]").

Documents are parsed by extension: Markdown, plain text, HTML, CSV,
JSON trees, PDF and DOCX. Output is rendered as Markdown.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(fixCmd())
	root.AddCommand(kindsCmd())
	return root
}

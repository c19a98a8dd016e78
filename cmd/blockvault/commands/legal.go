package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"blockvault/internal/domain"
)

func notarizeCmd() *cobra.Command {
	var title, contentPath, fileID string
	var list, verify bool

	cmd := &cobra.Command{
		Use:   "notarize [document-id]",
		Short: "Notarize a document, or list and verify notarizations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := apiAuthed()
			if err != nil {
				return err
			}

			switch {
			case list:
				docs, err := c.ListDocuments()
				if err != nil {
					return err
				}
				if len(docs) == 0 {
					fmt.Println("No documents.")
					return nil
				}
				for _, d := range docs {
					fmt.Printf("%s  %-20s  %s  %s\n",
						d.ID, d.Status, domain.FormatTimestamp(d.CreatedAt), d.Title)
				}
				return nil

			case verify:
				if len(args) != 1 {
					return errors.New("verify needs a document id")
				}
				ok, err := c.VerifyDocument(args[0])
				if err != nil {
					return err
				}
				if !ok {
					return errors.New("proof did not verify")
				}
				fmt.Println("Proof verified.")
				return nil

			default:
				if contentPath == "" {
					return errors.New("document content is required (--content)")
				}
				raw, err := os.ReadFile(contentPath)
				if err != nil {
					return err
				}
				if title == "" {
					title = contentPath
				}
				doc, err := c.Notarize(title, string(raw), fileID)
				if err != nil {
					return err
				}
				fmt.Println("Notarized.")
				fmt.Println("Document ID:", doc.ID)
				if doc.Proof != nil {
					fmt.Println("Commitment: ", doc.Proof.Commitment)
				}
				return nil
			}
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "document title (default: content path)")
	cmd.Flags().StringVar(&contentPath, "content", "", "path to the document text")
	cmd.Flags().StringVar(&fileID, "file-id", "", "vault file to anchor the document to")
	cmd.Flags().BoolVar(&list, "list", false, "list notarized documents")
	cmd.Flags().BoolVar(&verify, "verify", false, "verify a stored proof")
	return cmd
}

func redactCmd() *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "redact <path>",
		Short: "Scan a document for personal information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			c, err := apiAuthed()
			if err != nil {
				return err
			}
			res, err := c.Redact(string(raw))
			if err != nil {
				return err
			}

			if apply {
				fmt.Println(res.Redacted)
				return nil
			}
			if len(res.Matches) == 0 {
				fmt.Println("No personal information found.")
				return nil
			}
			for _, m := range res.Matches {
				fmt.Printf("%-12s %d-%d  %s\n", m.Type, m.Start, m.End, m.Text)
			}
			fmt.Printf("%d match(es), rerun with --apply for the redacted text\n", len(res.Matches))
			return nil
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "print the redacted text instead of findings")
	return cmd
}

func summarizeCmd() *cobra.Command {
	var fileKey string
	var maxLen, minLen int

	cmd := &cobra.Command{
		Use:   "summarize <file-id>",
		Short: "Produce a provable summary of a vault file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fileKey == "" {
				return errors.New("the file passphrase is required (--key)")
			}
			c, err := apiAuthed()
			if err != nil {
				return err
			}
			res, err := c.Summarize(args[0], fileKey, maxLen, minLen)
			if err != nil {
				return err
			}
			fmt.Println(strings.TrimSpace(res.Summary))
			fmt.Println()
			fmt.Println("Commitment:", res.Proof.Commitment)
			fmt.Println("Model:     ", res.Metadata.ModelHash)
			return nil
		},
	}
	cmd.Flags().StringVarP(&fileKey, "key", "k", "", "file passphrase")
	cmd.Flags().IntVar(&maxLen, "max", 0, "maximum summary length in words")
	cmd.Flags().IntVar(&minLen, "min", 0, "minimum summary length in words")
	return cmd
}

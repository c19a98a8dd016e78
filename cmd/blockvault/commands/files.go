package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"blockvault/internal/domain"
)

func uploadCmd() *cobra.Command {
	var fileKey, aad string

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Encrypt and store a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fileKey == "" {
				return errors.New("a file passphrase is required (--key)")
			}
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			c, err := apiAuthed()
			if err != nil {
				return err
			}
			f, err := c.Upload(filepath.Base(args[0]), content, fileKey, aad)
			if err != nil {
				return err
			}
			fmt.Printf("Uploaded %s (%s)\n", f.Name, domain.FormatSize(f.Size))
			fmt.Println("File ID:", f.ID)
			if f.CID != "" {
				fmt.Println("CID:    ", f.CID)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&fileKey, "key", "k", "", "file passphrase")
	cmd.Flags().StringVar(&aad, "aad", "", "additional authenticated data to bind")
	return cmd
}

func downloadCmd() *cobra.Command {
	var fileKey, output string

	cmd := &cobra.Command{
		Use:   "download <file-id>",
		Short: "Fetch and decrypt a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fileKey == "" {
				return errors.New("a file passphrase is required (--key)")
			}
			c, err := apiAuthed()
			if err != nil {
				return err
			}
			name, content, err := c.Download(args[0], fileKey)
			if err != nil {
				return err
			}
			if output == "" {
				output = name
			}
			if err := os.WriteFile(output, content, 0o600); err != nil {
				return err
			}
			fmt.Printf("Wrote %s (%s)\n", output, domain.FormatSize(int64(len(content))))
			return nil
		},
	}
	cmd.Flags().StringVarP(&fileKey, "key", "k", "", "file passphrase")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: original name)")
	return cmd
}

func lsCmd() *cobra.Command {
	var after int64
	var limit int

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List stored files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := apiAuthed()
			if err != nil {
				return err
			}
			page, err := c.ListFiles(after, limit)
			if err != nil {
				return err
			}
			if len(page.Items) == 0 {
				fmt.Println("No files.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSIZE\tUPLOADED")
			for _, f := range page.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					f.ID, f.Name, domain.FormatSize(f.Size), domain.FormatTimestamp(f.CreatedAt))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if page.HasMore {
				fmt.Printf("More available, continue with --after %d\n", page.NextAfter)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&after, "after", 0, "resume listing after this timestamp")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (server default 50, max 100)")
	return cmd
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <file-id>",
		Short: "Delete a file and its shares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := apiAuthed()
			if err != nil {
				return err
			}
			if err := c.DeleteFile(args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted.")
			return nil
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file-id>",
		Short: "Check blob presence and integrity anchors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := apiAuthed()
			if err != nil {
				return err
			}
			st, err := c.VerifyFile(args[0])
			if err != nil {
				return err
			}
			fmt.Println("Blob present:", yesno(st.BlobExists))
			fmt.Println("SHA-256:     ", st.SHA256)
			if st.CID != "" {
				fmt.Println("Pinned CID:  ", st.CID)
			}
			if st.GatewayURL != "" {
				fmt.Println("Gateway:     ", st.GatewayURL)
			}
			return nil
		},
	}
}

func yesno(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

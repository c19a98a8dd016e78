package commands

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"blockvault/internal/crypto"
	"blockvault/internal/domain"
)

func shareCmd() *cobra.Command {
	var fileKey, note string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "share <file-id> <recipient-address>",
		Short: "Grant another wallet access to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fileKey == "" {
				return errors.New("the file passphrase is required (--key)")
			}
			var expiresAt int64
			if ttl > 0 {
				expiresAt = time.Now().Add(ttl).UnixMilli()
			}
			c, err := apiAuthed()
			if err != nil {
				return err
			}
			sh, err := c.ShareFile(args[0], args[1], fileKey, note, expiresAt)
			if err != nil {
				return err
			}
			fmt.Printf("Shared %s with %s\n", sh.FileName, sh.Recipient)
			fmt.Println("Share ID:", sh.ID)
			if sh.ExpiresAt > 0 {
				fmt.Println("Expires: ", domain.FormatTimestamp(sh.ExpiresAt))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&fileKey, "key", "k", "", "file passphrase to wrap for the recipient")
	cmd.Flags().StringVar(&note, "note", "", "note for the recipient")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "expiry window, e.g. 72h (0 = never)")
	return cmd
}

func sharesCmd() *cobra.Command {
	var outgoing, unwrap bool

	cmd := &cobra.Command{
		Use:   "shares",
		Short: "List share grants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := apiAuthed()
			if err != nil {
				return err
			}

			var items []domain.Share
			if outgoing {
				items, err = c.OutgoingShares()
			} else {
				items, err = c.IncomingShares()
			}
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("No shares.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			if outgoing {
				fmt.Fprintln(w, "SHARE\tFILE\tRECIPIENT\tEXPIRES")
				for _, sh := range items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", sh.ID, sh.FileName, sh.Recipient, expiry(sh))
				}
				return w.Flush()
			}

			fmt.Fprintln(w, "SHARE\tFILE\tFROM\tNOTE\tEXPIRES")
			for _, sh := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", sh.ID, sh.FileName, sh.Owner, sh.Note, expiry(sh))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if unwrap {
				return unwrapKeys(items)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&outgoing, "outgoing", false, "list grants made by you instead of to you")
	cmd.Flags().BoolVar(&unwrap, "unwrap", false, "decrypt the wrapped file passphrases with the sharing key")
	return cmd
}

// unwrapKeys prints the file passphrase of each incoming share, decrypted
// with the local RSA sharing key.
func unwrapKeys(items []domain.Share) error {
	if err := requirePassphrase(); err != nil {
		return err
	}
	_, _, sharingPEM, err := keys.Load(passphrase)
	if err != nil {
		return err
	}
	priv, err := crypto.ParsePrivateKeyPEM([]byte(sharingPEM))
	if err != nil {
		return err
	}

	fmt.Println()
	for _, sh := range items {
		wrapped, err := base64.StdEncoding.DecodeString(sh.EncryptedKey)
		if err != nil {
			fmt.Printf("%s: bad wrapped key\n", sh.ID)
			continue
		}
		fileKey, err := crypto.UnwrapKey(priv, wrapped)
		if err != nil {
			fmt.Printf("%s: not wrapped for this sharing key\n", sh.ID)
			continue
		}
		fmt.Printf("%s: key %s\n", sh.ID, fileKey)
	}
	return nil
}

func revokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <share-id>",
		Short: "Revoke a share grant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := apiAuthed()
			if err != nil {
				return err
			}
			if err := c.RevokeShare(args[0]); err != nil {
				return err
			}
			fmt.Println("Revoked.")
			return nil
		},
	}
}

func expiry(sh domain.Share) string {
	if sh.ExpiresAt == 0 {
		return "never"
	}
	return domain.FormatTimestamp(sh.ExpiresAt)
}

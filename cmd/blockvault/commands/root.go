package commands

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"blockvault/internal/client"
	"blockvault/internal/store"
)

var (
	home       string
	passphrase string
	serverURL  string

	keys *store.Keystore
)

func Execute() error {
	root := &cobra.Command{
		Use:           "blockvault",
		Short:         "Wallet-based encrypted file vault",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".blockvault")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}
			keys = store.NewKeystore(home)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.blockvault)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "keystore passphrase")
	root.PersistentFlags().StringVar(&serverURL, "server", "http://127.0.0.1:8080", "server base URL")

	root.AddCommand(
		initCmd(), registerCmd(), loginCmd(), whoamiCmd(),
		uploadCmd(), downloadCmd(), lsCmd(), rmCmd(), verifyCmd(),
		shareCmd(), sharesCmd(), revokeCmd(),
		notarizeCmd(), redactCmd(), summarizeCmd(),
	)
	return root.Execute()
}

// api returns a client carrying the cached session token, if any.
func api() (*client.Client, error) {
	token, err := keys.LoadToken()
	if err != nil {
		return nil, err
	}
	return client.New(serverURL, token), nil
}

// apiAuthed refuses to proceed without a cached token.
func apiAuthed() (*client.Client, error) {
	c, err := api()
	if err != nil {
		return nil, err
	}
	if c.Token == "" {
		return nil, errors.New("not logged in, run: blockvault login")
	}
	return c, nil
}

func requirePassphrase() error {
	if passphrase == "" {
		return errors.New("keystore passphrase required (-p)")
	}
	return nil
}

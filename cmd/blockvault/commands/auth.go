package commands

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"blockvault/internal/crypto"
	"blockvault/internal/util/memzero"
	"blockvault/internal/wallet"
)

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a wallet and sharing keypair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			if keys.Exists() && !force {
				return errors.New("keystore already exists, use --force to overwrite")
			}

			walletKey, err := wallet.GenerateKey()
			if err != nil {
				return err
			}
			addr := wallet.AddressFromPubKey(walletKey.PubKey())

			sharingKey, err := crypto.GenerateRSA()
			if err != nil {
				return err
			}
			pemKey, err := crypto.EncodePrivateKeyPEM(sharingKey)
			if err != nil {
				return err
			}

			scalar := walletKey.Serialize()
			defer memzero.Zero(scalar)
			if err := keys.Save(passphrase, addr, scalar, string(pemKey)); err != nil {
				return err
			}

			fmt.Println("Wallet created.")
			fmt.Println("Address:", addr)
			fmt.Println("Run 'blockvault login' then 'blockvault register' to receive shares.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing keystore")
	return cmd
}

func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Publish the sharing public key to the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			pubPEM, err := crypto.EncodePublicKeyPEM(&priv.PublicKey)
			if err != nil {
				return err
			}

			c, err := apiAuthed()
			if err != nil {
				return err
			}
			if err := c.RegisterSharingKey(string(pubPEM)); err != nil {
				return err
			}
			fmt.Println("Sharing key registered, fingerprint", crypto.Fingerprint(pubPEM))
			return nil
		},
	}
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign a challenge and obtain a session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			addr, scalar, _, err := keys.Load(passphrase)
			if err != nil {
				return err
			}
			defer memzero.Zero(scalar)
			key := wallet.KeyFromBytes(scalar)

			c, err := api()
			if err != nil {
				return err
			}
			_, message, err := c.GetNonce(addr.String())
			if err != nil {
				return err
			}
			sig := wallet.SignPersonal(key, message)

			_, role, err := c.Login(addr.String(), "0x"+hex.EncodeToString(sig))
			if err != nil {
				return err
			}
			if err := keys.SaveToken(c.Token); err != nil {
				return err
			}
			fmt.Printf("Logged in as %s (%s).\n", addr, role)
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := apiAuthed()
			if err != nil {
				return err
			}
			addr, role, err := c.Me()
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s)\n", addr, role)
			return nil
		},
	}
}

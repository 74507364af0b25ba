package main

import (
	"bufio"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/debemdeboas/session-editor/internal/auth"
	"github.com/debemdeboas/session-editor/internal/cli"
	"github.com/debemdeboas/session-editor/internal/config"
)

func newSignCmd() *cobra.Command {
	var keyPath, theme string

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign auth challenges by hand with the Ed25519 key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pemBytes, err := auth.LoadPrivateKey(keyPath)
			if err != nil {
				return fmt.Errorf("error loading private key: %w", err)
			}
			privKey, err := auth.ParsePrivateKey(pemBytes)
			if err != nil {
				return fmt.Errorf("error loading private key: %w", err)
			}
			return signChallenges(cmd.InOrStdin(), cmd.OutOrStdout(), privKey, cli.NewStyles(theme))
		},
	}
	cmd.Flags().StringVarP(&keyPath, "key", "k", "privkey.pem", "PKCS8 PEM private key")
	cmd.Flags().StringVar(&theme, "theme", config.DarkTheme, "color theme (dark or light)")
	return cmd
}

// signChallenges reads base64 challenges line by line until quit or EOF and
// prints their base64 signatures.
func signChallenges(in io.Reader, out io.Writer, privKey ed25519.PrivateKey, styles cli.Styles) error {
	fmt.Fprintln(out, "Enter challenges one by one. Type 'quit' to exit.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, styles.Prompt.Render("Enter challenge (base64): "))
		if !scanner.Scan() {
			break
		}

		challengeB64 := strings.TrimSpace(scanner.Text())
		if challengeB64 == "" {
			continue
		}
		if challengeB64 == "quit" {
			break
		}

		challenge, err := base64.StdEncoding.DecodeString(challengeB64)
		if err != nil {
			fmt.Fprintln(out, styles.Error.Render("Error: invalid base64"))
			continue
		}

		signature := ed25519.Sign(privKey, challenge)
		fmt.Fprintln(out, styles.Output.Render("Signature: "+base64.StdEncoding.EncodeToString(signature)))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return nil
}

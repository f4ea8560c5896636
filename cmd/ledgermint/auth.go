package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ledgermint/ledgermint/internal/cli"
	"github.com/ledgermint/ledgermint/internal/config"
	"github.com/ledgermint/ledgermint/internal/sheets"
)

func init() {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize Google Sheets access",
		Long: `Run the browser-based OAuth2 consent flow for Google Sheets.

Requires sheets.client_id and sheets.client_secret in the config file.
The resulting refresh token is printed so it can be stored as
sheets.refresh_token, and the full token is cached on disk for reuse.`,
		RunE: runAuth,
	}

	authCmd.Flags().String("token-file", "~/.config/ledgermint/sheets-token.json", "where to cache the token")

	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	clientID := viper.GetString("sheets.client_id")
	clientSecret := viper.GetString("sheets.client_secret")
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("sheets.client_id and sheets.client_secret must be configured")
	}

	tokenFile, _ := cmd.Flags().GetString("token-file")

	token, err := sheets.GetOrCreateToken(ctx, sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    config.ExpandPath(tokenFile),
	})
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	fmt.Println(cli.FormatSuccess("Google Sheets access authorized"))
	if token.RefreshToken != "" {
		fmt.Printf("Store this as sheets.refresh_token in your config:\n  %s\n", token.RefreshToken)
	}
	return nil
}

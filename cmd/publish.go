package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/slide/internal/deck"
	"github.com/ziadkadry99/slide/internal/deckstore"
	"github.com/ziadkadry99/slide/internal/publish"
)

var (
	publishEmail string
	publishPIN   string
)

var publishCmd = &cobra.Command{
	Use:   "publish [NAME]",
	Short: "Publish a local deck to the storage service",
	Long: `Publishes a local deck and prints its share link. The first publish of a
name and email claims it with a 3-digit PIN; later publishes must use the
same PIN. The email and PIN are remembered for the next publish.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ws, err := openWorkspace(cfg, newLogger(cfg))
		if err != nil {
			return err
		}
		defer ws.Close()

		ctx := cmd.Context()
		if err := ws.decks.Load(ctx, loadParams(args, "", "", 0)); err != nil {
			return err
		}
		d := ws.decks.Deck()
		if d.Name == "" {
			return deckstore.ErrUnnamed
		}

		remembered, _, err := ws.decks.Identities().Lookup(ctx, d.Name)
		if err != nil {
			return err
		}
		id, err := promptIdentity(remembered)
		if err != nil {
			return err
		}

		published, err := ws.decks.Publish(ctx, id)
		switch {
		case errors.Is(err, publish.ErrUnauthorized):
			return fmt.Errorf("%q was already published by %s with a different PIN", d.Name, id.Email)
		case errors.Is(err, deckstore.ErrPublishDisabled):
			return fmt.Errorf("publishing needs api_url in %s", cfgFile)
		case err != nil:
			return err
		}

		fmt.Fprintf(os.Stderr, "Published %s as %s\n", published.Name, published.ID)
		fmt.Println(published.PublishedURL)
		return nil
	},
}

// promptIdentity fills the email and PIN from flags, then from the
// remembered identity, asking for whatever is still missing.
func promptIdentity(remembered publish.Identity) (publish.Identity, error) {
	id := publish.Identity{Email: publishEmail, PIN: publishPIN}
	if id.Email == "" {
		id.Email = remembered.Email
	}
	if id.PIN == "" {
		id.PIN = remembered.PIN
	}

	if id.Email == "" {
		emailPrompt := promptui.Prompt{
			Label: "Email",
			Validate: func(s string) error {
				return publish.Identity{Email: s, PIN: "000"}.Validate()
			},
		}
		email, err := emailPrompt.Run()
		if err != nil {
			return id, fmt.Errorf("email: %w", err)
		}
		id.Email = email
	}

	if id.PIN == "" {
		pinPrompt := promptui.Prompt{
			Label: "PIN (3 digits)",
			Mask:  '*',
			Validate: func(s string) error {
				_, err := deck.ParsePIN(s)
				return err
			},
		}
		pin, err := pinPrompt.Run()
		if err != nil {
			return id, fmt.Errorf("pin: %w", err)
		}
		id.PIN = pin
	}

	return id, id.Validate()
}

func init() {
	publishCmd.Flags().StringVar(&publishEmail, "email", "", "publisher email")
	publishCmd.Flags().StringVar(&publishPIN, "pin", "", "3-digit PIN guarding updates")
	rootCmd.AddCommand(publishCmd)
}

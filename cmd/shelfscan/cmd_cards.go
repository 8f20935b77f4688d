package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shelfscan/internal/cards"
	"shelfscan/internal/store"
)

var cardsCmd = &cobra.Command{
	Use:   "cards [out.pdf] [name]...",
	Short: "Render library cards as a PDF",
	Long: `Renders Code 128 library cards for registered patrons into a PDF
suitable for duplex printing: front pages first, then back pages with
mirrored slots. With no names given, every patron gets a card.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCards,
}

func init() {
	rootCmd.AddCommand(cardsCmd)
}

func runCards(cmd *cobra.Command, args []string) error {
	out := args[0]
	ctx := commandContext(cmd)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var patrons []store.Patron
	if len(args) > 1 {
		for _, name := range args[1:] {
			p, err := st.GetPatron(ctx, name)
			if err != nil {
				return fmt.Errorf("patron %q: %w", name, err)
			}
			patrons = append(patrons, p)
		}
	} else {
		patrons, err = st.ListPatrons(ctx)
		if err != nil {
			return err
		}
	}
	if len(patrons) == 0 {
		return fmt.Errorf("no patrons registered; add some with \"shelfscan patrons add\"")
	}

	accounts := make([]cards.Account, len(patrons))
	for i, p := range patrons {
		accounts[i] = cards.Account{Name: p.Name, Code: p.CardCode}
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	defer f.Close()

	if err := cards.NewPrinter().Generate(accounts, f); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	fmt.Printf("Wrote %d card(s) to %s\n", len(accounts), out)
	return nil
}

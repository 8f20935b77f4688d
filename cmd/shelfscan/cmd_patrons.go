package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var patronsCmd = &cobra.Command{
	Use:   "patrons",
	Short: "Manage card-holder accounts",
}

var patronsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Register a patron and assign a card code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		p, err := st.AddPatron(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Registered %s with card %s\n", p.Name, p.CardCode)
		return nil
	},
}

var patronsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered patrons",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		patrons, err := st.ListPatrons(commandContext(cmd))
		if err != nil {
			return err
		}
		if len(patrons) == 0 {
			fmt.Println("No patrons registered.")
			return nil
		}

		printTable([]string{"NAME", "CARD", "REGISTERED"}, func(add func(...interface{})) {
			for _, p := range patrons {
				add(p.Name, p.CardCode, p.CreatedAt)
			}
		})
		return nil
	},
}

var patronsRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove a patron",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.RemovePatron(commandContext(cmd), args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", args[0])
		return nil
	},
}

func init() {
	patronsCmd.AddCommand(patronsAddCmd, patronsListCmd, patronsRemoveCmd)
	rootCmd.AddCommand(patronsCmd)
}

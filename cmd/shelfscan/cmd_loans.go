package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelfscan/internal/catalog"
	"shelfscan/internal/store"
)

var loansCmd = &cobra.Command{
	Use:   "loans",
	Short: "Browse active loans",
}

var loansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active loans, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listLoans(cmd, "")
	},
}

var loansSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Filter loans by a case-insensitive substring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listLoans(cmd, args[0])
	},
}

var loanCmd = &cobra.Command{
	Use:   "loan [barcode]",
	Short: "Loan out a book by barcode",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoan,
}

var returnCmd = &cobra.Command{
	Use:   "return [title] [borrower] [loan-date]",
	Short: "Return a loaned book",
	Long: `Returns the loan identified by its title, borrower, and loan date
exactly as shown by "shelfscan loans list".`,
	Args: cobra.ExactArgs(3),
	RunE: runReturn,
}

func init() {
	loanCmd.Flags().String("borrower", "", "borrower's name (required)")
	loanCmd.MarkFlagRequired("borrower")

	loansCmd.AddCommand(loansListCmd, loansSearchCmd)
	rootCmd.AddCommand(loansCmd, loanCmd, returnCmd)
}

func listLoans(cmd *cobra.Command, query string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	loans, err := st.SearchLoans(commandContext(cmd), query)
	if err != nil {
		return err
	}
	if len(loans) == 0 {
		fmt.Println("No active loans.")
		return nil
	}

	printLoans(loans)
	fmt.Printf("%d loan(s)\n", len(loans))
	return nil
}

func printLoans(loans []store.Loan) {
	printTable([]string{"ID", "TITLE", "BORROWER", "LOAN DATE"}, func(add func(...interface{})) {
		for _, l := range loans {
			add(l.ID, l.Title, l.Borrower, l.LoanDate)
		}
	})
}

func runLoan(cmd *cobra.Command, args []string) error {
	borrower, _ := cmd.Flags().GetString("borrower")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	// Loans never touch the lookup services, so the catalog needs no
	// resolver here.
	cat := catalog.New(st, nil, nil, logger.Named("catalog"))
	title, err := cat.Loan(commandContext(cmd), args[0], borrower)
	if err != nil {
		return err
	}

	fmt.Printf("Loaned %q to %s\n", title, borrower)
	return nil
}

func runReturn(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	cat := catalog.New(st, nil, nil, logger.Named("catalog"))
	title, borrower, loanDate := args[0], args[1], args[2]
	if err := cat.Return(commandContext(cmd), title, borrower, loanDate); err != nil {
		return err
	}

	fmt.Printf("Returned %q from %s\n", title, borrower)
	return nil
}

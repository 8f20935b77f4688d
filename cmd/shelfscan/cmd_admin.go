package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Low-level database maintenance",
}

var adminStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show row counts per table",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := st.Stats(commandContext(cmd))
		if err != nil {
			return err
		}
		printTable([]string{"TABLE", "ROWS"}, func(add func(...interface{})) {
			for _, table := range []string{"books", "loans", "patrons", "scan_events"} {
				add(table, stats[table])
			}
		})
		return nil
	},
}

var adminSetCountCmd = &cobra.Command{
	Use:   "set-count [book-id] [count]",
	Short: "Overwrite a book's copy count",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid book id %q", args[0])
		}
		count, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid count %q", args[1])
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.SetBookCount(commandContext(cmd), id, count); err != nil {
			return err
		}
		fmt.Printf("Book %d count set to %d\n", id, count)
		return nil
	},
}

var adminDeleteBookCmd = &cobra.Command{
	Use:   "delete-book [book-id]",
	Short: "Delete a book and its loans",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid book id %q", args[0])
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.DeleteBook(commandContext(cmd), id); err != nil {
			return err
		}
		fmt.Printf("Deleted book %d\n", id)
		return nil
	},
}

var adminDeleteLoanCmd = &cobra.Command{
	Use:   "delete-loan [loan-id]",
	Short: "Delete a loan row without restoring the copy count",
	Long: `Deletes a loan row outright, leaving the book's copy count as it
is. Use "shelfscan return" for a normal return; loan ids are shown by
"shelfscan loans list".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid loan id %q", args[0])
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.DeleteLoan(commandContext(cmd), id); err != nil {
			return err
		}
		fmt.Printf("Deleted loan %d\n", id)
		return nil
	},
}

func init() {
	adminCmd.AddCommand(adminStatsCmd, adminSetCountCmd, adminDeleteBookCmd, adminDeleteLoanCmd)
	rootCmd.AddCommand(adminCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelfscan/internal/store"
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Browse the library",
}

var booksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all books, ordered by title",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listBooks(cmd, "")
	},
}

var booksSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Filter the library by a case-insensitive substring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listBooks(cmd, args[0])
	},
}

func init() {
	booksCmd.AddCommand(booksListCmd, booksSearchCmd)
	rootCmd.AddCommand(booksCmd)
}

func listBooks(cmd *cobra.Command, query string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	books, err := st.SearchBooks(commandContext(cmd), query)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		fmt.Println("No books found.")
		return nil
	}

	printBooks(books)
	fmt.Printf("%d book(s)\n", len(books))
	return nil
}

func printBooks(books []store.Book) {
	printTable(
		[]string{"ID", "TITLE", "BARCODE", "ISBN", "AUTHOR", "PUBLISHER", "KEYWORDS", "COUNT"},
		func(add func(...interface{})) {
			for _, b := range books {
				add(b.ID, b.Title, b.Barcode, b.ISBN, b.Author, b.Publisher, b.Keywords, b.Count)
			}
		})
}

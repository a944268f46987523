package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"depletions/importer"
	"depletions/storage"
)

var (
	catalogProducts string
	catalogSellers  string
	catalogAccounts string
	catalogTypes    string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local directory catalog used in sqlite mode",
}

var catalogLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load products, distributors, accounts, and movement types",
	Long: `Load catalog files into the local SQLite directory.

Expected headers:
- products: Id, Code, Name
- sellers:  Id, Name
- accounts: Id, TaxId, Email, Name

Rows are upserted. A blank Id gets a generated one. --types replaces the movement
type list in the given order.`,
	Example: `
  depletions catalog load --products products.csv --sellers sellers.xlsx --types "Case,Bottles"
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if catalogProducts == "" && catalogSellers == "" && catalogAccounts == "" && catalogTypes == "" {
			return errors.New("nothing to load, pass at least one of --products, --sellers, --accounts, --types")
		}

		store, err := storage.OpenSQLite(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		if catalogProducts != "" {
			rows, err := readCatalogFile(catalogProducts)
			if err != nil {
				return err
			}
			n, err := store.UpsertProducts(productsFromRows(rows))
			if err != nil {
				return err
			}
			fmt.Printf("Loaded %d products from %s\n", n, catalogProducts)
		}
		if catalogSellers != "" {
			rows, err := readCatalogFile(catalogSellers)
			if err != nil {
				return err
			}
			n, err := store.UpsertSellers(sellersFromRows(rows))
			if err != nil {
				return err
			}
			fmt.Printf("Loaded %d distributors from %s\n", n, catalogSellers)
		}
		if catalogAccounts != "" {
			rows, err := readCatalogFile(catalogAccounts)
			if err != nil {
				return err
			}
			n, err := store.UpsertAccounts(accountsFromRows(rows))
			if err != nil {
				return err
			}
			fmt.Printf("Loaded %d accounts from %s\n", n, catalogAccounts)
		}
		if catalogTypes != "" {
			n, err := store.ReplaceMovementTypes(strings.Split(catalogTypes, ","))
			if err != nil {
				return err
			}
			fmt.Printf("Loaded %d movement types\n", n)
		}

		counts, err := store.CatalogCounts()
		if err != nil {
			return err
		}
		fmt.Printf("Catalog: %d products, %d distributors, %d accounts, %d movement types\n",
			counts.Products, counts.Sellers, counts.Accounts, counts.MovementTypes)
		return nil
	},
}

func readCatalogFile(path string) ([]importer.Row, error) {
	format, err := importer.InferFormat(path, "")
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer file.Close()

	scanner, err := importer.ScannerForFormat(format, file, importer.ParseOptions{})
	if err != nil {
		return nil, err
	}
	rows, parseErrs := importer.ReadAll(scanner)
	if len(parseErrs) > 0 {
		return nil, fmt.Errorf("parse %s: %w", path, parseErrs[0])
	}
	return rows, nil
}

func productsFromRows(rows []importer.Row) []storage.Product {
	out := make([]storage.Product, 0, len(rows))
	for _, row := range rows {
		code := row.Get("Code")
		if code == "" {
			continue
		}
		out = append(out, storage.Product{ID: row.Get("Id"), Code: code, Name: row.Get("Name")})
	}
	return out
}

func sellersFromRows(rows []importer.Row) []storage.Seller {
	out := make([]storage.Seller, 0, len(rows))
	for _, row := range rows {
		name := row.Get("Name")
		if name == "" {
			continue
		}
		out = append(out, storage.Seller{ID: row.Get("Id"), Name: name})
	}
	return out
}

func accountsFromRows(rows []importer.Row) []storage.Account {
	out := make([]storage.Account, 0, len(rows))
	for _, row := range rows {
		taxID, email := row.Get("TaxId"), row.Get("Email")
		if taxID == "" || email == "" {
			continue
		}
		out = append(out, storage.Account{ID: row.Get("Id"), TaxID: taxID, Email: email, Name: row.Get("Name")})
	}
	return out
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogLoadCmd)

	catalogLoadCmd.Flags().StringVar(&catalogProducts, "products", "", "Products file (Id, Code, Name)")
	catalogLoadCmd.Flags().StringVar(&catalogSellers, "sellers", "", "Distributors file (Id, Name)")
	catalogLoadCmd.Flags().StringVar(&catalogAccounts, "accounts", "", "Accounts file (Id, TaxId, Email, Name)")
	catalogLoadCmd.Flags().StringVar(&catalogTypes, "types", "", "Comma-separated movement types")
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"depletions/depletion"
	"depletions/directory"
)

var editAssignments []string

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit one depletion in the working list",
	Long: `Change fields of a working-list entry. All changes are applied together or not
at all.

Editable fields: product, seller, country, city, state, type, quantity.
Product and seller take an id; the display name is looked up.`,
	Example: `
  # Fix a quantity
  depletions edit 3f1c2a... --set quantity=12

  # Move an entry to another city and distributor
  depletions edit 3f1c2a... --set city=Sevilla --set state=SE --set seller=s-2
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		assignments, err := parseAssignments(editAssignments)
		if err != nil {
			return err
		}
		if len(assignments) == 0 {
			return fmt.Errorf("nothing to change, use --set field=value")
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		changes, err := buildChanges(cmd.Context(), a.dir, assignments)
		if err != nil {
			return err
		}

		record, err := a.session.Edit(args[0], changes...)
		if err != nil {
			return err
		}
		if err := a.save(); err != nil {
			return err
		}

		fmt.Printf("Updated %s: %s / %s, %s, %s %d\n", record.Token, record.ProductName, record.SellerName, record.City, record.Type, record.Quantity)
		return nil
	},
}

// buildChanges turns field=value pairs into changes. Product and seller values
// are ids whose names come from dir.
func buildChanges(ctx context.Context, dir directory.Directory, assignments [][2]string) ([]depletion.Change, error) {
	changes := make([]depletion.Change, 0, len(assignments))
	for _, assignment := range assignments {
		field, err := depletion.ParseField(assignment[0])
		if err != nil {
			return nil, err
		}

		change := depletion.Change{Field: field, Name: field.String(), Value: assignment[1]}
		switch field {
		case depletion.FieldProduct:
			name, err := dir.ProductName(ctx, assignment[1])
			if err != nil {
				return nil, fmt.Errorf("look up product %s: %w", assignment[1], err)
			}
			change.ID, change.Value = assignment[1], name
		case depletion.FieldSeller:
			name, err := dir.SellerName(ctx, assignment[1])
			if err != nil {
				return nil, fmt.Errorf("look up seller %s: %w", assignment[1], err)
			}
			change.ID, change.Value = assignment[1], name
		}
		changes = append(changes, change)
	}
	return changes, nil
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().StringArrayVar(&editAssignments, "set", nil, "field=value to change (repeatable)")
}

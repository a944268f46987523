package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"depletions/campaign"
	"depletions/config"
)

type campaignOrderFlags struct {
	campaignID string
	email      string
	location   string
	lines      []string
	optIn      bool
	firstName  string
	lastName   string
	birthdate  string
	phone      string
	city       string
	zip        string
	region     string
	country    string
	state      string
}

var campaignFlags campaignOrderFlags

var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Browse campaign catalogs and place campaign orders (directory.mode: http)",
}

var campaignShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show pickup locations and products of an active campaign",
	Example: `
  depletions campaign show --campaign 701xx --email customer@example.com
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newCampaignService()
		if err != nil {
			return err
		}

		form, err := service.Open(cmd.Context(), campaignFlags.campaignID, campaignFlags.email)
		if err != nil {
			return err
		}
		if campaignFlags.location != "" {
			if err := form.SelectLocation(campaignFlags.location); err != nil {
				return err
			}
		}
		return printCampaignForm(os.Stdout, form)
	},
}

var campaignOrderCmd = &cobra.Command{
	Use:   "order",
	Short: "Place an order for a campaign",
	Long: `Place an order for an active campaign.

Products are chosen with --line <product id or code>=<quantity>. Lines with a zero
quantity are left out. For a known customer, a missing birthdate or region is
stored on the account after the order.`,
	Example: `
  depletions campaign order --campaign 701xx --email customer@example.com --location store-1 \
    --line SKU-1=2 --line SKU-7=1 --first-name Ana --last-name Ruiz --region Europe --country ES
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newCampaignService()
		if err != nil {
			return err
		}

		form, err := service.Open(cmd.Context(), campaignFlags.campaignID, campaignFlags.email)
		if err != nil {
			return err
		}
		if err := fillOrderForm(form, campaignFlags); err != nil {
			return err
		}

		request, err := service.PlaceOrder(cmd.Context(), form)
		if err != nil {
			return err
		}

		total := 0
		for _, line := range request.Products {
			total += line.Quantity
		}
		fmt.Printf("Order placed for %s: %d products, %d units\n", request.Email, len(request.Products), total)
		return nil
	},
}

func newCampaignService() (*campaign.Service, error) {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		return nil, err
	}
	if cfg.Directory.Mode != config.DirectoryModeHTTP {
		return nil, errors.New("campaign commands require directory.mode: http")
	}
	client, err := newDirectoryClient(cfg.Directory)
	if err != nil {
		return nil, err
	}
	return campaign.NewService(client), nil
}

// fillOrderForm applies the command flags to an opened form.
func fillOrderForm(form *campaign.Form, flags campaignOrderFlags) error {
	if flags.location != "" && flags.location != form.PickupLocation {
		if err := form.SelectLocation(flags.location); err != nil {
			return err
		}
	}

	form.FirstName = flags.firstName
	form.LastName = flags.lastName
	form.Birthdate = flags.birthdate
	form.Phone = flags.phone
	form.City = flags.city
	form.Zip = flags.zip
	if flags.region != "" {
		form.SetRegion(flags.region)
	}
	if flags.country != "" {
		form.SetCountry(flags.country)
	}
	form.State = flags.state
	if flags.optIn {
		form.OptInAnnualNewsletter = true
	}

	assignments, err := parseAssignments(flags.lines)
	if err != nil {
		return err
	}
	for _, assignment := range assignments {
		index := findLine(form, assignment[0])
		if index < 0 {
			return fmt.Errorf("product %q is not offered at %q", assignment[0], form.PickupLocation)
		}
		quantity, err := strconv.Atoi(assignment[1])
		if err != nil {
			return fmt.Errorf("invalid quantity for %s: %q", assignment[0], assignment[1])
		}
		if err := form.Toggle(index, true); err != nil {
			return err
		}
		if err := form.SetQuantity(index, quantity); err != nil {
			return err
		}
	}
	return nil
}

func findLine(form *campaign.Form, key string) int {
	for i, line := range form.Lines {
		if line.Product.ID == key || line.Product.Code == key {
			return i
		}
	}
	return -1
}

func printCampaignForm(out io.Writer, form *campaign.Form) error {
	switch {
	case form.Account != nil:
		fmt.Fprintf(out, "Customer: %s (account %s)\n", form.Email, form.Account.AccountID)
	case form.IsNewCustomer():
		fmt.Fprintf(out, "Customer: %s (new)\n", form.Email)
	}

	fmt.Fprintln(out, "Pickup locations:")
	for _, location := range form.Catalog().PickupLocations {
		marker := " "
		if location.Value == form.PickupLocation {
			marker = "*"
		}
		fmt.Fprintf(out, " %s %s (%s)\n", marker, location.Label, location.Value)
	}

	if form.PickupLocation == "" {
		_, err := fmt.Fprintln(out, "Select a location with --location to list its products.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tNAME\tFAMILY\tMAX")
	for _, line := range form.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", line.Product.ID, line.Product.Code, line.Product.Name, line.Product.Family, line.Product.MaxQuantity())
	}
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(campaignCmd)
	campaignCmd.AddCommand(campaignShowCmd)
	campaignCmd.AddCommand(campaignOrderCmd)

	for _, c := range []*cobra.Command{campaignShowCmd, campaignOrderCmd} {
		c.Flags().StringVar(&campaignFlags.campaignID, "campaign", "", "Campaign id")
		c.Flags().StringVar(&campaignFlags.email, "email", "", "Customer email")
		c.Flags().StringVar(&campaignFlags.location, "location", "", "Pickup location value")
		_ = c.MarkFlagRequired("campaign")
	}

	flags := campaignOrderCmd.Flags()
	flags.StringArrayVar(&campaignFlags.lines, "line", nil, "product=quantity (repeatable; product id or code)")
	flags.BoolVar(&campaignFlags.optIn, "opt-in", false, "Subscribe to the annual newsletter")
	flags.StringVar(&campaignFlags.firstName, "first-name", "", "First name")
	flags.StringVar(&campaignFlags.lastName, "last-name", "", "Last name")
	flags.StringVar(&campaignFlags.birthdate, "birthdate", "", "Birthdate (YYYY-MM-DD)")
	flags.StringVar(&campaignFlags.phone, "phone", "", "Phone")
	flags.StringVar(&campaignFlags.city, "city", "", "City")
	flags.StringVar(&campaignFlags.zip, "zip", "", "Zip code")
	flags.StringVar(&campaignFlags.region, "region", "", "Region")
	flags.StringVar(&campaignFlags.country, "country", "", "Country")
	flags.StringVar(&campaignFlags.state, "state", "", "State")
}

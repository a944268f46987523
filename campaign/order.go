package campaign

import "strings"

type OrderLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderRequest is the payload for CreateOrders. Blank text fields are omitted.
type OrderRequest struct {
	Email                 string      `json:"email"`
	OptInAnnualNewsletter bool        `json:"optInAnnualNewsletter"`
	FirstName             string      `json:"firstName,omitempty"`
	LastName              string      `json:"lastName,omitempty"`
	Region                string      `json:"region,omitempty"`
	Country               string      `json:"country,omitempty"`
	State                 string      `json:"state,omitempty"`
	Phone                 string      `json:"phone,omitempty"`
	Birthdate             string      `json:"birthdate,omitempty"`
	City                  string      `json:"city,omitempty"`
	Zip                   string      `json:"zip,omitempty"`
	CampaignID            string      `json:"campaignId,omitempty"`
	PickupLocation        string      `json:"pickupLocation,omitempty"`
	Products              []OrderLine `json:"products"`
}

// AccountUpdate fills fields missing on an existing person account.
type AccountUpdate struct {
	AccountID string `json:"accountId"`
	Birthdate string `json:"birthdate,omitempty"`
	Region    string `json:"region,omitempty"`
	Country   string `json:"country,omitempty"`
	State     string `json:"state,omitempty"`
}

func BuildOrderRequest(form *Form) (OrderRequest, error) {
	email := strings.TrimSpace(form.Email)
	if email == "" {
		return OrderRequest{}, ErrMissingEmail
	}

	products := make([]OrderLine, 0, len(form.Lines))
	for _, line := range form.Lines {
		if line.Quantity > 0 {
			products = append(products, OrderLine{ProductID: line.Product.ID, Quantity: line.Quantity})
		}
	}
	if len(products) == 0 {
		return OrderRequest{}, ErrNoProducts
	}

	return OrderRequest{
		Email:                 email,
		OptInAnnualNewsletter: form.OptInAnnualNewsletter,
		FirstName:             strings.TrimSpace(form.FirstName),
		LastName:              strings.TrimSpace(form.LastName),
		Region:                strings.TrimSpace(form.Region),
		Country:               strings.TrimSpace(form.Country),
		State:                 strings.TrimSpace(form.State),
		Phone:                 strings.TrimSpace(form.Phone),
		Birthdate:             strings.TrimSpace(form.Birthdate),
		City:                  strings.TrimSpace(form.City),
		Zip:                   strings.TrimSpace(form.Zip),
		CampaignID:            strings.TrimSpace(form.CampaignID),
		PickupLocation:        strings.TrimSpace(form.PickupLocation),
		Products:              products,
	}, nil
}

// MissingFieldsUpdate returns the fields the form can fill in on a known
// account, or nil when there is nothing to send.
func MissingFieldsUpdate(account *PersonAccount, form *Form) *AccountUpdate {
	if account == nil || strings.TrimSpace(account.AccountID) == "" {
		return nil
	}

	update := AccountUpdate{AccountID: account.AccountID}
	changed := false
	if account.MissingBirthdate() && strings.TrimSpace(form.Birthdate) != "" {
		update.Birthdate = strings.TrimSpace(form.Birthdate)
		changed = true
	}
	if account.MissingLocation() {
		if value := strings.TrimSpace(form.Region); value != "" {
			update.Region = value
			changed = true
		}
		if value := strings.TrimSpace(form.Country); value != "" {
			update.Country = value
			changed = true
		}
		if value := strings.TrimSpace(form.State); value != "" {
			update.State = value
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return &update
}

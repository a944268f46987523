package campaign

import (
	"context"
	"errors"
	"testing"
)

type fakeBackend struct {
	active      bool
	activeErr   error
	catalog     Catalog
	account     *PersonAccount
	accountErr  error
	createErr   error
	updateErr   error
	orders      []OrderRequest
	updates     []AccountUpdate
	lookedUpFor []string
}

func (f *fakeBackend) IsCampaignActive(context.Context, string) (bool, error) {
	return f.active, f.activeErr
}

func (f *fakeBackend) CampaignCatalog(context.Context, string) (Catalog, error) {
	return f.catalog, nil
}

func (f *fakeBackend) PersonAccountByEmail(_ context.Context, email string) (*PersonAccount, error) {
	f.lookedUpFor = append(f.lookedUpFor, email)
	return f.account, f.accountErr
}

func (f *fakeBackend) CreateOrders(_ context.Context, request OrderRequest) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.orders = append(f.orders, request)
	return nil
}

func (f *fakeBackend) UpdateMissingAccountFields(_ context.Context, update AccountUpdate) error {
	f.updates = append(f.updates, update)
	return f.updateErr
}

func twoLocationCatalog() Catalog {
	return Catalog{
		PickupLocations: []Option{{Label: "Store A", Value: "A"}, {Label: "Store B", Value: "B"}},
		ProductsByLocation: map[string][]Product{
			"A": {{ID: "p1", Name: "Reserva", Family: "E. Limitadas"}, {ID: "p2", Name: "Joven"}},
			"B": {{ID: "p3", Name: "Blanco"}},
		},
	}
}

func TestProductMaxQuantity(t *testing.T) {
	t.Parallel()

	if got := (Product{Family: "E. Limitadas"}).MaxQuantity(); got != 2 {
		t.Fatalf("expected 2 for limited editions, got %d", got)
	}
	if got := (Product{Family: "Core"}).MaxQuantity(); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
}

func TestNewForm_SingleLocationIsSelectedAndLocked(t *testing.T) {
	t.Parallel()

	catalog := Catalog{
		PickupLocations:    []Option{{Label: "Only", Value: "X"}},
		ProductsByLocation: map[string][]Product{"X": {{ID: "p1"}, {ID: "p2"}}},
	}

	form := NewForm("camp-1", catalog)
	if form.PickupLocation != "X" || !form.LocationLocked {
		t.Fatalf("expected locked location X, got %q locked=%v", form.PickupLocation, form.LocationLocked)
	}
	if len(form.Lines) != 2 {
		t.Fatalf("expected 2 product lines, got %d", len(form.Lines))
	}
	if err := form.SelectLocation("Y"); err == nil {
		t.Fatalf("expected error when changing a locked location")
	}
}

func TestForm_QuantityIgnoredUntilSelected(t *testing.T) {
	t.Parallel()

	form := NewForm("camp-1", twoLocationCatalog())
	if len(form.Lines) != 0 {
		t.Fatalf("expected no lines before a location is chosen")
	}
	if err := form.SelectLocation("A"); err != nil {
		t.Fatalf("select location: %v", err)
	}

	if err := form.SetQuantity(0, 3); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if form.Lines[0].Quantity != 0 {
		t.Fatalf("quantity on unselected line must be ignored")
	}

	if err := form.Toggle(0, true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	_ = form.SetQuantity(0, 3)
	if form.Lines[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", form.Lines[0].Quantity)
	}

	_ = form.Toggle(0, false)
	if form.Lines[0].Quantity != 0 {
		t.Fatalf("toggle must reset quantity")
	}
	if err := form.SetQuantity(5, 1); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestForm_RegionResetsCountryAndState(t *testing.T) {
	t.Parallel()

	form := NewForm("camp-1", twoLocationCatalog())
	form.Country = "ES"
	form.State = "Madrid"
	form.SetRegion("Europe")
	if form.Country != "" || form.State != "" {
		t.Fatalf("expected country and state to be cleared, got %q/%q", form.Country, form.State)
	}
	form.State = "Madrid"
	form.SetCountry("ES")
	if form.State != "" {
		t.Fatalf("expected state to be cleared")
	}
}

func TestBuildOrderRequest(t *testing.T) {
	t.Parallel()

	form := NewForm("camp-1", twoLocationCatalog())
	_ = form.SelectLocation("A")

	if _, err := BuildOrderRequest(form); !errors.Is(err, ErrMissingEmail) {
		t.Fatalf("expected ErrMissingEmail, got %v", err)
	}

	form.Email = " ana@example.com "
	if _, err := BuildOrderRequest(form); !errors.Is(err, ErrNoProducts) {
		t.Fatalf("expected ErrNoProducts, got %v", err)
	}

	_ = form.Toggle(1, true)
	_ = form.SetQuantity(1, 2)
	_ = form.Toggle(0, true)
	form.City = "  "
	form.FirstName = "Ana"

	request, err := BuildOrderRequest(form)
	if err != nil {
		t.Fatalf("build order request: %v", err)
	}
	if request.Email != "ana@example.com" || request.City != "" || request.FirstName != "Ana" {
		t.Fatalf("unexpected request: %+v", request)
	}
	if len(request.Products) != 1 || request.Products[0].ProductID != "p2" || request.Products[0].Quantity != 2 {
		t.Fatalf("unexpected products: %+v", request.Products)
	}
	if request.PickupLocation != "A" || request.CampaignID != "camp-1" {
		t.Fatalf("unexpected location/campaign: %+v", request)
	}
}

func TestMissingFieldsUpdate(t *testing.T) {
	t.Parallel()

	form := &Form{Birthdate: "1990-04-01", Region: "Europe", Country: "ES", State: "Madrid"}

	if MissingFieldsUpdate(nil, form) != nil {
		t.Fatalf("expected nil for unknown account")
	}

	complete := &PersonAccount{AccountID: "acc", Birthdate: "1980-01-01", Region: "R", Country: "C", State: "S"}
	if MissingFieldsUpdate(complete, form) != nil {
		t.Fatalf("expected nil for complete account")
	}

	partial := &PersonAccount{AccountID: "acc", Region: "R", Country: "C"}
	update := MissingFieldsUpdate(partial, form)
	if update == nil {
		t.Fatalf("expected an update")
	}
	want := AccountUpdate{AccountID: "acc", Birthdate: "1990-04-01", Region: "Europe", Country: "ES", State: "Madrid"}
	if *update != want {
		t.Fatalf("unexpected update: %+v", *update)
	}

	if MissingFieldsUpdate(partial, &Form{}) != nil {
		t.Fatalf("expected nil when the form has nothing to fill in")
	}
}

func TestService_OpenRejectsInactiveCampaign(t *testing.T) {
	t.Parallel()

	service := NewService(&fakeBackend{active: false})
	if _, err := service.Open(context.Background(), "camp-1", ""); !errors.Is(err, ErrCampaignInactive) {
		t.Fatalf("expected ErrCampaignInactive, got %v", err)
	}

	service = NewService(&fakeBackend{activeErr: errors.New("boom")})
	if _, err := service.Open(context.Background(), "camp-1", ""); !errors.Is(err, ErrCampaignInactive) {
		t.Fatalf("expected ErrCampaignInactive on check failure, got %v", err)
	}

	if _, err := service.Open(context.Background(), "", ""); !errors.Is(err, ErrCampaignInactive) {
		t.Fatalf("expected ErrCampaignInactive without campaign id, got %v", err)
	}
}

func TestService_OpenToleratesAccountLookupFailure(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{active: true, catalog: twoLocationCatalog(), accountErr: errors.New("down")}
	form, err := NewService(backend).Open(context.Background(), "camp-1", " ana@example.com ")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if form.Account != nil || !form.IsNewCustomer() {
		t.Fatalf("expected unknown customer after failed lookup")
	}
	if len(backend.lookedUpFor) != 1 || backend.lookedUpFor[0] != "ana@example.com" {
		t.Fatalf("unexpected lookups: %v", backend.lookedUpFor)
	}
}

func TestService_PlaceOrderUpdatesMissingFieldsBestEffort(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{
		active:    true,
		catalog:   twoLocationCatalog(),
		account:   &PersonAccount{AccountID: "acc-1", OptInAnnualNewsletter: true},
		updateErr: errors.New("update failed"),
	}
	service := NewService(backend)

	form, err := service.Open(context.Background(), "camp-1", "ana@example.com")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = form.SelectLocation("B")
	_ = form.Toggle(0, true)
	_ = form.SetQuantity(0, 1)
	form.Birthdate = "1990-04-01"

	request, err := service.PlaceOrder(context.Background(), form)
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if !request.OptInAnnualNewsletter {
		t.Fatalf("expected newsletter opt-in from the account")
	}
	if len(backend.orders) != 1 {
		t.Fatalf("expected one order, got %d", len(backend.orders))
	}
	if len(backend.updates) != 1 || backend.updates[0].Birthdate != "1990-04-01" {
		t.Fatalf("unexpected updates: %+v", backend.updates)
	}
	if form.Lines[0].Selected || form.Lines[0].Quantity != 0 {
		t.Fatalf("expected lines to be reset after ordering")
	}
}

func TestService_PlaceOrderPropagatesCreateFailure(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{active: true, createErr: errors.New("rejected")}
	form := NewForm("camp-1", Catalog{
		PickupLocations:    []Option{{Value: "X"}},
		ProductsByLocation: map[string][]Product{"X": {{ID: "p1"}}},
	})
	form.Email = "ana@example.com"
	_ = form.Toggle(0, true)
	_ = form.SetQuantity(0, 1)

	if _, err := NewService(backend).PlaceOrder(context.Background(), form); err == nil {
		t.Fatalf("expected create failure")
	}
	if len(backend.updates) != 0 {
		t.Fatalf("no account update expected after a failed order")
	}
	if form.Lines[0].Quantity != 1 {
		t.Fatalf("lines must be kept when ordering fails")
	}
}

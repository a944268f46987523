package campaign

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

type Service struct {
	backend Backend
}

func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// Open checks that the campaign is active, looks up the customer when an
// email is given, and loads the catalog. An account lookup failure is logged
// and treated as an unknown customer.
func (s *Service) Open(ctx context.Context, campaignID, email string) (*Form, error) {
	if err := s.ensureActive(ctx, campaignID); err != nil {
		return nil, err
	}

	var account *PersonAccount
	email = strings.TrimSpace(email)
	if email != "" {
		found, err := s.backend.PersonAccountByEmail(ctx, email)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("email", email).Msg("person account lookup failed")
		} else {
			account = found
		}
	}

	catalog, err := s.backend.CampaignCatalog(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("load campaign catalog: %w", err)
	}

	form := NewForm(campaignID, catalog)
	form.Email = email
	form.ApplyAccount(account)
	return form, nil
}

// PlaceOrder submits the form. Missing account fields are updated afterwards
// on a best-effort basis; that failure is only logged.
func (s *Service) PlaceOrder(ctx context.Context, form *Form) (OrderRequest, error) {
	if err := s.ensureActive(ctx, form.CampaignID); err != nil {
		return OrderRequest{}, err
	}

	request, err := BuildOrderRequest(form)
	if err != nil {
		return OrderRequest{}, err
	}
	if err := s.backend.CreateOrders(ctx, request); err != nil {
		return OrderRequest{}, fmt.Errorf("create orders: %w", err)
	}

	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("campaign_id", form.CampaignID).
		Int("products", len(request.Products)).
		Msg("campaign order created")

	if update := MissingFieldsUpdate(form.Account, form); update != nil {
		if err := s.backend.UpdateMissingAccountFields(ctx, *update); err != nil {
			logger.Warn().Err(err).Str("account_id", update.AccountID).Msg("failed to update missing account fields")
		}
	}

	form.ResetLines()
	return request, nil
}

func (s *Service) ensureActive(ctx context.Context, campaignID string) error {
	if strings.TrimSpace(campaignID) == "" {
		return ErrCampaignInactive
	}
	active, err := s.backend.IsCampaignActive(ctx, campaignID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCampaignInactive, err)
	}
	if !active {
		return ErrCampaignInactive
	}
	return nil
}

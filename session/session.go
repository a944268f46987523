package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"depletions/depletion"
	"depletions/directory"
	"depletions/importer"
	"depletions/submitter"
)

type Options struct {
	Columns          importer.Columns
	QuantityMin      int
	QuantityMax      int
	BlockInvalidType bool
	BatchSize        int
}

func (o Options) quantityRange() (int, int) {
	if o.QuantityMin == 0 && o.QuantityMax == 0 {
		return depletion.MinQuantity, depletion.MaxQuantity
	}
	return o.QuantityMin, o.QuantityMax
}

// Session owns one working list and the account it belongs to. It is safe
// for concurrent use.
type Session struct {
	dir     directory.Directory
	options Options

	mu        sync.Mutex
	accountID string
	records   []depletion.Record

	importing  atomic.Bool
	submitting atomic.Bool

	typesMu     sync.Mutex
	typesLoaded bool
	types       []string
}

func New(dir directory.Directory, options Options) *Session {
	options.Columns = options.Columns.WithDefaults()
	return &Session{dir: dir, options: options}
}

// Restore replaces the session state, typically with a persisted working list.
func (s *Session) Restore(accountID string, records []depletion.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accountID = accountID
	s.records = append([]depletion.Record(nil), records...)
}

func (s *Session) AccountID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accountID
}

// Records returns a copy of the working list in order.
func (s *Session) Records() []depletion.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]depletion.Record(nil), s.records...)
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// ValidateAccount looks up the account for the tax id and email pair and makes
// it the owner of new entries.
func (s *Session) ValidateAccount(ctx context.Context, taxID, email string) (string, error) {
	taxID = strings.TrimSpace(taxID)
	email = strings.TrimSpace(email)
	if taxID == "" || email == "" {
		return "", ErrMissingFields
	}

	accountID, err := s.dir.ValidateAccount(ctx, taxID, email)
	if err != nil {
		return "", fmt.Errorf("validate account: %w", err)
	}
	if accountID == "" {
		return "", ErrAccountNotFound
	}

	s.mu.Lock()
	s.accountID = accountID
	s.mu.Unlock()

	zerolog.Ctx(ctx).Info().Str("account_id", accountID).Msg("account validated")
	return accountID, nil
}

// MovementTypes loads the movement-type enumeration once. A failed load is
// not cached so the next call retries.
func (s *Session) MovementTypes(ctx context.Context) ([]string, error) {
	s.typesMu.Lock()
	defer s.typesMu.Unlock()

	if s.typesLoaded {
		return append([]string(nil), s.types...), nil
	}

	types, err := s.dir.MovementTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load movement types: %w", err)
	}
	s.types = types
	s.typesLoaded = true
	return append([]string(nil), types...), nil
}

// Import runs one file through the pipeline and appends the accepted rows.
// A batch error leaves the working list unchanged. Only one import may run at
// a time.
func (s *Session) Import(ctx context.Context, scanner importer.RowScanner) (*importer.Result, error) {
	if !s.importing.CompareAndSwap(false, true) {
		return nil, ErrImportInProgress
	}
	defer s.importing.Store(false)

	accountID := s.AccountID()
	if accountID == "" {
		return nil, ErrNoAccount
	}

	logger := zerolog.Ctx(ctx)
	allowedTypes, err := s.MovementTypes(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("movement types unavailable, type check disabled")
	}

	quantityMin, quantityMax := s.options.quantityRange()
	result, err := importer.Run(ctx, scanner, s.dir, importer.Options{
		Columns:          s.options.Columns,
		QuantityMin:      quantityMin,
		QuantityMax:      quantityMax,
		AllowedTypes:     allowedTypes,
		BlockInvalidType: s.options.BlockInvalidType,
		AccountID:        accountID,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.merge(result.Accepted)
	total := len(s.records)
	s.mu.Unlock()

	logger.Info().Int("merged", len(result.Accepted)).Int("working_list", total).Msg("import merged")
	return result, nil
}

// merge appends records with fresh tokens. Callers hold mu.
func (s *Session) merge(records []depletion.Record) {
	if len(records) == 0 {
		return
	}
	used := make(map[string]struct{}, len(s.records)+len(records))
	for _, record := range s.records {
		used[record.Token] = struct{}{}
	}
	for i := range records {
		records[i].Token = newToken(used)
		s.records = append(s.records, records[i])
	}
}

func newToken(used map[string]struct{}) string {
	for {
		token := uuid.NewString()
		if _, exists := used[token]; !exists {
			used[token] = struct{}{}
			return token
		}
	}
}

// Add validates a manual entry, creates the new seller when requested, and
// appends one record. Product and seller names are fetched concurrently.
func (s *Session) Add(ctx context.Context, draft Draft) (depletion.Record, error) {
	accountID := s.AccountID()
	if accountID == "" {
		return depletion.Record{}, ErrNoAccount
	}
	if !draft.complete() {
		return depletion.Record{}, ErrMissingFields
	}

	quantityMin, quantityMax := s.options.quantityRange()
	quantity, err := importer.ParseQuantity(draft.Quantity, quantityMin, quantityMax)
	if err != nil {
		return depletion.Record{}, &FieldError{Field: depletion.FieldQuantity.String(), Message: err.Error()}
	}

	var (
		productName string
		sellerID    string
		sellerName  string
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		name, err := s.dir.ProductName(groupCtx, draft.ProductID)
		if err != nil {
			return fmt.Errorf("get product name: %w", err)
		}
		productName = name
		return nil
	})
	group.Go(func() error {
		if draft.UseNewSeller {
			id, err := s.dir.CreateSeller(groupCtx, draft.NewSellerName)
			if err != nil {
				return fmt.Errorf("create seller: %w", err)
			}
			sellerID, sellerName = id, draft.NewSellerName
			return nil
		}
		name, err := s.dir.SellerName(groupCtx, draft.SellerID)
		if err != nil {
			return fmt.Errorf("get seller name: %w", err)
		}
		sellerID, sellerName = draft.SellerID, name
		return nil
	})
	if err := group.Wait(); err != nil {
		return depletion.Record{}, err
	}

	record := depletion.Record{
		AccountID:   accountID,
		ProductID:   draft.ProductID,
		ProductName: productName,
		SellerID:    sellerID,
		SellerName:  sellerName,
		Country:     draft.Country,
		City:        draft.City,
		State:       draft.State,
		Type:        draft.Type,
		Quantity:    quantity,
	}

	s.mu.Lock()
	s.merge([]depletion.Record{record})
	record = s.records[len(s.records)-1]
	s.mu.Unlock()

	return record, nil
}

// Edit applies all changes to the record with token, or none of them when
// any change is invalid.
func (s *Session) Edit(token string, changes ...depletion.Change) (depletion.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexOf(token)
	if index < 0 {
		return depletion.Record{}, fmt.Errorf("%w: %s", ErrRecordNotFound, token)
	}

	updated := s.records[index]
	quantityMin, quantityMax := s.options.quantityRange()
	for _, change := range changes {
		resolved, err := change.Resolve()
		if err != nil {
			return depletion.Record{}, &FieldError{Field: change.Name, Message: err.Error()}
		}
		if err := applyChange(&updated, resolved, quantityMin, quantityMax); err != nil {
			return depletion.Record{}, err
		}
	}

	s.records[index] = updated
	return updated, nil
}

func applyChange(record *depletion.Record, change depletion.Change, quantityMin, quantityMax int) error {
	value := strings.TrimSpace(change.Value)
	invalid := func(format string, args ...any) error {
		return &FieldError{Field: change.Field.String(), Message: fmt.Sprintf(format, args...)}
	}

	switch change.Field {
	case depletion.FieldProduct, depletion.FieldSeller:
		id := strings.TrimSpace(change.ID)
		if id == "" {
			return invalid("%s requires an id", change.Field)
		}
		if change.Field == depletion.FieldProduct {
			record.ProductID, record.ProductName = id, value
		} else {
			record.SellerID, record.SellerName = id, value
		}
	case depletion.FieldCountry:
		record.Country = value
	case depletion.FieldCity, depletion.FieldState, depletion.FieldType:
		if value == "" {
			return invalid("%s must not be empty", change.Field)
		}
		switch change.Field {
		case depletion.FieldCity:
			record.City = value
		case depletion.FieldState:
			record.State = value
		default:
			record.Type = value
		}
	case depletion.FieldQuantity:
		quantity, err := importer.ParseQuantity(value, quantityMin, quantityMax)
		if err != nil {
			return invalid("%s", err.Error())
		}
		record.Quantity = quantity
	default:
		return invalid("%s cannot be edited", change.Field)
	}
	return nil
}

func (s *Session) Remove(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexOf(token)
	if index < 0 {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, token)
	}
	s.records = append(s.records[:index], s.records[index+1:]...)
	return nil
}

// Submit sends the working list to sink. The list is cleared when every batch
// succeeded; after a partial failure only the records the sink accepted are
// removed. Records edited while the submission ran stay in the list. Only one
// submission may run at a time.
func (s *Session) Submit(ctx context.Context, sink submitter.Sink) (submitter.Report, error) {
	if !s.submitting.CompareAndSwap(false, true) {
		return submitter.Report{}, ErrSubmitInProgress
	}
	defer s.submitting.Store(false)

	snapshot := s.Records()
	if len(snapshot) == 0 {
		return submitter.Report{}, ErrNothingToSubmit
	}

	quantityMin, quantityMax := s.options.quantityRange()
	report, err := submitter.Submit(ctx, sink, snapshot, submitter.Options{
		BatchSize:   s.options.BatchSize,
		QuantityMin: quantityMin,
		QuantityMax: quantityMax,
	})

	s.mu.Lock()
	s.dropSent(snapshot[:report.Submitted])
	remaining := len(s.records)
	s.mu.Unlock()

	logger := zerolog.Ctx(ctx)
	if err != nil {
		logger.Error().Err(err).Int("submitted", report.Submitted).Int("remaining", remaining).Msg("submission failed")
		return report, err
	}
	logger.Info().Int("submitted", report.Submitted).Int("batches", report.Batches).Msg("depletions submitted")
	return report, nil
}

// dropSent removes the sent records that are still unchanged in the list.
// Callers hold mu.
func (s *Session) dropSent(sent []depletion.Record) {
	if len(sent) == 0 {
		return
	}
	sentByToken := make(map[string]depletion.Record, len(sent))
	for _, record := range sent {
		sentByToken[record.Token] = record
	}
	kept := s.records[:0]
	for _, record := range s.records {
		if previous, ok := sentByToken[record.Token]; ok && previous == record {
			continue
		}
		kept = append(kept, record)
	}
	s.records = kept
}

func (s *Session) indexOf(token string) int {
	for i, record := range s.records {
		if record.Token == token {
			return i
		}
	}
	return -1
}

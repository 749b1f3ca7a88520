package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_sync/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_sync/internal/core/ports/services"
	"github.com/SscSPs/ledger_sync/internal/dto"
	"github.com/shopspring/decimal"
)

const (
	rematchPrompt     = "There are existing matches from a previous import. Do you want to rematch your accounts?"
	createOptionLabel = "Create new account"
	skipOptionLabel   = "N/A (skip)"
	accountNamePrompt = "Account name"
	accountTypePrompt = "Account type"
)

// matchState is where one external account is in the matching dialogue.
type matchState int

const (
	statePrompting matchState = iota
	stateCreatingAccount
	stateMapped
	stateSkipped
)

func (s matchState) String() string {
	switch s {
	case statePrompting:
		return "prompting"
	case stateCreatingAccount:
		return "creating_account"
	case stateMapped:
		return "mapped"
	case stateSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("matchState(%d)", int(s))
	}
}

func (s matchState) terminal() bool {
	return s == stateMapped || s == stateSkipped
}

type matchEvent int

const (
	eventChooseCreate matchEvent = iota
	eventChooseExisting
	eventChooseSkip
	eventCreateSucceeded
	eventCreateFailed
)

// advanceMatch is the transition function of the matching dialogue.
func advanceMatch(state matchState, event matchEvent) (matchState, error) {
	switch state {
	case statePrompting:
		switch event {
		case eventChooseCreate:
			return stateCreatingAccount, nil
		case eventChooseExisting:
			return stateMapped, nil
		case eventChooseSkip:
			return stateSkipped, nil
		}
	case stateCreatingAccount:
		switch event {
		case eventCreateSucceeded:
			return stateMapped, nil
		case eventCreateFailed:
			return statePrompting, nil
		}
	}
	return state, fmt.Errorf("invalid match transition from %s on event %d", state, event)
}

// reconcileService implements the ReconcileSvc interface
type reconcileService struct {
	BaseService
	mappings portsrepo.AccountMappingRepositoryFacade
	ledger   portssvc.LedgerAccountSvc
	chooser  portssvc.Chooser
}

// NewReconcileService creates a reconciler backed by the mapping store, the
// ledger's manual accounts and an interactive chooser.
func NewReconcileService(
	mappings portsrepo.AccountMappingRepositoryFacade,
	ledger portssvc.LedgerAccountSvc,
	chooser portssvc.Chooser,
) portssvc.ReconcileSvc {
	return &reconcileService{
		mappings: mappings,
		ledger:   ledger,
		chooser:  chooser,
	}
}

var _ portssvc.ReconcileSvc = (*reconcileService)(nil)

func (s *reconcileService) ListMappings(ctx context.Context, integration domain.IntegrationID) ([]domain.AccountMapping, error) {
	mappings, err := s.mappings.ListMappings(ctx, integration)
	if err != nil {
		s.LogError(ctx, err, "Failed to list account mappings", slog.String("integration", string(integration)))
		return nil, err
	}
	return mappings, nil
}

// ReconcileAccounts returns the mapping set for integration. When the user
// rematches, the store is cleared first and only rewritten once every
// external account has been answered, so an aborted pass leaves it empty.
func (s *reconcileService) ReconcileAccounts(ctx context.Context, integration domain.IntegrationID, external []domain.ExternalAccountRef) ([]domain.AccountMapping, error) {
	ledgerAccounts, err := s.ledger.GetAllManualAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch ledger accounts")
		return nil, fmt.Errorf("failed to fetch ledger accounts: %w", err)
	}

	existing, err := s.ListMappings(ctx, integration)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing mappings: %w", err)
	}

	s.logReport(ctx, integration, domain.BuildMappingReport(existing, ledgerAccounts, external))

	if len(existing) > 0 {
		rematch, err := s.chooser.Confirm(ctx, rematchPrompt, false)
		if err != nil {
			return nil, fmt.Errorf("rematch prompt: %w", err)
		}
		if !rematch {
			s.LogInfo(ctx, "Keeping existing account mappings",
				slog.String("integration", string(integration)),
				slog.Int("count", len(existing)))
			return existing, nil
		}
	}

	if err := s.mappings.ReplaceAll(ctx, integration, nil); err != nil {
		s.LogError(ctx, err, "Failed to clear account mappings", slog.String("integration", string(integration)))
		return nil, err
	}

	pool := make([]domain.LedgerAccount, len(ledgerAccounts))
	copy(pool, ledgerAccounts)

	pending := make([]domain.AccountMapping, 0, len(external))
	for _, ext := range external {
		mapping, mapped, err := s.matchAccount(ctx, integration, ext, &pool)
		if err != nil {
			s.LogError(ctx, err, "Account matching aborted, mappings left cleared",
				slog.String("integration", string(integration)),
				slog.String("external_id", ext.ExternalID))
			return nil, err
		}
		if mapped {
			pending = append(pending, mapping)
		}
	}

	if err := s.mappings.ReplaceAll(ctx, integration, pending); err != nil {
		s.LogError(ctx, err, "Failed to save account mappings", slog.String("integration", string(integration)))
		return nil, err
	}
	s.LogInfo(ctx, "Account mappings saved",
		slog.String("integration", string(integration)),
		slog.Int("mapped", len(pending)),
		slog.Int("skipped", len(external)-len(pending)))

	return s.ListMappings(ctx, integration)
}

// matchAccount runs the dialogue for one external account. A chosen pool
// account is removed from pool so it cannot be mapped twice.
func (s *reconcileService) matchAccount(ctx context.Context, integration domain.IntegrationID, ext domain.ExternalAccountRef, pool *[]domain.LedgerAccount) (domain.AccountMapping, bool, error) {
	var chosen domain.LedgerAccount
	state := statePrompting

	for !state.terminal() {
		if err := ctx.Err(); err != nil {
			return domain.AccountMapping{}, false, err
		}

		var event matchEvent
		switch state {
		case statePrompting:
			options := matchOptions(*pool)
			idx, err := s.chooser.Select(ctx, matchPrompt(ext), options)
			if err != nil {
				return domain.AccountMapping{}, false, fmt.Errorf("account match prompt: %w", err)
			}
			switch {
			case idx == 0:
				event = eventChooseCreate
			case idx == len(options)-1:
				event = eventChooseSkip
			case idx > 0 && idx < len(options)-1:
				chosen = (*pool)[idx-1]
				*pool = append((*pool)[:idx-1], (*pool)[idx:]...)
				event = eventChooseExisting
			default:
				return domain.AccountMapping{}, false, fmt.Errorf("%w: choice %d out of range", apperrors.ErrValidation, idx)
			}

		case stateCreatingAccount:
			req, err := s.askNewAccount(ctx, ext)
			if err != nil {
				return domain.AccountMapping{}, false, err
			}
			created, err := s.ledger.CreateManualAccount(ctx, req)
			if err != nil {
				s.logCreateFailure(ctx, err, req)
				event = eventCreateFailed
			} else {
				s.LogInfo(ctx, "Created ledger account",
					slog.Int64("ledger_account_id", int64(created.ID)),
					slog.String("name", created.Name))
				chosen = *created
				event = eventCreateSucceeded
			}
		}

		next, err := advanceMatch(state, event)
		if err != nil {
			return domain.AccountMapping{}, false, err
		}
		state = next
	}

	if state == stateSkipped {
		s.LogDebug(ctx, "External account skipped", slog.String("external_id", ext.ExternalID))
		return domain.AccountMapping{}, false, nil
	}
	return domain.AccountMapping{
		Integration:     integration,
		LedgerAccountID: chosen.ID,
		ExternalID:      ext.ExternalID,
		ExternalName:    ext.DisplayName,
	}, true, nil
}

func (s *reconcileService) askNewAccount(ctx context.Context, ext domain.ExternalAccountRef) (dto.CreateManualAccountRequest, error) {
	name, err := s.chooser.TextInput(ctx, accountNamePrompt, ext.DisplayName)
	if err != nil {
		return dto.CreateManualAccountRequest{}, fmt.Errorf("account name prompt: %w", err)
	}

	typeOptions := make([]portssvc.Option, len(domain.AccountTypes))
	for i, t := range domain.AccountTypes {
		typeOptions[i] = portssvc.Option{Label: string(t)}
	}
	idx, err := s.chooser.Select(ctx, accountTypePrompt, typeOptions)
	if err != nil {
		return dto.CreateManualAccountRequest{}, fmt.Errorf("account type prompt: %w", err)
	}
	if idx < 0 || idx >= len(domain.AccountTypes) {
		return dto.CreateManualAccountRequest{}, fmt.Errorf("%w: account type choice %d out of range", apperrors.ErrValidation, idx)
	}

	return dto.CreateManualAccountRequest{
		Name:    name,
		Type:    domain.AccountTypes[idx],
		Balance: decimal.Zero,
	}, nil
}

func (s *reconcileService) logCreateFailure(ctx context.Context, err error, req dto.CreateManualAccountRequest) {
	var lerr *apperrors.LedgerError
	if errors.As(err, &lerr) {
		s.LogError(ctx, err, "Ledger rejected the new account: "+lerr.Message,
			slog.String("name", req.Name),
			slog.String("type", string(req.Type)),
			slog.Any("errors", lerr.Errors))
		return
	}
	s.LogError(ctx, err, "Failed to create ledger account",
		slog.String("name", req.Name),
		slog.String("type", string(req.Type)))
}

func (s *reconcileService) logReport(ctx context.Context, integration domain.IntegrationID, report domain.MappingReport) {
	for _, row := range report.Rows {
		s.LogInfo(ctx, "Existing account mapping",
			slog.String("integration", string(integration)),
			slog.String("ledger_account", row.LedgerName),
			slog.String("external_account", row.ExternalName))
	}
	for _, ext := range report.Unmapped {
		s.LogInfo(ctx, "Unmapped external account",
			slog.String("integration", string(integration)),
			slog.String("external_id", ext.ExternalID),
			slog.String("external_account", ext.DisplayName))
	}
}

func matchPrompt(ext domain.ExternalAccountRef) string {
	if ext.Detail != "" {
		return fmt.Sprintf("Which Lunch Money account matches %s - %s?", ext.DisplayName, ext.Detail)
	}
	return fmt.Sprintf("Which Lunch Money account matches %s?", ext.DisplayName)
}

// matchOptions lists "create", every pool account, then "skip".
func matchOptions(pool []domain.LedgerAccount) []portssvc.Option {
	options := make([]portssvc.Option, 0, len(pool)+2)
	options = append(options, portssvc.Option{Label: createOptionLabel})
	for _, a := range pool {
		options = append(options, portssvc.Option{Label: a.Name, Description: string(a.Type)})
	}
	return append(options, portssvc.Option{Label: skipOptionLabel})
}

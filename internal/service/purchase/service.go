package purchase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"log/slog"

	"github.com/Tortugo2120/Licorer-a-360/internal/domain"
	"github.com/Tortugo2120/Licorer-a-360/internal/repository"
	"github.com/Tortugo2120/Licorer-a-360/internal/ws"
)

// feedChannel is the hub stream carrying created purchases.
const feedChannel = "compras"

// ErrInvalidInput matches every validation failure produced by this service,
// so transport code can separate rejected payloads from store failures.
var ErrInvalidInput = errors.New("datos inválidos")

type validationError string

func (e validationError) Error() string { return string(e) }

func (e validationError) Is(target error) bool { return target == ErrInvalidInput }

var (
	errMissingUserRef    error = validationError("id_usuario requerido")
	errInvalidTotal      error = validationError("total debe ser mayor o igual a cero")
	errMissingPurchase   error = validationError("id_compra requerido")
	errMissingVariantRef error = validationError("id_variante requerido")
	errInvalidQuantity   error = validationError("cantidad debe ser mayor a cero")
)

// Service manages purchases and their line items. Created purchases are
// broadcast to hub subscribers for the dashboard live feed.
type Service struct {
	purchases repository.PurchaseRepository
	hub       *ws.Hub
	logger    *slog.Logger
}

// New returns a purchase service.
func New(purchases repository.PurchaseRepository, hub *ws.Hub, logger *slog.Logger) Service {
	return Service{purchases: purchases, hub: hub, logger: logger}
}

// Create stores a purchase header and pushes it to the live feed.
func (s Service) Create(ctx context.Context, purchase *domain.Purchase) (*domain.Purchase, error) {
	if purchase.UsuarioID == 0 {
		return nil, errMissingUserRef
	}
	if purchase.Total < 0 {
		return nil, errInvalidTotal
	}
	if purchase.Fecha.IsZero() {
		purchase.Fecha = time.Now().UTC()
	}
	if err := s.purchases.CreatePurchase(ctx, purchase); err != nil {
		return nil, err
	}
	s.logger.Info("purchase created", "purchase_id", purchase.ID, "user_id", purchase.UsuarioID, "total", purchase.Total)
	s.publish(purchase)
	return purchase, nil
}

// Get returns one purchase header.
func (s Service) Get(ctx context.Context, id int64) (*domain.Purchase, error) {
	return s.purchases.GetPurchaseByID(ctx, id)
}

// List returns all purchases, newest first.
func (s Service) List(ctx context.Context) ([]domain.Purchase, error) {
	return s.purchases.ListPurchases(ctx)
}

// Update replaces purchase header fields.
func (s Service) Update(ctx context.Context, purchase *domain.Purchase) (*domain.Purchase, error) {
	if purchase.UsuarioID == 0 {
		return nil, errMissingUserRef
	}
	if purchase.Total < 0 {
		return nil, errInvalidTotal
	}
	if err := s.purchases.UpdatePurchase(ctx, purchase); err != nil {
		return nil, err
	}
	return purchase, nil
}

// Delete removes a purchase and its line items.
func (s Service) Delete(ctx context.Context, id int64) error {
	if err := s.purchases.DeletePurchase(ctx, id); err != nil {
		return err
	}
	s.logger.Info("purchase deleted", "purchase_id", id)
	return nil
}

// CreateDetail stores a line item after checking its purchase exists.
func (s Service) CreateDetail(ctx context.Context, detail *domain.PurchaseDetail) (*domain.PurchaseDetail, error) {
	if err := validateDetail(detail); err != nil {
		return nil, err
	}
	if _, err := s.purchases.GetPurchaseByID(ctx, detail.CompraID); err != nil {
		return nil, err
	}
	if err := s.purchases.CreatePurchaseDetail(ctx, detail); err != nil {
		return nil, err
	}
	s.logger.Info("purchase detail created", "detail_id", detail.ID, "purchase_id", detail.CompraID)
	return detail, nil
}

// GetDetail returns one line item.
func (s Service) GetDetail(ctx context.Context, id int64) (*domain.PurchaseDetail, error) {
	return s.purchases.GetPurchaseDetailByID(ctx, id)
}

// ListDetails returns all line items.
func (s Service) ListDetails(ctx context.Context) ([]domain.PurchaseDetail, error) {
	return s.purchases.ListPurchaseDetails(ctx)
}

// UpdateDetail replaces line item fields.
func (s Service) UpdateDetail(ctx context.Context, detail *domain.PurchaseDetail) (*domain.PurchaseDetail, error) {
	if err := validateDetail(detail); err != nil {
		return nil, err
	}
	if err := s.purchases.UpdatePurchaseDetail(ctx, detail); err != nil {
		return nil, err
	}
	return detail, nil
}

// DeleteDetail removes a line item.
func (s Service) DeleteDetail(ctx context.Context, id int64) error {
	return s.purchases.DeletePurchaseDetail(ctx, id)
}

// Hub exposes the live feed for the websocket endpoint.
func (s Service) Hub() *ws.Hub {
	return s.hub
}

func (s Service) publish(purchase *domain.Purchase) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(purchase)
	if err != nil {
		s.logger.Warn("failed to encode purchase for feed", "purchase_id", purchase.ID, "error", err)
		return
	}
	s.hub.Broadcast(feedChannel, payload)
}

func validateDetail(detail *domain.PurchaseDetail) error {
	if detail.CompraID == 0 {
		return errMissingPurchase
	}
	if detail.VarianteID == 0 {
		return errMissingVariantRef
	}
	if detail.Cantidad <= 0 {
		return errInvalidQuantity
	}
	return nil
}

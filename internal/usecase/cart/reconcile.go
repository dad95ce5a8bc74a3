package cart

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Pesokrava/storefront/internal/domain"
)

// Reconcile corrects cart lines against live catalog data.
// Lines whose product or variant vanished or sold out are removed, quantities above
// available stock are clamped and stale price snapshots are replaced. Totals are recomputed.
func Reconcile(cart *domain.Cart, live map[uuid.UUID]*domain.Product) domain.ReconcileResult {
	result := domain.ReconcileResult{
		IsValid: true,
		Removed: []domain.CartItem{},
		Updated: []domain.CartItem{},
		Errors:  []string{},
	}

	kept := make([]domain.CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		product, ok := live[item.ProductID]
		if !ok {
			result.Removed = append(result.Removed, item)
			result.Errors = append(result.Errors, fmt.Sprintf("%s is no longer available", item.Name))
			continue
		}

		var variant *domain.Variant
		if item.VariantID != nil {
			variant, ok = product.Variant(*item.VariantID)
			if !ok {
				result.Removed = append(result.Removed, item)
				result.Errors = append(result.Errors, fmt.Sprintf("%s in the selected size or color is no longer available", item.Name))
				continue
			}
		}

		available := product.Inventory
		if variant != nil {
			available = variant.Inventory
		}
		if available <= 0 {
			result.Removed = append(result.Removed, item)
			result.Errors = append(result.Errors, fmt.Sprintf("%s is out of stock", item.Name))
			continue
		}

		changed := false
		if item.Quantity > available {
			result.Errors = append(result.Errors, fmt.Sprintf("%s quantity reduced from %d to %d", item.Name, item.Quantity, available))
			item.Quantity = available
			changed = true
		}

		price := product.PriceFor(variant)
		if item.Price.Sub(price).Abs().GreaterThan(domain.PriceEpsilon) {
			result.Errors = append(result.Errors, fmt.Sprintf("%s price changed from %s to %s", item.Name, item.Price.StringFixed(2), price.StringFixed(2)))
			item.Price = price
			changed = true
		}

		if changed {
			result.Updated = append(result.Updated, item)
		}
		kept = append(kept, item)
	}

	cart.Items = kept
	cart.Recalculate()
	result.IsValid = len(result.Removed) == 0 && len(result.Updated) == 0
	return result
}

// productIDs returns the distinct product ids referenced by the cart
func productIDs(cart *domain.Cart) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(cart.Items))
	ids := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

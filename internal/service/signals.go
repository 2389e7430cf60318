package service

// signals.go — derived-signal generator.
// Pure evaluation of a product's post-mutation state into zero or more alert
// and recommendation rows. Rules are independent: more than one may fire per
// call, and nothing here deduplicates against existing unresolved signals.
// Readers collapse duplicates and re-check conditions (see signal_service.go).

import (
	"fmt"

	"novacrm/internal/model"

	"github.com/shopspring/decimal"
)

// Recommendation constants. The discount suggestion is a flat 15%.
var discountSuggestionPct = decimal.NewFromInt(15)

const (
	restockConfidence  = 85
	discountConfidence = 70
	reduceConfidence   = 80
)

// alertsFor returns the alerts triggered by the product's current quantity.
func alertsFor(p *model.Product) []model.StockAlert {
	var alerts []model.StockAlert

	if p.Quantity <= 0 {
		alerts = append(alerts, model.StockAlert{
			ProductID: p.ID,
			Kind:      model.AlertOutOfStock,
			Severity:  model.SeverityCritical,
			Message:   fmt.Sprintf("%s is out of stock", p.Name),
		})
	}

	if p.Quantity > 0 && p.Quantity <= p.MinStockLevel {
		severity := model.SeverityHigh
		if p.Quantity <= p.MinStockLevel/2 {
			severity = model.SeverityCritical
		}
		alerts = append(alerts, model.StockAlert{
			ProductID: p.ID,
			Kind:      model.AlertLowStock,
			Severity:  severity,
			Message:   fmt.Sprintf("%s is low on stock: %d left (minimum %d)", p.Name, p.Quantity, p.MinStockLevel),
		})
	}

	if p.Quantity > p.MinStockLevel*10 {
		alerts = append(alerts, model.StockAlert{
			ProductID: p.ID,
			Kind:      model.AlertOverstock,
			Severity:  model.SeverityMedium,
			Message:   fmt.Sprintf("%s is overstocked: %d on hand", p.Name, p.Quantity),
		})
	}

	return alerts
}

// recommendationsFor returns the recommendations triggered by the product's
// current quantity. The discount and reduce-stock thresholds overlap on
// purpose: both may fire for the same product, and the read side keeps only
// the highest-confidence one.
func recommendationsFor(p *model.Product) []model.StockRecommendation {
	var recs []model.StockRecommendation

	if p.Quantity > 0 && p.Quantity <= p.MinStockLevel {
		qty := p.MinStockLevel * 3
		recs = append(recs, model.StockRecommendation{
			ProductID:         p.ID,
			Kind:              model.RecommendRestock,
			SuggestedQuantity: &qty,
			Confidence:        restockConfidence,
			Reason:            fmt.Sprintf("Stock at or below minimum level (%d)", p.MinStockLevel),
		})
	}

	if p.Quantity > p.MinStockLevel*5 {
		pct := discountSuggestionPct
		recs = append(recs, model.StockRecommendation{
			ProductID:         p.ID,
			Kind:              model.RecommendDiscount,
			SuggestedDiscount: &pct,
			Confidence:        discountConfidence,
			Reason:            "Stock well above minimum level, a discount could speed up turnover",
		})
	}

	if p.Quantity > p.MinStockLevel*10 {
		qty := p.MinStockLevel * 2
		recs = append(recs, model.StockRecommendation{
			ProductID:         p.ID,
			Kind:              model.RecommendReduceStock,
			SuggestedQuantity: &qty,
			Confidence:        reduceConfidence,
			Reason:            "Stock more than ten times the minimum level",
		})
	}

	return recs
}

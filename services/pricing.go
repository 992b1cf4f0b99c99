package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/teatime/teashop-api/models"
	"gorm.io/gorm"
)

// CartLine is one client-submitted drink selection
type CartLine struct {
	ProductID uint
	Size      models.Size
	Sugar     string
	Ice       string
	Toppings  []string
	Quantity  int
	// Price is the client's line total, checked against the catalog when present
	Price *decimal.Decimal
}

// priceCart prices every line from the catalog and returns unsaved order items
// along with their total. Client prices are never used as the source of truth.
func priceCart(tx *gorm.DB, lines []CartLine) ([]models.OrderItem, decimal.Decimal, error) {
	products, err := loadProducts(tx, lines)
	if err != nil {
		return nil, decimal.Zero, err
	}
	toppings, err := loadToppings(tx, lines)
	if err != nil {
		return nil, decimal.Zero, err
	}

	items := make([]models.OrderItem, 0, len(lines))
	total := decimal.Zero

	for i, line := range lines {
		product, ok := products[line.ProductID]
		if !ok || !product.Available {
			return nil, decimal.Zero, &PricingError{
				Code:    CodeProductUnavailable,
				Line:    i,
				Message: fmt.Sprintf("product %d is not available", line.ProductID),
			}
		}

		unit, ok := product.PriceFor(line.Size)
		if !ok {
			return nil, decimal.Zero, &PricingError{
				Code:    CodeProductUnavailable,
				Line:    i,
				Message: fmt.Sprintf("%s is not offered in size %s", product.Name, line.Size),
			}
		}

		if !product.AllowsSugar(line.Sugar) {
			return nil, decimal.Zero, &PricingError{
				Code:    CodeInvalidOption,
				Line:    i,
				Message: fmt.Sprintf("sugar level %q is not offered for %s", line.Sugar, product.Name),
			}
		}
		if !product.AllowsIce(line.Ice) {
			return nil, decimal.Zero, &PricingError{
				Code:    CodeInvalidOption,
				Line:    i,
				Message: fmt.Sprintf("ice level %q is not offered for %s", line.Ice, product.Name),
			}
		}

		for _, name := range line.Toppings {
			topping, ok := toppings[name]
			if !ok || !topping.Available {
				return nil, decimal.Zero, &PricingError{
					Code:    CodeProductUnavailable,
					Line:    i,
					Message: fmt.Sprintf("topping %q is not available", name),
				}
			}
			unit = unit.Add(topping.Price)
		}

		subTotal := unit.Mul(decimal.NewFromInt(int64(line.Quantity)))
		if line.Price != nil && !line.Price.Equal(subTotal) {
			return nil, decimal.Zero, &PricingError{
				Code:    CodePriceMismatch,
				Line:    i,
				Message: fmt.Sprintf("submitted price %s does not match catalog price %s", line.Price.String(), subTotal.String()),
			}
		}

		toppingNames := line.Toppings
		if toppingNames == nil {
			toppingNames = []string{}
		}

		items = append(items, models.OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductImage: product.ImageKey,
			Size:         line.Size,
			Sugar:        line.Sugar,
			Ice:          line.Ice,
			Toppings:     toppingNames,
			Quantity:     line.Quantity,
			UnitPrice:    unit,
			SubTotal:     subTotal,
		})
		total = total.Add(subTotal)
	}

	return items, total, nil
}

func loadProducts(tx *gorm.DB, lines []CartLine) (map[uint]models.Product, error) {
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	var products []models.Product
	if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

func loadToppings(tx *gorm.DB, lines []CartLine) (map[string]models.Topping, error) {
	var names []string
	for _, line := range lines {
		names = append(names, line.Toppings...)
	}
	if len(names) == 0 {
		return map[string]models.Topping{}, nil
	}

	var toppings []models.Topping
	if err := tx.Where("name IN ?", names).Find(&toppings).Error; err != nil {
		return nil, fmt.Errorf("failed to load toppings: %w", err)
	}

	byName := make(map[string]models.Topping, len(toppings))
	for _, t := range toppings {
		byName[t.Name] = t
	}
	return byName, nil
}

package printing

import (
	"context"
	"fmt"
	"strings"

	"github.com/festpos/api/internal/database"
	"github.com/festpos/api/internal/service"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Renderer turns an order into printable bytes for a printer type.
type Renderer interface {
	Render(ctx context.Context, order database.Order, printerType database.PrinterType) ([]byte, error)
}

// TextRenderer renders plain-text receipts and kitchen tickets. Tickets omit
// prices.
type TextRenderer struct {
	store service.OrderDetailReader
	width int
}

func NewTextRenderer(store service.OrderDetailReader) *TextRenderer {
	return &TextRenderer{store: store, width: 42}
}

func (r *TextRenderer) Render(ctx context.Context, order database.Order, printerType database.PrinterType) ([]byte, error) {
	detail, err := service.LoadOrderDetail(ctx, r.store, order)
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", order.ID, err)
	}
	priced := printerType == database.PrinterTypeRECEIPT

	var b strings.Builder
	b.WriteString(string(printerType) + "\n")
	fmt.Fprintf(&b, "Order %s\n", order.ID.String()[:8])
	if order.IsTakeAway {
		b.WriteString("TAKE AWAY\n")
	} else {
		fmt.Fprintf(&b, "Table %s  Guests %d\n", order.TableNumber.String, order.Guests.Int32)
	}
	if order.CustomerName != "" {
		fmt.Fprintf(&b, "Customer: %s\n", order.CustomerName)
	}
	b.WriteString(strings.Repeat("-", r.width) + "\n")

	for _, p := range detail.Products {
		r.line(&b, p.Product.Quantity, productName(p.Product), p.Product.Price, priced)
		r.productExtras(&b, p, "   ")
	}
	for _, m := range detail.Menus {
		r.line(&b, m.Menu.Quantity, m.Menu.MenuName, m.Menu.Price, priced)
		for _, f := range m.Fields {
			for _, p := range f.Products {
				fmt.Fprintf(&b, "   %s: %d x %s\n", f.Field.FieldName, p.Product.Quantity, productName(p.Product))
				r.productExtras(&b, p, "      ")
			}
		}
		if m.Menu.Notes.Valid {
			fmt.Fprintf(&b, "   * %s\n", m.Menu.Notes.String)
		}
	}

	if order.Notes.Valid {
		b.WriteString(strings.Repeat("-", r.width) + "\n")
		fmt.Fprintf(&b, "Notes: %s\n", order.Notes.String)
	}
	if priced {
		b.WriteString(strings.Repeat("=", r.width) + "\n")
		r.columns(&b, "TOTAL", numericString(order.Price))
	}
	b.WriteString("\n\n\n")
	return []byte(b.String()), nil
}

func (r *TextRenderer) line(b *strings.Builder, qty int32, name string, unit pgtype.Numeric, priced bool) {
	label := fmt.Sprintf("%d x %s", qty, name)
	if !priced {
		b.WriteString(label + "\n")
		return
	}
	total := numericToDecimal(unit).Mul(decimal.NewFromInt32(qty))
	r.columns(b, label, total.StringFixed(2))
}

func (r *TextRenderer) productExtras(b *strings.Builder, p service.ProductDetail, indent string) {
	for _, ing := range p.Ingredients {
		if ing.Quantity > 1 {
			fmt.Fprintf(b, "%s+ %s x%d\n", indent, ing.IngredientName, ing.Quantity)
		} else {
			fmt.Fprintf(b, "%s+ %s\n", indent, ing.IngredientName)
		}
	}
	if p.Product.Notes.Valid {
		fmt.Fprintf(b, "%s* %s\n", indent, p.Product.Notes.String)
	}
}

// columns writes left and right aligned to the paper width.
func (r *TextRenderer) columns(b *strings.Builder, left, right string) {
	pad := r.width - len(left) - len(right)
	if pad < 1 {
		pad = 1
	}
	b.WriteString(left + strings.Repeat(" ", pad) + right + "\n")
}

func productName(p database.ListOrderProductsByOrderRow) string {
	if p.VariantName.Valid {
		return p.ProductName + " (" + p.VariantName.String + ")"
	}
	return p.ProductName
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func numericString(n pgtype.Numeric) string {
	return numericToDecimal(n).StringFixed(2)
}

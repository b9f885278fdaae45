package txgateway

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-pdf/fpdf"
)

// renderStatement renders user's finished/reverted operations across txs
// to a simple tabular PDF, trailered with the user's live balance per
// currency. Read-only, stateless, takes no lock.
func renderStatement(w io.Writer, user *User, txs []*Transaction) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("Statement for %s", user.ID), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 10)
	cols := []string{"Tx", "Type", "Direction", "Currency", "Amount", "Post balance", "Status"}
	widths := []float64{45, 22, 20, 20, 28, 28, 25}
	for i, c := range cols {
		pdf.CellFormat(widths[i], 8, c, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, tx := range txs {
		for _, op := range tx.Operations {
			if op.Username != user.ID {
				continue
			}
			pdf.CellFormat(widths[0], 8, tx.ID.String(), "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], 8, string(tx.Type), "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[2], 8, string(op.Direction), "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[3], 8, op.Currency, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[4], 8, fmt.Sprintf("%.2f", formatMoney(op.Amount)), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[5], 8, fmt.Sprintf("%.2f", formatMoney(op.PostBalance)), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[6], 8, string(op.Status), "1", 0, "L", false, 0, "")
			pdf.Ln(-1)
		}
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 8, "Live balances", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)

	currencies := make([]string, 0, len(user.Balances))
	for c := range user.Balances {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)
	for _, c := range currencies {
		pdf.CellFormat(40, 7, c, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.2f", formatMoney(user.Balances[c])), "1", 1, "R", false, 0, "")
	}

	return pdf.Output(w)
}

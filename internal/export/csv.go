// Package export writes the fruit comparison as a spreadsheet-friendly CSV.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/XBigRoad/banquet-master/internal/models"
	"github.com/XBigRoad/banquet-master/internal/pricing"
)

// PendingWinner labels rows with no positive price.
const PendingWinner = "待定"

const bom = "\uFEFF"

var header = []string{"品名", "人均(kg)", "总需(kg)", "中标供应商", "单价(¥)", "预算(¥)"}

// FileName is the download name of the CSV for a session date.
func FileName(date string) string {
	return "水果采购单_" + date + ".csv"
}

// WriteCSV writes one row per fruit, sized for the session guest count. The
// output starts with a UTF-8 byte order mark so spreadsheet tools pick the
// right encoding.
func WriteCSV(w io.Writer, st *models.AppState) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	guests := pricing.Guests(st.Session)
	for _, f := range st.Fruit {
		total := pricing.RequiredQuantity(f.PerCapita.Float(), guests)
		winner, price := PendingWinner, 0.0
		if idx, ok := pricing.MinIndex(f.Prices); ok {
			winner = pricing.SupplierName(st.SupplierNames, idx)
			price = f.Prices[idx].Float()
		}
		row := []string{
			f.Name,
			num(f.PerCapita.Float()),
			num(total),
			winner,
			num(price),
			num(pricing.LineBudget(total, price)),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

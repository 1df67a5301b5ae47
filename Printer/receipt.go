package Printer

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ESC/POS commands
var (
	cmdInit         = []byte{0x1B, 0x40}
	cmdAlignCenter  = []byte{0x1B, 0x61, 0x01}
	cmdAlignLeft    = []byte{0x1B, 0x61, 0x00}
	cmdBoldOn       = []byte{0x1B, 0x45, 0x01}
	cmdBoldOff      = []byte{0x1B, 0x45, 0x00}
	cmdDoubleHeight = []byte{0x1B, 0x21, 0x10}
	cmdNormalSize   = []byte{0x1B, 0x21, 0x00}
	cmdFeedAndCut   = []byte{0x1D, 0x56, 0x42, 0x03}
)

// LineWidth is the character width of a 58mm thermal roll.
const LineWidth = 32

// Item is one printed receipt line.
type Item struct {
	Name  string
	Price int
	Qty   int
}

// Job is a finalized transaction shaped for printing. CustomerName is only
// set for pay-later sales.
type Job struct {
	ID           uint
	CreatedAt    time.Time
	Items        []Item
	Total        int
	Payment      int
	Change       int
	PaymentType  string
	CustomerName string
	StoreName    string
}

// FormatCurrency renders an integer rupiah amount with dot separators.
func FormatCurrency(n int) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := fmt.Sprintf("%d", n)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)
	return sign + "Rp " + strings.Join(groups, ".")
}

// FormatTxnID renders the receipt number.
func FormatTxnID(id uint) string {
	return fmt.Sprintf("#%06d", id)
}

// pad spreads left and right text across one line with at least one space.
// Columns are counted in runes so multibyte names keep the layout aligned.
func pad(left, right string) string {
	space := LineWidth - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if space < 1 {
		space = 1
	}
	return left + strings.Repeat(" ", space) + right
}

// BuildReceipt renders the ESC/POS byte stream for a finalized transaction.
// Printing happens after the sale is committed; a print failure never rolls
// the sale back.
func BuildReceipt(job Job) []byte {
	var buf bytes.Buffer
	text := func(s string) {
		buf.WriteString(s)
		buf.WriteByte('\n')
	}

	buf.Write(cmdInit)
	buf.Write(cmdAlignCenter)
	buf.Write(cmdBoldOn)
	buf.Write(cmdDoubleHeight)
	text(job.StoreName)
	buf.Write(cmdNormalSize)
	buf.Write(cmdBoldOff)
	buf.Write(cmdAlignLeft)

	text(strings.Repeat("-", LineWidth))
	text("No:   " + FormatTxnID(job.ID))
	text("Tgl:  " + job.CreatedAt.Format("02 Jan 2006 15:04"))
	text(strings.Repeat("-", LineWidth))

	for _, item := range job.Items {
		text(item.Name)
		text(pad(fmt.Sprintf("  %dx %s", item.Qty, FormatCurrency(item.Price)),
			FormatCurrency(item.Price*item.Qty)))
	}

	text(strings.Repeat("-", LineWidth))
	buf.Write(cmdBoldOn)
	text(pad("TOTAL", FormatCurrency(job.Total)))
	buf.Write(cmdBoldOff)
	text(pad("Bayar", FormatCurrency(job.Payment)))

	if job.PaymentType == "debt" {
		buf.Write(cmdAlignCenter)
		buf.Write(cmdBoldOn)
		text("HUTANG - " + job.CustomerName)
		buf.Write(cmdBoldOff)
		buf.Write(cmdAlignLeft)
	} else {
		text(pad("Kembali", FormatCurrency(job.Change)))
	}

	text(strings.Repeat("-", LineWidth))
	buf.Write(cmdAlignCenter)
	text("Terima kasih!")
	buf.Write(cmdFeedAndCut)

	return buf.Bytes()
}

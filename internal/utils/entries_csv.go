package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// EntryRow is one bulk entry read from CSV
type EntryRow struct {
	Line    int
	Address common.Address
	Payment *big.Int
}

// RowError reports a CSV line that could not be used
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// ReadEntriesCSV reads rows with an address column and an optional amount
// column. Amounts are wei unless the column is named in ether. Rows without
// an amount get defaultPayment. Bad rows are reported and skipped.
func ReadEntriesCSV(r io.Reader, defaultPayment *big.Int) ([]EntryRow, []RowError, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	addressIdx := findColumnIndex(header, []string{"address", "player", "wallet"})
	weiIdx := findColumnIndex(header, []string{"amount_wei", "wei", "payment_wei", "amount"})
	etherIdx := findColumnIndex(header, []string{"amount_eth", "eth", "ether"})
	if addressIdx == -1 {
		return nil, nil, errors.New("address column not found in CSV")
	}

	var (
		rows    []EntryRow
		badRows []RowError
		line    = 1
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			badRows = append(badRows, RowError{Line: line, Err: err})
			continue
		}

		addr, err := ParseAddress(field(record, addressIdx))
		if err != nil {
			badRows = append(badRows, RowError{Line: line, Err: err})
			continue
		}

		payment := defaultPayment
		switch {
		case field(record, weiIdx) != "":
			payment, err = ParseWei(field(record, weiIdx))
		case field(record, etherIdx) != "":
			payment, err = ParseEther(field(record, etherIdx))
		}
		if err != nil {
			badRows = append(badRows, RowError{Line: line, Err: err})
			continue
		}
		if payment == nil {
			badRows = append(badRows, RowError{Line: line, Err: fmt.Errorf("%w: missing amount", ErrInvalidAmount)})
			continue
		}

		rows = append(rows, EntryRow{Line: line, Address: addr, Payment: new(big.Int).Set(payment)})
	}
	return rows, badRows, nil
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// findColumnIndex returns the index of the first header matching one of
// names, ignoring case, or -1.
func findColumnIndex(header []string, names []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range names {
			if h == name {
				return i
			}
		}
	}
	return -1
}

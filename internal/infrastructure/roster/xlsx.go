package roster

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"scholarship-fund.backend/internal/domain/entities"
	domainerrors "scholarship-fund.backend/internal/domain/errors"
	"scholarship-fund.backend/pkg/validation"
)

// SheetName is the sheet written by Export
const SheetName = "Students"

// MaxRows caps one import
const MaxRows = 5000

// Header is the expected first row, matched case-insensitively
var Header = []string{"name", "address", "amount"}

type row struct {
	Name    string `validate:"max=256"`
	Address string `validate:"required,eth_addr"`
	Amount  string `validate:"required,wei"`
}

var rowValidator = validation.New()

// Parse reads the first sheet of an .xlsx roster into bulk-add input.
// Blank rows are skipped; any invalid row rejects the whole file.
func Parse(r io.Reader) (*entities.BulkAddStudentsInput, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domainerrors.BadRequest("roster is not a readable xlsx file")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domainerrors.BadRequest("roster has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, domainerrors.BadRequest("roster sheet could not be read")
	}
	if len(rows) == 0 {
		return nil, domainerrors.BadRequest("roster is empty")
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}
	if len(rows)-1 > MaxRows {
		return nil, domainerrors.BadRequest(fmt.Sprintf("roster has more than %d rows", MaxRows))
	}

	out := &entities.BulkAddStudentsInput{}
	for i, cells := range rows[1:] {
		line := i + 2
		rec := row{Name: cell(cells, 0), Address: cell(cells, 1), Amount: cell(cells, 2)}
		if rec.Name == "" && rec.Address == "" && rec.Amount == "" {
			continue
		}
		if err := rowValidator.Struct(rec); err != nil {
			return nil, rowError(line, err)
		}
		out.Names = append(out.Names, rec.Name)
		out.Addresses = append(out.Addresses, rec.Address)
		out.Amounts = append(out.Amounts, rec.Amount)
	}
	if len(out.Addresses) == 0 {
		return nil, domainerrors.BadRequest("roster has no students")
	}
	return out, nil
}

// Export writes students in the given order as an .xlsx workbook
func Export(w io.Writer, students []*entities.Student) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	header := []interface{}{"name", "address", "amount", "hasClaimed"}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}
	for i, s := range students {
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{s.Name, s.WalletAddress.Hex(), entities.AmountString(s.Amount), s.HasClaimed}
		if err := f.SetSheetRow(SheetName, cellName, &values); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetName, "B", "B", 46); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}

func checkHeader(cells []string) error {
	for i, want := range Header {
		if !strings.EqualFold(cell(cells, i), want) {
			return domainerrors.BadRequest(fmt.Sprintf("roster header must be %s", strings.Join(Header, ",")))
		}
	}
	return nil
}

func cell(cells []string, i int) string {
	if i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

func rowError(line int, err error) error {
	fields := validation.ToFieldErrors(err)
	msg := fmt.Sprintf("row %d invalid", line)
	if len(fields) > 0 {
		msg = fmt.Sprintf("row %d: %s %s", line, strings.ToLower(fields[0].Field), fields[0].Message)
	}
	return domainerrors.BadRequest(msg)
}

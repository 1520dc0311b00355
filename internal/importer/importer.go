package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"detailing-booking/internal/catalog"
	"detailing-booking/internal/domain"
	bookingrepo "detailing-booking/internal/repository/booking"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingWriter interface {
	Create(ctx context.Context, in bookingrepo.CreateInput) (*domain.Booking, error)
}

// Result counts what a run did.
type Result struct {
	Imported int
	Skipped  int
}

// CSVImporter reads the legacy booking export. A row with an email starts a
// booking; following rows with only package columns add packages to it.
type CSVImporter struct {
	reader *csv.Reader
	writer BookingWriter
	logger *zap.Logger
}

func NewCSVImporter(r io.Reader, writer BookingWriter, logger *zap.Logger) *CSVImporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader: csvr,
		writer: writer,
		logger: logger,
	}
}

type csvRow struct {
	Line      int
	Reference string
	Date      string
	Time      string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Street    string
	City      string
	Postal    string
	Method    string
	Message   string
	Packages  []packageRow
}

type packageRow struct {
	PackageID string
	Vehicle   string
	Quantity  int
	Price     *int64 // nil when the export has no final_price
}

// Run imports every booking in the file. Bookings whose reference already
// exists are skipped, so a file can be imported again.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	var res Result

	headers, err := i.reader.Read()
	if err != nil {
		return res, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["email"]; !ok {
		return res, errors.New("missing email column")
	}

	var current *csvRow
	flush := func() error {
		if current == nil {
			return nil
		}
		err := i.save(ctx, current)
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			i.logger.Info("booking already imported", zap.String("reference", current.Reference))
			res.Skipped++
		case err != nil:
			return err
		default:
			res.Imported++
		}
		return nil
	}

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)

		row, err := parseRow(record, index, line)
		if err != nil {
			return res, err
		}
		if row == nil {
			continue
		}

		if row.Email != "" {
			if err := flush(); err != nil {
				return res, err
			}
			current = row
			continue
		}

		if current == nil {
			return res, fmt.Errorf("line %d: package row before any booking", line)
		}
		current.Packages = append(current.Packages, row.Packages...)
	}

	if err := flush(); err != nil {
		return res, err
	}
	return res, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	in, err := row.toInput()
	if err != nil {
		return fmt.Errorf("line %d: %w", row.Line, err)
	}
	b, err := i.writer.Create(ctx, in)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return err
		}
		return fmt.Errorf("line %d: create booking %s: %w", row.Line, in.ID, err)
	}
	i.logger.Debug("imported booking", zap.String("booking_id", b.ID), zap.Int("packages", len(in.Packages)))
	return nil
}

func (r *csvRow) toInput() (bookingrepo.CreateInput, error) {
	ref := r.Reference
	if ref == "" {
		ref = uuid.NewString()
	} else if _, err := uuid.Parse(ref); err != nil {
		return bookingrepo.CreateInput{}, fmt.Errorf("invalid reference %q", ref)
	}

	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return bookingrepo.CreateInput{}, fmt.Errorf("invalid date %q", r.Date)
	}
	method := domain.PaymentMethod(strings.ReplaceAll(strings.ToLower(r.Method), "-", "_"))
	if !method.Valid() {
		return bookingrepo.CreateInput{}, fmt.Errorf("invalid payment method %q", r.Method)
	}
	if len(r.Packages) == 0 {
		return bookingrepo.CreateInput{}, fmt.Errorf("booking %s has no packages", ref)
	}

	in := bookingrepo.CreateInput{
		ID: ref,
		Customer: domain.Customer{
			FirstName:     r.FirstName,
			LastName:      r.LastName,
			FullName:      strings.TrimSpace(r.FirstName + " " + r.LastName),
			Email:         strings.ToLower(r.Email),
			Phone:         r.Phone,
			StreetAddress: r.Street,
			City:          r.City,
			PostalCode:    r.Postal,
		},
		BookingDate:   date,
		BookingTime:   r.Time,
		PaymentMethod: method,
		DepositAmount: domain.ReservationFee,
	}
	if r.Message != "" {
		msg := r.Message
		in.Message = &msg
	}

	for _, p := range r.Packages {
		sel, err := catalog.Quote(p.PackageID, catalog.VehicleType(p.Vehicle))
		if err != nil {
			return bookingrepo.CreateInput{}, err
		}
		// An explicit price in the export wins over today's catalog price.
		if p.Price != nil {
			sel.FinalPrice = *p.Price
		}
		in.Packages = append(in.Packages, domain.BookingPackage{
			PackageID:   sel.PackageID,
			PackageName: sel.PackageName,
			VehicleType: string(sel.VehicleType),
			BasePrice:   sel.BasePrice,
			FinalPrice:  sel.FinalPrice,
			Quantity:    p.Quantity,
		})
		in.TotalAmount += sel.FinalPrice * int64(p.Quantity)
	}
	return in, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int, line int) (*csvRow, error) {
	row := &csvRow{
		Line:      line,
		Reference: pick(record, index, "reference"),
		Date:      pick(record, index, "date"),
		Time:      pick(record, index, "time"),
		FirstName: pick(record, index, "first_name"),
		LastName:  pick(record, index, "last_name"),
		Email:     pick(record, index, "email"),
		Phone:     pick(record, index, "phone"),
		Street:    pick(record, index, "street_address"),
		City:      pick(record, index, "city"),
		Postal:    pick(record, index, "postal_code"),
		Method:    pick(record, index, "payment_method"),
		Message:   pick(record, index, "message"),
	}

	packageID := pick(record, index, "package_id")
	if row.Email == "" && packageID == "" {
		return nil, nil
	}
	if packageID == "" {
		return row, nil
	}

	qty := 1
	if s := pick(record, index, "quantity"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("line %d: invalid quantity %q", line, s)
		}
		qty = n
	}
	var price *int64
	if s := pick(record, index, "final_price"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("line %d: invalid final_price %q", line, s)
		}
		price = &n
	}
	row.Packages = []packageRow{{
		PackageID: packageID,
		Vehicle:   strings.ToLower(pick(record, index, "vehicle_type")),
		Quantity:  qty,
		Price:     price,
	}}
	return row, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

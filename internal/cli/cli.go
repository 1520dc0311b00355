// Package cli implements detailctl, the terminal client for browsing
// packages, managing the local cart, checking out and running the admin
// screens against the booking API.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"detailing-booking/internal/apiclient"
	"detailing-booking/internal/cart"
	"detailing-booking/internal/catalog"
	"detailing-booking/internal/checkout"
	"detailing-booking/internal/config"
	"detailing-booking/internal/domain"
	"detailing-booking/internal/schedule"
	"go.uber.org/zap"
)

var errUsage = errors.New("usage: detailctl <packages|cart|checkout|admin> [args]")

// StorageOpener returns the cart storage and a function that releases it.
type StorageOpener func(ctx context.Context) (cart.Storage, func(), error)

type App struct {
	out         io.Writer
	logger      *zap.Logger
	cfg         config.ClientConfig
	openStorage StorageOpener
	now         func() time.Time
}

type Option func(*App)

func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}

func New(out io.Writer, cfg config.ClientConfig, open StorageOpener, opts ...Option) *App {
	a := &App{
		out:         out,
		logger:      zap.NewNop(),
		cfg:         cfg,
		openStorage: open,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run dispatches one command line, args excluding the program name.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "packages":
		return a.packages()
	case "cart":
		return a.cart(ctx, args[1:])
	case "checkout":
		return a.checkout(ctx, args[1:])
	case "admin":
		return a.admin(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q\n%w", args[0], errUsage)
	}
}

func (a *App) client() *apiclient.Client {
	return apiclient.New(a.cfg.APIBaseURL, a.cfg.APITimeout, apiclient.WithLogger(a.logger))
}

func (a *App) withCart(ctx context.Context, fn func(*cart.Store) error) error {
	storage, release, err := a.openStorage(ctx)
	if err != nil {
		return fmt.Errorf("open cart storage: %w", err)
	}
	defer release()

	store, err := cart.Open(ctx, storage,
		cart.WithLogger(a.logger), cart.WithKey(cart.ProfileKey(a.cfg.CartProfile)))
	if err != nil {
		return err
	}
	// Close flushes the last write before storage is released.
	defer store.Close()
	return fn(store)
}

func (a *App) packages() error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPACKAGE\tCATEGORY\tPRICE")
	for _, p := range catalog.Packages() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t$%d\n", p.ID, p.Name, p.Category, p.BasePrice)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "VEHICLE\tLABEL\tSURCHARGE")
	for _, s := range catalog.Surcharges() {
		fmt.Fprintf(tw, "%s\t%s\t+$%d\n", s.VehicleTypeID, s.Label, s.Surcharge)
	}
	return tw.Flush()
}

func (a *App) cart(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("cart add", flag.ContinueOnError)
		fs.SetOutput(a.out)
		pkg := fs.String("package", "", "Package id")
		vehicle := fs.String("vehicle", string(catalog.VehicleSedan), "Vehicle type: sedan, suv or van")
		qty := fs.Int("qty", 1, "Quantity")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		sel, err := catalog.Quote(*pkg, catalog.VehicleType(strings.ToLower(*vehicle)))
		if err != nil {
			return err
		}
		return a.withCart(ctx, func(s *cart.Store) error {
			item := s.AddItem(cart.NewItem{
				PackageID:   sel.PackageID,
				PackageName: sel.PackageName,
				BasePrice:   sel.BasePrice,
				VehicleType: string(sel.VehicleType),
				FinalPrice:  sel.FinalPrice,
				Quantity:    *qty,
			})
			fmt.Fprintf(a.out, "Added %s (%s) x%d: %s\n", item.PackageName, item.VehicleType, item.Quantity, item.ID)
			return nil
		})
	case "list":
		return a.withCart(ctx, a.printCart)
	case "remove":
		if len(args) != 2 {
			return errors.New("usage: detailctl cart remove <line-id>")
		}
		return a.withCart(ctx, func(s *cart.Store) error {
			s.RemoveItem(args[1])
			return a.printCart(s)
		})
	case "qty":
		if len(args) != 3 {
			return errors.New("usage: detailctl cart qty <line-id> <quantity>")
		}
		n, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[2])
		}
		return a.withCart(ctx, func(s *cart.Store) error {
			s.UpdateQuantity(args[1], n)
			return a.printCart(s)
		})
	case "clear":
		return a.withCart(ctx, func(s *cart.Store) error {
			s.ClearCart()
			fmt.Fprintln(a.out, "Cart cleared")
			return nil
		})
	default:
		return fmt.Errorf("unknown cart command %q", args[0])
	}
}

func (a *App) printCart(s *cart.Store) error {
	items := s.Items()
	if len(items) == 0 {
		fmt.Fprintln(a.out, "Your cart is empty")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tPACKAGE\tVEHICLE\tPRICE\tQTY\tTOTAL")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t$%d\t%d\t$%d\n",
			it.ID, it.PackageName, it.VehicleType, it.FinalPrice, it.Quantity, it.LineTotal())
	}
	t := checkout.ComputeTotals(s.TotalPrice())
	fmt.Fprintf(tw, "\t\t\t\t%d items\t$%d\n", s.TotalItems(), t.ServiceTotal)
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Due today: $%d  Due after service: $%d\n", t.DueToday, t.DueLater)
	return nil
}

func (a *App) checkout(ctx context.Context, args []string) error {
	var (
		f    checkout.Form
		date string
	)
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	fs.SetOutput(a.out)
	fs.StringVar(&f.FullName, "name", "", "Full name")
	fs.StringVar(&f.Email, "email", "", "Email")
	fs.StringVar(&f.Phone, "phone", "", "Phone number")
	fs.StringVar(&f.StreetAddress, "street", "", "Street address")
	fs.StringVar(&f.City, "city", "", "City")
	fs.StringVar(&f.PostalCode, "postal", "", "Postal code")
	method := fs.String("payment", "", "Payment method: credit_card or e_transfer")
	fs.StringVar(&f.Card.HolderName, "card-holder", "", "Card holder name")
	fs.StringVar(&f.Card.Number, "card-number", "", "Card number")
	fs.StringVar(&f.Card.Expiry, "card-expiry", "", "Card expiry (MM/YY)")
	fs.StringVar(&f.Card.CVV, "card-cvv", "", "Card CVV")
	fs.StringVar(&date, "date", "", "Appointment date (YYYY-MM-DD), defaults to today")
	fs.StringVar(&f.TimeSlot, "time", "10:00 AM", "Appointment time slot")
	fs.StringVar(&f.Message, "message", "", "Notes for the detailer")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f.PaymentMethod = domain.PaymentMethod(*method)
	f.Date = checkout.CalendarDate(a.now())
	if date != "" {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			return fmt.Errorf("invalid date %q", date)
		}
		f.Date = d
	}

	return a.withCart(ctx, func(s *cart.Store) error {
		svc := checkout.New(s, a.client(), checkout.WithLogger(a.logger))
		res, err := svc.Submit(ctx, f)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, res.Message)
		if res.Status != checkout.StatusConfirmed {
			return fmt.Errorf("booking not completed: %s", res.Status)
		}
		return nil
	})
}

func (a *App) admin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: detailctl admin <bookings|booking|complete|schedule|customer>")
	}
	api := a.client()
	switch args[0] {
	case "bookings":
		bookings, err := api.ListBookings(ctx)
		if err != nil {
			return err
		}
		return a.printBookings(bookings)
	case "booking":
		if len(args) != 2 {
			return errors.New("usage: detailctl admin booking <booking-id>")
		}
		b, err := api.GetBooking(ctx, args[1])
		if err != nil {
			return err
		}
		return a.printBooking(b)
	case "customer":
		return a.customer(ctx, api, args[1:])
	case "complete":
		if len(args) != 2 {
			return errors.New("usage: detailctl admin complete <booking-id>")
		}
		if err := api.CompleteBooking(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Booking %s marked completed\n", args[1])
		return nil
	case "schedule":
		fs := flag.NewFlagSet("admin schedule", flag.ContinueOnError)
		fs.SetOutput(a.out)
		date := fs.String("date", "", "Only show this date (YYYY-MM-DD)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		days, err := api.Schedule(ctx)
		if err != nil {
			return err
		}
		if *date != "" {
			if _, err := time.Parse("2006-01-02", *date); err != nil {
				return fmt.Errorf("invalid date %q", *date)
			}
			days = filterDays(days, *date)
		}
		return a.printSchedule(days)
	default:
		return fmt.Errorf("unknown admin command %q", args[0])
	}
}

func (a *App) customer(ctx context.Context, api *apiclient.Client, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: detailctl admin customer <get|create|update>")
	}
	switch args[0] {
	case "get":
		if len(args) != 2 {
			return errors.New("usage: detailctl admin customer get <customer-id>")
		}
		c, err := api.GetCustomer(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s\n%s\n%s\n%s, %s %s\n", c.FullName, c.Email, c.Phone, c.StreetAddress, c.City, c.PostalCode)
		return nil
	case "create":
		in, err := a.customerFlags("admin customer create", args[1:])
		if err != nil {
			return err
		}
		if err := api.CreateCustomer(ctx, in); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Customer %s created\n", in.Email)
		return nil
	case "update":
		if len(args) < 2 {
			return errors.New("usage: detailctl admin customer update <customer-id> [flags]")
		}
		in, err := a.customerFlags("admin customer update", args[2:])
		if err != nil {
			return err
		}
		if err := api.UpdateCustomer(ctx, args[1], in); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Customer %s updated\n", args[1])
		return nil
	default:
		return fmt.Errorf("unknown customer command %q", args[0])
	}
}

func (a *App) customerFlags(name string, args []string) (apiclient.CustomerInput, error) {
	var in apiclient.CustomerInput
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	fs.StringVar(&in.FullName, "name", "", "Full name")
	fs.StringVar(&in.Email, "email", "", "Email")
	fs.StringVar(&in.Phone, "phone", "", "Phone number")
	fs.StringVar(&in.StreetAddress, "street", "", "Street address")
	fs.StringVar(&in.City, "city", "", "City")
	fs.StringVar(&in.PostalCode, "postal", "", "Postal code")
	if err := fs.Parse(args); err != nil {
		return in, err
	}
	in.FirstName, in.LastName = checkout.SplitName(in.FullName)
	return in, nil
}

func (a *App) printBooking(b *domain.Booking) error {
	name := ""
	if b.Customer != nil {
		name = b.Customer.FullName
	}
	fmt.Fprintf(a.out, "Booking %s: %s at %s for %s (%s)\n",
		b.ID, schedule.DateKey(b.BookingDate), b.BookingTime, name, b.Status)
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PACKAGE\tVEHICLE\tPRICE\tQTY")
	for _, p := range b.Packages {
		fmt.Fprintf(tw, "%s\t%s\t$%d\t%d\n", p.PackageName, p.VehicleType, p.FinalPrice, p.Quantity)
	}
	fmt.Fprintf(tw, "\t\t$%d\t\n", b.TotalAmount)
	return tw.Flush()
}

func filterDays(days []schedule.Day, date string) []schedule.Day {
	for _, d := range days {
		if d.Date == date {
			return []schedule.Day{d}
		}
	}
	return nil
}

func (a *App) printBookings(bookings []domain.Booking) error {
	if len(bookings) == 0 {
		fmt.Fprintln(a.out, "No bookings")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tCUSTOMER\tPACKAGES\tTOTAL\tSTATUS")
	for _, b := range bookings {
		name := ""
		if b.Customer != nil {
			name = b.Customer.FullName
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t$%d\t%s\n",
			b.ID, schedule.DateKey(b.BookingDate), b.BookingTime, name, b.PackageCount(), b.TotalAmount, b.Status)
	}
	return tw.Flush()
}

func (a *App) printSchedule(days []schedule.Day) error {
	if len(days) == 0 {
		fmt.Fprintln(a.out, "Nothing scheduled")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tBOOKINGS\tPACKAGES")
	for _, d := range days {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Date,
			capacity(d.Bookings, d.BookingCapacity, d.BookingsFull),
			capacity(d.Packages, d.PackageCapacity, d.PackagesFull))
	}
	return tw.Flush()
}

func capacity(n, limit int, full bool) string {
	s := fmt.Sprintf("%d/%d", n, limit)
	if full {
		s += " (full)"
	}
	return s
}

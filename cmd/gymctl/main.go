// cmd/gymctl/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"gymflow/internal/clients"
	"gymflow/internal/ledger"
	"gymflow/internal/membership"
)

const usage = `usage: gymctl [-addr URL] <command> [args]

commands:
  site                                   show the public site data
  status <member-id>                     look up a member
  register -name N -whatsapp W -photo P  sign up a member
  contact <member-id> [receipt|support]  build a message to the owner
  dashboard                              admin headline numbers
  finance                                admin ledger view
  activate <member-id> <amount> <method> confirm a payment (Dinheiro, Pix, Cartão)

admin commands read the password from GYMFLOW_ADMIN_PASSWORD.
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "gymctl:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("gymctl", flag.ContinueOnError)
	addr := fs.String("addr", envOr("GYMFLOW_URL", "http://localhost:8080"), "gymflow server URL")
	timeout := fs.Duration("timeout", 10*time.Second, "request timeout")
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("missing command")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := clients.NewGymClient(*addr)
	cmd, rest := fs.Arg(0), fs.Args()[1:]

	switch cmd {
	case "site":
		site, err := client.Site(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, site)

	case "status":
		if len(rest) != 1 {
			return fmt.Errorf("status needs a member id")
		}
		profile, err := client.Lookup(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s  %s\n%s  vencimento: %s\n",
			profile.Member.ID, profile.Member.Name,
			profile.Status.Theme.Label, profile.Status.DueDateLabel)
		return nil

	case "register":
		rfs := flag.NewFlagSet("register", flag.ContinueOnError)
		var in membership.RegisterInput
		rfs.StringVar(&in.Name, "name", "", "full name")
		rfs.StringVar(&in.Contact, "whatsapp", "", "whatsapp number")
		rfs.StringVar(&in.BirthDate, "birth-date", "", "birth date")
		photoPath := rfs.String("photo", "", "path to a file holding the photo data URI")
		if err := rfs.Parse(rest); err != nil {
			return err
		}
		if *photoPath != "" {
			photo, err := os.ReadFile(*photoPath)
			if err != nil {
				return err
			}
			in.Photo = string(photo)
		}
		reg, err := client.Register(ctx, in)
		if err != nil {
			return err
		}
		return printJSON(out, reg)

	case "contact":
		if len(rest) < 1 {
			return fmt.Errorf("contact needs a member id")
		}
		kind := membership.ContactReceipt
		if len(rest) > 1 {
			kind = membership.ContactKind(rest[1])
		}
		msg, err := client.Contact(ctx, rest[0], kind)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, msg.Link)
		return nil

	case "dashboard", "finance", "activate":
		if err := client.Login(ctx, os.Getenv("GYMFLOW_ADMIN_PASSWORD")); err != nil {
			return fmt.Errorf("login: %w", err)
		}
		return runAdmin(ctx, client, cmd, rest, out)

	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runAdmin(ctx context.Context, client *clients.GymClient, cmd string, rest []string, out io.Writer) error {
	switch cmd {
	case "dashboard":
		d, err := client.Dashboard(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "alunos: %d  pendentes: %d  vencidos: %d  ativos: %d\nreceita: %s  no mês: %s\n",
			d.Members, d.Pending, d.Overdue, d.Active, d.RevenueLabel, d.MonthRevenueLabel)
		return nil

	case "finance":
		f, err := client.Finance(ctx)
		if err != nil {
			return err
		}
		for _, e := range f.Entries {
			fmt.Fprintf(out, "%s  %s  %-24s %-8s %s\n",
				e.Payment.ID, e.Payment.ReferencePeriod, e.MemberName, e.Payment.Method, e.AmountLabel)
		}
		fmt.Fprintf(out, "total: %s  no mês: %s\npotencial: %s (%d ativos a %s)\n",
			f.TotalLabel, f.MonthTotalLabel, f.ProjectedLabel, f.ActiveMembers, f.MonthlyFeeLabel)
		return nil

	default:
		if len(rest) != 3 {
			return fmt.Errorf("activate needs <member-id> <amount> <method>")
		}
		amount, err := decimal.NewFromString(rest[1])
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		method := ledger.Method(rest[2])
		if !method.Valid() {
			return fmt.Errorf("%w: %q", ledger.ErrInvalidMethod, rest[2])
		}
		act, err := client.Activate(ctx, rest[0], amount, method)
		if err != nil {
			return err
		}
		return printJSON(out, act)
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
